// Package log is a thin logrus facade that writes daily log files when enabled in the configuration.
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/reelplay/reelplay/filesystem"
	"github.com/reelplay/reelplay/key"
	"github.com/reelplay/reelplay/where"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	logger  = logrus.New()
	enabled bool
)

func init() {
	logger.SetOutput(io.Discard)
}

// Setup opens today's log file and applies formatter and level from the configuration.
// When logs.write is false every emission is discarded.
func Setup() error {
	enabled = viper.GetBool(key.LogsWrite)
	if !enabled {
		logger.SetOutput(io.Discard)
		return nil
	}

	dir := where.Logs()
	if dir == "" {
		return errors.New("log directory path is empty")
	}

	path := filepath.Join(dir, time.Now().Format("2006-01-02")+".log")
	f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	configure(f, viper.GetBool(key.LogsJson), viper.GetString(key.LogsLevel))
	return nil
}

// SetOutput enables logging to w; tests use it to capture emissions.
func SetOutput(w io.Writer, level string) {
	enabled = true
	configure(w, false, level)
}

func configure(w io.Writer, json bool, level string) {
	logger.SetOutput(w)

	if json {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
}

// With returns an entry carrying structured fields. It is safe to use when logging is disabled.
func With(fields logrus.Fields) *logrus.Entry {
	return logger.WithFields(fields)
}

func Error(args ...interface{}) {
	if enabled {
		logger.Error(args...)
	}
}

func Errorf(format string, args ...interface{}) {
	if enabled {
		logger.Errorf(format, args...)
	}
}

func Warn(args ...interface{}) {
	if enabled {
		logger.Warn(args...)
	}
}

func Warnf(format string, args ...interface{}) {
	if enabled {
		logger.Warnf(format, args...)
	}
}

func Info(args ...interface{}) {
	if enabled {
		logger.Info(args...)
	}
}

func Infof(format string, args ...interface{}) {
	if enabled {
		logger.Infof(format, args...)
	}
}

func Debugf(format string, args ...interface{}) {
	if enabled {
		logger.Debugf(format, args...)
	}
}
