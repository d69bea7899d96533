// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/reelplay/reelplay/constant"
	"github.com/reelplay/reelplay/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the default configuration directory.
const EnvConfigPath = "REELPLAY_CONFIG_PATH"

func mkdir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the configuration directory, honouring XDG_CONFIG_HOME
// and the REELPLAY_CONFIG_PATH override.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return mkdir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return mkdir(filepath.Join(base, constant.App))
}

// Data resolves the directory holding watch history databases.
func Data() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "data")
	}
	return mkdir(filepath.Join(base, constant.App))
}

// Cache resolves the directory for short-lived cached lookups.
func Cache() string {
	return mkdir(filepath.Join(Data(), "cache"))
}

// Logs resolves the directory used for daily log files.
func Logs() string {
	return mkdir(filepath.Join(Config(), "logs"))
}

// History resolves the JSON watch history file used by the file backend.
func History() string {
	return filepath.Join(Config(), "history.json")
}

// HistoryDB resolves the sqlite watch history database.
func HistoryDB() string {
	return filepath.Join(Data(), "history.sqlite")
}

// Temp resolves a volatile directory for IPC sockets.
func Temp() string {
	return mkdir(filepath.Join(os.TempDir(), constant.App))
}
