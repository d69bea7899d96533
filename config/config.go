// Package config owns the viper registry: defaults, environment bindings and the toml file in the config directory.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/reelplay/reelplay/constant"
	"github.com/reelplay/reelplay/filesystem"
	"github.com/reelplay/reelplay/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer maps configuration keys onto environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup registers defaults and env bindings, then reads reelplay.toml if present.
func Setup() error {
	viper.SetConfigName(constant.App)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.App)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}

	return nil
}

// Millis reads an integer millisecond key as a duration.
func Millis(k string) time.Duration {
	return time.Duration(viper.GetInt64(k)) * time.Millisecond
}

// Seconds reads an integer second key as a duration.
func Seconds(k string) time.Duration {
	return time.Duration(viper.GetInt64(k)) * time.Second
}
