// Package config loads the server configuration document with viper.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	sharedConfig "authgate/internal/shared/config"
)

// Load reads the configuration file at the given path and unmarshals it into
// a fresh Config. A file that cannot be parsed, or that parses to an empty
// document, yields an error and no partial configuration. Reload callers
// invoke Load again and swap the returned snapshot in whole.
func Load(path string) (*sharedConfig.Config, error) {
	v := viper.New()

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		ext = "json"
	}
	v.SetConfigFile(path)
	v.SetConfigType(ext)

	v.SetEnvPrefix("AUTHGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if len(v.AllKeys()) == 0 {
		return nil, fmt.Errorf("config file %q was empty or invalid", path)
	}

	var cfg sharedConfig.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8001)
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "config.sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("authentication.enabled", false)
	v.SetDefault("authentication.session_lifetime", 86400)
	v.SetDefault("authentication.refresh_time", 0)
	v.SetDefault("authentication.logins_until_cleanup", 30)
	v.SetDefault("authentication.realm_name", "authgate")
	v.SetDefault("authentication.realm_error", "Authentication required.")
	v.SetDefault("authentication.failed_auth_message", "Invalid username or password.")
	v.SetDefault("authentication.max_pers_auth_token_expiration_length", 365)

	v.SetDefault("keepalive.enabled", false)
}
