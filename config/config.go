// Package config provides YAML-based configuration loading for the
// chat application.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/brenordv/lora-modem-chatbox/logging"
)

// Config is the root application configuration.
type Config struct {
	// Username shown to chat peers; also settable as the first CLI argument
	Username string `mapstructure:"username"`

	// Port is the serial device path; empty triggers auto-detection
	Port string `mapstructure:"port"`

	// BaudRate of the modem link
	BaudRate int `mapstructure:"baud_rate"`

	// Log holds logging configuration
	Log logging.Config `mapstructure:"log"`
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		BaudRate: 115200,
		Log: logging.Config{
			Level:       "info",
			Format:      "console",
			Outputs:     []string{"stderr"},
			Development: true,
		},
	}
}

// Load reads configuration from the provided path (if non-empty),
// otherwise it searches common locations and supports environment
// overrides. Environment variables use the prefix LORACHAT and `.`/`-`
// are replaced with `_`. Example: LORACHAT_LOG_LEVEL=debug
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("LORACHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// seed defaults for viper so env-only configs work
	v.SetDefault("username", cfg.Username)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("baud_rate", cfg.BaudRate)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.outputs", cfg.Log.Outputs)
	v.SetDefault("log.development", cfg.Log.Development)
	v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
	v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)

	if path == "" {
		if envPath := os.Getenv("LORACHAT_CONFIG"); envPath != "" {
			path = envPath
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("lorachat")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".lorachat"))
		}
	}

	// Read config file if present; if not found, continue with defaults/env
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	lvl := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch lvl {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("invalid baud_rate: %d", c.BaudRate)
	}
	return nil
}

// ValidateUsername enforces the username rules shared with the
// original peers.
func ValidateUsername(name string) error {
	if len(name) < 2 {
		return errors.New("username must be at least 2 characters long")
	}
	if len(name) > 20 {
		return errors.New("username must be at most 20 characters long")
	}
	return nil
}
