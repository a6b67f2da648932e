package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config is read from defaults, ~/.otpvault/config.yaml (or an explicit
// file), then OTPVAULT_* environment variables. Flags override it.
type Config struct {
	Database       string
	ClipboardClear time.Duration
	Refresh        time.Duration
	LogLevel       logrus.Level
}

func LoadConfig(file string) (Config, error) {
	dir, err := DefaultDir()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetDefault("database", filepath.Join(dir, "vault.json"))
	v.SetDefault("clipboard_clear", "30s")
	v.SetDefault("refresh", "1s")
	v.SetDefault("log_level", "warn")

	v.SetEnvPrefix("OTPVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", file, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("config: %w", err)
			}
		}
	}

	level, err := logrus.ParseLevel(v.GetString("log_level"))
	if err != nil {
		return Config{}, fmt.Errorf("config: log_level: %w", err)
	}

	cfg := Config{
		Database:       v.GetString("database"),
		ClipboardClear: v.GetDuration("clipboard_clear"),
		Refresh:        v.GetDuration("refresh"),
		LogLevel:       level,
	}
	if cfg.Refresh <= 0 {
		cfg.Refresh = time.Second
	}
	return cfg, nil
}
