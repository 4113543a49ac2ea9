package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backends accepted by DATA_BACKEND.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

type Config struct {
	Port                string   `mapstructure:"PORT"`
	Env                 string   `mapstructure:"ENV"`
	DataBackend         string   `mapstructure:"DATA_BACKEND"`
	DataFile            string   `mapstructure:"DATA_FILE"`
	CORSOrigins         []string `mapstructure:"CORS_ORIGINS"`
	LoadRetries         int      `mapstructure:"LOAD_RETRIES"`
	LoadRetryIntervalMS int      `mapstructure:"LOAD_RETRY_INTERVAL_MS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8731")
	v.SetDefault("ENV", "development")
	v.SetDefault("DATA_BACKEND", BackendFile)
	v.SetDefault("DATA_FILE", "kojo-data.json")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOAD_RETRIES", 3)
	v.SetDefault("LOAD_RETRY_INTERVAL_MS", 200)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATA_BACKEND")
	v.BindEnv("DATA_FILE")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("LOAD_RETRIES")
	v.BindEnv("LOAD_RETRY_INTERVAL_MS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// LoadRetryInterval returns the configured pause between startup load
// attempts.
func (c *Config) LoadRetryInterval() time.Duration {
	return time.Duration(c.LoadRetryIntervalMS) * time.Millisecond
}

// Validate checks that the configuration is usable before the server
// touches the data store.
func (c *Config) Validate() error {
	if c.DataBackend != BackendFile && c.DataBackend != BackendSQLite {
		return fmt.Errorf("DATA_BACKEND must be %q or %q, got %q", BackendFile, BackendSQLite, c.DataBackend)
	}
	if c.DataFile == "" {
		return fmt.Errorf("DATA_FILE is required")
	}
	if c.LoadRetries < 1 {
		return fmt.Errorf("LOAD_RETRIES must be at least 1, got %d", c.LoadRetries)
	}
	return nil
}
