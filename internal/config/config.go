package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

type Config struct {
	Port            string        `mapstructure:"PORT"`
	Storage         string        `mapstructure:"STORAGE"`
	DBPath          string        `mapstructure:"DB_PATH"`
	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	SeedCount       int           `mapstructure:"SEED_COUNT"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var defaults = map[string]any{
	"PORT":             "3000",
	"STORAGE":          StorageMemory,
	"DB_PATH":          "data.db",
	"REDIS_ADDR":       "localhost:6379",
	"SEED_COUNT":       8,
	"LOG_LEVEL":        "info",
	"SHUTDOWN_TIMEOUT": 10 * time.Second,
}

// Load reads defaults, then an optional config file, then the environment.
// An empty path looks for ./config.* and tolerates its absence.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMemory, StorageSQLite, StorageRedis:
	default:
		return fmt.Errorf("unknown storage %q", c.Storage)
	}
	if c.SeedCount < 0 {
		return fmt.Errorf("seed count must not be negative, got %d", c.SeedCount)
	}
	return nil
}
