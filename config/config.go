package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is kept flat and comparable so the app can detect a zero value.
type Config struct {
	GeneralVersion       string `mapstructure:"general_version"`
	Environment          string `mapstructure:"environment"`
	ServerPort           int    `mapstructure:"server_port"`
	LogLevel             string `mapstructure:"log_level"`
	DatabaseDriver       string `mapstructure:"database_driver"`
	DatabaseDbPath       string `mapstructure:"database_db_path"`
	DatabaseDSN          string `mapstructure:"database_dsn"`
	DatabaseCacheAddress string `mapstructure:"database_cache_address"`
	DatabaseCachePort    int    `mapstructure:"database_cache_port"`
	DatabaseCacheTTL     int    `mapstructure:"database_cache_ttl"`
	EventsChannel        string `mapstructure:"events_channel"`
	AdminKeyHash         string `mapstructure:"admin_key_hash"`
}

var defaults = map[string]any{
	"general_version":        "dev",
	"environment":            "development",
	"server_port":            8288,
	"log_level":              "info",
	"database_driver":        DriverSQLite,
	"database_db_path":       "data/advisors.db",
	"database_dsn":           "",
	"database_cache_address": "",
	"database_cache_port":    6379,
	"database_cache_ttl":     3600,
	"events_channel":         "advisor-events",
	"admin_key_hash":         "",
}

// InitConfig reads .env (when present) and the environment into a Config.
func InitConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	return Load(viper.New())
}

// Load builds a Config from an already prepared viper instance.
func Load(v *viper.Viper) (Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.DatabaseDriver = strings.ToLower(strings.TrimSpace(config.DatabaseDriver))

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c Config) Validate() error {
	if c.ServerPort <= 0 {
		return fmt.Errorf("invalid server port: %d", c.ServerPort)
	}

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseDbPath == "" {
			return errors.New("database path is empty")
		}
	case DriverPostgres:
		if c.DatabaseDSN == "" {
			return errors.New("database dsn is empty")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver: %q", c.DatabaseDriver)
	}

	return nil
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) CacheEnabled() bool {
	return c.DatabaseCacheAddress != "" && c.DatabaseCachePort > 0
}
