// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	App      AppConfig      `mapstructure:"app"`
	Points   PointsConfig   `mapstructure:"points"`
	Savings  SavingsConfig  `mapstructure:"savings"`
	Currency CurrencyConfig `mapstructure:"currency"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// LogConfig holds logger configuration. An empty File disables the file sink.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// AppConfig holds process-wide settings.
type AppConfig struct {
	Timezone          string        `mapstructure:"timezone"`
	ReferenceCurrency string        `mapstructure:"reference_currency"`
	LockTimeout       time.Duration `mapstructure:"lock_timeout"`
}

// PointsConfig holds the points formula parameters.
type PointsConfig struct {
	HabitCategory string  `mapstructure:"habit_category"`
	HabitBonus    float64 `mapstructure:"habit_bonus"`
	StreakDivisor int     `mapstructure:"streak_divisor"`
	StreakCap     float64 `mapstructure:"streak_cap"`
}

// SavingsConfig holds the savings projection parameters.
type SavingsConfig struct {
	CapRatio     float64 `mapstructure:"cap_ratio"`
	FallbackRate float64 `mapstructure:"fallback_rate"`
}

// CurrencyConfig holds optional exchange rate overrides (1 reference unit = X units).
type CurrencyConfig struct {
	Rates map[string]float64 `mapstructure:"rates"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Location resolves the configured timezone, falling back to UTC.
func (a *AppConfig) Location() *time.Location {
	if a.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// e.g. STORAGE_DRIVER, DATABASE_HOST, SAVINGS_CAP_RATIO
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	if c.Savings.CapRatio <= 0 || c.Savings.CapRatio > 1 {
		return fmt.Errorf("savings.cap_ratio must be in (0, 1], got %v", c.Savings.CapRatio)
	}
	if c.Savings.FallbackRate < 0 || c.Savings.FallbackRate > 1 {
		return fmt.Errorf("savings.fallback_rate must be in [0, 1], got %v", c.Savings.FallbackRate)
	}
	if c.Points.StreakDivisor <= 0 {
		return fmt.Errorf("points.streak_divisor must be positive, got %d", c.Points.StreakDivisor)
	}
	if c.Points.StreakCap < 1 {
		return fmt.Errorf("points.streak_cap must be at least 1, got %v", c.Points.StreakCap)
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.sqlite_path", "./data/tracker.db")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "tracker")
	v.SetDefault("database.name", "tracker")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	v.SetDefault("app.timezone", "UTC")
	v.SetDefault("app.reference_currency", "USD")
	v.SetDefault("app.lock_timeout", "5s")

	v.SetDefault("points.habit_category", "habits")
	v.SetDefault("points.habit_bonus", 1.2)
	v.SetDefault("points.streak_divisor", 100)
	v.SetDefault("points.streak_cap", 2.0)

	v.SetDefault("savings.cap_ratio", 0.95)
	v.SetDefault("savings.fallback_rate", 0.3)
}
