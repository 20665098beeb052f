package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "USD", cfg.App.ReferenceCurrency)
	assert.Equal(t, 5*time.Second, cfg.App.LockTimeout)
	assert.Equal(t, 0.95, cfg.Savings.CapRatio)
	assert.Equal(t, 0.3, cfg.Savings.FallbackRate)
	assert.Equal(t, "habits", cfg.Points.HabitCategory)
	assert.Equal(t, 1.2, cfg.Points.HabitBonus)
	assert.Equal(t, 100, cfg.Points.StreakDivisor)
	assert.Equal(t, 2.0, cfg.Points.StreakCap)
	assert.Equal(t, 20, cfg.Database.PoolSize)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := `
storage:
  driver: postgres
database:
  host: db.internal
  port: 6543
savings:
  cap_ratio: 0.9
currency:
  rates:
    EUR: 0.9
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("DATABASE_HOST", "env-host")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 0.9, cfg.Savings.CapRatio)
	assert.Equal(t, 0.9, cfg.Currency.Rates["eur"]) // viper lowercases map keys
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Storage: StorageConfig{Driver: DriverSQLite},
			Points:  PointsConfig{StreakDivisor: 100, StreakCap: 2},
			Savings: SavingsConfig{CapRatio: 0.95, FallbackRate: 0.3},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mysql" }, true},
		{"zero cap ratio", func(c *Config) { c.Savings.CapRatio = 0 }, true},
		{"cap ratio above one", func(c *Config) { c.Savings.CapRatio = 1.5 }, true},
		{"negative fallback", func(c *Config) { c.Savings.FallbackRate = -0.1 }, true},
		{"zero divisor", func(c *Config) { c.Points.StreakDivisor = 0 }, true},
		{"cap below one", func(c *Config) { c.Points.StreakCap = 0.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAppConfig_Location(t *testing.T) {
	assert.Equal(t, time.UTC, (&AppConfig{}).Location())
	assert.Equal(t, time.UTC, (&AppConfig{Timezone: "Not/AZone"}).Location())
	assert.Equal(t, "Europe/Moscow", (&AppConfig{Timezone: "Europe/Moscow"}).Location().String())
}
