package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("inventory-service")
	require.NoError(t, err)

	assert.Equal(t, 8084, cfg.Server.Port)
	assert.Equal(t, EnvDevelopment, cfg.Server.Environment)
	assert.Equal(t, "inventory.db", cfg.Database.Path)
	assert.False(t, cfg.RabbitMQ.Enabled)
	assert.Equal(t, int64(5), cfg.Alerts.Threshold)
	assert.Equal(t, 15*time.Minute, cfg.Alerts.ScanInterval)
	assert.Equal(t, "inventory.alerts", cfg.Alerts.Destination)
	assert.Equal(t, 10*time.Second, cfg.Scan.Timeout)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("STOCKTRACK_SERVER_PORT", "9001")
	t.Setenv("STOCKTRACK_DATABASE_PATH", "/tmp/override.db")
	t.Setenv("STOCKTRACK_ALERTS_THRESHOLD", "12")

	cfg, err := Load("inventory-service")
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, "/tmp/override.db", cfg.Database.Path)
	assert.Equal(t, int64(12), cfg.Alerts.Threshold)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Database: DatabaseConfig{Path: "test.db"},
			Alerts:   AlertsConfig{Threshold: 5},
			Scan:     ScanConfig{Timeout: time.Second},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("empty database path", func(t *testing.T) {
		cfg := base()
		cfg.Database.Path = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative threshold", func(t *testing.T) {
		cfg := base()
		cfg.Alerts.Threshold = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero scan timeout", func(t *testing.T) {
		cfg := base()
		cfg.Scan.Timeout = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("broker enabled without url", func(t *testing.T) {
		cfg := base()
		cfg.RabbitMQ.Enabled = true
		assert.Error(t, cfg.Validate())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{Path: "inventory.db", BusyTimeout: 5 * time.Second}
	dsn := cfg.DSN()
	assert.Contains(t, dsn, "file:inventory.db")
	assert.Contains(t, dsn, "busy_timeout(5000)")
	assert.Contains(t, dsn, "foreign_keys(1)")
	assert.Contains(t, dsn, "journal_mode(WAL)")

	mem := DatabaseConfig{Path: ":memory:"}
	assert.Contains(t, mem.DSN(), ":memory:")
}
