package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env file
	t.Setenv("LEDGER_DB_DRIVER", "")
	t.Setenv("LEDGER_HOLD_TIMEOUT", "")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "ledger.db", cfg.SQLitePath)
	assert.Equal(t, 5*time.Second, cfg.HoldTimeout)
	assert.Equal(t, 3, cfg.MaxReferenceAttempts)
	assert.Equal(t, 100, cfg.HistoryMaxLimit)
	assert.False(t, cfg.IsProduction)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEDGER_DB_DRIVER", "Postgres")
	t.Setenv("PGSQL_URL", "postgres://ledger@localhost/ledger")
	t.Setenv("LEDGER_HOLD_TIMEOUT", "750ms")
	t.Setenv("LEDGER_MAX_REFERENCE_ATTEMPTS", "5")
	t.Setenv("DB_MAX_CONNS", "25")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 750*time.Millisecond, cfg.HoldTimeout)
	assert.Equal(t, 5, cfg.MaxReferenceAttempts)
	assert.EqualValues(t, 25, cfg.DBMaxConns)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("bad hold timeout falls back", func(t *testing.T) {
		t.Setenv("LEDGER_DB_DRIVER", "sqlite")
		t.Setenv("LEDGER_HOLD_TIMEOUT", "soon")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, cfg.HoldTimeout)
	})

	t.Run("postgres without url", func(t *testing.T) {
		t.Setenv("LEDGER_DB_DRIVER", "postgres")
		t.Setenv("PGSQL_URL", "")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "PGSQL_URL")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("LEDGER_DB_DRIVER", "mysql")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "unsupported")
	})
}
