package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("JWT_EXPIRE", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5000", cfg.App.Addr())
	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "7d", cfg.Auth.JWTExpire)
	assert.Empty(t, cfg.Auth.JWTSecret)
	assert.Equal(t, "issue_tracker", cfg.Mongo.Database)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "MONGO")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "top-secret")
	t.Setenv("JWT_EXPIRE", "12h")
	t.Setenv("AUTH_RATE_LIMIT_WINDOW_SECONDS", "5")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, StorageDriverMongo, cfg.Storage.Driver)
	assert.Equal(t, "top-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "12h", cfg.Auth.JWTExpire)
	assert.Equal(t, 5*time.Second, cfg.RateLimit.Window())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "one")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{Driver: StorageDriverPostgres}}
	assert.Error(t, cfg.Validate())

	cfg.Postgres.DSN = "postgres://localhost/issues"
	assert.NoError(t, cfg.Validate())

	cfg.Storage.Driver = StorageDriverMongo
	assert.Error(t, cfg.Validate())

	cfg.Storage.Driver = "sqlite"
	assert.ErrorContains(t, cfg.Validate(), "unknown STORAGE_DRIVER")
}
