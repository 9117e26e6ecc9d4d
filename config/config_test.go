package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(envOf(map[string]string{"JWT_SECRET": "s3cret"}))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, []byte("s3cret"), cfg.JWTSecret)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, "var/todo.db", cfg.SQLitePath)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "*", cfg.CORSOrigin)
	assert.False(t, cfg.RedisEvents())
}

func TestLoad_MissingSecret(t *testing.T) {
	_, err := Load(envOf(map[string]string{"ADDR": ":8080"}))
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(envOf(map[string]string{
		"JWT_SECRET":    "s3cret",
		"ADDR":          ":9000",
		"BCRYPT_COST":   "12",
		"STORE_DRIVER":  "Redis",
		"REDIS_URL":     "redis://localhost:6379/0",
		"LOG_LEVEL":     "debug",
		"CORS_ORIGIN":   "http://localhost:5173",
		"EVENTS_STREAM": "redis",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, DriverRedis, cfg.StoreDriver)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "http://localhost:5173", cfg.CORSOrigin)
	assert.True(t, cfg.RedisEvents())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad cost", map[string]string{"BCRYPT_COST": "ten"}},
		{"negative cost", map[string]string{"BCRYPT_COST": "-1"}},
		{"bad level", map[string]string{"LOG_LEVEL": "loud"}},
		{"unknown driver", map[string]string{"STORE_DRIVER": "mongo"}},
		{"redis without url", map[string]string{"STORE_DRIVER": "redis"}},
		{"postgres without dsn", map[string]string{"STORE_DRIVER": "postgres"}},
		{"redis events without url", map[string]string{"EVENTS_STREAM": "redis"}},
		{"unknown events", map[string]string{"EVENTS_STREAM": "kafka"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.env["JWT_SECRET"] = "s3cret"
			_, err := Load(envOf(tt.env))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []byte("from-env"), cfg.JWTSecret)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "/tmp/x.db", cfg.SQLitePath)
}
