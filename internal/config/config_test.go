package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("COOKIE_SECRET", secret)
	t.Setenv("DATABASE_CONN_URL", "postgres://localhost/gatlingbook")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, SessionMemory, cfg.SessionStore)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, "schema_migrations", cfg.DB.MigrationsTable)
	assert.Equal(t, 3, cfg.DB.RetryAttempts)
	assert.False(t, cfg.S3.Enabled())
	assert.Empty(t, cfg.Resend.APIKey)
	assert.False(t, cfg.Production())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("COOKIE_SECRET", secret)
	t.Setenv("DATABASE_CONN_URL", "postgres://localhost/gatlingbook")
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_STORE", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "25")
	t.Setenv("DATABASE_RETRY_INTERVAL", "2s")
	t.Setenv("USER_CACHE_TTL", "1m")
	t.Setenv("S3_BUCKET", "resumes")
	t.Setenv("S3_ACCESS_KEY", "key")
	t.Setenv("S3_SECRET_KEY", "secret")
	t.Setenv("S3_PATH_STYLE", "true")
	t.Setenv("JOBS_MAX_WORKERS", "not a number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Production())
	assert.Equal(t, SessionRedis, cfg.SessionStore)
	assert.Equal(t, int32(25), cfg.DB.MaxOpenConns)
	assert.Equal(t, 2*time.Second, cfg.DB.RetryInterval)
	assert.Equal(t, time.Minute, cfg.UserCacheTTL)
	assert.True(t, cfg.S3.Enabled())
	assert.True(t, cfg.S3.PathStyle)
	assert.Equal(t, 10, cfg.JobsMaxWorkers, "unparsable values fall back")
	assert.Equal(t, "production", cfg.Log.Environment)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{CookieSecret: secret, SessionStore: SessionMemory}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"short secret", func(c *Config) { c.CookieSecret = "short" }, false},
		{"no database", func(c *Config) { c.DB.ConnectionString = "" }, false},
		{"redis without url", func(c *Config) { c.SessionStore = SessionRedis }, false},
		{"redis with url", func(c *Config) { c.SessionStore, c.Redis = SessionRedis, "redis://x" }, true},
		{"postgres", func(c *Config) { c.SessionStore = SessionPostgres }, true},
		{"unknown store", func(c *Config) { c.SessionStore = "file" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			c.DB.ConnectionString = "postgres://localhost/x"
			tt.mutate(c)

			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalid)
			}
		})
	}
}
