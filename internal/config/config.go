// Package config loads the server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/gatlingbook/gatlingbook/pkg/db"
	"github.com/gatlingbook/gatlingbook/pkg/logger"
	"github.com/gatlingbook/gatlingbook/pkg/mailer/resend"
	"github.com/gatlingbook/gatlingbook/pkg/storage"
)

// Session store backends.
const (
	SessionMemory   = "memory"
	SessionRedis    = "redis"
	SessionPostgres = "postgres"
)

// ErrInvalid wraps every validation failure of Load.
var ErrInvalid = errors.New("config: invalid")

// Config holds every setting of the server.
type Config struct {
	Addr            string
	Env             string
	CookieSecret    string
	SessionStore    string
	SessionMaxAge   time.Duration
	ShutdownTimeout time.Duration

	DB    db.Config
	Redis string

	UserCacheTTL           time.Duration
	LoginAttemptsPerMinute int

	S3     storage.Config
	Resend resend.Config
	Log    logger.Config

	JobsMaxWorkers int
}

// Load reads the environment after an optional .env file in the working
// directory. Variables already set win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "development")

	dbCfg := db.DefaultConfig(getEnv("DATABASE_CONN_URL", ""))
	dbCfg.MaxOpenConns = int32(getEnvAsInt("DATABASE_MAX_OPEN_CONNS", int(dbCfg.MaxOpenConns)))
	dbCfg.MinConns = int32(getEnvAsInt("DATABASE_MIN_CONNS", int(dbCfg.MinConns)))
	dbCfg.RetryAttempts = getEnvAsInt("DATABASE_RETRY_ATTEMPTS", dbCfg.RetryAttempts)
	dbCfg.RetryInterval = getEnvAsDuration("DATABASE_RETRY_INTERVAL", dbCfg.RetryInterval)
	dbCfg.MigrationsTable = getEnv("DATABASE_MIGRATIONS_TABLE", dbCfg.MigrationsTable)

	cfg := &Config{
		Addr:            getEnv("APP_ADDR", ":8080"),
		Env:             env,
		CookieSecret:    getEnv("COOKIE_SECRET", ""),
		SessionStore:    strings.ToLower(getEnv("SESSION_STORE", SessionMemory)),
		SessionMaxAge:   getEnvAsDuration("SESSION_MAX_AGE", 7*24*time.Hour),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DB:    dbCfg,
		Redis: getEnv("REDIS_URL", ""),

		UserCacheTTL:           getEnvAsDuration("USER_CACHE_TTL", 5*time.Minute),
		LoginAttemptsPerMinute: getEnvAsInt("LOGIN_ATTEMPTS_PER_MINUTE", 10),

		S3: storage.Config{
			Bucket:    getEnv("S3_BUCKET", ""),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			Region:    getEnv("S3_REGION", "us-east-1"),
			PathStyle: getEnvAsBool("S3_PATH_STYLE", false),
		},
		Resend: resend.Config{
			APIKey:      getEnv("RESEND_API_KEY", ""),
			SenderEmail: getEnv("RESEND_FROM_EMAIL", "jobs@gatlingbook.local"),
			SenderName:  getEnv("RESEND_FROM_NAME", "Gatlingbook"),
		},
		Log: logger.Config{
			Level:       getEnv("LOG_LEVEL", "info"),
			Format:      getEnv("LOG_FORMAT", "json"),
			SentryDSN:   getEnv("SENTRY_DSN", ""),
			Environment: getEnv("SENTRY_ENVIRONMENT", env),
		},

		JobsMaxWorkers: getEnvAsInt("JOBS_MAX_WORKERS", 10),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that cannot fall back to a default.
func (c *Config) Validate() error {
	if len(c.CookieSecret) < 32 {
		return fmt.Errorf("%w: COOKIE_SECRET must be at least 32 bytes", ErrInvalid)
	}
	if c.DB.ConnectionString == "" {
		return fmt.Errorf("%w: DATABASE_CONN_URL is required", ErrInvalid)
	}

	switch c.SessionStore {
	case SessionMemory, SessionPostgres:
	case SessionRedis:
		if c.Redis == "" {
			return fmt.Errorf("%w: SESSION_STORE=redis needs REDIS_URL", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown SESSION_STORE %q", ErrInvalid, c.SessionStore)
	}
	return nil
}

// Production reports whether APP_ENV is production.
func (c *Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("90s", "5m").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}
