package internal

import (
	"log/slog"
	"time"

	"github.com/gatlingbook/gatlingbook/pkg/health"
)

const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
	defaultHealthTimeout = 5 * time.Second
)

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
	timeout       time.Duration
}

func newHealthConfig() *healthConfig {
	return &healthConfig{
		livenessPath:  defaultLivenessPath,
		readinessPath: defaultReadinessPath,
		timeout:       defaultHealthTimeout,
		checks:        make(health.Checks),
	}
}

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithReadinessCheck adds a named readiness check.
// All checks run in parallel when the readiness endpoint is hit.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(cfg *healthConfig) {
		if name != "" && fn != nil {
			cfg.checks[name] = fn
		}
	}
}

// WithHealthPaths overrides the liveness and readiness paths.
func WithHealthPaths(live, ready string) HealthOption {
	return func(cfg *healthConfig) {
		if live != "" {
			cfg.livenessPath = live
		}
		if ready != "" {
			cfg.readinessPath = ready
		}
	}
}

// WithHealthTimeout bounds the time all readiness checks may take together.
func WithHealthTimeout(d time.Duration) HealthOption {
	return func(cfg *healthConfig) {
		if d > 0 {
			cfg.timeout = d
		}
	}
}

func (cfg *healthConfig) options(log *slog.Logger) []health.Option {
	return []health.Option{health.WithTimeout(cfg.timeout), health.WithLogger(log)}
}
