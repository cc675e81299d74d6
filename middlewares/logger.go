package middlewares

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gatlingbook/gatlingbook/internal"
)

// LoggerConfig configures the request logging middleware.
type LoggerConfig struct {
	Skip func(path string) bool // Paths not worth a log line
}

// LoggerOption configures LoggerConfig.
type LoggerOption func(*LoggerConfig)

// WithLoggerSkip skips logging for paths the function accepts.
func WithLoggerSkip(skip func(path string) bool) LoggerOption {
	return func(cfg *LoggerConfig) {
		cfg.Skip = skip
	}
}

// Logger returns middleware that writes one log line per request with the
// method, path, status, duration and the state the request ended in.
// Server errors are logged at error level, client errors at warn.
func Logger(opts ...LoggerOption) internal.Middleware {
	cfg := &LoggerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (internal.Outcome, error) {
			start := time.Now()
			out, err := next(c)

			path := c.Request().URL.Path
			if cfg.Skip != nil && cfg.Skip(path) {
				return out, err
			}

			status := out.StatusCode()
			if err != nil {
				status = internal.StatusOf(err)
			} else if status == 0 {
				status = c.ResponseWriter().Status()
			}

			// Responded is only set once the pipeline returns.
			state := c.State()
			if state != internal.StateHalted && c.Written() {
				state = internal.StateResponded
			}

			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			attrs := []slog.Attr{
				slog.String("method", c.Request().Method),
				slog.String("path", path),
				slog.Int("status", status),
				slog.Duration("duration", time.Since(start)),
				slog.String("state", state.String()),
				slog.Int64("size", c.ResponseWriter().Size()),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			c.Logger().LogAttrs(c, level, "request", attrs...)

			return out, err
		}
	}
}
