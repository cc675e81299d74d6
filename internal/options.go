package internal

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gatlingbook/gatlingbook/pkg/cookie"
	"github.com/gatlingbook/gatlingbook/pkg/job"
	"github.com/gatlingbook/gatlingbook/pkg/session"
	"github.com/gatlingbook/gatlingbook/pkg/storage"
)

// Option configures the application.
type Option func(*App)

// Worker is a background job runner the app starts and stops with the
// server. *job.Manager implements it.
type Worker interface {
	job.Enqueuer
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided and wraps the whole
// filter and handler pipeline.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithStatic mounts a static file handler at the given prefix.
// Directory listings are disabled. Files are served with default cache headers.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	internal.New(
//	    internal.WithStatic("/static", assets, "public"),
//	)
func WithStatic(prefix string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		subFS, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(err)
		}

		prefix = "/" + strings.Trim(prefix, "/")
		fileServer := http.StripPrefix(prefix, http.FileServerFS(subFS))

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Block directory listings
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}

			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")

			fileServer.ServeHTTP(w, r)
		})

		a.staticRoutes = append(a.staticRoutes, staticRoute{handler: handler, prefix: prefix})
	}
}

// WithErrorHandler replaces DefaultErrorHandler.
//
// Example:
//
//	internal.WithErrorHandler(func(c internal.Context, err error) {
//	    c.Logger().ErrorContext(c, "request failed", "error", err)
//	    http.Error(c.Response(), "oops", internal.StatusOf(err))
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		if h != nil {
			a.errorHandler = h
		}
	}
}

// WithRenderer sets the renderer used for View outcomes.
func WithRenderer(r Renderer) Option {
	return func(a *App) {
		a.renderer = r
	}
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	internal.WithHealthChecks(
//	    internal.WithReadinessCheck("db", db.Healthcheck(pool)),
//	    internal.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := newHealthConfig()
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger sets the application logger.
//
// Example:
//
//	internal.New(
//	    internal.WithLogger(logger.New(cfg, middlewares.RequestIDExtractor())),
//	)
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithSession enables server-side sessions carried by a signed cookie.
// Sessions are loaded lazily and saved automatically before the response
// is written.
//
// Example:
//
//	cookies, _ := cookie.New(os.Getenv("COOKIE_SECRET"), cookie.WithSecure(true))
//	internal.New(
//	    internal.WithSession(session.NewPostgresStore(db.SQL(pool)), cookies,
//	        internal.WithSessionMaxAge(30*24*time.Hour),
//	    ),
//	)
func WithSession(store session.Store, cookies *cookie.Manager, opts ...SessionOption) Option {
	return func(a *App) {
		a.sessionManager = NewSessionManager(store, cookies, opts...)
	}
}

// WithJobs enables job enqueueing and worker processing. The worker is
// started before the server accepts requests and stopped during shutdown.
//
// Example:
//
//	jobs, _ := job.NewManager(pool,
//	    job.WithTask[tasks.ApplicationPayload](notify),
//	    job.WithScheduledTask(cleanup),
//	)
//	internal.New(
//	    internal.WithJobs(jobs),
//	)
func WithJobs(w Worker) Option {
	return func(a *App) {
		a.jobs = w
		a.worker = w
	}
}

// WithEnqueuer enables job enqueueing without worker processing, for web
// processes that leave the work to a separate worker.
func WithEnqueuer(e job.Enqueuer) Option {
	return func(a *App) {
		a.jobs = e
	}
}

// WithStorage configures file storage for the application.
// Enables c.Storage().
func WithStorage(s storage.Storage) Option {
	return func(a *App) {
		a.storage = s
	}
}
