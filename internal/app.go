package internal

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gatlingbook/gatlingbook/pkg/health"
	"github.com/gatlingbook/gatlingbook/pkg/job"
	"github.com/gatlingbook/gatlingbook/pkg/logger"
	"github.com/gatlingbook/gatlingbook/pkg/storage"
)

// Default server configuration.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App is the HTTP application: a chi mux for health and static endpoints
// in front of the route table that serves everything else.
type App struct {
	router         chi.Router
	routes         *routeTable
	pipeline       HandlerFunc
	errorHandler   ErrorHandler
	renderer       Renderer
	healthConfig   *healthConfig
	logger         *slog.Logger
	sessionManager *SessionManager
	jobs           job.Enqueuer
	worker         Worker
	storage        storage.Storage
	middlewares    []Middleware
	handlers       []Handler
	staticRoutes   []staticRoute
}

type staticRoute struct {
	handler http.Handler
	prefix  string
}

// New creates a new App. Handlers register their routes here; the route
// table is frozen before New returns.
func New(opts ...Option) *App {
	a := &App{
		router:       chi.NewRouter(),
		routes:       &routeTable{},
		logger:       logger.Discard(),
		errorHandler: DefaultErrorHandler,
	}

	for _, opt := range opts {
		opt(a)
	}

	// Inject app's logger into session manager
	if a.sessionManager != nil {
		a.sessionManager.SetLogger(a.logger)
	}

	a.setupRoutes()
	return a
}

// Router returns the http.Handler serving the app.
func (a *App) Router() http.Handler {
	return a.router
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Run starts the HTTP server and blocks until shutdown.
// A worker configured with WithJobs is started before serving and stopped
// after the server has drained.
//
// Example:
//
//	app := internal.New(
//	    internal.WithHandlers(handlers.NewAuth(users)),
//	)
//	if err := app.Run(":8080", internal.Logger(log)); err != nil {
//	    log.Error("server stopped", "error", err)
//	}
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	startupHooks := cfg.startupHooks
	shutdownHooks := cfg.shutdownHooks

	// Auto-register worker hooks if configured
	if a.worker != nil {
		startupHooks = append([]func(context.Context) error{a.worker.Start}, startupHooks...)
		shutdownHooks = append([]func(context.Context) error{a.worker.Stop}, shutdownHooks...)
	}

	log := cfg.logger
	if log == nil {
		log = a.logger
	}

	return runServer(runtimeConfig{
		handler:         a.router,
		address:         addr,
		logger:          log,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    startupHooks,
		shutdownHooks:   shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}

// setupRoutes registers handlers into the route table, freezes it and
// mounts the outer endpoints.
func (a *App) setupRoutes() {
	r := &tableRouter{table: a.routes}
	for _, h := range a.handlers {
		h.Routes(r)
	}
	a.routes.Freeze()

	a.pipeline = wrap(a.handle, a.middlewares...)

	// Mount static file handlers
	for _, sr := range a.staticRoutes {
		a.router.Handle(sr.prefix+"/*", sr.handler)
	}

	// Register health check endpoints
	if a.healthConfig != nil {
		a.router.Get(a.healthConfig.livenessPath, health.Live())
		a.router.Get(a.healthConfig.readinessPath,
			health.Ready(a.healthConfig.checks, a.healthConfig.options(a.logger)...))
	}

	a.router.HandleFunc("/*", a.serve)
	a.router.NotFound(a.serve)
	a.router.MethodNotAllowed(a.serve)
}

// serve is the entry point of every request that reaches the route table.
func (a *App) serve(w http.ResponseWriter, r *http.Request) {
	c := newContext(w, r, a)
	if _, err := a.pipeline(c); err != nil {
		a.errorHandler(c, err)
	}
	c.state.set(StateResponded)
}

// handle is the innermost pipeline step: filters, handler and the write of
// the resulting outcome.
func (a *App) handle(c Context) (Outcome, error) {
	rc, ok := c.(*requestContext)
	if !ok {
		return Outcome{}, ErrInternal("unexpected request context")
	}
	out, err := a.routes.dispatch(rc)
	if err != nil {
		return out, err
	}
	return out, a.write(rc, out)
}

// write sends the outcome to the client.
func (a *App) write(c *requestContext, out Outcome) error {
	switch out.Kind {
	case KindRedirect:
		http.Redirect(c.response, c.request, out.Location, out.Status)
	case KindRespond:
		writeText(c.response, out.Status, out.Body)
	case KindView:
		if a.renderer == nil {
			return ErrNoRenderer
		}
		body, err := a.renderer.Render(c, out.ViewName, out.Data)
		if err != nil {
			return err
		}
		c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
		c.response.WriteHeader(out.Status)
		_, err = c.response.Write(body)
		return err
	}
	return nil
}
