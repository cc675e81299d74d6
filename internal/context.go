package internal

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin/binding"

	"github.com/gatlingbook/gatlingbook/pkg/job"
	"github.com/gatlingbook/gatlingbook/pkg/session"
	"github.com/gatlingbook/gatlingbook/pkg/storage"
)

// Context is the per-request handle passed to filters, handlers and
// middleware. It also implements context.Context by delegating to the
// underlying request context.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the wrapped http.ResponseWriter.
	Response() http.ResponseWriter

	// ResponseWriter returns the wrapper for status and size inspection.
	ResponseWriter() *ResponseWriter

	// Param returns a named path segment of the pattern that matched the
	// running filter or handler. Returns "" if there is no such segment.
	Param(name string) string

	// Query returns the query parameter value by name.
	Query(name string) string

	// Form returns the form value by name.
	Form(name string) string

	// FormFile returns the first file for the given multipart form key.
	FormFile(name string) (multipart.File, *multipart.FileHeader, error)

	// Bind decodes the form body (urlencoded or multipart) into dst using
	// `form` struct tags. Failures wrap ErrDecode.
	Bind(dst any) error

	// Header returns the request header value by name.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// Session returns the request session, loading it from the cookie or
	// creating a fresh one on first access. Changes are saved before the
	// first response byte is written.
	// Returns session.ErrNotConfigured if WithSession was not used.
	Session() (*session.Session, error)

	// RotateSession replaces the session token, e.g. after login.
	RotateSession() error

	// DestroySession deletes the session and expires its cookie. A later
	// Session call starts a new one.
	DestroySession() error

	// Enqueue adds a task to the background queue.
	// Returns job.ErrNotConfigured if WithJobs was not used.
	Enqueue(name string, payload any, opts ...job.EnqueueOption) error

	// Storage returns the configured object storage.
	// Returns storage.ErrNotConfigured if WithStorage was not used.
	Storage() (storage.Storage, error)

	// Logger returns the app logger.
	Logger() *slog.Logger

	// Set stores a value in the request context, where log extractors can
	// see it.
	Set(key, value any)

	// Get retrieves a value from the request context.
	Get(key any) any

	// State returns the dispatcher state of the request.
	State() State

	// Written returns true if a response has already been written.
	Written() bool
}

// requestContext implements the Context interface.
type requestContext struct {
	request  *http.Request
	response *ResponseWriter
	logger   *slog.Logger
	sessions *SessionManager
	session  *session.Session
	jobs     job.Enqueuer
	storage  storage.Storage
	params   Params
	state    stateTracker

	sessionLoaded bool
	hookAttached  bool
}

// newContext creates a new context with the response wrapper.
func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	return &requestContext{
		request:  r,
		response: NewResponseWriter(w),
		logger:   app.logger,
		sessions: app.sessionManager,
		jobs:     app.jobs,
		storage:  app.storage,
	}
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.response
}

func (c *requestContext) ResponseWriter() *ResponseWriter {
	return c.response
}

func (c *requestContext) Param(name string) string {
	return c.params.Get(name)
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) Form(name string) string {
	return c.request.FormValue(name)
}

func (c *requestContext) FormFile(name string) (multipart.File, *multipart.FileHeader, error) {
	return c.request.FormFile(name)
}

func (c *requestContext) Bind(dst any) error {
	if err := binding.Form.Bind(c.request, dst); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) Deadline() (time.Time, bool) {
	return c.request.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.request.Context().Done()
}

func (c *requestContext) Err() error {
	return c.request.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Logger() *slog.Logger {
	return c.logger
}

func (c *requestContext) Set(key, value any) {
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) State() State {
	return c.state.get()
}

func (c *requestContext) Written() bool {
	return c.response.Written()
}

// attachSessionHook saves the session right before the response starts.
func (c *requestContext) attachSessionHook() {
	if c.hookAttached {
		return
	}
	c.hookAttached = true
	c.response.OnBeforeWrite(func() {
		if c.session == nil {
			return
		}
		// Best effort: the response is already on its way.
		if err := c.sessions.Save(c, c.response.ResponseWriter, c.session); err != nil {
			c.logger.ErrorContext(c, "failed to save session", slog.Any("error", err))
		}
	})
}

func (c *requestContext) Session() (*session.Session, error) {
	if c.sessions == nil {
		return nil, session.ErrNotConfigured
	}
	c.attachSessionHook()

	if c.sessionLoaded && c.session != nil {
		return c.session, nil
	}

	if !c.sessionLoaded {
		sess, err := c.sessions.Load(c, c.request)
		if err != nil {
			return nil, err
		}
		c.sessionLoaded = true
		c.session = sess
		if sess != nil {
			return sess, nil
		}
	}

	sess, err := c.sessions.New(c.request)
	if err != nil {
		return nil, err
	}
	c.session = sess
	return sess, nil
}

func (c *requestContext) RotateSession() error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	return c.sessions.Rotate(sess)
}

func (c *requestContext) DestroySession() error {
	if c.sessions == nil {
		return session.ErrNotConfigured
	}
	if !c.sessionLoaded {
		if _, err := c.Session(); err != nil {
			return err
		}
	}
	if err := c.sessions.Destroy(c, c.response, c.session); err != nil {
		return err
	}
	c.session = nil
	return nil
}

func (c *requestContext) Enqueue(name string, payload any, opts ...job.EnqueueOption) error {
	if c.jobs == nil {
		return job.ErrNotConfigured
	}
	return c.jobs.Enqueue(c, name, payload, opts...)
}

func (c *requestContext) Storage() (storage.Storage, error) {
	if c.storage == nil {
		return nil, storage.ErrNotConfigured
	}
	return c.storage, nil
}
