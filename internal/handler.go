package internal

// Handler declares routes and filters on a router.
//
// Example:
//
//	type AuthHandler struct {
//	    users *user.Service
//	}
//
//	func (h *AuthHandler) Routes(r internal.Router) {
//	    r.Before("/login", auth.RedirectIfAuthenticated("/"))
//	    r.GET("/login", h.showLogin)
//	    r.POST("/login", h.login)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature shared by route handlers and before-filters.
// A non-nil error is passed to the app error handler.
type HandlerFunc func(c Context) (Outcome, error)

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
// Global middleware sees the final outcome of the request, after filters
// and the handler ran.
//
// Example:
//
//	func Timing(next internal.HandlerFunc) internal.HandlerFunc {
//	    return func(c internal.Context) (internal.Outcome, error) {
//	        start := time.Now()
//	        out, err := next(c)
//	        c.Logger().Info("took", "duration", time.Since(start))
//	        return out, err
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler writes the response for an error returned by a filter,
// handler or middleware.
type ErrorHandler func(c Context, err error)
