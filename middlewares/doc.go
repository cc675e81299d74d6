// Package middlewares provides the request middleware used by the gatlingbook
// web app.
//
// # Request ID
//
// RequestID assigns an ID to each request, reusing X-Request-ID from a proxy
// when present. Pair it with RequestIDExtractor so every log line written
// with the request context carries request_id:
//
//	log := logger.New(cfg, middlewares.RequestIDExtractor())
//	app := internal.New(
//	    internal.WithLogger(log),
//	    internal.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover
//
// Recover turns a panic in a filter, handler or view into a *PanicError.
// The default error handler answers it with 500.
//
// # Logger
//
// Logger writes one line per request after the response has been produced,
// including the final status and the request state (halted or responded).
//
// # Order
//
//	internal.WithMiddleware(
//	    middlewares.RequestID(), // first, so later logs carry the ID
//	    middlewares.Logger(),
//	    middlewares.Recover(),
//	)
package middlewares
