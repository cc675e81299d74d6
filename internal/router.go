package internal

import (
	"net/http"
	"slices"
)

// Router is the interface handlers use to declare routes and filters.
// Registration is only possible while the app is being built.
type Router interface {
	// GET registers a handler for GET requests.
	GET(path string, h HandlerFunc, mw ...Middleware)

	// POST registers a handler for POST requests.
	POST(path string, h HandlerFunc, mw ...Middleware)

	// Handle registers a handler for an arbitrary method.
	Handle(method, path string, h HandlerFunc, mw ...Middleware)

	// Before registers a filter that runs, for any method, ahead of the
	// handler of every request whose path matches pattern. Filters run in
	// registration order.
	Before(pattern string, filter HandlerFunc)
}

// tableRouter implements Router on top of a routeTable.
type tableRouter struct {
	table *routeTable
}

func (r *tableRouter) GET(path string, h HandlerFunc, mw ...Middleware) {
	r.Handle(http.MethodGet, path, h, mw...)
}

func (r *tableRouter) POST(path string, h HandlerFunc, mw ...Middleware) {
	r.Handle(http.MethodPost, path, h, mw...)
}

func (r *tableRouter) Handle(method, path string, h HandlerFunc, mw ...Middleware) {
	r.table.Register(method, path, wrap(h, mw...))
}

func (r *tableRouter) Before(pattern string, filter HandlerFunc) {
	r.table.Before(pattern, filter)
}

// wrap applies route middleware so that the first one listed runs first.
func wrap(h HandlerFunc, mw ...Middleware) HandlerFunc {
	mw = slices.Clone(mw)
	slices.Reverse(mw)
	for _, m := range mw {
		h = m(h)
	}
	return h
}
