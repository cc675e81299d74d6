package internal

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync/atomic"
)

// State is the position of a request in the dispatcher.
type State int32

// Request states. A request moves Received -> Filtering and then either
// halts or goes through Dispatching and Handling; every request ends in
// Responded.
const (
	StateReceived State = iota
	StateFiltering
	StateHalted
	StateDispatching
	StateHandling
	StateResponded
)

var stateNames = [...]string{"received", "filtering", "halted", "dispatching", "handling", "responded"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// stateTracker records the state changes of one request. The last state
// before Responded is kept so request logs can tell halted requests apart.
type stateTracker struct {
	current atomic.Int32
	final   atomic.Int32
}

func (t *stateTracker) set(s State) {
	if s != StateResponded {
		t.final.Store(int32(s))
	}
	t.current.Store(int32(s))
}

func (t *stateTracker) get() State {
	return State(t.current.Load())
}

func (t *stateTracker) last() State {
	return State(t.final.Load())
}

type route struct {
	handler HandlerFunc
	method  string
	pattern Pattern
}

type filter struct {
	fn      HandlerFunc
	pattern Pattern
}

// lookupResult tells why a lookup failed.
type lookupResult int

const (
	routeFound lookupResult = iota
	routeNotFound
	routeMethodNotAllowed
)

// routeTable holds routes and before-filters. It is written while the app
// is built and only read after Freeze.
type routeTable struct {
	routes  []route
	filters []filter
	frozen  bool
}

// Register adds a route. Registering after Freeze panics.
func (t *routeTable) Register(method, pattern string, h HandlerFunc) {
	if t.frozen {
		panic("internal: route registered after the app was built: " + method + " " + pattern)
	}
	if h == nil {
		panic("internal: nil handler for " + method + " " + pattern)
	}
	t.routes = append(t.routes, route{
		method:  strings.ToUpper(method),
		pattern: ParsePattern(pattern),
		handler: h,
	})
}

// Before adds a filter. Registering after Freeze panics.
func (t *routeTable) Before(pattern string, fn HandlerFunc) {
	if t.frozen {
		panic("internal: filter registered after the app was built: " + pattern)
	}
	if fn == nil {
		panic("internal: nil filter for " + pattern)
	}
	t.filters = append(t.filters, filter{pattern: ParsePattern(pattern), fn: fn})
}

// Freeze orders routes literal-first and makes the table read-only.
// The sort is stable, so among equally specific patterns the first
// registered wins.
func (t *routeTable) Freeze() {
	slices.SortStableFunc(t.routes, func(a, b route) int {
		return compareSpecificity(a.pattern, b.pattern)
	})
	t.frozen = true
}

// lookup finds the route for method and path.
func (t *routeTable) lookup(method, path string) (HandlerFunc, Params, lookupResult) {
	result := routeNotFound
	for _, r := range t.routes {
		params, ok := r.pattern.Match(path)
		if !ok {
			continue
		}
		if r.method != method {
			result = routeMethodNotAllowed
			continue
		}
		return r.handler, params, routeFound
	}
	return nil, nil, result
}

// allowed lists the methods registered for path.
func (t *routeTable) allowed(path string) []string {
	var methods []string
	for _, r := range t.routes {
		if _, ok := r.pattern.Match(path); ok && !slices.Contains(methods, r.method) {
			methods = append(methods, r.method)
		}
	}
	return methods
}

// dispatch runs the filter chain and the matching handler for c.
// It never returns Continue for a request that no handler produced.
func (t *routeTable) dispatch(c *requestContext) (Outcome, error) {
	path := c.request.URL.Path

	c.state.set(StateFiltering)
	for _, f := range t.filters {
		params, ok := f.pattern.Match(path)
		if !ok {
			continue
		}
		c.params = params
		out, err := f.fn(c)
		if err != nil {
			c.state.set(StateHalted)
			return Outcome{}, err
		}
		if out.Halts() {
			c.state.set(StateHalted)
			return out, nil
		}
	}

	c.state.set(StateDispatching)
	h, params, result := t.lookup(c.request.Method, path)
	switch result {
	case routeNotFound:
		return Respond(http.StatusNotFound, http.StatusText(http.StatusNotFound)), nil
	case routeMethodNotAllowed:
		c.SetHeader("Allow", strings.Join(t.allowed(path), ", "))
		return Respond(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed)), nil
	}

	c.params = params
	c.state.set(StateHandling)
	return h(c)
}
