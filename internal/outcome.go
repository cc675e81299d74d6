package internal

import "net/http"

// OutcomeKind tells the dispatcher how to finish a request.
type OutcomeKind int

const (
	// KindContinue lets the request proceed. From a handler it means the
	// response was already produced.
	KindContinue OutcomeKind = iota
	// KindRedirect answers with a 302 to Location.
	KindRedirect
	// KindRespond answers with Status and a plain text Body.
	KindRespond
	// KindView renders ViewName with Data through the app renderer.
	KindView
)

// Outcome is what filters and handlers return instead of writing the
// response themselves.
//
// Filters return Continue, Redirect or Respond; any outcome other than
// Continue halts the request. Handlers usually return View or Redirect.
type Outcome struct {
	Data     map[string]any
	Location string
	ViewName string
	Body     string
	Kind     OutcomeKind
	Status   int
}

// Continue lets the request fall through to the next filter or the handler.
func Continue() Outcome {
	return Outcome{Kind: KindContinue}
}

// Redirect halts the request with a 302 redirect to location.
func Redirect(location string) Outcome {
	return Outcome{Kind: KindRedirect, Location: location, Status: http.StatusFound}
}

// Respond halts the request with status and body. A zero status means 200.
func Respond(status int, body string) Outcome {
	if status == 0 {
		status = http.StatusOK
	}
	return Outcome{Kind: KindRespond, Status: status, Body: body}
}

// View renders the named view with data.
func View(name string, data map[string]any) Outcome {
	if data == nil {
		data = map[string]any{}
	}
	return Outcome{Kind: KindView, ViewName: name, Data: data, Status: http.StatusOK}
}

// Halts reports whether the outcome stops filter processing.
func (o Outcome) Halts() bool {
	return o.Kind != KindContinue
}

// StatusCode returns the status the outcome will be written with.
// Continue has no status of its own and reports 0.
func (o Outcome) StatusCode() int {
	if o.Kind == KindContinue {
		return 0
	}
	return o.Status
}
