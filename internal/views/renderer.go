// Package views renders the HTML pages as templ components.
package views

//go:generate templ generate

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/a-h/templ"
)

// View names returned by handlers.
const (
	Timeline    = "timeline"
	Login       = "login"
	Register    = "register"
	Application = "application"
)

// ErrUnknownView is returned for a view name without a page.
var ErrUnknownView = errors.New("views: unknown view")

type page func(data map[string]any) templ.Component

// Renderer maps view names to pages. It implements internal.Renderer.
type Renderer struct {
	pages map[string]page
}

// NewRenderer returns a renderer with every page registered.
func NewRenderer() *Renderer {
	return &Renderer{pages: map[string]page{
		Timeline:    timelinePage,
		Login:       loginPage,
		Register:    registerPage,
		Application: applicationPage,
	}}
}

// Render writes the named page with data into a buffer.
func (r *Renderer) Render(ctx context.Context, view string, data map[string]any) ([]byte, error) {
	p, ok := r.pages[view]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownView, view)
	}

	var buf bytes.Buffer
	if err := p(data).Render(ctx, &buf); err != nil {
		return nil, fmt.Errorf("views: render %s: %w", view, err)
	}
	return buf.Bytes(), nil
}

// value returns data[key] as T, or the zero value.
func value[T any](data map[string]any, key string) T {
	v, _ := data[key].(T)
	return v
}
