package internal

import (
	"context"
	"errors"
)

// ErrNoRenderer is returned when a handler returns a View outcome but the
// app was built without WithRenderer.
var ErrNoRenderer = errors.New("internal: no renderer configured")

// Renderer turns a view name and its data into a response body.
// It must not depend on anything but its arguments.
type Renderer interface {
	Render(ctx context.Context, view string, data map[string]any) ([]byte, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, view string, data map[string]any) ([]byte, error)

func (f RendererFunc) Render(ctx context.Context, view string, data map[string]any) ([]byte, error) {
	return f(ctx, view, data)
}
