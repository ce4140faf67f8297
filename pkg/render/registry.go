package render

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrRendererNotFound is returned when no renderer serves a format.
var ErrRendererNotFound = errors.New("render: renderer not found")

// Registry maps output formats, as named by the server's format query
// parameter and the CLI's --format flag, to renderers. Format names are
// case-insensitive. The first registered renderer answers an empty format
// until SetDefault picks another.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
	fallback  string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		renderers: make(map[string]Renderer),
	}
}

// Register adds renderer under its Name(). Duplicate formats return an error.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return fmt.Errorf("render: renderer is required")
	}
	format := normalizeFormat(renderer.Name())
	if format == "" {
		return fmt.Errorf("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[format]; exists {
		return fmt.Errorf("render: format %q already registered", format)
	}
	r.renderers[format] = renderer
	if r.fallback == "" {
		r.fallback = format
	}
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(renderers ...Renderer) {
	for _, renderer := range renderers {
		if err := r.Register(renderer); err != nil {
			panic(err)
		}
	}
}

// SetDefault picks the renderer answering an empty format.
func (r *Registry) SetDefault(format string) error {
	format = normalizeFormat(format)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.renderers[format]; !ok {
		return fmt.Errorf("%w: %q", ErrRendererNotFound, format)
	}
	r.fallback = format
	return nil
}

// Default returns the format used when none is requested.
func (r *Registry) Default() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fallback
}

// Resolve returns the renderer for format, or the default renderer when
// format is blank.
func (r *Registry) Resolve(format string) (Renderer, error) {
	format = normalizeFormat(format)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if format == "" {
		format = r.fallback
	}
	renderer, ok := r.renderers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRendererNotFound, format)
	}
	return renderer, nil
}

// RenderPage resolves format and renders page with it, returning the body
// and its content type.
func (r *Registry) RenderPage(ctx context.Context, format string, page Page) ([]byte, string, error) {
	renderer, err := r.Resolve(format)
	if err != nil {
		return nil, "", err
	}
	body, err := renderer.Render(ctx, page)
	if err != nil {
		return nil, "", err
	}
	return body, renderer.ContentType(), nil
}

// Formats returns the registered formats, sorted.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]string, 0, len(r.renderers))
	for format := range r.renderers {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// Has reports whether a renderer serves format.
func (r *Registry) Has(format string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.renderers[normalizeFormat(format)]
	return ok
}

func normalizeFormat(format string) string {
	return strings.ToLower(strings.TrimSpace(format))
}
