package render

import (
	"context"
	"errors"
)

// FormatSnippet names the renderer answering with the guessed source only.
const FormatSnippet = "snippet"

// ErrNoSnippet is returned by the snippet renderer for pages without one.
var ErrNoSnippet = errors.New("render: page has no snippet")

// SnippetRenderer writes the page's generated source as plain text.
type SnippetRenderer struct{}

var _ Renderer = SnippetRenderer{}

func (SnippetRenderer) Name() string        { return FormatSnippet }
func (SnippetRenderer) ContentType() string { return "text/plain; charset=utf-8" }

func (SnippetRenderer) Render(_ context.Context, page Page) ([]byte, error) {
	if page.Snippet == "" {
		return nil, ErrNoSnippet
	}
	return []byte(page.Snippet), nil
}
