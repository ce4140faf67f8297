package template

import (
	"io"
)

// ViewRenderer draws one named view template ("show", "edit", "list") with
// the prepared view data. It is all the HTML view layer needs from an engine.
type ViewRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}

// TemplateRenderer is a full engine: view templates, inline fragments,
// custom filters and data shared by every template. Both the pongo2 Engine
// and the github.com/goliatone/go-template engine satisfy it.
type TemplateRenderer interface {
	ViewRenderer
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
