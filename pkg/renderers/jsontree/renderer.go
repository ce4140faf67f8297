// Package jsontree renders a guessed page as a JSON document for front-ends
// that draw the element tree themselves.
package jsontree

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-guesser/pkg/model"
	"github.com/goliatone/go-guesser/pkg/render"
)

// Name is the registry name of the JSON renderer.
const Name = "json"

// Document is the JSON shape written by the renderer. Records keep their
// field order.
type Document struct {
	View     string          `json:"view"`
	Resource string          `json:"resource"`
	Title    string          `json:"title,omitempty"`
	Root     model.Node      `json:"root"`
	Records  []*model.Record `json:"records"`
	Total    int             `json:"total,omitempty"`
	Snippet  string          `json:"snippet,omitempty"`
}

type Option func(*Renderer)

// WithIndent pretty prints documents with the given indent.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// WithSnippet includes the page snippet in the document.
func WithSnippet(enabled bool) Option {
	return func(r *Renderer) {
		r.snippet = enabled
	}
}

type Renderer struct {
	indent  string
	snippet bool
}

var _ render.Renderer = (*Renderer)(nil)

func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

func (r *Renderer) Render(_ context.Context, page render.Page) ([]byte, error) {
	if err := page.Validate(); err != nil {
		return nil, fmt.Errorf("jsontree renderer: %w", err)
	}

	doc := Document{
		View:     page.View,
		Resource: page.Resource,
		Title:    page.Title,
		Root:     page.Root,
		Records:  make([]*model.Record, 0, len(page.Records)),
		Total:    page.Total,
	}
	for _, record := range page.Records {
		if record != nil {
			doc.Records = append(doc.Records, record)
		}
	}
	if r.snippet {
		doc.Snippet = page.Snippet
	}

	var (
		out []byte
		err error
	)
	if r.indent != "" {
		out, err = json.MarshalIndent(doc, "", r.indent)
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("jsontree renderer: encode: %w", err)
	}
	return out, nil
}
