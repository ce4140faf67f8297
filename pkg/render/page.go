package render

import (
	"errors"
	"strings"

	"github.com/goliatone/go-guesser/pkg/model"
)

// ErrEmptyPage is returned when a page carries no rendered tree.
var ErrEmptyPage = errors.New("render: page has no root node")

// Page is everything a renderer needs to draw one guessed view: the rendered
// element tree plus the records it was inferred from. Show and Edit pages
// carry a single record; List pages carry the fetched page of records.
type Page struct {
	View     string
	Resource string
	Title    string
	Root     model.Node
	Records  []*model.Record
	// Total is the size of the full result set for list pages.
	Total int
	// Snippet is the generated source for the view, when available.
	Snippet string
}

// Validate reports whether the page can be rendered.
func (p Page) Validate() error {
	if strings.TrimSpace(p.Root.Component) == "" {
		return ErrEmptyPage
	}
	return nil
}

// Record returns the first record of the page, or nil.
func (p Page) Record() *model.Record {
	for _, record := range p.Records {
		if record != nil {
			return record
		}
	}
	return nil
}

// Fields returns the direct children of the root layout, the nodes a
// renderer draws one row or column for.
func (p Page) Fields() []model.Node {
	return p.Root.Children
}
