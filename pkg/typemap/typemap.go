package typemap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-guesser/pkg/model"
)

// ComponentFunc builds the renderable node for an inferred element from its
// resolved props and already rendered children.
type ComponentFunc func(props model.Props, children []model.Node) model.Node

// RepresentationFunc produces the source snippet for an element. It must be
// pure: the same props and fragments always yield the same text.
type RepresentationFunc func(props model.Props, children []Fragment) string

// Fragment is a child element as seen by a parent representation: its props
// plus its own representation text.
type Fragment struct {
	Props model.Props
	Text  string
}

// Entry binds a tag to the component factory and representation used for it.
type Entry struct {
	Component      ComponentFunc
	Representation RepresentationFunc
}

// ErrMissingEntries is returned by Validate when tags have no entry.
var ErrMissingEntries = errors.New("typemap: missing entries")

// TypeMap holds one entry slot per tag. It is a plain value: copies are
// independent, and With returns a modified copy instead of mutating shared
// state.
type TypeMap struct {
	name       string
	entries    [model.NumTags]Entry
	registered [model.NumTags]bool
}

// New builds a type map from entries keyed by tag. Invalid tags and entries
// without a component factory are rejected.
func New(name string, entries map[model.Tag]Entry) (TypeMap, error) {
	tm := TypeMap{name: strings.TrimSpace(name)}
	for tag, entry := range entries {
		if !tag.Valid() {
			return TypeMap{}, fmt.Errorf("typemap: %s: invalid tag %d", tm.name, uint8(tag))
		}
		if entry.Component == nil {
			return TypeMap{}, fmt.Errorf("typemap: %s: component for %q is nil", tm.name, tag)
		}
		tm.entries[tag] = entry
		tm.registered[tag] = true
	}
	return tm, nil
}

// MustNew panics when New fails. Built-in maps use it at construction time.
func MustNew(name string, entries map[model.Tag]Entry) TypeMap {
	tm, err := New(name, entries)
	if err != nil {
		panic(err)
	}
	return tm
}

// Name identifies the map (edit, show, list, or a caller supplied name).
func (m TypeMap) Name() string {
	return m.name
}

// Lookup returns the entry for tag. Unknown or unregistered tags report false
// and callers must guard.
func (m TypeMap) Lookup(tag model.Tag) (Entry, bool) {
	if !tag.Valid() || !m.registered[tag] {
		return Entry{}, false
	}
	return m.entries[tag], true
}

// Has reports whether tag has an entry.
func (m TypeMap) Has(tag model.Tag) bool {
	_, ok := m.Lookup(tag)
	return ok
}

// With returns a copy of the map with tag bound to entry. A nil component
// removes the binding.
func (m TypeMap) With(tag model.Tag, entry Entry) TypeMap {
	if !tag.Valid() {
		return m
	}
	if entry.Component == nil {
		m.entries[tag] = Entry{}
		m.registered[tag] = false
		return m
	}
	m.entries[tag] = entry
	m.registered[tag] = true
	return m
}

// Tags lists the registered tags in enumeration order.
func (m TypeMap) Tags() []model.Tag {
	var out []model.Tag
	for _, tag := range model.Tags() {
		if m.registered[tag] {
			out = append(out, tag)
		}
	}
	return out
}

// Validate checks that every required tag has an entry. With no arguments
// every tag of the enumeration is required.
func (m TypeMap) Validate(required ...model.Tag) error {
	if len(required) == 0 {
		required = model.Tags()
	}
	var missing []string
	for _, tag := range required {
		if !m.Has(tag) {
			missing = append(missing, tag.String())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s: %s", ErrMissingEntries, m.name, strings.Join(missing, ", "))
	}
	return nil
}

func leaf(component string) ComponentFunc {
	return func(props model.Props, _ []model.Node) model.Node {
		return model.Node{Component: component, Props: props}
	}
}

func container(component string) ComponentFunc {
	return func(props model.Props, children []model.Node) model.Node {
		return model.Node{Component: component, Props: props, Children: cloneNodes(children)}
	}
}

func wrapped(outer, inner string) ComponentFunc {
	return func(props model.Props, children []model.Node) model.Node {
		return model.Node{
			Component: outer,
			Props:     props,
			Children: []model.Node{
				{Component: inner, Children: cloneNodes(children)},
			},
		}
	}
}

func sourceTag(component string) RepresentationFunc {
	return func(props model.Props, _ []Fragment) string {
		return fmt.Sprintf(`<%s source="%s" />`, component, attr(props.Source))
	}
}

func layout(open, closing string) RepresentationFunc {
	return func(_ model.Props, children []Fragment) string {
		lines := make([]string, len(children))
		for idx, child := range children {
			lines[idx] = "            " + child.Text
		}
		return "        " + open + "\n" + strings.Join(lines, "\n") + "\n        " + closing
	}
}

func joined(children []Fragment, sep string) string {
	texts := make([]string, len(children))
	for idx, child := range children {
		texts[idx] = child.Text
	}
	return strings.Join(texts, sep)
}

func optionText(props model.Props) string {
	if text := strings.TrimSpace(props.OptionText); text != "" {
		return text
	}
	return "id"
}

func attr(value string) string {
	return strings.ReplaceAll(value, `"`, "&quot;")
}

func cloneNodes(nodes []model.Node) []model.Node {
	if len(nodes) == 0 {
		return nil
	}
	return append([]model.Node(nil), nodes...)
}
