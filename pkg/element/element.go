package element

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-guesser/pkg/model"
	"github.com/goliatone/go-guesser/pkg/typemap"
)

var (
	// ErrUnregisteredTag reports a tag the type map has no entry for.
	ErrUnregisteredTag = errors.New("element: unregistered tag")
	// ErrNoRepresentation reports an entry without a representation function.
	ErrNoRepresentation = errors.New("element: no representation")
	// ErrNoComponent reports an entry without a component factory.
	ErrNoComponent = errors.New("element: no component")
)

// Element is an inferred element: a type map entry, the props resolved for it
// and its ordered children. Elements are immutable once built, so Render and
// Representation can be called any number of times.
type Element struct {
	tag      model.Tag
	entry    typemap.Entry
	props    model.Props
	children []*Element
}

// New builds an element from an already resolved entry. Nil children are
// dropped.
func New(tag model.Tag, entry typemap.Entry, props model.Props, children ...*Element) *Element {
	kept := make([]*Element, 0, len(children))
	for _, child := range children {
		if child != nil {
			kept = append(kept, child)
		}
	}
	return &Element{
		tag:      tag,
		entry:    entry,
		props:    props,
		children: kept,
	}
}

// Synthesize resolves tag against types and builds the element.
func Synthesize(types typemap.TypeMap, tag model.Tag, props model.Props, children ...*Element) (*Element, error) {
	entry, ok := types.Lookup(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s map (source %q)", ErrUnregisteredTag, tag, types.Name(), props.Source)
	}
	return New(tag, entry, props, children...), nil
}

// Tag returns the tag the element was synthesized for.
func (e *Element) Tag() model.Tag {
	return e.tag
}

// Props returns a copy of the element props.
func (e *Element) Props() model.Props {
	return e.props
}

// Children returns the child elements. The slice is a copy.
func (e *Element) Children() []*Element {
	return append([]*Element(nil), e.children...)
}

// Render builds the renderable node tree. It never consults representation
// functions, so a broken snippet never blocks rendering.
func (e *Element) Render() (model.Node, error) {
	if e.entry.Component == nil {
		return model.Node{}, fmt.Errorf("%w: %q (source %q)", ErrNoComponent, e.tag, e.props.Source)
	}
	nodes := make([]model.Node, 0, len(e.children))
	for _, child := range e.children {
		node, err := child.Render()
		if err != nil {
			return model.Node{}, err
		}
		nodes = append(nodes, node)
	}
	node := e.entry.Component(e.props, nodes)
	if node.Tag == model.TagUnknown {
		node.Tag = e.tag
	}
	return node, nil
}

// Representation composes the source snippet bottom-up from the children's
// representations.
func (e *Element) Representation() (string, error) {
	fragment, err := e.Fragment()
	if err != nil {
		return "", err
	}
	return fragment.Text, nil
}

// Fragment returns the element as seen by a parent representation.
func (e *Element) Fragment() (typemap.Fragment, error) {
	if e.entry.Representation == nil {
		return typemap.Fragment{}, fmt.Errorf("%w: %q (source %q)", ErrNoRepresentation, e.tag, e.props.Source)
	}
	fragments := make([]typemap.Fragment, 0, len(e.children))
	for _, child := range e.children {
		fragment, err := child.Fragment()
		if err != nil {
			return typemap.Fragment{}, err
		}
		fragments = append(fragments, fragment)
	}
	return typemap.Fragment{
		Props: e.props,
		Text:  e.entry.Representation(e.props, fragments),
	}, nil
}

// Walk visits the element and its descendants depth first.
func (e *Element) Walk(fn func(*Element)) {
	if e == nil || fn == nil {
		return
	}
	fn(e)
	for _, child := range e.children {
		child.Walk(fn)
	}
}
