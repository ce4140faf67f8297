package guesser

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-guesser/pkg/typemap"
)

// ViewKind selects the admin view a guesser builds.
type ViewKind uint8

const (
	ViewShow ViewKind = iota + 1
	ViewEdit
	ViewList
)

// ParseViewKind accepts show, edit or list in any casing.
func ParseViewKind(raw string) (ViewKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "show":
		return ViewShow, nil
	case "edit":
		return ViewEdit, nil
	case "list":
		return ViewList, nil
	default:
		return 0, fmt.Errorf("guesser: unknown view kind %q", raw)
	}
}

// ViewKinds lists every view kind.
func ViewKinds() []ViewKind {
	return []ViewKind{ViewShow, ViewEdit, ViewList}
}

func (k ViewKind) String() string {
	switch k {
	case ViewShow:
		return "show"
	case ViewEdit:
		return "edit"
	case ViewList:
		return "list"
	default:
		return fmt.Sprintf("ViewKind(%d)", uint8(k))
	}
}

// Valid reports whether k is a known view kind.
func (k ViewKind) Valid() bool {
	return k >= ViewShow && k <= ViewList
}

// Component is the wrapping view component of generated snippets.
func (k ViewKind) Component() string {
	switch k {
	case ViewShow:
		return "Show"
	case ViewEdit:
		return "Edit"
	case ViewList:
		return "List"
	default:
		return ""
	}
}

// TypeMap returns the built-in type map for the view.
func (k ViewKind) TypeMap() typemap.TypeMap {
	switch k {
	case ViewEdit:
		return typemap.Edit()
	case ViewList:
		return typemap.List()
	default:
		return typemap.Show()
	}
}

// FetchesList reports whether the view samples a page of records rather than
// a single record.
func (k ViewKind) FetchesList() bool {
	return k == ViewList
}
