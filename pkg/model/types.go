package model

import (
	"fmt"
	"slices"
	"strings"
)

// Tag is the closed enumeration of semantic field kinds assigned by the
// detector. The zero value is TagUnknown and is never valid.
type Tag uint8

const (
	TagUnknown Tag = iota
	TagID
	TagString
	TagNumber
	TagBoolean
	TagDate
	TagEmail
	TagURL
	TagRichText
	TagReference
	TagReferenceChild
	TagReferenceArray
	TagReferenceArrayChild
	TagArray
	TagForm

	tagCount
)

// NumTags sizes tables indexed by Tag.
const NumTags = int(tagCount)

var tagNames = [tagCount]string{
	TagUnknown:             "",
	TagID:                  "id",
	TagString:              "string",
	TagNumber:              "number",
	TagBoolean:             "boolean",
	TagDate:                "date",
	TagEmail:               "email",
	TagURL:                 "url",
	TagRichText:            "richText",
	TagReference:           "reference",
	TagReferenceChild:      "referenceChild",
	TagReferenceArray:      "referenceArray",
	TagReferenceArrayChild: "referenceArrayChild",
	TagArray:               "array",
	TagForm:                "form",
}

// Tags returns every valid tag in declaration order.
func Tags() []Tag {
	out := make([]Tag, 0, NumTags-1)
	for tag := TagUnknown + 1; tag < tagCount; tag++ {
		out = append(out, tag)
	}
	return out
}

// Valid reports whether t is one of the enumerated tags.
func (t Tag) Valid() bool {
	return t > TagUnknown && t < tagCount
}

func (t Tag) String() string {
	if t >= tagCount {
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
	return tagNames[t]
}

// ParseTag resolves a tag from its canonical name. Matching ignores case and
// surrounding whitespace so configuration files can write "richtext".
func ParseTag(name string) (Tag, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return TagUnknown, false
	}
	for tag := TagUnknown + 1; tag < tagCount; tag++ {
		if strings.EqualFold(tagNames[tag], trimmed) {
			return tag, true
		}
	}
	return TagUnknown, false
}

func (t Tag) MarshalText() ([]byte, error) {
	if t != TagUnknown && !t.Valid() {
		return nil, fmt.Errorf("model: invalid tag %d", uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *Tag) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*t = TagUnknown
		return nil
	}
	tag, ok := ParseTag(string(text))
	if !ok {
		return fmt.Errorf("model: unknown tag %q", string(text))
	}
	*t = tag
	return nil
}

// Props are the resolved properties of an inferred element. Source is the
// field path; the remaining values are set only for the tags that use them.
type Props struct {
	Source     string `json:"source,omitempty"`
	Reference  string `json:"reference,omitempty"`
	Target     string `json:"target,omitempty"`
	OptionText string `json:"optionText,omitempty"`
	Label      string `json:"label,omitempty"`
}

// Node is a renderable element produced by a type map component factory. View
// layers walk the tree; the Tag records which inferred element produced the
// node so renderers can format values without re-detecting them.
type Node struct {
	Component string `json:"component"`
	Tag       Tag    `json:"tag,omitempty"`
	Props     Props  `json:"props"`
	Children  []Node `json:"children,omitempty"`
}

// Walk visits n and its descendants depth first. Returning false from fn skips
// the children of the visited node.
func (n Node) Walk(fn func(Node) bool) {
	if fn == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Components lists the distinct component names used in the tree, sorted.
func (n Node) Components() []string {
	seen := make(map[string]struct{})
	n.Walk(func(node Node) bool {
		if name := strings.TrimSpace(node.Component); name != "" {
			seen[name] = struct{}{}
		}
		return true
	})
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
