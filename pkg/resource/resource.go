package resource

import (
	"fmt"
	"strings"
	"unicode"
)

// RelationshipKind enumerates the supported relationship types.
type RelationshipKind string

const (
	RelationshipBelongsTo RelationshipKind = "belongsTo"
	RelationshipHasOne    RelationshipKind = "hasOne"
	RelationshipHasMany   RelationshipKind = "hasMany"
)

const (
	CardinalityOne  = "one"
	CardinalityMany = "many"
)

// DefaultIdentifierField is used when a resource does not configure one.
const DefaultIdentifierField = "id"

// Relationship describes a foreign-key field pointing at another resource.
type Relationship struct {
	Kind        RelationshipKind `json:"type" yaml:"type"`
	Target      string           `json:"target" yaml:"target"`
	Cardinality string           `json:"cardinality,omitempty" yaml:"cardinality,omitempty"`
}

// ToMany reports whether the field holds several foreign keys.
func (r Relationship) ToMany() bool {
	return r.Cardinality == CardinalityMany
}

// Resource is the per-resource configuration consulted during detection.
type Resource struct {
	Name            string                  `json:"name" yaml:"name"`
	IdentifierField string                  `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	DisplayField    string                  `json:"display,omitempty" yaml:"display,omitempty"`
	Relationships   map[string]Relationship `json:"relationships,omitempty" yaml:"relationships,omitempty"`
}

// ParseRelationshipKind accepts the kind in any casing and with separators
// (belongs_to, has-many).
func ParseRelationshipKind(raw string) (RelationshipKind, bool) {
	switch normaliseKey(raw) {
	case "belongsto":
		return RelationshipBelongsTo, true
	case "hasone":
		return RelationshipHasOne, true
	case "hasmany":
		return RelationshipHasMany, true
	default:
		return "", false
	}
}

// Normalize validates the relationship and fills the cardinality derived from
// its kind when absent.
func (r Relationship) Normalize() (Relationship, error) {
	kind, ok := ParseRelationshipKind(string(r.Kind))
	if !ok {
		return Relationship{}, fmt.Errorf("resource: unknown relationship type %q", r.Kind)
	}
	target := strings.TrimSpace(r.Target)
	if target == "" {
		return Relationship{}, fmt.Errorf("resource: %s relationship has no target", kind)
	}

	cardinality := strings.ToLower(strings.TrimSpace(r.Cardinality))
	if cardinality == "" {
		cardinality = deriveCardinality(kind)
	}
	if cardinality != CardinalityOne && cardinality != CardinalityMany {
		return Relationship{}, fmt.Errorf("resource: invalid cardinality %q for %s relationship", r.Cardinality, kind)
	}

	return Relationship{Kind: kind, Target: target, Cardinality: cardinality}, nil
}

// Normalize trims names, validates relationships and returns a copy safe to
// share.
func (r Resource) Normalize() (Resource, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return Resource{}, fmt.Errorf("resource: name is required")
	}

	out := Resource{
		Name:            name,
		IdentifierField: strings.TrimSpace(r.IdentifierField),
		DisplayField:    strings.TrimSpace(r.DisplayField),
	}
	if len(r.Relationships) > 0 {
		out.Relationships = make(map[string]Relationship, len(r.Relationships))
		for field, rel := range r.Relationships {
			key := strings.TrimSpace(field)
			if key == "" {
				return Resource{}, fmt.Errorf("resource: %s declares a relationship with an empty field", name)
			}
			normalised, err := rel.Normalize()
			if err != nil {
				return Resource{}, fmt.Errorf("resource: %s.%s: %w", name, key, err)
			}
			out.Relationships[key] = normalised
		}
	}
	return out, nil
}

func deriveCardinality(kind RelationshipKind) string {
	switch kind {
	case RelationshipHasMany:
		return CardinalityMany
	case RelationshipBelongsTo, RelationshipHasOne:
		return CardinalityOne
	default:
		return ""
	}
}

func normaliseKey(raw string) string {
	var builder strings.Builder
	builder.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			builder.WriteRune(unicode.ToLower(r))
		}
	}
	return builder.String()
}
