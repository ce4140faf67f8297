package resource

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-guesser/internal/naming"
)

const (
	relationshipExtensionKey = "x-relationships"
	guesserRelationshipKey   = "x-guesser-relationship"
	guesserResourceKey       = "x-guesser-resource"
	schemaRefPrefix          = "#/components/schemas/"
)

var relationshipKeyLookup = map[string]string{
	"type":        "type",
	"kind":        "type",
	"target":      "target",
	"cardinality": "cardinality",
	"foreignkey":  "foreignKey",
	"foreignid":   "foreignKey",
	"sourcefield": "foreignKey",
}

// FromOpenAPI derives resource configuration from the component schemas of
// an OpenAPI 3 document. Each object schema becomes a resource named after
// the pluralised schema name unless x-guesser-resource overrides it.
// Relationships come from the x-relationships or x-guesser-relationship
// property extensions; targets may be resource names, schema names or
// component $refs.
func FromOpenAPI(ctx context.Context, data []byte) (*Registry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("resource: openapi document is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("resource: load openapi document: %w", err)
	}

	reg := &Registry{resources: make(map[string]Resource)}
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return reg, nil
	}
	schemas := doc.Components.Schemas

	schemaNames := make([]string, 0, len(schemas))
	for name := range schemas {
		schemaNames = append(schemaNames, name)
	}
	sort.Strings(schemaNames)

	resourceBySchema := make(map[string]string, len(schemaNames))
	overrides := make(map[string]Resource, len(schemaNames))
	for _, name := range schemaNames {
		ref := schemas[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		override := resourceOverride(ref.Value.Extensions)
		if override.Name == "" {
			override.Name = naming.ResourceName(name)
		}
		resourceBySchema[name] = override.Name
		overrides[name] = override
	}

	resolveTarget := func(raw string) string {
		target := strings.TrimSpace(raw)
		if strings.HasPrefix(target, schemaRefPrefix) {
			target = strings.TrimPrefix(target, schemaRefPrefix)
		}
		if mapped, ok := resourceBySchema[target]; ok {
			return mapped
		}
		return target
	}

	for _, name := range schemaNames {
		ref := schemas[name]
		if ref == nil || ref.Value == nil || !isObjectSchema(ref.Value) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res := overrides[name]
		fields := make([]string, 0, len(ref.Value.Properties))
		for field := range ref.Value.Properties {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		for _, field := range fields {
			property := ref.Value.Properties[field]
			if property == nil || property.Value == nil {
				continue
			}
			rel, host, ok, err := relationshipFromExtensions(property.Value.Extensions)
			if err != nil {
				return nil, fmt.Errorf("resource: schema %s property %s: %w", name, field, err)
			}
			if !ok {
				continue
			}
			rel.Target = resolveTarget(rel.Target)
			if host == "" {
				host = field
			}
			if res.Relationships == nil {
				res.Relationships = make(map[string]Relationship)
			}
			res.Relationships[host] = rel
		}

		if err := reg.Register(res); err != nil {
			return nil, fmt.Errorf("resource: schema %s: %w", name, err)
		}
	}

	return reg, nil
}

func isObjectSchema(schema *openapi3.Schema) bool {
	if len(schema.Properties) > 0 {
		return true
	}
	if schema.Type == nil {
		return false
	}
	for _, value := range schema.Type.Slice() {
		if value == openapi3.TypeObject {
			return true
		}
	}
	return false
}

func resourceOverride(extensions map[string]any) Resource {
	raw, ok := extensions[guesserResourceKey]
	if !ok {
		return Resource{}
	}
	switch value := raw.(type) {
	case string:
		return Resource{Name: strings.TrimSpace(value)}
	case map[string]any:
		return Resource{
			Name:            stringValue(value["name"]),
			IdentifierField: stringValue(value["identifier"]),
			DisplayField:    stringValue(value["display"]),
		}
	default:
		return Resource{}
	}
}

// relationshipFromExtensions reads a relationship from property extensions.
// When the extension names a foreign key, the relationship is hosted on that
// sibling field instead of the annotated property.
func relationshipFromExtensions(extensions map[string]any) (Relationship, string, bool, error) {
	raw, ok := extensions[guesserRelationshipKey]
	if !ok {
		raw, ok = extensions[relationshipExtensionKey]
	}
	if !ok {
		return Relationship{}, "", false, nil
	}
	mapped, ok := raw.(map[string]any)
	if !ok || len(mapped) == 0 {
		return Relationship{}, "", false, nil
	}

	attrs := make(map[string]string, len(mapped))
	for key, value := range mapped {
		canonical, known := relationshipKeyLookup[normaliseKey(key)]
		if !known {
			continue
		}
		if text := stringValue(value); text != "" {
			attrs[canonical] = text
		}
	}

	rel, err := Relationship{
		Kind:        RelationshipKind(attrs["type"]),
		Target:      attrs["target"],
		Cardinality: attrs["cardinality"],
	}.Normalize()
	if err != nil {
		return Relationship{}, "", false, err
	}
	return rel, attrs["foreignKey"], true, nil
}

func stringValue(value any) string {
	text, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(text)
}
