package detect

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-guesser/internal/logging"
	"github.com/goliatone/go-guesser/internal/naming"
	"github.com/goliatone/go-guesser/pkg/model"
	"github.com/goliatone/go-guesser/pkg/resource"
)

// DefaultLongTextThreshold is the length above which a string is treated as
// rich text.
const DefaultLongTextThreshold = 200

// Resolver answers resource configuration questions for the detector.
// *resource.Registry satisfies it.
type Resolver interface {
	Relationship(resource, field string) (resource.Relationship, bool)
	IdentifierField(resource string) string
	DisplayField(resource string) string
}

// Inference is the outcome of detection for one field.
type Inference struct {
	Source     string
	Tag        model.Tag
	Reference  string
	OptionText string
	Children   []Inference
}

// Detector assigns a tag to every field of a record sample. A Detector holds
// no per-call state and may be shared.
type Detector struct {
	identifierField string
	resolver        Resolver
	foreignKeys     bool
	longText        int
	logger          logrus.FieldLogger
}

// Option customises a Detector.
type Option func(*Detector)

// WithIdentifierField forces the identifier field for every resource,
// overriding the resolver.
func WithIdentifierField(field string) Option {
	return func(d *Detector) {
		d.identifierField = strings.TrimSpace(field)
	}
}

// WithRelationships wires the resource configuration consulted for
// identifier fields, display fields and foreign keys.
func WithRelationships(resolver Resolver) Option {
	return func(d *Detector) {
		d.resolver = resolver
	}
}

// WithForeignKeyConvention toggles the <name>_id / <name>_ids naming
// convention for unconfigured foreign keys. It is on by default.
func WithForeignKeyConvention(enabled bool) Option {
	return func(d *Detector) {
		d.foreignKeys = enabled
	}
}

// WithLongTextThreshold sets the length above which strings become rich text.
// Non-positive values keep the default.
func WithLongTextThreshold(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.longText = n
		}
	}
}

// WithLogger sets the logger receiving per-field debug entries.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// New constructs a Detector.
func New(opts ...Option) *Detector {
	d := &Detector{
		foreignKeys: true,
		longText:    DefaultLongTextThreshold,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	d.logger = logging.OrDiscard(d.logger)
	return d
}

// Detect infers one tag per field across the union of keys of records, in
// first-seen order. Nil records are skipped. An empty sample yields nil.
func (d *Detector) Detect(resourceName string, records []*model.Record) []Inference {
	sample := compact(records)
	if len(sample) == 0 {
		return nil
	}

	keys := unionKeys(sample)
	out := make([]Inference, 0, len(keys))
	for _, key := range keys {
		values := make([]any, 0, len(sample))
		for _, record := range sample {
			value, _ := record.Get(key)
			values = append(values, value)
		}
		inference := d.detectTopLevel(resourceName, key, values)
		d.logger.WithFields(logrus.Fields{
			"resource": resourceName,
			"field":    inference.Source,
			"tag":      inference.Tag.String(),
		}).Debug("detect: field inferred")
		out = append(out, inference)
	}
	return out
}

func (d *Detector) identifierFor(resourceName string) string {
	if d.identifierField != "" {
		return d.identifierField
	}
	if d.resolver != nil {
		if field := d.resolver.IdentifierField(resourceName); field != "" {
			return field
		}
	}
	return resource.DefaultIdentifierField
}

func (d *Detector) displayFor(target string) string {
	if d.resolver == nil {
		return resource.DefaultIdentifierField
	}
	if field := d.resolver.DisplayField(target); field != "" {
		return field
	}
	return resource.DefaultIdentifierField
}

func (d *Detector) detectTopLevel(resourceName, name string, values []any) Inference {
	if name == d.identifierFor(resourceName) {
		return Inference{Source: name, Tag: model.TagID}
	}

	if d.resolver != nil {
		if rel, ok := d.resolver.Relationship(resourceName, name); ok {
			return d.relationshipInference(name, rel.Target, rel.ToMany())
		}
	}

	first, _ := firstDefined(values)
	if d.foreignKeys {
		switch {
		case strings.HasSuffix(name, "_ids") && len(name) > 4 && isScalarArray(first):
			return d.relationshipInference(name, naming.Plural(strings.TrimSuffix(name, "_ids")), true)
		case strings.HasSuffix(name, "_id") && len(name) > 3 && isScalar(first):
			return d.relationshipInference(name, naming.Plural(strings.TrimSuffix(name, "_id")), false)
		}
	}

	return d.detectValue(name, values)
}

func (d *Detector) relationshipInference(name, target string, many bool) Inference {
	child := Inference{Tag: model.TagReferenceChild, OptionText: d.displayFor(target)}
	tag := model.TagReference
	if many {
		child.Tag = model.TagReferenceArrayChild
		tag = model.TagReferenceArray
	}
	return Inference{
		Source:    name,
		Tag:       tag,
		Reference: target,
		Children:  []Inference{child},
	}
}

// detectValue applies the value based heuristics. Nested names are checked
// against the default identifier only.
func (d *Detector) detectValue(name string, values []any) Inference {
	first, ok := firstDefined(values)
	if !ok {
		return Inference{Source: name, Tag: model.TagString}
	}

	switch value := first.(type) {
	case []any:
		return d.detectArray(name, values)
	case *model.Record:
		return d.detectNested(name, values, value)
	case bool:
		return Inference{Source: name, Tag: model.TagBoolean}
	case time.Time, *time.Time:
		return Inference{Source: name, Tag: model.TagDate}
	case json.Number, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return Inference{Source: name, Tag: model.TagNumber}
	case string:
		return Inference{Source: name, Tag: d.detectString(name, value)}
	default:
		d.logger.WithField("field", name).Debugf("detect: unsupported value type %T, using string", first)
		return Inference{Source: name, Tag: model.TagString}
	}
}

// detectArray lets the first non-empty array decide. Scalar elements make the
// field a string; object elements make it an array over the union of keys of
// every object element in the sample.
func (d *Detector) detectArray(name string, values []any) Inference {
	lead, ok := firstNonEmptyArray(values)
	if !ok || !holdsRecords(lead) {
		return Inference{Source: name, Tag: model.TagString}
	}

	var nested []*model.Record
	for _, value := range values {
		items, ok := value.([]any)
		if !ok {
			continue
		}
		for _, item := range items {
			if record, ok := item.(*model.Record); ok && record != nil {
				nested = append(nested, record)
			}
		}
	}

	keys := unionKeys(nested)
	children := make([]Inference, 0, len(keys))
	for _, key := range keys {
		childValues := make([]any, 0, len(nested))
		for _, record := range nested {
			value, _ := record.Get(key)
			childValues = append(childValues, value)
		}
		if key == resource.DefaultIdentifierField {
			children = append(children, Inference{Source: key, Tag: model.TagID})
			continue
		}
		children = append(children, d.detectValue(key, childValues))
	}
	return Inference{Source: name, Tag: model.TagArray, Children: children}
}

// detectNested infers a nested record from its first key only, reported as
// name.leaf. The remaining keys of the nested record are not inferred.
func (d *Detector) detectNested(name string, values []any, first *model.Record) Inference {
	keys := first.Keys()
	if len(keys) == 0 {
		return Inference{Source: name, Tag: model.TagString}
	}
	leaf := keys[0]
	leafValues := make([]any, 0, len(values))
	for _, value := range values {
		record, ok := value.(*model.Record)
		if !ok || record == nil {
			leafValues = append(leafValues, nil)
			continue
		}
		nested, _ := record.Get(leaf)
		leafValues = append(leafValues, nested)
	}
	return d.detectValue(name+"."+leaf, leafValues)
}

func (d *Detector) detectString(name, value string) model.Tag {
	lowered := strings.ToLower(name)
	switch {
	case isDate(value):
		return model.TagDate
	case strings.Contains(lowered, "email") || emailPattern.MatchString(value):
		return model.TagEmail
	case strings.Contains(lowered, "url") || strings.Contains(lowered, "link") || schemePattern.MatchString(value):
		return model.TagURL
	case d.isRichText(lowered, value):
		return model.TagRichText
	default:
		return model.TagString
	}
}

func (d *Detector) isRichText(lowered, value string) bool {
	if len([]rune(value)) > d.longText {
		return true
	}
	if htmlPattern.MatchString(value) {
		return true
	}
	for _, hint := range richTextNames {
		if strings.Contains(lowered, hint) {
			return true
		}
	}
	return false
}

var richTextNames = []string{"body", "content", "description"}

func compact(records []*model.Record) []*model.Record {
	out := make([]*model.Record, 0, len(records))
	for _, record := range records {
		if record != nil {
			out = append(out, record)
		}
	}
	return out
}

func unionKeys(records []*model.Record) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, record := range records {
		for _, key := range record.Keys() {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	return keys
}

// firstDefined returns the first non-nil value in sample order.
func firstDefined(values []any) (any, bool) {
	for _, value := range values {
		if value == nil {
			continue
		}
		if record, ok := value.(*model.Record); ok && record == nil {
			continue
		}
		return value, true
	}
	return nil, false
}

func firstNonEmptyArray(values []any) ([]any, bool) {
	for _, value := range values {
		if items, ok := value.([]any); ok && len(items) > 0 {
			return items, true
		}
	}
	return nil, false
}

func holdsRecords(items []any) bool {
	for _, item := range items {
		if record, ok := item.(*model.Record); ok && record != nil {
			return true
		}
	}
	return false
}

func isScalar(value any) bool {
	switch value.(type) {
	case nil, []any, *model.Record, bool:
		return false
	default:
		return true
	}
}

func isScalarArray(value any) bool {
	items, ok := value.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if !isScalar(item) {
			return false
		}
	}
	return true
}
