package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record is an insertion-ordered mapping from field name to value. The zero
// value is an empty record ready for use through a pointer.
type Record struct {
	fields *orderedmap.OrderedMap[string, any]
}

// Pair is a single record field used by RecordOf.
type Pair struct {
	Key   string
	Value any
}

// KV builds a Pair.
func KV(key string, value any) Pair {
	return Pair{Key: key, Value: value}
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{fields: orderedmap.New[string, any]()}
}

// RecordOf builds a record from pairs, keeping their order. Later pairs
// overwrite earlier ones with the same key without moving them.
func RecordOf(pairs ...Pair) *Record {
	rec := NewRecord()
	for _, pair := range pairs {
		rec.Set(pair.Key, pair.Value)
	}
	return rec
}

// FromMap converts an unordered map into a record. Keys are sorted so the
// result is deterministic; nested maps and slices are converted as well.
func FromMap(values map[string]any) *Record {
	rec := NewRecord()
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		rec.Set(key, values[key])
	}
	return rec
}

// Set stores value under key. Plain maps are converted into nested records.
func (r *Record) Set(key string, value any) {
	if r.fields == nil {
		r.fields = orderedmap.New[string, any]()
	}
	r.fields.Set(key, normalizeValue(value))
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	if r == nil || r.fields == nil {
		return nil, false
	}
	return r.fields.Get(key)
}

// Has reports whether key is present, even with a nil value.
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil || r.fields == nil {
		return 0
	}
	return r.fields.Len()
}

// Keys returns field names in insertion order.
func (r *Record) Keys() []string {
	if r == nil || r.fields == nil {
		return nil
	}
	keys := make([]string, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Range calls fn for each field in order until fn returns false.
func (r *Record) Range(fn func(key string, value any) bool) {
	if r == nil || r.fields == nil || fn == nil {
		return
	}
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Lookup resolves a dot-separated path through nested records. Numeric
// segments index into arrays.
func (r *Record) Lookup(path string) (any, bool) {
	if r == nil {
		return nil, false
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, false
	}
	var current any = r
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case *Record:
			value, ok := node.Get(segment)
			if !ok {
				return nil, false
			}
			current = value
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// Map converts the record into plain Go values (map[string]any, []any) for
// consumers that do not care about field order.
func (r *Record) Map() map[string]any {
	if r == nil {
		return nil
	}
	out := make(map[string]any, r.Len())
	r.Range(func(key string, value any) bool {
		out[key] = plainValue(value)
		return true
	})
	return out
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := NewRecord()
	r.Range(func(key string, value any) bool {
		clone.fields.Set(key, cloneValue(value))
		return true
	})
	return clone
}

// MarshalJSON writes the fields in insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	var err error
	r.Range(func(key string, value any) bool {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		var encoded []byte
		if encoded, err = json.Marshal(key); err != nil {
			return false
		}
		buf.Write(encoded)
		buf.WriteByte(':')
		if encoded, err = json.Marshal(value); err != nil {
			err = fmt.Errorf("model: encode field %q: %w", key, err)
			return false
		}
		buf.Write(encoded)
		return true
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keeping key order at every nesting level.
// Numbers are kept as json.Number so identifiers never lose precision.
func (r *Record) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errors.New("model: record must be a JSON object")
	}
	raw := orderedmap.New[string, json.RawMessage]()
	if err := raw.UnmarshalJSON(trimmed); err != nil {
		return fmt.Errorf("model: decode record: %w", err)
	}
	fields := orderedmap.New[string, any]()
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		value, err := decodeValue(pair.Value)
		if err != nil {
			return fmt.Errorf("model: decode field %q: %w", pair.Key, err)
		}
		fields.Set(pair.Key, value)
	}
	r.fields = fields
	return nil
}

// DecodeRecords accepts a JSON object or an array of objects.
func DecodeRecords(data []byte) ([]*Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("model: empty record payload")
	}
	switch trimmed[0] {
	case '{':
		rec := &Record{}
		if err := rec.UnmarshalJSON(trimmed); err != nil {
			return nil, err
		}
		return []*Record{rec}, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("model: decode record list: %w", err)
		}
		out := make([]*Record, 0, len(items))
		for idx, item := range items {
			rec := &Record{}
			if err := rec.UnmarshalJSON(item); err != nil {
				return nil, fmt.Errorf("model: record %d: %w", idx, err)
			}
			out = append(out, rec)
		}
		return out, nil
	default:
		return nil, errors.New("model: records must be a JSON object or array")
	}
}

// DecodeValue decodes any JSON value into the types stored in records.
func DecodeValue(data []byte) (any, error) {
	return decodeValue(data)
}

func decodeValue(raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	switch trimmed[0] {
	case '{':
		rec := &Record{}
		if err := rec.UnmarshalJSON(trimmed); err != nil {
			return nil, err
		}
		return rec, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			value, err := decodeValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, value)
		}
		return out, nil
	case 'n':
		return nil, nil
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return s, nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return nil, err
		}
		return b, nil
	default:
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		var n json.Number
		if err := dec.Decode(&n); err != nil {
			return nil, err
		}
		return n, nil
	}
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return FromMap(v)
	case []map[string]any:
		out := make([]any, len(v))
		for idx, item := range v {
			out[idx] = FromMap(item)
		}
		return out
	case []*Record:
		out := make([]any, len(v))
		for idx, item := range v {
			out[idx] = item
		}
		return out
	case []any:
		out := make([]any, len(v))
		for idx, item := range v {
			out[idx] = normalizeValue(item)
		}
		return out
	default:
		return value
	}
}

func plainValue(value any) any {
	switch v := value.(type) {
	case *Record:
		return v.Map()
	case []any:
		out := make([]any, len(v))
		for idx, item := range v {
			out[idx] = plainValue(item)
		}
		return out
	default:
		return value
	}
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case *Record:
		return v.Clone()
	case []any:
		out := make([]any, len(v))
		for idx, item := range v {
			out[idx] = cloneValue(item)
		}
		return out
	default:
		return value
	}
}
