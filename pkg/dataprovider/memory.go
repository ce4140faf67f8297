package dataprovider

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/spf13/cast"

	"github.com/goliatone/go-guesser/pkg/model"
)

// Memory serves fixtures held in memory. It is safe for concurrent use and
// hands out clones so callers cannot mutate the fixtures.
type Memory struct {
	mu          sync.RWMutex
	data        map[string][]*model.Record
	identifiers IdentifierResolver
}

// MemoryOption customises a Memory provider.
type MemoryOption func(*Memory)

// WithMemoryIdentifiers sets how identifier fields are resolved per resource.
func WithMemoryIdentifiers(resolver IdentifierResolver) MemoryOption {
	return func(m *Memory) {
		m.identifiers = resolver
	}
}

// NewMemory builds a provider over data keyed by resource.
func NewMemory(data map[string][]*model.Record, opts ...MemoryOption) *Memory {
	m := &Memory{data: make(map[string][]*model.Record, len(data))}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	for resource, records := range data {
		m.Put(resource, records...)
	}
	return m
}

// LoadMemory decodes a JSON document of the form {"books": [{...}, ...]}
// keeping field order within every record.
func LoadMemory(data []byte, opts ...MemoryOption) (*Memory, error) {
	var doc model.Record
	if err := doc.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("dataprovider: decode fixtures: %w", err)
	}

	m := NewMemory(nil, opts...)
	var err error
	doc.Range(func(resource string, value any) bool {
		items, ok := value.([]any)
		if !ok {
			err = fmt.Errorf("dataprovider: fixtures for %q must be an array", resource)
			return false
		}
		records := make([]*model.Record, 0, len(items))
		for idx, item := range items {
			record, ok := item.(*model.Record)
			if !ok {
				err = fmt.Errorf("dataprovider: fixture %s[%d] is not an object", resource, idx)
				return false
			}
			records = append(records, record)
		}
		m.Put(resource, records...)
		return true
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Put appends records to resource.
func (m *Memory) Put(resource string, records ...*model.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[resource]; !ok {
		m.data[resource] = nil
	}
	for _, record := range records {
		if record != nil {
			m.data[resource] = append(m.data[resource], record.Clone())
		}
	}
}

// Resources lists the resources with fixtures, sorted.
func (m *Memory) Resources(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.data))
	for name := range m.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// GetList filters by equality, sorts and paginates the fixtures.
func (m *Memory) GetList(ctx context.Context, resource string, params ListParams) (ListResult, error) {
	if err := ctx.Err(); err != nil {
		return ListResult{}, err
	}
	m.mu.RLock()
	records, ok := m.data[resource]
	m.mu.RUnlock()
	if !ok {
		return ListResult{}, fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}

	matched := make([]*model.Record, 0, len(records))
	for _, record := range records {
		if matches(record, params.Filter) {
			matched = append(matched, record)
		}
	}
	if field := params.Sort.Field; field != "" {
		desc := normalizeOrder(params.Sort.Order) == SortDesc
		sort.SliceStable(matched, func(i, j int) bool {
			a, _ := matched[i].Lookup(field)
			b, _ := matched[j].Lookup(field)
			if desc {
				return less(b, a)
			}
			return less(a, b)
		})
	}

	start, end := params.Range()
	total := len(matched)
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	page := make([]*model.Record, 0, end-start)
	for _, record := range matched[start:end] {
		page = append(page, record.Clone())
	}
	return ListResult{Records: page, Total: total}, nil
}

// GetOne returns the record whose identifier equals id.
func (m *Memory) GetOne(ctx context.Context, resource string, id any) (*model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	records, ok := m.data[resource]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}
	field := identifierField(m.identifiers, resource)
	for _, record := range records {
		if value, ok := record.Get(field); ok && sameValue(value, id) {
			return record.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%v", ErrNotFound, resource, id)
}

// GetManyReference lists records whose Target field equals ID.
func (m *Memory) GetManyReference(ctx context.Context, resource string, params ManyReferenceParams) (ListResult, error) {
	if params.Target == "" {
		return ListResult{}, fmt.Errorf("dataprovider: many reference target is required")
	}
	return m.GetList(ctx, resource, withFilter(params.ListParams, params.Target, params.ID))
}

func matches(record *model.Record, filter map[string]any) bool {
	for _, key := range sortedKeys(filter) {
		value, ok := record.Lookup(key)
		if !ok || !sameValue(value, filter[key]) {
			return false
		}
	}
	return true
}

func less(a, b any) bool {
	af, aerr := cast.ToFloat64E(a)
	bf, berr := cast.ToFloat64E(b)
	if aerr == nil && berr == nil {
		return af < bf
	}
	return cast.ToString(a) < cast.ToString(b)
}
