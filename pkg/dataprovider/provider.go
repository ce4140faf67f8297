// Package dataprovider fetches records for a resource. Guessers only need an
// array of records; the contract mirrors the getList / getOne /
// getManyReference calls of admin data providers.
package dataprovider

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/goliatone/go-guesser/pkg/model"
)

// ErrNotFound reports a missing record.
var ErrNotFound = errors.New("dataprovider: record not found")

// ErrUnknownResource reports a resource the provider has no data for.
var ErrUnknownResource = errors.New("dataprovider: unknown resource")

const (
	defaultPerPage = 10
	SortAsc        = "ASC"
	SortDesc       = "DESC"
)

// Sort orders a list by one field.
type Sort struct {
	Field string
	Order string
}

// ListParams selects a page of records.
type ListParams struct {
	Page    int
	PerPage int
	Sort    Sort
	Filter  map[string]any
}

// Range returns the zero-based, end-exclusive window selected by the params.
// Page defaults to 1 and PerPage to 10.
func (p ListParams) Range() (start, end int) {
	page := p.Page
	if page < 1 {
		page = 1
	}
	perPage := p.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	start = (page - 1) * perPage
	return start, start + perPage
}

// ManyReferenceParams lists the records of a resource pointing at ID through
// the Target field.
type ManyReferenceParams struct {
	ListParams
	Target string
	ID     any
}

// ListResult is a page of records plus the total matching count.
type ListResult struct {
	Records []*model.Record
	Total   int
}

// Provider is the data source consumed by guessers.
type Provider interface {
	GetList(ctx context.Context, resource string, params ListParams) (ListResult, error)
	GetOne(ctx context.Context, resource string, id any) (*model.Record, error)
	GetManyReference(ctx context.Context, resource string, params ManyReferenceParams) (ListResult, error)
}

// ResourceLister is implemented by providers that can enumerate resources.
type ResourceLister interface {
	Resources(ctx context.Context) ([]string, error)
}

// IdentifierResolver returns the identifier field of a resource.
// *resource.Registry satisfies it.
type IdentifierResolver interface {
	IdentifierField(resource string) string
}

func identifierField(resolver IdentifierResolver, resource string) string {
	if resolver != nil {
		if field := resolver.IdentifierField(resource); field != "" {
			return field
		}
	}
	return "id"
}

func withFilter(params ListParams, field string, value any) ListParams {
	filter := make(map[string]any, len(params.Filter)+1)
	for key, existing := range params.Filter {
		filter[key] = existing
	}
	filter[field] = value
	params.Filter = filter
	return params
}

func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sameValue(a, b any) bool {
	return cast.ToString(a) == cast.ToString(b)
}

func normalizeOrder(order string) string {
	if strings.EqualFold(strings.TrimSpace(order), SortDesc) {
		return SortDesc
	}
	return SortAsc
}
