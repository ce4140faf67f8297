package dataprovider_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-guesser/pkg/dataprovider"
	"github.com/goliatone/go-guesser/pkg/model"
	"github.com/goliatone/go-guesser/pkg/resource"
)

func loadLibrary(t *testing.T, opts ...dataprovider.MemoryOption) *dataprovider.Memory {
	t.Helper()
	data, err := os.ReadFile("testdata/library.json")
	require.NoError(t, err)
	provider, err := dataprovider.LoadMemory(data, opts...)
	require.NoError(t, err)
	return provider
}

func titles(records []*model.Record) []string {
	out := make([]string, 0, len(records))
	for _, record := range records {
		value, _ := record.Get("title")
		title, _ := value.(string)
		out = append(out, title)
	}
	return out
}

func TestMemoryGetListSortsAndPaginates(t *testing.T) {
	provider := loadLibrary(t)

	result, err := provider.GetList(context.Background(), "books", dataprovider.ListParams{
		Page:    1,
		PerPage: 2,
		Sort:    dataprovider.Sort{Field: "year", Order: "desc"},
	})
	require.NoError(t, err)
	require.Equal(t, 3, result.Total)
	require.Equal(t, []string{"Anna Karenina", "War and Peace"}, titles(result.Records))

	result, err = provider.GetList(context.Background(), "books", dataprovider.ListParams{Page: 2, PerPage: 2, Sort: dataprovider.Sort{Field: "year"}})
	require.NoError(t, err)
	require.Equal(t, []string{"Anna Karenina"}, titles(result.Records))
}

func TestMemoryKeepsFieldOrder(t *testing.T) {
	provider := loadLibrary(t)

	record, err := provider.GetOne(context.Background(), "books", "2")
	require.NoError(t, err)
	require.Equal(t, []string{"id", "title", "author_id", "year"}, record.Keys())
}

func TestMemoryGetOneNotFound(t *testing.T) {
	provider := loadLibrary(t)

	_, err := provider.GetOne(context.Background(), "books", 99)
	require.True(t, errors.Is(err, dataprovider.ErrNotFound))

	_, err = provider.GetOne(context.Background(), "magazines", 1)
	require.True(t, errors.Is(err, dataprovider.ErrUnknownResource))
}

func TestMemoryGetManyReference(t *testing.T) {
	provider := loadLibrary(t)

	result, err := provider.GetManyReference(context.Background(), "books", dataprovider.ManyReferenceParams{
		Target: "author_id",
		ID:     1,
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.Total)
	require.Equal(t, []string{"War and Peace", "Anna Karenina"}, titles(result.Records))
}

func TestMemoryReturnsClones(t *testing.T) {
	provider := loadLibrary(t)

	record, err := provider.GetOne(context.Background(), "authors", 1)
	require.NoError(t, err)
	record.Set("name", "changed")

	again, err := provider.GetOne(context.Background(), "authors", 1)
	require.NoError(t, err)
	name, _ := again.Get("name")
	require.Equal(t, "Leo Tolstoy", name)
}

func TestMemoryCustomIdentifier(t *testing.T) {
	reg, err := resource.NewRegistry(resource.Resource{Name: "books", IdentifierField: "title"})
	require.NoError(t, err)
	provider := loadLibrary(t, dataprovider.WithMemoryIdentifiers(reg))

	record, err := provider.GetOne(context.Background(), "books", "Pride and Prejudice")
	require.NoError(t, err)
	year, _ := record.Get("year")
	require.Equal(t, json.Number("1813"), year)
}

func TestMemoryResources(t *testing.T) {
	names, err := loadLibrary(t).Resources(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"authors", "books"}, names)
}

func TestLoadMemoryRejectsNonArrays(t *testing.T) {
	_, err := dataprovider.LoadMemory([]byte(`{"books": {"id": 1}}`))
	require.Error(t, err)
}
