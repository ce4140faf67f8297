package dataprovider_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-guesser/pkg/dataprovider"
	"github.com/goliatone/go-guesser/pkg/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE books (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			published BOOLEAN,
			author_id INTEGER,
			backlinks TEXT
		);
		INSERT INTO books (id, title, published, author_id, backlinks) VALUES
			(1, 'War and Peace', 1, 1, '[{"date": "2012-08-10", "url": "http://example.com"}]'),
			(2, 'Anna Karenina', 0, 1, NULL),
			(3, 'Emma', 1, 2, 'plain text');
		CREATE TABLE authors (id INTEGER PRIMARY KEY, name TEXT);
	`)
	require.NoError(t, err)
	return db
}

func TestSQLGetListColumnsInOrder(t *testing.T) {
	provider := dataprovider.NewSQL(setupTestDB(t))

	result, err := provider.GetList(context.Background(), "books", dataprovider.ListParams{
		PerPage: 2,
		Sort:    dataprovider.Sort{Field: "id", Order: "DESC"},
	})
	require.NoError(t, err)
	require.Equal(t, 3, result.Total)
	require.Len(t, result.Records, 2)
	require.Equal(t, []string{"id", "title", "published", "author_id", "backlinks"}, result.Records[0].Keys())

	title, _ := result.Records[0].Get("title")
	require.Equal(t, "Emma", title)
	backlinks, _ := result.Records[0].Get("backlinks")
	require.Equal(t, "plain text", backlinks)
}

func TestSQLDecodesJSONColumns(t *testing.T) {
	provider := dataprovider.NewSQL(setupTestDB(t))

	record, err := provider.GetOne(context.Background(), "books", 1)
	require.NoError(t, err)

	backlinks, _ := record.Get("backlinks")
	items, ok := backlinks.([]any)
	require.True(t, ok, "expected decoded array, got %T", backlinks)
	first, ok := items[0].(*model.Record)
	require.True(t, ok)
	require.Equal(t, []string{"date", "url"}, first.Keys())

	raw := dataprovider.NewSQL(setupTestDB(t), dataprovider.WithJSONColumns(false))
	record, err = raw.GetOne(context.Background(), "books", 1)
	require.NoError(t, err)
	backlinks, _ = record.Get("backlinks")
	require.IsType(t, "", backlinks)
}

func TestSQLGetOneNotFound(t *testing.T) {
	provider := dataprovider.NewSQL(setupTestDB(t))

	_, err := provider.GetOne(context.Background(), "books", 404)
	require.True(t, errors.Is(err, dataprovider.ErrNotFound))
	require.True(t, dataprovider.IsNotFound(err))
}

func TestSQLGetManyReference(t *testing.T) {
	provider := dataprovider.NewSQL(setupTestDB(t))

	result, err := provider.GetManyReference(context.Background(), "books", dataprovider.ManyReferenceParams{
		Target:     "author_id",
		ID:         1,
		ListParams: dataprovider.ListParams{Sort: dataprovider.Sort{Field: "id"}},
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.Total)
}

func TestSQLRejectsUnsafeIdentifiers(t *testing.T) {
	provider := dataprovider.NewSQL(setupTestDB(t))

	_, err := provider.GetList(context.Background(), "books; DROP TABLE books", dataprovider.ListParams{})
	require.True(t, errors.Is(err, dataprovider.ErrUnknownResource))

	_, err = provider.GetList(context.Background(), "books", dataprovider.ListParams{Filter: map[string]any{"title OR 1=1": "x"}})
	require.Error(t, err)

	_, err = provider.GetList(context.Background(), "books", dataprovider.ListParams{Sort: dataprovider.Sort{Field: "id desc"}})
	require.Error(t, err)
}

func TestSQLResourcesAndTableMapping(t *testing.T) {
	db := setupTestDB(t)
	provider := dataprovider.NewSQL(db, dataprovider.WithTable("writers", "authors"))

	names, err := provider.Resources(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"authors", "books"}, names)

	result, err := provider.GetList(context.Background(), "writers", dataprovider.ListParams{})
	require.NoError(t, err)
	require.Equal(t, 0, result.Total)
}
