package source_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-guesser/pkg/source"
)

func TestParse(t *testing.T) {
	cases := []struct {
		raw  string
		kind source.Kind
		loc  string
	}{
		{raw: "https://example.com/openapi.json", kind: source.KindURL, loc: "https://example.com/openapi.json"},
		{raw: "fs:config/resources.yaml", kind: source.KindFS, loc: "config/resources.yaml"},
		{raw: "./data//books.json", kind: source.KindFile, loc: "data/books.json"},
	}
	for _, tc := range cases {
		src, err := source.Parse(tc.raw)
		require.NoError(t, err, tc.raw)
		require.Equal(t, tc.kind, src.Kind(), tc.raw)
		require.Equal(t, tc.loc, src.Location(), tc.raw)
	}

	_, err := source.Parse("")
	require.Error(t, err)
	_, err = source.FromURL("ftp://example.com")
	require.Error(t, err)
}

func TestLoaderFileAndFS(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "books.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":1}]`), 0o644))

	loader := source.NewLoader(source.WithFileSystem(fstest.MapFS{
		"fixtures/authors.json": {Data: []byte(`[{"id":2}]`)},
	}))

	data, err := loader.Load(context.Background(), source.FromFile(path))
	require.NoError(t, err)
	require.Equal(t, `[{"id":1}]`, string(data))

	data, err = loader.Load(context.Background(), source.FromFS("fixtures/authors.json"))
	require.NoError(t, err)
	require.Equal(t, `[{"id":2}]`, string(data))
}

func TestLoaderHTTPDisabledByDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	src := source.MustURL(server.URL)

	_, err := source.NewLoader().Load(context.Background(), src)
	require.Error(t, err)

	data, err := source.NewLoader(source.WithHTTPFallback(0)).Load(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, `{"ok":true}`, string(data))

	data, err = source.NewLoader(source.WithHTTPClient(server.Client())).Load(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, `{"ok":true}`, string(data))
}

func TestLoaderHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := source.NewLoader().Load(ctx, source.FromFile("anything.json"))
	require.ErrorIs(t, err, context.Canceled)
}
