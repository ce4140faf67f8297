package jsontree_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-guesser/pkg/model"
	"github.com/goliatone/go-guesser/pkg/render"
	"github.com/goliatone/go-guesser/pkg/renderers/jsontree"
	"github.com/goliatone/go-guesser/pkg/testsupport"
)

func TestRenderDocument(t *testing.T) {
	records := testsupport.MustRecords(t, `{"title": "Emma", "id": 3}`)
	page := render.Page{
		View:     "show",
		Resource: "books",
		Root: model.Node{
			Component: "SimpleShowLayout",
			Tag:       model.TagForm,
			Children: []model.Node{
				{Component: "TextField", Tag: model.TagString, Props: model.Props{Source: "title"}},
			},
		},
		Records: []*model.Record{nil, records[0]},
		Snippet: "Guessed Show:",
	}

	out, err := jsontree.New().Render(context.Background(), page)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"view": "show",
		"resource": "books",
		"root": {
			"component": "SimpleShowLayout",
			"tag": "form",
			"props": {},
			"children": [
				{"component": "TextField", "tag": "string", "props": {"source": "title"}}
			]
		},
		"records": [{"title": "Emma", "id": 3}]
	}`, string(out))
	require.Contains(t, string(out), `{"title":"Emma","id":3}`, "record field order is kept")

	withSnippet, err := jsontree.New(jsontree.WithSnippet(true), jsontree.WithIndent("  ")).Render(context.Background(), page)
	require.NoError(t, err)
	require.Contains(t, string(withSnippet), `"snippet": "Guessed Show:"`)
}

func TestRenderEmptyPage(t *testing.T) {
	_, err := jsontree.New().Render(context.Background(), render.Page{})
	require.ErrorIs(t, err, render.ErrEmptyPage)
}
