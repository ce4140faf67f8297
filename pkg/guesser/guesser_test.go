package guesser_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-guesser/pkg/dataprovider"
	"github.com/goliatone/go-guesser/pkg/detect"
	"github.com/goliatone/go-guesser/pkg/element"
	"github.com/goliatone/go-guesser/pkg/guesser"
	"github.com/goliatone/go-guesser/pkg/model"
	"github.com/goliatone/go-guesser/pkg/resource"
	"github.com/goliatone/go-guesser/pkg/testsupport"
	"github.com/goliatone/go-guesser/pkg/typemap"
)

const warAndPeace = `{"id": 1, "title": "War and Peace", "published": true, "year": 1869, "website": "https://example.com"}`

func sources(node model.Node) []string {
	var out []string
	node.Walk(func(n model.Node) bool {
		if n.Props.Source != "" {
			out = append(out, n.Props.Source)
		}
		return true
	})
	return out
}

func TestShowGuesserEndToEnd(t *testing.T) {
	logger, hook := testsupport.NewLogger()
	g, err := guesser.New(guesser.ViewShow, guesser.WithLogger(logger))
	require.NoError(t, err)
	g.SetResource("books")

	applied, err := g.Apply(g.Begin(), testsupport.MustRecords(t, warAndPeace))
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, guesser.StateReady, g.State())

	got := detect.Tags(g.Inferences())
	want := []model.Tag{model.TagID, model.TagString, model.TagBoolean, model.TagNumber, model.TagURL}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}

	node, ok := g.Node()
	require.True(t, ok)
	require.Equal(t, "SimpleShowLayout", node.Component)
	require.Equal(t, []string{"id", "title", "published", "year", "website"}, sources(node))

	snippet, err := g.Snippet()
	require.NoError(t, err)
	for _, fragment := range []string{
		`<TextField source="title" />`,
		`<BooleanField source="published" />`,
		`<NumberField source="year" />`,
		`<UrlField source="website" />`,
	} {
		require.Contains(t, snippet, fragment)
	}

	golden := "testdata/book_show.snippet"
	if testsupport.WriteMaybeGolden(t, golden, []byte(snippet)) {
		return
	}
	if diff := cmp.Diff(testsupport.MustReadGoldenString(t, golden), snippet); diff != "" {
		t.Fatalf("snippet mismatch (-want +got):\n%s", diff)
	}

	entries := testsupport.EntriesWithMessage(hook, snippet)
	require.Len(t, entries, 1, "snippet must be logged exactly once")
	require.Equal(t, logrus.InfoLevel, entries[0].Level)
	require.Equal(t, "books", entries[0].Data["resource"])
	require.Equal(t, "show", entries[0].Data["view"])
	require.Equal(t, g.ID(), entries[0].Data["guesser"])
}

func TestSnippetLoggedOncePerResourceAndSample(t *testing.T) {
	logger, hook := testsupport.NewLogger()
	g, err := guesser.New(guesser.ViewShow, guesser.WithLogger(logger))
	require.NoError(t, err)
	g.SetResource("books")

	records := testsupport.MustRecords(t, warAndPeace)
	applied, err := g.Apply(g.Begin(), records)
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = g.Apply(g.Begin(), records)
	require.NoError(t, err)
	require.False(t, applied, "ready guesser ignores further samples")

	snippet, err := g.Snippet()
	require.NoError(t, err)
	require.Len(t, testsupport.EntriesWithMessage(hook, snippet), 1)
}

func TestProductionSkipsSnippetLog(t *testing.T) {
	logger, hook := testsupport.NewLogger()
	g, err := guesser.New(guesser.ViewShow, guesser.WithLogger(logger), guesser.WithProduction(true))
	require.NoError(t, err)
	g.SetResource("books")

	_, err = g.Apply(g.Begin(), testsupport.MustRecords(t, warAndPeace))
	require.NoError(t, err)

	for _, entry := range hook.AllEntries() {
		require.NotEqual(t, logrus.InfoLevel, entry.Level, "unexpected info entry %q", entry.Message)
	}
	snippet, err := g.Snippet()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(snippet, "Guessed Show:"))
}

func TestResourceSwitchClearsTree(t *testing.T) {
	g, err := guesser.New(guesser.ViewShow)
	require.NoError(t, err)
	g.SetResource("books")

	_, err = g.Apply(g.Begin(), testsupport.MustRecords(t, warAndPeace))
	require.NoError(t, err)
	booksNode, ok := g.Node()
	require.True(t, ok)
	require.Contains(t, sources(booksNode), "title")
	require.Len(t, g.Sample(), 1)

	g.SetResource("authors")
	require.Equal(t, guesser.StateIdle, g.State())
	_, ok = g.Node()
	require.False(t, ok, "tree must be discarded on resource switch")
	require.Empty(t, g.Inferences())
	require.Empty(t, g.Sample())
	_, err = g.Snippet()
	require.ErrorIs(t, err, guesser.ErrNotReady)

	_, err = g.Apply(g.Begin(), testsupport.MustRecords(t, `{"id": 7, "name": "Leo Tolstoy", "born": "1828-09-09"}`))
	require.NoError(t, err)
	authorsNode, ok := g.Node()
	require.True(t, ok)
	require.Equal(t, []string{"id", "name", "born"}, sources(authorsNode))
	for _, stale := range []string{"title", "published", "year", "website"} {
		require.NotContains(t, sources(authorsNode), stale)
	}

	snippet, err := g.Snippet()
	require.NoError(t, err)
	require.Contains(t, snippet, "export const AuthorShow = () => (")
	require.NotContains(t, snippet, "title")
}

func TestSetSameResourceKeepsTree(t *testing.T) {
	g, err := guesser.New(guesser.ViewShow)
	require.NoError(t, err)
	g.SetResource("books")
	_, err = g.Apply(g.Begin(), testsupport.MustRecords(t, warAndPeace))
	require.NoError(t, err)

	g.SetResource("books")
	require.Equal(t, guesser.StateReady, g.State())
}

func TestStaleTicketIsDropped(t *testing.T) {
	g, err := guesser.New(guesser.ViewShow)
	require.NoError(t, err)
	g.SetResource("books")

	ticket := g.Begin()
	require.Equal(t, "books", ticket.Resource())
	g.SetResource("authors")

	applied, err := g.Apply(ticket, testsupport.MustRecords(t, warAndPeace))
	require.NoError(t, err)
	require.False(t, applied)
	require.Equal(t, guesser.StateIdle, g.State())

	// Switching back does not revive the old ticket either.
	g.SetResource("books")
	applied, err = g.Apply(ticket, testsupport.MustRecords(t, warAndPeace))
	require.NoError(t, err)
	require.False(t, applied)
}

func TestEmptySampleStaysIdle(t *testing.T) {
	g, err := guesser.New(guesser.ViewList)
	require.NoError(t, err)
	g.SetResource("books")

	applied, err := g.Apply(g.Begin(), nil)
	require.NoError(t, err)
	require.False(t, applied)
	require.Equal(t, guesser.StateIdle, g.State())

	applied, err = g.Apply(g.Begin(), []*model.Record{nil})
	require.NoError(t, err)
	require.False(t, applied)
}

func TestCloseRejectsSamples(t *testing.T) {
	g, err := guesser.New(guesser.ViewShow)
	require.NoError(t, err)
	g.SetResource("books")
	ticket := g.Begin()
	g.Close()

	applied, err := g.Apply(ticket, testsupport.MustRecords(t, warAndPeace))
	require.NoError(t, err, "tickets issued before Close are stale")
	require.False(t, applied)

	_, err = g.Apply(g.Begin(), testsupport.MustRecords(t, warAndPeace))
	require.ErrorIs(t, err, guesser.ErrClosed)
	_, err = g.Load(context.Background(), dataprovider.NewMemory(nil), guesser.Query{ID: 1})
	require.ErrorIs(t, err, guesser.ErrClosed)
	_, err = g.Snippet()
	require.ErrorIs(t, err, guesser.ErrClosed)

	g.SetResource("authors")
	require.Equal(t, guesser.StateClosed, g.State())
}

func TestSnippetFailureDoesNotBreakRendering(t *testing.T) {
	show := typemap.Show()
	entry, _ := show.Lookup(model.TagURL)
	types := show.With(model.TagURL, typemap.Entry{Component: entry.Component})

	logger, hook := testsupport.NewLogger()
	g, err := guesser.New(guesser.ViewShow, guesser.WithTypeMap(types), guesser.WithLogger(logger))
	require.NoError(t, err)
	g.SetResource("books")

	applied, err := g.Apply(g.Begin(), testsupport.MustRecords(t, warAndPeace))
	require.NoError(t, err)
	require.True(t, applied)

	node, ok := g.Node()
	require.True(t, ok)
	require.Contains(t, node.Components(), "UrlField")

	_, err = g.Snippet()
	require.ErrorIs(t, err, element.ErrNoRepresentation)
	require.Len(t, testsupport.EntriesWithMessage(hook, "guesser: snippet generation failed"), 1)
}

func TestUnregisteredTagIsConfigurationError(t *testing.T) {
	types := typemap.Show().With(model.TagURL, typemap.Entry{})
	g, err := guesser.New(guesser.ViewShow, guesser.WithTypeMap(types))
	require.NoError(t, err)
	g.SetResource("books")

	_, err = g.Apply(g.Begin(), testsupport.MustRecords(t, warAndPeace))
	require.ErrorIs(t, err, element.ErrUnregisteredTag)
	require.Equal(t, guesser.StateIdle, g.State())
}

func TestNewRejectsTypeMapWithoutForm(t *testing.T) {
	types := typemap.Show().With(model.TagForm, typemap.Entry{})
	_, err := guesser.New(guesser.ViewShow, guesser.WithTypeMap(types))
	require.Error(t, err)

	_, err = guesser.New(guesser.ViewKind(9))
	require.Error(t, err)
}

func TestEditGuesserReferenceSnippet(t *testing.T) {
	reg, err := resource.NewRegistry(resource.Resource{
		Name: "books",
		Relationships: map[string]resource.Relationship{
			"writer": {Kind: resource.RelationshipBelongsTo, Target: "authors"},
		},
	})
	require.NoError(t, err)

	g, err := guesser.New(guesser.ViewEdit,
		guesser.WithResources(reg),
		guesser.WithImportPackage("@acme/admin"),
	)
	require.NoError(t, err)
	g.SetResource("books")

	_, err = g.Apply(g.Begin(), testsupport.MustRecords(t, `{"id": 1, "writer": 3}`))
	require.NoError(t, err)

	got := g.Inferences()
	require.Equal(t, model.TagReference, got[1].Tag)
	require.Equal(t, model.TagReferenceChild, got[1].Children[0].Tag)

	snippet, err := g.Snippet()
	require.NoError(t, err)
	require.Contains(t, snippet, `<ReferenceInput source="writer" reference="authors"><SelectInput optionText="id" /></ReferenceInput>`)
	require.Contains(t, snippet, "import { Edit, ReferenceInput, SelectInput, SimpleForm, TextInput } from '@acme/admin';")
	require.Contains(t, snippet, "export const BookEdit = () => (")
}

func TestLoadFetchesPerViewKind(t *testing.T) {
	provider := dataprovider.NewMemory(map[string][]*model.Record{
		"books": testsupport.MustRecords(t, `[
			{"id": 1, "title": "War and Peace"},
			{"id": 2, "title": "Emma", "isbn": "978-0141439587"}
		]`),
	})

	list, err := guesser.New(guesser.ViewList)
	require.NoError(t, err)
	list.SetResource("books")
	applied, err := list.Load(context.Background(), provider, guesser.Query{})
	require.NoError(t, err)
	require.True(t, applied)
	require.Len(t, list.Inferences(), 3, "list samples every record of the page")

	show, err := guesser.New(guesser.ViewShow)
	require.NoError(t, err)
	show.SetResource("books")
	applied, err = show.Load(context.Background(), provider, guesser.Query{ID: 1})
	require.NoError(t, err)
	require.True(t, applied)
	require.Len(t, show.Inferences(), 2)

	missing, err := guesser.New(guesser.ViewShow)
	require.NoError(t, err)
	missing.SetResource("books")
	_, err = missing.Load(context.Background(), provider, guesser.Query{ID: 99})
	require.True(t, errors.Is(err, dataprovider.ErrNotFound))
	require.Equal(t, guesser.StateIdle, missing.State())

	unset, err := guesser.New(guesser.ViewShow)
	require.NoError(t, err)
	_, err = unset.Load(context.Background(), provider, guesser.Query{ID: 1})
	require.ErrorIs(t, err, guesser.ErrNoResource)
}

// switchingProvider changes the guesser resource while the fetch is in flight.
type switchingProvider struct {
	dataprovider.Provider
	onFetch func()
}

func (p switchingProvider) GetOne(ctx context.Context, resource string, id any) (*model.Record, error) {
	p.onFetch()
	return p.Provider.GetOne(ctx, resource, id)
}

func TestLoadDropsResultAfterResourceSwitch(t *testing.T) {
	memory := dataprovider.NewMemory(map[string][]*model.Record{
		"books": testsupport.MustRecords(t, warAndPeace),
	})
	g, err := guesser.New(guesser.ViewShow)
	require.NoError(t, err)
	g.SetResource("books")

	provider := switchingProvider{Provider: memory, onFetch: func() { g.SetResource("authors") }}
	applied, err := g.Load(context.Background(), provider, guesser.Query{ID: 1})
	require.NoError(t, err)
	require.False(t, applied)
	require.Equal(t, "authors", g.Resource())
	_, ok := g.Node()
	require.False(t, ok)
}

func TestLoadDropsResultAfterClose(t *testing.T) {
	memory := dataprovider.NewMemory(map[string][]*model.Record{
		"books": testsupport.MustRecords(t, warAndPeace),
	})
	g, err := guesser.New(guesser.ViewShow)
	require.NoError(t, err)
	g.SetResource("books")

	provider := switchingProvider{Provider: memory, onFetch: g.Close}
	applied, err := g.Load(context.Background(), provider, guesser.Query{ID: 1})
	require.NoError(t, err)
	require.False(t, applied)
	require.Equal(t, guesser.StateClosed, g.State())
	_, ok := g.Node()
	require.False(t, ok)
}

func TestIndependentInstances(t *testing.T) {
	a, err := guesser.New(guesser.ViewShow)
	require.NoError(t, err)
	b, err := guesser.New(guesser.ViewShow)
	require.NoError(t, err)
	require.NotEqual(t, a.ID(), b.ID())

	a.SetResource("books")
	b.SetResource("authors")
	_, err = a.Apply(a.Begin(), testsupport.MustRecords(t, warAndPeace))
	require.NoError(t, err)

	require.Equal(t, guesser.StateReady, a.State())
	require.Equal(t, guesser.StateIdle, b.State())
}
