// Package guesser is the top-level entry point of go-guesser. It wires a data
// provider, resource configuration and a view kind into a guesser and returns
// the guessed snippet or rendered page in one call. The building blocks live
// under pkg/.
package guesser

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-guesser/pkg/dataprovider"
	pkgguesser "github.com/goliatone/go-guesser/pkg/guesser"
	"github.com/goliatone/go-guesser/pkg/render"
)

// ViewKind aliases pkg/guesser.ViewKind for callers of the top-level API.
type ViewKind = pkgguesser.ViewKind

// Query aliases pkg/guesser.Query.
type Query = pkgguesser.Query

// Option aliases pkg/guesser.Option.
type Option = pkgguesser.Option

const (
	ViewShow = pkgguesser.ViewShow
	ViewEdit = pkgguesser.ViewEdit
	ViewList = pkgguesser.ViewList
)

// ErrNoRecords is returned when the provider returned nothing to guess from.
var ErrNoRecords = errors.New("guesser: no records to guess from")

// New exposes the guesser constructor from the top-level module.
func New(kind ViewKind, options ...Option) (*pkgguesser.Guesser, error) {
	return pkgguesser.New(kind, options...)
}

// Guess builds a guesser for resource and loads its sample from provider. The
// returned guesser is ready; callers own it and should Close it.
func Guess(ctx context.Context, provider dataprovider.Provider, kind ViewKind, resource string, query Query, options ...Option) (*pkgguesser.Guesser, error) {
	g, err := pkgguesser.New(kind, options...)
	if err != nil {
		return nil, err
	}
	g.SetResource(resource)
	applied, err := g.Load(ctx, provider, query)
	if err != nil {
		g.Close()
		return nil, err
	}
	if !applied {
		g.Close()
		return nil, fmt.Errorf("%w: %s", ErrNoRecords, resource)
	}
	return g, nil
}

// GuessSnippet returns the generated source of the guessed view. It is the
// simplest entry point for callers that only want the snippet.
func GuessSnippet(ctx context.Context, provider dataprovider.Provider, kind ViewKind, resource string, query Query, options ...Option) (string, error) {
	g, err := Guess(ctx, provider, kind, resource, query, options...)
	if err != nil {
		return "", err
	}
	defer g.Close()
	return g.Snippet()
}

// GuessPage guesses the view and renders it with renderer.
func GuessPage(ctx context.Context, provider dataprovider.Provider, renderer render.Renderer, kind ViewKind, resource string, query Query, options ...Option) ([]byte, error) {
	if renderer == nil {
		return nil, errors.New("guesser: renderer is required")
	}
	g, err := Guess(ctx, provider, kind, resource, query, options...)
	if err != nil {
		return nil, err
	}
	defer g.Close()

	root, _ := g.Node()
	records := g.Sample()
	snippet, _ := g.Snippet()
	return renderer.Render(ctx, render.Page{
		View:     kind.String(),
		Resource: resource,
		Root:     root,
		Records:  records,
		Total:    len(records),
		Snippet:  snippet,
	})
}
