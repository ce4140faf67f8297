package guesser

import (
	"context"
	"fmt"

	"github.com/goliatone/go-guesser/pkg/resource"
	"github.com/goliatone/go-guesser/pkg/source"
)

// LoadResources reads a resource configuration document (YAML or JSON) from
// src.
func LoadResources(ctx context.Context, src source.Source, options ...source.Option) (*resource.Registry, error) {
	data, err := source.NewLoader(options...).Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("guesser: load resources: %w", err)
	}
	return resource.Parse(data)
}

// LoadOpenAPIResources derives the resource configuration from the component
// schemas of an OpenAPI document.
func LoadOpenAPIResources(ctx context.Context, src source.Source, options ...source.Option) (*resource.Registry, error) {
	data, err := source.NewLoader(options...).Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("guesser: load openapi: %w", err)
	}
	return resource.FromOpenAPI(ctx, data)
}
