package loader

import (
	"context"
	"errors"
	"maps"

	"github.com/pitabwire/podenv/props"
)

// ErrNotFound reports that a source holds no table for a module resource.
var ErrNotFound = errors.New("property table not found")

// Source supplies already parsed property tables.
type Source interface {
	Fetch(ctx context.Context, module, resourcePath string) (map[string]string, error)
}

// MapSource serves tables from memory, keyed by props.Key.
type MapSource map[string]map[string]string

func (m MapSource) Fetch(_ context.Context, module, resourcePath string) (map[string]string, error) {
	values, ok := m[props.Key(module, resourcePath)]
	if !ok {
		return nil, ErrNotFound
	}
	return maps.Clone(values), nil
}

// Put stores values for a module resource.
func (m MapSource) Put(module, resourcePath string, values map[string]string) {
	m[props.Key(module, resourcePath)] = maps.Clone(values)
}

// Chain asks each source in order and returns the first table found.
type Chain []Source

func (c Chain) Fetch(ctx context.Context, module, resourcePath string) (map[string]string, error) {
	for _, src := range c {
		values, err := src.Fetch(ctx, module, resourcePath)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return values, err
	}
	return nil, ErrNotFound
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, module, resourcePath string) (map[string]string, error)

func (f SourceFunc) Fetch(ctx context.Context, module, resourcePath string) (map[string]string, error) {
	return f(ctx, module, resourcePath)
}
