// Package store owns the live unit catalog. It serializes access to the
// catalog, persists every mutation and evaluates expressions against a
// consistent view of the units.
package store

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/lemonberrylabs/unitconv/pkg/catalog"
	"github.com/lemonberrylabs/unitconv/pkg/expr"
	"github.com/lemonberrylabs/unitconv/pkg/units"
)

// Persister loads and saves the full list of units.
type Persister interface {
	Load(ctx context.Context) ([]units.Unit, error)
	Save(ctx context.Context, us []units.Unit) error
}

// Store is a thread-safe holder of the unit catalog.
type Store struct {
	mu        sync.RWMutex
	catalog   *catalog.Catalog
	persister Persister
}

// New creates a store over an existing catalog. A nil persister keeps the
// catalog in memory only.
func New(c *catalog.Catalog, p Persister) *Store {
	return &Store{catalog: c, persister: p}
}

// Open loads the catalog from p. When loading fails, or the stored catalog is
// empty, the store starts from the default one-unit catalog and keeps p for
// later saves.
func Open(ctx context.Context, p Persister) *Store {
	us, err := p.Load(ctx)
	switch {
	case err != nil:
		log.Printf("Warning: failed to load unit catalog, using default: %v", err)
		return New(catalog.Default(), p)
	case len(us) == 0:
		log.Printf("Warning: unit catalog is empty, using default")
		return New(catalog.Default(), p)
	}

	c := catalog.New(us)
	if c.Len() != len(us) {
		log.Printf("Warning: dropped %d units with duplicate symbols", len(us)-c.Len())
	}
	log.Printf("Loaded %d units", c.Len())
	return New(c, p)
}

// AddUnit registers a new unit.
func (s *Store) AddUnit(ctx context.Context, u units.Unit) error {
	if err := catalog.Validate(u); err != nil {
		return err
	}
	return s.mutate(ctx, func(c *catalog.Catalog) error {
		if !c.Add(u) {
			return catalog.DuplicateError.New("%q", u.Symbol)
		}
		return nil
	})
}

// ModifyUnit replaces the unit registered under oldSymbol.
func (s *Store) ModifyUnit(ctx context.Context, oldSymbol string, u units.Unit) error {
	if err := catalog.Validate(u); err != nil {
		return err
	}
	return s.mutate(ctx, func(c *catalog.Catalog) error {
		if c.Search(oldSymbol) < 0 {
			return catalog.NotFoundError.New("%q", oldSymbol)
		}
		if !c.Modify(oldSymbol, u) {
			return catalog.DuplicateError.New("%q", u.Symbol)
		}
		return nil
	})
}

// DeleteUnit removes a unit.
func (s *Store) DeleteUnit(ctx context.Context, symbol string) error {
	return s.mutate(ctx, func(c *catalog.Catalog) error {
		if !c.Delete(symbol) {
			return catalog.NotFoundError.New("%q", symbol)
		}
		return nil
	})
}

// mutate applies fn to a copy of the catalog, saves the copy and only then
// makes it current, so a failed save leaves the store unchanged.
func (s *Store) mutate(ctx context.Context, fn func(c *catalog.Catalog) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.catalog.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if s.persister != nil {
		if err := s.persister.Save(ctx, next.Units()); err != nil {
			log.Printf("Warning: failed to save unit catalog: %v", err)
			return fmt.Errorf("saving catalog: %w", err)
		}
	}
	s.catalog = next
	return nil
}

// GetUnit returns the unit with the given symbol.
func (s *Store) GetUnit(symbol string) (units.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.catalog.Lookup(symbol)
	if !ok {
		return units.Unit{}, catalog.NotFoundError.New("%q", symbol)
	}
	return u, nil
}

// ListUnits returns the units whose display form contains filter, ignoring
// case. An empty filter returns every unit.
func (s *Store) ListUnits(filter string) []units.Unit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Filter(filter)
}

// Evaluate evaluates an expression, with an optional "in unit" target,
// against the current catalog.
func (s *Store) Evaluate(input string) (units.Quantity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return expr.EvaluateIn(input, s.catalog)
}

// ResolveUnit resolves a possibly prefixed unit symbol such as "km".
func (s *Store) ResolveUnit(symbol string) (units.Unit, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return expr.ResolveUnit(symbol, s.catalog)
}

// Snapshot returns an independent copy of the current catalog.
func (s *Store) Snapshot() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Clone()
}
