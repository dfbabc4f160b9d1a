package geo

import (
	"context"
	"errors"

	"github.com/generic19/FastersApp/internal/log"
)

// Chain asks each resolver in turn and returns the first answer. Resolvers
// reporting ErrNotFound are skipped silently; other failures are logged and
// returned together if nothing succeeds.
type Chain []Resolver

func (c Chain) Resolve(ctx context.Context, q Query) (*Location, error) {
	var errs []error
	for _, r := range c {
		loc, err := r.Resolve(ctx, q)
		if err == nil {
			return loc, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !errors.Is(err, ErrNotFound) {
			log.Warnw("location lookup failed", "query", q.Key(), "error", err)
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil, ErrNotFound
	}
	return nil, errors.Join(errs...)
}

// Store persists resolved locations between runs.
type Store interface {
	LoadGeo(key string) *Location
	SaveGeo(key string, loc *Location) error
}

// Cached serves answers from Store before asking Resolver, and saves fresh
// answers back. Store failures only degrade to uncached lookups.
type Cached struct {
	Resolver Resolver
	Store    Store
}

func (c Cached) Resolve(ctx context.Context, q Query) (*Location, error) {
	key := q.Key()
	if loc := c.Store.LoadGeo(key); loc != nil {
		log.Debugw("location cache hit", "query", key)
		return loc, nil
	}

	loc, err := c.Resolver.Resolve(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := c.Store.SaveGeo(key, loc); err != nil {
		log.Warnw("failed to cache location", "query", key, "error", err)
	}
	return loc, nil
}
