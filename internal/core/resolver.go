package core

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// resolveOrder picks the earliest record when a natural key is ambiguous.
var resolveOrder = []Order{{Field: "created_at"}, {Field: "id"}}

// ForeignKeyResolver replaces natural-key values with referenced record ids.
// Lookups are cached for the lifetime of the resolver (one batch), and
// concurrent lookups of the same key share a single store query.
type ForeignKeyResolver struct {
	store Store
	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]Record // nil value means "looked up, not found"
}

// NewForeignKeyResolver creates a resolver backed by store.
func NewForeignKeyResolver(store Store) *ForeignKeyResolver {
	return &ForeignKeyResolver{
		store: store,
		cache: make(map[string]Record),
	}
}

// Resolve sets each reference field of rec to the id of the matching record
// and attaches the matched record under ref.As. A *ResolutionError is
// returned for the first reference that matches nothing.
func (r *ForeignKeyResolver) Resolve(ctx context.Context, refs []ForeignKeyRef, rec Record, values map[string]string) error {
	for _, ref := range refs {
		value := values[ref.Field]
		match, err := r.lookup(ctx, ref, value)
		if err != nil {
			return err
		}
		if match == nil {
			return &ResolutionError{Label: ref.Label, Value: value}
		}

		rec[ref.Field] = match.ID()
		if ref.As != "" {
			rec[ref.As] = match
		}
	}
	return nil
}

func (r *ForeignKeyResolver) lookup(ctx context.Context, ref ForeignKeyRef, value string) (Record, error) {
	key := ref.Table + "\x00" + ref.NaturalKey + "\x00" + value

	r.mu.RLock()
	match, cached := r.cache[key]
	r.mu.RUnlock()
	if cached {
		return match, nil
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		r.mu.RLock()
		match, cached := r.cache[key]
		r.mu.RUnlock()
		if cached {
			return match, nil
		}

		recs, err := r.store.SelectAll(ctx, ref.Table, Filter{ref.NaturalKey: value}, resolveOrder...)
		if err != nil {
			return nil, fmt.Errorf("resolve %s %q: %w", ref.Label, value, err)
		}

		var found Record
		if len(recs) > 0 {
			found = recs[0]
		}

		r.mu.Lock()
		r.cache[key] = found
		r.mu.Unlock()
		return found, nil
	})
	if err != nil {
		return nil, err
	}

	match, _ = v.(Record)
	return match, nil
}
