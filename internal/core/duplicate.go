package core

import (
	"context"
	"fmt"
	"sync"
)

// DuplicatePolicy is a static property of an entity.
type DuplicatePolicy int

const (
	// AlwaysInsert writes every row. Used for event-like records where a
	// re-import is expected to add rows.
	AlwaysInsert DuplicatePolicy = iota
	// RejectByNaturalKey skips rows whose natural key already exists.
	RejectByNaturalKey
)

func (p DuplicatePolicy) String() string {
	if p == RejectByNaturalKey {
		return "reject_by_natural_key"
	}
	return "always_insert"
}

// DuplicateGuard applies an entity's duplicate policy. Within one batch it
// also claims natural keys, so identical rows in a file resolve the way
// they would sequentially: a row that finds its key claimed waits for the
// holder, then skips if the holder was written or takes the claim if the
// holder's write failed. Batches do not coordinate with each other.
type DuplicateGuard struct {
	store Store

	mu     sync.Mutex
	claims map[string]*claim
}

// claim is held by the row writing a natural key. done is closed once the
// holder's outcome is known.
type claim struct {
	done    chan struct{}
	written bool
}

// NewDuplicateGuard creates a guard for one batch.
func NewDuplicateGuard(store Store) *DuplicateGuard {
	return &DuplicateGuard{
		store:  store,
		claims: make(map[string]*claim),
	}
}

// Check returns a *DuplicateSkip when rec must not be written. On success
// under RejectByNaturalKey the caller holds the key and must settle it with
// Confirm or Release.
func (g *DuplicateGuard) Check(ctx context.Context, def EntityDefinition, rec Record) error {
	if def.Policy != RejectByNaturalKey {
		return nil
	}

	value := rec.String(def.Info.NaturalKey)
	skip := &DuplicateSkip{Label: def.Info.NaturalKeyLabel, Value: value}

	for {
		g.mu.Lock()
		held, taken := g.claims[value]
		if !taken {
			g.claims[value] = &claim{done: make(chan struct{})}
			g.mu.Unlock()
			break
		}
		g.mu.Unlock()

		select {
		case <-held.done:
		case <-ctx.Done():
			return ctx.Err()
		}
		if held.written {
			return skip
		}
	}

	existing, err := g.store.SelectAll(ctx, def.Info.Table, Filter{def.Info.NaturalKey: rec[def.Info.NaturalKey]})
	if err != nil {
		g.Release(def, rec)
		return fmt.Errorf("duplicate check %s: %w", def.Info.Table, err)
	}
	if len(existing) > 0 {
		g.Confirm(def, rec)
		return skip
	}
	return nil
}

// Confirm settles a claim after a successful write. Later rows with the
// same key are skipped.
func (g *DuplicateGuard) Confirm(def EntityDefinition, rec Record) {
	g.settle(def, rec, true)
}

// Release settles a claim after a failed write so the next row with the
// same key may try.
func (g *DuplicateGuard) Release(def EntityDefinition, rec Record) {
	g.settle(def, rec, false)
}

func (g *DuplicateGuard) settle(def EntityDefinition, rec Record, written bool) {
	if def.Policy != RejectByNaturalKey {
		return
	}
	value := rec.String(def.Info.NaturalKey)

	g.mu.Lock()
	c, ok := g.claims[value]
	if !ok {
		g.mu.Unlock()
		return
	}
	select {
	case <-c.done:
		// Already settled.
		g.mu.Unlock()
		return
	default:
	}
	c.written = written
	if !written {
		delete(g.claims, value)
	}
	close(c.done)
	g.mu.Unlock()
}
