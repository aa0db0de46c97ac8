package core

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultWorkers is the number of rows written concurrently per batch.
	DefaultWorkers = 4
	// MaxWorkers caps per-batch concurrency.
	MaxWorkers = 8
)

// Child row columns for nested collections.
const (
	ItemTitleField = "titulo"
	ItemValueField = "valor"
)

// BatchWriter persists records one store call at a time on a bounded pool.
// A failed write never aborts or rolls back its siblings.
type BatchWriter struct {
	store   Store
	workers int
}

// NewBatchWriter creates a writer running at most workers rows at once.
// Out-of-range values are clamped to [1, MaxWorkers]; zero means default.
func NewBatchWriter(store Store, workers int) *BatchWriter {
	switch {
	case workers == 0:
		workers = DefaultWorkers
	case workers < 1:
		workers = 1
	case workers > MaxWorkers:
		workers = MaxWorkers
	}
	return &BatchWriter{store: store, workers: workers}
}

// Workers returns the pool size.
func (w *BatchWriter) Workers() int {
	return w.workers
}

// Run calls fn(i) for i in [0, n) with at most Workers calls in flight and
// returns when all have finished.
func (w *BatchWriter) Run(n int, fn func(i int)) {
	var g errgroup.Group
	g.SetLimit(w.workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}

// Write inserts rec and then its nested children. The parent's failure is a
// *StoreWriteError. Child failures do not undo the parent; they are
// returned separately so the caller can record them.
func (w *BatchWriter) Write(ctx context.Context, def EntityDefinition, rec Record) (Record, []error, error) {
	if def.BeforeInsert != nil {
		if err := def.BeforeInsert(ctx, w.store, rec); err != nil {
			return nil, nil, &StoreWriteError{Table: def.Info.Table, Err: err}
		}
	}

	inserted, err := w.store.InsertOne(ctx, def.Info.Table, Persistable(def, rec))
	if err != nil {
		return nil, nil, &StoreWriteError{Table: def.Info.Table, Err: err}
	}

	childErrs := w.writeChildren(ctx, def, inserted.ID(), rec)
	return inserted, childErrs, nil
}

func (w *BatchWriter) writeChildren(ctx context.Context, def EntityDefinition, parentID string, rec Record) []error {
	var errs []error
	for _, nested := range def.Nested {
		for _, item := range rec.Items(nested.Key) {
			child := Record{
				nested.ParentField: parentID,
				ItemTitleField:     item.Title,
				ItemValueField:     item.Value,
			}
			if _, err := w.store.InsertOne(ctx, nested.Table, child); err != nil {
				errs = append(errs, &StoreWriteError{
					Table: nested.Table,
					Err:   fmt.Errorf("%s %q: %w", nested.Prefix, item.Title, err),
				})
			}
		}
	}
	return errs
}

// Persistable returns the stored subset of rec: nested collections,
// attached referenced records, and transient fields are dropped.
func Persistable(def EntityDefinition, rec Record) Record {
	out := rec.Clone()
	for _, nested := range def.Nested {
		delete(out, nested.Key)
	}
	for _, ref := range def.References {
		if ref.As != "" {
			delete(out, ref.As)
		}
	}
	for _, field := range def.Transient {
		delete(out, field)
	}
	return out
}
