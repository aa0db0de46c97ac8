// Package memstore is an in-memory core.Store. It backs the CLI preview
// path and the tests; records never outlive the process.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/sgq/internal/core"
)

// TimeLayout is the created_at format. Fixed-width so timestamps sort as
// text.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// InsertHook runs before every insert. A non-nil error fails the insert.
type InsertHook func(table string, rec core.Record) error

// Store holds tables of records keyed by id.
type Store struct {
	mu     sync.RWMutex
	tables map[string][]core.Record
	last   time.Time
	now    func() time.Time
	hook   InsertHook
}

// New creates an empty store.
func New() *Store {
	return &Store{
		tables: make(map[string][]core.Record),
		now:    time.Now,
	}
}

// SetInsertHook installs hook, replacing any previous one. nil removes it.
func (s *Store) SetInsertHook(hook InsertHook) {
	s.mu.Lock()
	s.hook = hook
	s.mu.Unlock()
}

// Count returns the number of records in table.
func (s *Store) Count(table string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[table])
}

// SelectAll returns copies of the records of table matching filter,
// sorted by order. Ties keep insertion order.
func (s *Store) SelectAll(ctx context.Context, table string, filter core.Filter, order ...core.Order) ([]core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	var out []core.Record
	for _, rec := range s.tables[table] {
		if matches(rec, filter) {
			out = append(out, rec.Clone())
		}
	}
	s.mu.RUnlock()

	if len(order) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			return less(out[i], out[j], order)
		})
	}
	return out, nil
}

// InsertOne stores a copy of rec with id, created_at and created_by
// assigned, and returns the stored record.
func (s *Store) InsertOne(ctx context.Context, table string, rec core.Record) (core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hook != nil {
		if err := s.hook(table, rec); err != nil {
			return nil, err
		}
	}

	stored := rec.Clone()
	stored["id"] = uuid.New().String()
	stored["created_at"] = s.stamp().Format(TimeLayout)
	stored["created_by"] = core.IdentityFromContext(ctx).UserID

	s.tables[table] = append(s.tables[table], stored)
	return stored.Clone(), nil
}

// stamp returns a strictly increasing UTC time so created_at orders
// inserts even within one clock tick. Callers hold s.mu.
func (s *Store) stamp() time.Time {
	t := s.now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Nanosecond)
	}
	s.last = t
	return t
}

// UpdateOne merges patch into the record with id.
func (s *Store) UpdateOne(ctx context.Context, table, id string, patch core.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.tables[table] {
		if rec.ID() != id {
			continue
		}
		for k, v := range patch {
			rec[k] = v
		}
		return nil
	}
	return fmt.Errorf("%s %s: %w", table, id, core.ErrNotFound)
}

// DeleteOne removes the record with id.
func (s *Store) DeleteOne(ctx context.Context, table, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recs := s.tables[table]
	for i, rec := range recs {
		if rec.ID() != id {
			continue
		}
		s.tables[table] = append(recs[:i:i], recs[i+1:]...)
		return nil
	}
	return fmt.Errorf("%s %s: %w", table, id, core.ErrNotFound)
}

func matches(rec core.Record, filter core.Filter) bool {
	for field, want := range filter {
		if normalize(rec[field]) != normalize(want) {
			return false
		}
	}
	return true
}

// normalize renders a value for equality, so 5 and 5.0 and "5" compare
// equal the way a typed column would.
func normalize(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}

func less(a, b core.Record, order []core.Order) bool {
	for _, o := range order {
		c := compare(a[o.Field], b[o.Field])
		if c == 0 {
			continue
		}
		if o.Desc {
			return c > 0
		}
		return c < 0
	}
	return false
}

// compare orders numbers numerically and everything else as text. nil
// sorts first.
func compare(a, b any) int {
	fa, aNum := a.(float64)
	fb, bNum := b.(float64)
	if aNum && bNum {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}

	sa, sb := normalize(a), normalize(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}
