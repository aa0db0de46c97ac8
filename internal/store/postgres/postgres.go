// Package postgres implements core.Store over a pgx connection pool.
//
// Statements are built per call from the table and field names of the
// records passed in. Identifiers are always quoted; values are always bound
// parameters.
package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/sgq/internal/core"
)

//go:embed schema.sql
var schema string

// DBTX is the subset of *pgxpool.Pool the store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store is a core.Store backed by PostgreSQL.
type Store struct {
	db DBTX
}

// New creates a Store over db.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// Migrate creates any missing tables. Safe to run on every start.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) SelectAll(ctx context.Context, table string, filter core.Filter, order ...core.Order) ([]core.Record, error) {
	query, args := buildSelect(table, filter, order)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}

	out := make([]core.Record, len(maps))
	for i, m := range maps {
		out[i] = toRecord(m)
	}
	return out, nil
}

func (s *Store) InsertOne(ctx context.Context, table string, rec core.Record) (core.Record, error) {
	row := rec.Clone()
	row["id"] = uuid.New().String()
	row["created_by"] = core.IdentityFromContext(ctx).UserID
	delete(row, "created_at")

	query, args := buildInsert(table, row)
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", table, err)
	}
	inserted, err := pgx.CollectExactlyOneRow(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", table, err)
	}
	return toRecord(inserted), nil
}

func (s *Store) UpdateOne(ctx context.Context, table, id string, patch core.Record) error {
	if len(patch) == 0 {
		return nil
	}

	query, args := buildUpdate(table, id, patch)
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", table, id, core.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteOne(ctx context.Context, table, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", quoteIdentifier(table))
	tag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", table, id, core.ErrNotFound)
	}
	return nil
}

// quoteIdentifier safely quotes a PostgreSQL identifier.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// sortedKeys keeps generated SQL stable across calls.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func buildSelect(table string, filter core.Filter, order []core.Order) (string, []any) {
	var (
		b    strings.Builder
		args []any
	)
	fmt.Fprintf(&b, "SELECT * FROM %s", quoteIdentifier(table))

	for i, field := range sortedKeys(filter) {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		value := filter[field]
		if value == nil {
			fmt.Fprintf(&b, "%s IS NULL", quoteIdentifier(field))
			continue
		}
		args = append(args, value)
		fmt.Fprintf(&b, "%s = $%d", quoteIdentifier(field), len(args))
	}

	for i, o := range order {
		if i == 0 {
			b.WriteString(" ORDER BY ")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(quoteIdentifier(o.Field))
		if o.Desc {
			b.WriteString(" DESC")
		}
	}
	return b.String(), args
}

func buildInsert(table string, row core.Record) (string, []any) {
	cols := sortedKeys(row)
	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		quoted[i] = quoteIdentifier(col)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = row[col]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		quoteIdentifier(table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)
	return query, args
}

func buildUpdate(table, id string, patch core.Record) (string, []any) {
	cols := sortedKeys(patch)
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		args = append(args, patch[col])
		sets[i] = fmt.Sprintf("%s = $%d", quoteIdentifier(col), len(args))
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		quoteIdentifier(table),
		strings.Join(sets, ", "),
		len(args),
	)
	return query, args
}

// toRecord converts scanned column values to the Record value set: text,
// float64, bool or nil.
func toRecord(m map[string]any) core.Record {
	rec := make(core.Record, len(m))
	for k, v := range m {
		rec[k] = normalizeValue(v)
	}
	return rec
}

func normalizeValue(v any) any {
	switch v := v.(type) {
	case nil, string, float64, bool:
		return v
	case pgtype.Numeric:
		if !v.Valid {
			return nil
		}
		f, err := v.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return uuid.UUID(v).String()
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case float32:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return fmt.Sprint(v)
	}
}
