package core

import (
	"context"
	"fmt"
	"strconv"
)

// FieldKind identifies how a raw cell value is coerced into a record value.
type FieldKind int

const (
	KindString FieldKind = iota // Text, stored as-is
	KindNumber                  // Decimal, coerced to float64 (0 on failure)
	KindDate                    // Date, passed through unparsed
	KindEnum                    // Closed set of values, Fallback when blank
)

func (k FieldKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// FieldSpec maps one source column label onto one record field.
type FieldSpec struct {
	Label      string              // Column header, matched exactly
	Field      string              // Record field / store column
	Kind       FieldKind           // Coercion applied to the raw value
	Required   bool                // Row fails when the column is absent
	Default    any                 // Value used when an optional column is absent
	Fallback   string              // Enum value used when the cell is blank
	Normalizer func(string) string // Applied to the raw value before coercion
}

// ForeignKeyRef replaces a natural-key column with the id of a referenced
// record. The referenced record is also attached to the row under As, so
// derived fields can read it.
type ForeignKeyRef struct {
	Label      string // Column header holding the natural key
	Field      string // Record field receiving the referenced id
	Table      string // Referenced table
	NaturalKey string // Column matched against the raw value
	As         string // Record key the referenced record is attached under
}

// NestedSpec describes numbered (title, value) column pairs that become
// child rows of the imported record, e.g. "Custo Operacional 1 - Título".
type NestedSpec struct {
	Prefix      string // Column prefix, "Custo Operacional"
	Key         string // Record key holding the []LineItem
	Table       string // Child table
	ParentField string // Child column referencing the parent id
}

// TitleLabel returns the header of the n-th title column (1-based).
func (n NestedSpec) TitleLabel(i int) string {
	return n.Prefix + " " + strconv.Itoa(i) + " - Título"
}

// ValueLabel returns the header of the n-th value column (1-based).
func (n NestedSpec) ValueLabel(i int) string {
	return n.Prefix + " " + strconv.Itoa(i) + " - Valor"
}

// MaxNestedSlots bounds the numbered column pairs read and written per row.
const MaxNestedSlots = 10

// LineItem is one child row of a nested collection.
type LineItem struct {
	Title string  `json:"title"`
	Value float64 `json:"value"`
}

// Cascade names a child table whose rows are removed with the parent.
type Cascade struct {
	Table string
	Field string
}

// ExportColumn is one column of an exported sheet.
type ExportColumn struct {
	Label string
	Value func(Record) any
}

// DeriveFunc computes derived fields in place. An error marks the row as
// missing a required field.
type DeriveFunc func(Record) error

// BeforeInsertFunc runs immediately before a record is written, after
// duplicate checking.
type BeforeInsertFunc func(ctx context.Context, store Store, rec Record) error

// EntityInfo holds display and storage metadata for an entity.
type EntityInfo struct {
	Key             string // URL-safe identifier, e.g. "toners"
	Label           string // Display name
	Sheet           string // Worksheet name used on export
	Table           string // Store table
	NaturalKey      string // Field used for duplicate detection
	NaturalKeyLabel string // Column label reported in duplicate reasons
	TotalField      string // Numeric field summed over imported rows, optional
}

// EntityDefinition is everything the engine needs to import, list, edit,
// and export one entity.
type EntityDefinition struct {
	Info         EntityInfo
	Fields       []FieldSpec
	References   []ForeignKeyRef
	Nested       []NestedSpec
	Policy       DuplicatePolicy
	Derive       DeriveFunc
	BeforeInsert BeforeInsertFunc
	Transient    []string // Computed on every read, never persisted
	Cascades     []Cascade
	Order        []Order
	Columns      []ExportColumn
}

// Field returns the spec for a record field.
func (d EntityDefinition) Field(name string) (FieldSpec, bool) {
	for _, f := range d.Fields {
		if f.Field == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Record is a flat set of named values: string, float64, nil, or for
// nested collections []LineItem. Referenced records attached by the
// resolver are Record values.
type Record map[string]any

// ID returns the store-assigned identifier.
func (r Record) ID() string {
	return r.String("id")
}

// String returns a field as text. Numbers are formatted without
// trailing zeros; nil is "".
func (r Record) String(field string) string {
	switch v := r[field].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Number returns a field as float64, coercing text. Unparseable values are 0.
func (r Record) Number(field string) float64 {
	switch v := r[field].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		return CoerceNumber(v)
	default:
		return 0
	}
}

// Ref returns the referenced record attached under alias, or an empty
// record when none is attached.
func (r Record) Ref(alias string) Record {
	if ref, ok := r[alias].(Record); ok {
		return ref
	}
	return Record{}
}

// Items returns a nested collection.
func (r Record) Items(key string) []LineItem {
	items, _ := r[key].([]LineItem)
	return items
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// SourceRow is one parsed input row keyed by exact column label.
// Blank cells are absent.
type SourceRow map[string]string

// Filter selects records whose fields equal the given values.
type Filter map[string]any

// Order sorts records by a field.
type Order struct {
	Field string
	Desc  bool
}

// Store is the persistence boundary. Implementations assign "id" and
// "created_at" on insert and must be safe for concurrent use.
type Store interface {
	SelectAll(ctx context.Context, table string, filter Filter, order ...Order) ([]Record, error)
	InsertOne(ctx context.Context, table string, rec Record) (Record, error)
	UpdateOne(ctx context.Context, table, id string, patch Record) error
	DeleteOne(ctx context.Context, table, id string) error
}
