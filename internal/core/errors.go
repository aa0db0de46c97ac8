package core

import (
	"errors"
	"fmt"
)

// ErrUnknownEntity is returned for entity keys that are not registered.
var ErrUnknownEntity = errors.New("unknown entity")

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// ErrInvalidField is returned when an edit names a field the entity does
// not have or that cannot be edited.
var ErrInvalidField = errors.New("invalid field")

// FormatError means the input could not be parsed as a table.
// The whole batch is rejected.
type FormatError struct {
	FileName string
	Err      error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid file format %s: %v", e.FileName, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// EmptyBatchError means the table parsed but held no data rows.
type EmptyBatchError struct {
	FileName string
}

func (e *EmptyBatchError) Error() string {
	return fmt.Sprintf("empty file %s: no data rows", e.FileName)
}

// FieldMissingError means a required column was absent for a row, or a
// derived value could not be computed from it.
type FieldMissingError struct {
	Label string
}

func (e *FieldMissingError) Error() string {
	return "missing field " + e.Label
}

// ResolutionError means a natural-key reference matched no record.
// The row is skipped.
type ResolutionError struct {
	Label string
	Value string
}

func (e *ResolutionError) Error() string {
	return "referenced entity not found: " + e.Value
}

// DuplicateSkip means a record with the same natural key already exists.
type DuplicateSkip struct {
	Label string
	Value string
}

func (e *DuplicateSkip) Error() string {
	return fmt.Sprintf("duplicate %s: %s", e.Label, e.Value)
}

// StoreWriteError wraps a store failure during a write.
type StoreWriteError struct {
	Table string
	Err   error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Table, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }
