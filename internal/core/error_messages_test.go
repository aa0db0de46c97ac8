package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "nil error returns empty", err: nil, wantCode: ""},
		{name: "format error", err: &FormatError{FileName: "a.xlsx", Err: errors.New("zip: not a valid zip file")}, wantCode: "IMP001"},
		{name: "empty batch", err: &EmptyBatchError{FileName: "a.csv"}, wantCode: "IMP002"},
		{name: "missing field", err: &FieldMissingError{Label: "Modelo"}, wantCode: "IMP003"},
		{name: "unresolved reference", err: &ResolutionError{Label: "Modelo", Value: "X"}, wantCode: "IMP004"},
		{name: "duplicate", err: &DuplicateSkip{Label: "Modelo", Value: "X"}, wantCode: "IMP005"},
		{name: "busy", err: ErrTooManyImports, wantCode: "IMP006"},
		{name: "wrapped unknown entity", err: fmt.Errorf("import foo: %w", ErrUnknownEntity), wantCode: "ENT001"},
		{name: "not found", err: ErrNotFound, wantCode: "ENT002"},
		{name: "store write falls back to DB001", err: &StoreWriteError{Table: "toners", Err: errors.New("boom")}, wantCode: "DB001"},
		{name: "store write with known cause", err: &StoreWriteError{Table: "toners", Err: errors.New("dial tcp: connection refused")}, wantCode: "DB004"},
		{name: "unique constraint", err: errors.New("ERROR: duplicate key value violates unique constraint"), wantCode: "DB002"},
		{name: "foreign key", err: errors.New("violates foreign key constraint"), wantCode: "DB003"},
		{name: "deadline before timeout", err: errors.New("context deadline exceeded (timeout)"), wantCode: "REQ002"},
		{name: "plain timeout", err: errors.New("i/o timeout"), wantCode: "DB006"},
		{name: "body too large", err: errors.New("http: request body too large"), wantCode: "REQ003"},
		{name: "bad request body", err: errors.New("invalid request body: unexpected EOF"), wantCode: "REQ005"},
		{name: "case insensitive matching", err: errors.New("CONNECTION RESET by peer"), wantCode: "DB005"},
		{name: "unknown error returns default", err: errors.New("some random internal error"), wantCode: "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(&FieldMissingError{Label: "Modelo"})

	expected := "A required field is missing (Code: IMP003). Fill in the named column and import again"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error is not user facing", err: nil, want: false},
		{name: "known error is user facing", err: errors.New("duplicate key"), want: true},
		{name: "typed error is user facing", err: &EmptyBatchError{}, want: true},
		{name: "unknown error is not user facing", err: errors.New("random internal error xyz"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := errors.New("pq: duplicate key value")
		userErr := NewUserError(techErr)

		if userErr.Error() != "This value must be unique but already exists" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if !errors.Is(userErr, techErr) {
			t.Error("Unwrap() should return original error")
		}
	})
}
