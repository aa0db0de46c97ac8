// Package core provides the tabular exchange engine for quality records.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. Engine errors are matched by type first; anything else is matched
// against known substrings of the technical message.
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Invalid file: the upload is not a readable workbook or CSV
//	         Action: Save the file as .xlsx or .csv with the entity's headers
//	         Match: *FormatError
//
//	IMP002 - Empty file: the sheet has a header but no data rows
//	         Action: Add at least one data row
//	         Match: *EmptyBatchError
//
//	IMP003 - Missing field: a required column is absent for a row
//	         Action: Fill in the named column
//	         Match: *FieldMissingError
//
//	IMP004 - Unresolved reference: a referenced record does not exist
//	         Action: Import the referenced entity first
//	         Match: *ResolutionError
//
//	IMP005 - Duplicate: a record with the same key already exists
//	         Match: *DuplicateSkip
//
//	IMP006 - System busy: too many imports in progress
//	         Match: ErrTooManyImports
//
// # Entity Errors (ENT001-ENT099)
//
//	ENT001 - Unknown entity         Match: ErrUnknownEntity
//	ENT002 - Record not found       Match: ErrNotFound
//	ENT003 - Invalid field          Match: ErrInvalidField
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Write failed            Match: *StoreWriteError (no better pattern)
//	DB002 - Unique constraint       Patterns: "duplicate key", "violates unique"
//	DB003 - Foreign key             Patterns: "violates foreign key"
//	DB004 - Connection refused      Patterns: "connection refused"
//	DB005 - Connection reset        Patterns: "connection reset"
//	DB006 - Timeout                 Patterns: "timeout"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled      Patterns: "context canceled"
//	REQ002 - Request timeout        Patterns: "context deadline exceeded"
//	REQ003 - File too large         Patterns: "request body too large", "file too large"
//	REQ004 - No file                Patterns: "no file provided"
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Support staff should check application logs
// for the original technical error when users report ERR000.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgFormat = UserMessage{
		Message: "The file is not a readable spreadsheet",
		Action:  "Save the file as .xlsx or .csv with the entity's headers",
		Code:    "IMP001",
	}
	msgEmpty = UserMessage{
		Message: "The file has no data rows",
		Action:  "Add at least one data row below the header",
		Code:    "IMP002",
	}
	msgFieldMissing = UserMessage{
		Message: "A required field is missing",
		Action:  "Fill in the named column and import again",
		Code:    "IMP003",
	}
	msgResolution = UserMessage{
		Message: "A referenced record does not exist",
		Action:  "Import the referenced records first",
		Code:    "IMP004",
	}
	msgDuplicate = UserMessage{
		Message: "A record with this key already exists",
		Action:  "Remove the duplicate row or edit the existing record",
		Code:    "IMP005",
	}
	msgBusy = UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP006",
	}
	msgUnknownEntity = UserMessage{
		Message: "Unknown entity",
		Action:  "Check the entity name against the entities list",
		Code:    "ENT001",
	}
	msgNotFound = UserMessage{
		Message: "Record not found",
		Action:  "Refresh the list, the record may have been deleted",
		Code:    "ENT002",
	}
	msgInvalidField = UserMessage{
		Message: "This field cannot be edited",
		Action:  "Check the field name against the entity columns",
		Code:    "ENT003",
	}
	msgWrite = UserMessage{
		Message: "The record could not be saved",
		Action:  "Please try again or contact support",
		Code:    "DB001",
	}
)

// errorPatterns maps technical error substrings (case-insensitive) to user
// messages. The first match wins, so specific patterns come first.
var errorPatterns = []errorPattern{
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check for duplicate entries in your file",
			Code:    "DB002",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check for duplicate entries in your file",
			Code:    "DB002",
		},
	},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Import the referenced records first",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "REQ002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller files",
			Code:    "REQ003",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller files",
			Code:    "REQ003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a spreadsheet to import",
			Code:    "REQ004",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request body could not be read",
			Action:  "Send a JSON object mapping field names to values",
			Code:    "REQ005",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Engine error types are matched first, then known message patterns.
//
// Example:
//
//	msg := MapError(&FieldMissingError{Label: "Modelo"})
//	// msg.Code == "IMP003"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	if msg, ok := mapTyped(err); ok {
		return msg
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	var writeErr *StoreWriteError
	if errors.As(err, &writeErr) {
		return msgWrite
	}
	return defaultMessage
}

func mapTyped(err error) (UserMessage, bool) {
	var (
		formatErr  *FormatError
		emptyErr   *EmptyBatchError
		missingErr *FieldMissingError
		resolveErr *ResolutionError
		dupErr     *DuplicateSkip
	)

	switch {
	case errors.As(err, &formatErr):
		return msgFormat, true
	case errors.As(err, &emptyErr):
		return msgEmpty, true
	case errors.As(err, &missingErr):
		return msgFieldMissing, true
	case errors.As(err, &resolveErr):
		return msgResolution, true
	case errors.As(err, &dupErr):
		return msgDuplicate, true
	case errors.Is(err, ErrTooManyImports):
		return msgBusy, true
	case errors.Is(err, ErrUnknownEntity):
		return msgUnknownEntity, true
	case errors.Is(err, ErrNotFound):
		return msgNotFound, true
	case errors.Is(err, ErrInvalidField):
		return msgInvalidField, true
	}
	return UserMessage{}, false
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps an error with a user-facing message.
type UserError struct {
	Err     error
	Message UserMessage
}

func (e *UserError) Error() string {
	return e.Message.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError wraps err with its mapped user message.
// Returns nil for a nil error.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Err:     err,
		Message: MapError(err),
	}
}
