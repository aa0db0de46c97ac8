package core

import "fmt"

// RowState is a position in the per-row import state machine:
//
//	Parsed -> MissingRequiredField                    (Failed)
//	Parsed -> Valid -> Resolving -> Unresolved        (Skipped)
//	Resolving -> Resolved -> DuplicateCheck -> Duplicate (Skipped)
//	DuplicateCheck -> Writing -> WriteError           (Failed)
//	Writing -> WriteOK                                (Imported)
type RowState int

const (
	StateParsed RowState = iota
	StateMissingRequiredField
	StateValid
	StateResolving
	StateUnresolved
	StateResolved
	StateDuplicateCheck
	StateDuplicate
	StateWriting
	StateWriteError
	StateWriteOK
)

var stateNames = [...]string{
	StateParsed:               "parsed",
	StateMissingRequiredField: "missing_required_field",
	StateValid:                "valid",
	StateResolving:            "resolving",
	StateUnresolved:           "unresolved",
	StateResolved:             "resolved",
	StateDuplicateCheck:       "duplicate_check",
	StateDuplicate:            "duplicate",
	StateWriting:              "writing",
	StateWriteError:           "write_error",
	StateWriteOK:              "write_ok",
}

func (s RowState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// MarshalText lets csvutil and encoding/json render states by name.
func (s RowState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name written by MarshalText.
func (s *RowState) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = RowState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown row state %q", text)
}

// Terminal returns the status a state ends in, or false when the row
// still has steps to run.
func (s RowState) Terminal() (Status, bool) {
	switch s {
	case StateMissingRequiredField, StateWriteError:
		return StatusFailed, true
	case StateUnresolved, StateDuplicate:
		return StatusSkipped, true
	case StateWriteOK:
		return StatusImported, true
	default:
		return 0, false
	}
}

// Status is the terminal classification of a row.
type Status int

const (
	StatusImported Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusImported:
		return "imported"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText lets csvutil and encoding/json render statuses by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name written by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	for _, st := range []Status{StatusImported, StatusSkipped, StatusFailed} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// Outcome is the result of one input row. Line is 1-based and counts the
// header, so the first data row is line 2.
type Outcome struct {
	Line   int      `json:"line" csv:"line"`
	Status Status   `json:"status" csv:"status"`
	State  RowState `json:"state" csv:"state"`
	Reason string   `json:"reason,omitempty" csv:"reason,omitempty"`
	ID     string   `json:"id,omitempty" csv:"id,omitempty"`
}
