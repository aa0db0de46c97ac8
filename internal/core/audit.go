package core

import (
	"context"
	"log/slog"
)

// AuditTable receives one record per import, update, and delete.
const AuditTable = "audit_log"

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionImport       AuditAction = "import"
	ActionRecordUpdate AuditAction = "record_update"
	ActionRecordDelete AuditAction = "record_delete"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityMedium AuditSeverity = "medium"
	SeverityHigh   AuditSeverity = "high"
)

// severityFor returns the default severity for an action.
func severityFor(action AuditAction) AuditSeverity {
	if action == ActionRecordUpdate {
		return SeverityMedium
	}
	return SeverityHigh
}

// AuditEntry describes one audited action.
type AuditEntry struct {
	Action   AuditAction
	Entity   string
	RecordID string
	BatchID  string
	FileName string
	Imported int
	Skipped  int
	Failed   int
}

// record converts the entry to a store record, stamped with the caller.
func (e AuditEntry) record(ctx context.Context) Record {
	id := IdentityFromContext(ctx)
	rec := Record{
		"action":    string(e.Action),
		"severity":  string(severityFor(e.Action)),
		"entity":    e.Entity,
		"user_id":   id.UserID,
		"user_name": id.Name,
	}

	if ip := GetIPAddressFromContext(ctx); ip != "" {
		rec["ip_address"] = ip
	}
	if e.RecordID != "" {
		rec["record_id"] = e.RecordID
	}
	if e.Action == ActionImport {
		rec["batch_id"] = e.BatchID
		rec["file_name"] = e.FileName
		rec["rows_imported"] = float64(e.Imported)
		rec["rows_skipped"] = float64(e.Skipped)
		rec["rows_failed"] = float64(e.Failed)
	}
	return rec
}

// audit writes entry to the audit table. Failures are logged, never
// returned: the audited change has already happened.
func (s *Service) audit(ctx context.Context, entry AuditEntry) {
	if _, err := s.store.InsertOne(ctx, AuditTable, entry.record(ctx)); err != nil {
		slog.Error("audit log write failed",
			"action", entry.Action,
			"entity", entry.Entity,
			"error", err,
		)
	}
}
