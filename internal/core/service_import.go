package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/sgq/internal/logging"
	"github.com/JonMunkholm/sgq/internal/metrics"
)

// Import reads an uploaded workbook or CSV and writes each row into the
// entity's table. Unreadable or empty files fail the whole call before any
// write; every other problem is recorded per row in the report.
//
// Once rows start, cancelling ctx no longer stops the batch: every row
// runs to a terminal state.
func (s *Service) Import(ctx context.Context, entity, fileName string, data []byte) (*Report, error) {
	return s.runImport(ctx, entity, fileName, data, false)
}

// Preview runs the same pipeline as Import without writing. Rows that would
// be written are counted as imported.
func (s *Service) Preview(ctx context.Context, entity, fileName string, data []byte) (*Report, error) {
	return s.runImport(ctx, entity, fileName, data, true)
}

func (s *Service) runImport(ctx context.Context, entity, fileName string, data []byte, dryRun bool) (*Report, error) {
	def, err := lookupEntity(entity)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()
	metrics.ImportsActive.Inc()
	defer metrics.ImportsActive.Dec()

	batchID := uuid.New().String()
	log := logging.WithFields(ctx, "batch_id", batchID, "entity", entity, "file", fileName, "dry_run", dryRun)
	start := time.Now()

	table, err := ReadTable(fileName, data)
	if err != nil {
		log.Warn("import rejected", "error", err)
		s.recordRejected(entity, dryRun, "format_error", start)
		return nil, err
	}
	if len(table.Rows) == 0 {
		s.recordRejected(entity, dryRun, "empty", start)
		return nil, &EmptyBatchError{FileName: fileName}
	}
	mapper := NewRowMapper(def)
	if !mapper.Recognizes(table.Headers) {
		err := &FormatError{FileName: fileName, Err: fmt.Errorf("no column matches a %s label", def.Info.Label)}
		log.Warn("import rejected", "error", err, "headers", table.Headers)
		s.recordRejected(entity, dryRun, "format_error", start)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rowCtx := context.WithoutCancel(ctx)
	writer := NewBatchWriter(s.store, s.workers)
	b := &batch{
		def:      def,
		mapper:   mapper,
		resolver: NewForeignKeyResolver(s.store),
		guard:    NewDuplicateGuard(s.store),
		writer:   writer,
		dryRun:   dryRun,
		log:      log,
	}

	n := len(table.Rows)
	outcomes := make([]Outcome, n)
	records := make([]Record, n)
	writer.Run(n, func(i int) {
		outcomes[i], records[i] = b.process(rowCtx, table.Lines[i], table.Rows[i])
	})

	report := buildReport(def, batchID, outcomes, records, s.maxReasons)
	report.DryRun = dryRun

	log.Info("import finished",
		"rows", n,
		"imported", report.Imported,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"duration", time.Since(start),
	)

	if !dryRun {
		metrics.RecordBatch(entity, "completed", report.Imported, report.Skipped, report.Failed, time.Since(start))
		s.audit(rowCtx, AuditEntry{
			Action:   ActionImport,
			Entity:   entity,
			BatchID:  batchID,
			FileName: fileName,
			Imported: report.Imported,
			Skipped:  report.Skipped,
			Failed:   report.Failed,
		})
	}
	return report, nil
}

func (s *Service) recordRejected(entity string, dryRun bool, result string, start time.Time) {
	if !dryRun {
		metrics.RecordBatch(entity, result, 0, 0, 0, time.Since(start))
	}
}

// batch holds the per-call collaborators shared by all rows of one import.
type batch struct {
	def      EntityDefinition
	mapper   *RowMapper
	resolver *ForeignKeyResolver
	guard    *DuplicateGuard
	writer   *BatchWriter
	dryRun   bool
	log      *slog.Logger
}

// process drives one row through the state machine to a terminal state.
// The returned record is non-nil only for imported rows.
func (b *batch) process(ctx context.Context, line int, row SourceRow) (out Outcome, imported Record) {
	out.Line = line

	var (
		state  = StateParsed
		rec    Record
		refs   map[string]string
		reason error
		held   bool // rec's natural key is claimed and not yet settled
	)

	defer func() {
		if r := recover(); r != nil {
			b.log.Error("panic processing row", "line", line, "panic", r)
			out = Outcome{
				Line:   line,
				Status: StatusFailed,
				State:  StateWriteError,
				Reason: fmt.Sprintf("internal error: %v", r),
			}
			imported = nil
		}
	}()
	defer func() {
		if held {
			b.guard.Release(b.def, rec)
		}
	}()

	for {
		if status, done := state.Terminal(); done {
			out.Status, out.State = status, state
			if reason != nil {
				out.Reason = reason.Error()
				b.log.Debug("row outcome", "line", line, "status", status, "state", state, "reason", out.Reason)
			}
			if status != StatusImported {
				return out, nil
			}
			out.ID = rec.ID()
			return out, rec
		}

		switch state {
		case StateParsed:
			rec, refs, reason = b.mapper.Map(row)
			if reason != nil {
				state = StateMissingRequiredField
			} else {
				state = StateValid
			}

		case StateValid:
			state = StateResolving

		case StateResolving:
			if reason = b.resolver.Resolve(ctx, b.def.References, rec, refs); reason != nil {
				state = StateUnresolved
			} else {
				state = StateResolved
			}

		case StateResolved:
			if b.def.Derive != nil {
				if reason = b.def.Derive(rec); reason != nil {
					state = StateMissingRequiredField
					continue
				}
			}
			state = StateDuplicateCheck

		case StateDuplicateCheck:
			reason = b.guard.Check(ctx, b.def, rec)
			var dup *DuplicateSkip
			switch {
			case reason == nil:
				held = true
				state = StateWriting
			case errors.As(reason, &dup):
				state = StateDuplicate
			default:
				state = StateWriteError
			}

		case StateWriting:
			state, reason = b.write(ctx, line, rec)
			if state == StateWriteOK {
				b.guard.Confirm(b.def, rec)
			} else {
				b.guard.Release(b.def, rec)
			}
			held = false
		}
	}
}

func (b *batch) write(ctx context.Context, line int, rec Record) (RowState, error) {
	if b.dryRun {
		return StateWriteOK, nil
	}

	inserted, childErrs, err := b.writer.Write(ctx, b.def, rec)
	if err != nil {
		return StateWriteError, err
	}

	rec["id"] = inserted["id"]
	rec["created_at"] = inserted["created_at"]

	if len(childErrs) == 0 {
		return StateWriteOK, nil
	}

	msgs := make([]string, len(childErrs))
	for i, e := range childErrs {
		b.log.Warn("nested row write failed", "line", line, "parent_id", inserted.ID(), "error", e)
		msgs[i] = e.Error()
	}
	return StateWriteOK, fmt.Errorf("imported with errors: %s", strings.Join(msgs, "; "))
}
