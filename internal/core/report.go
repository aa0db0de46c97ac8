package core

import (
	"fmt"
	"strings"
)

// DefaultMaxReasons bounds the reasons carried by a report.
const DefaultMaxReasons = 20

// Report is the end-of-batch summary returned to the caller. Counts are
// independent of the order rows finished in.
type Report struct {
	Entity         string    `json:"entity"`
	BatchID        string    `json:"batch_id"`
	DryRun         bool      `json:"dry_run,omitempty"`
	Imported       int       `json:"imported"`
	Skipped        int       `json:"skipped"`
	Failed         int       `json:"failed"`
	Reasons        []string  `json:"reasons,omitempty"`
	ReasonsDropped int       `json:"reasons_dropped,omitempty"`
	Total          *float64  `json:"total,omitempty"`
	Outcomes       []Outcome `json:"-"`
}

// buildReport folds row outcomes, in line order, into a report. records
// holds the imported record for each outcome (nil otherwise) and feeds the
// entity total.
func buildReport(def EntityDefinition, batchID string, outcomes []Outcome, records []Record, maxReasons int) *Report {
	if maxReasons <= 0 {
		maxReasons = DefaultMaxReasons
	}

	r := &Report{
		Entity:   def.Info.Key,
		BatchID:  batchID,
		Outcomes: outcomes,
	}

	var total float64
	for i, o := range outcomes {
		switch o.Status {
		case StatusImported:
			r.Imported++
			if def.Info.TotalField != "" && records[i] != nil {
				total += records[i].Number(def.Info.TotalField)
			}
		case StatusSkipped:
			r.Skipped++
		case StatusFailed:
			r.Failed++
		}

		if o.Reason == "" {
			continue
		}
		if len(r.Reasons) < maxReasons {
			r.Reasons = append(r.Reasons, fmt.Sprintf("line %d: %s", o.Line, o.Reason))
		} else {
			r.ReasonsDropped++
		}
	}

	if def.Info.TotalField != "" {
		total = Round(total, 3)
		r.Total = &total
	}
	return r
}

// Rows returns the number of rows accounted for.
func (r *Report) Rows() int {
	return r.Imported + r.Skipped + r.Failed
}

// Summary renders the one-line message shown to the user.
func (r *Report) Summary() string {
	var b strings.Builder
	if r.DryRun {
		b.WriteString("Preview: ")
	} else {
		b.WriteString("Import complete: ")
	}
	fmt.Fprintf(&b, "%d imported, %d skipped, %d failed", r.Imported, r.Skipped, r.Failed)
	if r.Total != nil {
		fmt.Fprintf(&b, " (total %s)", FormatCurrency(*r.Total))
	}
	return b.String()
}
