package core

import (
	"context"
	"fmt"
	"time"
)

// Options tunes a Service. Zero values select the defaults.
type Options struct {
	Workers       int           // Rows in flight per batch (1..MaxWorkers)
	MaxConcurrent int           // Concurrent batches
	MaxWait       time.Duration // Wait for a batch slot before ErrTooManyImports
	MaxReasons    int           // Reasons kept per report
}

// Service is the entry point for imports, exports, and record edits.
type Service struct {
	store      Store
	limiter    *ImportLimiter
	workers    int
	maxReasons int
}

// NewService creates a Service over store.
func NewService(store Store, opts Options) *Service {
	return &Service{
		store:      store,
		limiter:    NewImportLimiter(opts.MaxConcurrent, opts.MaxWait),
		workers:    NewBatchWriter(store, opts.Workers).Workers(),
		maxReasons: opts.MaxReasons,
	}
}

// EntitySummary is the public description of a registered entity.
type EntitySummary struct {
	Key        string   `json:"key"`
	Label      string   `json:"label"`
	Sheet      string   `json:"sheet"`
	Policy     string   `json:"duplicate_policy"`
	Columns    []string `json:"columns"`
	Required   []string `json:"required"`
	References []string `json:"references,omitempty"`
}

// Entities describes every registered entity in registration order.
func (s *Service) Entities() []EntitySummary {
	defs := All()
	out := make([]EntitySummary, 0, len(defs))
	for _, def := range defs {
		sum := EntitySummary{
			Key:    def.Info.Key,
			Label:  def.Info.Label,
			Sheet:  def.Info.Sheet,
			Policy: def.Policy.String(),
		}
		for _, f := range def.Fields {
			sum.Columns = append(sum.Columns, f.Label)
			if f.Required {
				sum.Required = append(sum.Required, f.Label)
			}
		}
		for _, ref := range def.References {
			sum.Columns = append(sum.Columns, ref.Label)
			sum.Required = append(sum.Required, ref.Label)
			sum.References = append(sum.References, ref.Table)
		}
		out = append(out, sum)
	}
	return out
}

// LimiterStatus reports import slot occupancy.
func (s *Service) LimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until running imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

func lookupEntity(key string) (EntityDefinition, error) {
	def, ok := Get(key)
	if !ok {
		return EntityDefinition{}, fmt.Errorf("%w: %s", ErrUnknownEntity, key)
	}
	return def, nil
}
