package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/sgq/internal/metrics"
)

// List returns an entity's records in its display order, with referenced
// records attached, nested collections loaded, and derived fields
// recomputed.
func (s *Service) List(ctx context.Context, entity string) ([]Record, error) {
	def, err := lookupEntity(entity)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, def)
}

// Export renders one entity as a single-sheet workbook.
func (s *Service) Export(ctx context.Context, entity string) ([]byte, error) {
	def, err := lookupEntity(entity)
	if err != nil {
		return nil, err
	}

	recs, err := s.load(ctx, def)
	if err != nil {
		return nil, err
	}
	metrics.ExportsTotal.WithLabelValues(def.Info.Key).Inc()
	return WriteWorkbook(BuildSheet(def, recs))
}

// ExportAll renders every registered entity into one workbook, one sheet
// per entity.
func (s *Service) ExportAll(ctx context.Context) ([]byte, error) {
	defs := All()
	sheets := make([]Sheet, 0, len(defs))
	for _, def := range defs {
		recs, err := s.load(ctx, def)
		if err != nil {
			return nil, err
		}
		metrics.ExportsTotal.WithLabelValues(def.Info.Key).Inc()
		sheets = append(sheets, BuildSheet(def, recs))
	}
	return WriteWorkbook(sheets...)
}

func (s *Service) load(ctx context.Context, def EntityDefinition) ([]Record, error) {
	recs, err := s.store.SelectAll(ctx, def.Info.Table, nil, def.Order...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", def.Info.Key, err)
	}

	if err := s.attachReferences(ctx, def, recs); err != nil {
		return nil, err
	}
	if err := s.attachNested(ctx, def, recs); err != nil {
		return nil, err
	}

	if def.Derive != nil {
		for _, rec := range recs {
			// Stored values stay in place when a row can no longer be derived.
			if err := def.Derive(rec); err != nil {
				slog.Warn("derive on read failed", "entity", def.Info.Key, "id", rec.ID(), "error", err)
			}
		}
	}
	return recs, nil
}

// attachReferences loads each referenced table once and attaches the
// matching record under ref.As. Dangling references get an empty record.
func (s *Service) attachReferences(ctx context.Context, def EntityDefinition, recs []Record) error {
	for _, ref := range def.References {
		if ref.As == "" || len(recs) == 0 {
			continue
		}

		targets, err := s.store.SelectAll(ctx, ref.Table, nil)
		if err != nil {
			return fmt.Errorf("load %s: %w", ref.Table, err)
		}
		byID := make(map[string]Record, len(targets))
		for _, t := range targets {
			byID[t.ID()] = t
		}

		for _, rec := range recs {
			if target, ok := byID[rec.String(ref.Field)]; ok {
				rec[ref.As] = target
			} else {
				rec[ref.As] = Record{}
			}
		}
	}
	return nil
}

// attachNested loads child rows per nested table and groups them by parent.
func (s *Service) attachNested(ctx context.Context, def EntityDefinition, recs []Record) error {
	for _, nested := range def.Nested {
		if len(recs) == 0 {
			continue
		}

		var filter Filter
		if len(recs) == 1 {
			filter = Filter{nested.ParentField: recs[0].ID()}
		}
		children, err := s.store.SelectAll(ctx, nested.Table, filter, Order{Field: "created_at"}, Order{Field: "id"})
		if err != nil {
			return fmt.Errorf("load %s: %w", nested.Table, err)
		}

		byParent := make(map[string][]LineItem)
		for _, c := range children {
			parent := c.String(nested.ParentField)
			byParent[parent] = append(byParent[parent], LineItem{
				Title: c.String(ItemTitleField),
				Value: c.Number(ItemValueField),
			})
		}

		for _, rec := range recs {
			rec[nested.Key] = byParent[rec.ID()]
		}
	}
	return nil
}

// getRecord loads one record by id with references and nested rows attached.
func (s *Service) getRecord(ctx context.Context, def EntityDefinition, id string) (Record, error) {
	recs, err := s.store.SelectAll(ctx, def.Info.Table, Filter{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", def.Info.Key, id, err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%s %s: %w", def.Info.Key, id, ErrNotFound)
	}

	if err := s.attachReferences(ctx, def, recs[:1]); err != nil {
		return nil, err
	}
	if err := s.attachNested(ctx, def, recs[:1]); err != nil {
		return nil, err
	}
	return recs[0], nil
}
