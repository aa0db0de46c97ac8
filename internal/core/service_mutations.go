package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// storeManaged fields are assigned by the store and never patched.
var storeManaged = map[string]bool{"id": true, "created_at": true, "created_by": true}

// UpdateRecord applies patch to one record, recomputes derived fields, and
// writes the result. A nested collection present in patch replaces the
// stored child rows. Returns the updated record as List would show it.
func (s *Service) UpdateRecord(ctx context.Context, entity, id string, patch Record) (Record, error) {
	def, err := lookupEntity(entity)
	if err != nil {
		return nil, err
	}

	rec, err := s.getRecord(ctx, def, id)
	if err != nil {
		return nil, err
	}

	replaced, err := s.applyPatch(ctx, def, rec, patch)
	if err != nil {
		return nil, err
	}

	if def.Derive != nil {
		if err := def.Derive(rec); err != nil {
			return nil, err
		}
	}

	row := Persistable(def, rec)
	for field := range storeManaged {
		delete(row, field)
	}
	if err := s.store.UpdateOne(ctx, def.Info.Table, id, row); err != nil {
		return nil, &StoreWriteError{Table: def.Info.Table, Err: err}
	}

	for _, nested := range replaced {
		if err := s.replaceChildren(ctx, nested, id, rec.Items(nested.Key)); err != nil {
			return nil, err
		}
	}

	slog.Info("record updated", "entity", entity, "id", id, "fields", len(patch))
	s.audit(ctx, AuditEntry{Action: ActionRecordUpdate, Entity: entity, RecordID: id})
	return rec, nil
}

// applyPatch merges patch into rec, coercing values by field kind. It
// returns the nested collections the patch replaces.
func (s *Service) applyPatch(ctx context.Context, def EntityDefinition, rec, patch Record) ([]NestedSpec, error) {
	var replaced []NestedSpec

keys:
	for key, value := range patch {
		if storeManaged[key] {
			return nil, fmt.Errorf("%w: %s is read-only", ErrInvalidField, key)
		}

		if spec, ok := def.Field(key); ok {
			rec[key] = coercePatch(spec, value)
			continue
		}

		for _, ref := range def.References {
			if ref.Field != key {
				continue
			}
			target, err := s.referenced(ctx, ref, fmt.Sprint(value))
			if err != nil {
				return nil, err
			}
			rec[key] = target.ID()
			if ref.As != "" {
				rec[ref.As] = target
			}
			continue keys
		}

		for _, nested := range def.Nested {
			if nested.Key != key {
				continue
			}
			items, ok := value.([]LineItem)
			if !ok {
				return nil, fmt.Errorf("%w: %s must be a list of items", ErrInvalidField, key)
			}
			rec[key] = items
			replaced = append(replaced, nested)
			continue keys
		}

		return nil, fmt.Errorf("%w: %s has no field %s", ErrInvalidField, def.Info.Key, key)
	}
	return replaced, nil
}

// coercePatch converts an edited value to the field's kind.
func coercePatch(spec FieldSpec, value any) any {
	switch v := value.(type) {
	case nil:
		return absentValue(spec)
	case float64:
		if spec.Kind == KindNumber {
			return v
		}
		return coerce(spec, Record{"v": v}.String("v"))
	case string:
		if strings.TrimSpace(v) == "" && spec.Kind != KindString {
			return absentValue(spec)
		}
		return coerce(spec, v)
	default:
		return coerce(spec, fmt.Sprint(v))
	}
}

// referenced loads a record by id for a reference edit.
func (s *Service) referenced(ctx context.Context, ref ForeignKeyRef, id string) (Record, error) {
	recs, err := s.store.SelectAll(ctx, ref.Table, Filter{"id": id})
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", ref.Label, err)
	}
	if len(recs) == 0 {
		return nil, &ResolutionError{Label: ref.Label, Value: id}
	}
	return recs[0], nil
}

func (s *Service) replaceChildren(ctx context.Context, nested NestedSpec, parentID string, items []LineItem) error {
	if err := s.deleteWhere(ctx, nested.Table, nested.ParentField, parentID); err != nil {
		return err
	}
	for _, item := range items {
		child := Record{
			nested.ParentField: parentID,
			ItemTitleField:     item.Title,
			ItemValueField:     item.Value,
		}
		if _, err := s.store.InsertOne(ctx, nested.Table, child); err != nil {
			return &StoreWriteError{Table: nested.Table, Err: err}
		}
	}
	return nil
}

// DeleteRecord removes one record together with its cascaded and nested
// child rows. Children go first so no dangling references remain if the
// parent delete fails.
func (s *Service) DeleteRecord(ctx context.Context, entity, id string) error {
	def, err := lookupEntity(entity)
	if err != nil {
		return err
	}

	existing, err := s.store.SelectAll(ctx, def.Info.Table, Filter{"id": id})
	if err != nil {
		return fmt.Errorf("get %s %s: %w", entity, id, err)
	}
	if len(existing) == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
	}

	for _, c := range def.Cascades {
		if err := s.deleteWhere(ctx, c.Table, c.Field, id); err != nil {
			return err
		}
	}
	for _, nested := range def.Nested {
		if err := s.deleteWhere(ctx, nested.Table, nested.ParentField, id); err != nil {
			return err
		}
	}

	if err := s.store.DeleteOne(ctx, def.Info.Table, id); err != nil {
		return &StoreWriteError{Table: def.Info.Table, Err: err}
	}

	slog.Info("record deleted", "entity", entity, "id", id)
	s.audit(ctx, AuditEntry{Action: ActionRecordDelete, Entity: entity, RecordID: id})
	return nil
}

// deleteWhere deletes every row of table whose field equals value, one
// store call per row.
func (s *Service) deleteWhere(ctx context.Context, table, field, value string) error {
	rows, err := s.store.SelectAll(ctx, table, Filter{field: value})
	if err != nil {
		return fmt.Errorf("list %s: %w", table, err)
	}
	for _, row := range rows {
		if err := s.store.DeleteOne(ctx, table, row.ID()); err != nil {
			return &StoreWriteError{Table: table, Err: err}
		}
	}
	return nil
}
