package core

import "strings"

// RowMapper turns a SourceRow into a Record using an entity's field specs.
type RowMapper struct {
	def EntityDefinition
}

// NewRowMapper creates a mapper for def.
func NewRowMapper(def EntityDefinition) *RowMapper {
	return &RowMapper{def: def}
}

// Map builds the record for row. Natural-key values for foreign keys are
// returned separately, keyed by ForeignKeyRef.Field, for the resolver.
// A *FieldMissingError is returned when a required column is absent.
func (m *RowMapper) Map(row SourceRow) (Record, map[string]string, error) {
	rec := make(Record, len(m.def.Fields)+len(m.def.Nested))

	for _, spec := range m.def.Fields {
		raw, present := lookup(row, spec.Label)
		if !present {
			if spec.Required {
				return nil, nil, &FieldMissingError{Label: spec.Label}
			}
			rec[spec.Field] = absentValue(spec)
			continue
		}
		rec[spec.Field] = coerce(spec, raw)
	}

	refs := make(map[string]string, len(m.def.References))
	for _, ref := range m.def.References {
		raw, present := lookup(row, ref.Label)
		if !present {
			return nil, nil, &FieldMissingError{Label: ref.Label}
		}
		refs[ref.Field] = raw
	}

	for _, nested := range m.def.Nested {
		rec[nested.Key] = mapNested(row, nested)
	}

	return rec, refs, nil
}

// Recognizes reports whether any header is one of the entity's column
// labels. A sheet matching none of them is the wrong file.
func (m *RowMapper) Recognizes(headers []string) bool {
	for _, h := range headers {
		for _, spec := range m.def.Fields {
			if h == spec.Label {
				return true
			}
		}
		for _, ref := range m.def.References {
			if h == ref.Label {
				return true
			}
		}
		for _, nested := range m.def.Nested {
			if strings.HasPrefix(h, nested.Prefix+" ") {
				return true
			}
		}
	}
	return false
}

// lookup finds a column by exact label. Blank cells count as absent.
func lookup(row SourceRow, label string) (string, bool) {
	raw, ok := row[label]
	if !ok || strings.TrimSpace(raw) == "" {
		return "", false
	}
	return raw, true
}

func absentValue(spec FieldSpec) any {
	if spec.Kind == KindEnum && spec.Default == nil && spec.Fallback != "" {
		return spec.Fallback
	}
	return spec.Default
}

func coerce(spec FieldSpec, raw string) any {
	if spec.Normalizer != nil {
		raw = spec.Normalizer(raw)
	}

	switch spec.Kind {
	case KindNumber:
		return CoerceNumber(raw)
	case KindEnum:
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return spec.Fallback
		}
		return raw
	default:
		return strings.TrimSpace(raw)
	}
}

// mapNested reads numbered title/value pairs until a title column is absent.
func mapNested(row SourceRow, nested NestedSpec) []LineItem {
	var items []LineItem
	for i := 1; i <= MaxNestedSlots; i++ {
		title, ok := lookup(row, nested.TitleLabel(i))
		if !ok {
			break
		}
		value, _ := lookup(row, nested.ValueLabel(i))
		items = append(items, LineItem{
			Title: strings.TrimSpace(title),
			Value: CoerceNumber(value),
		})
	}
	return items
}
