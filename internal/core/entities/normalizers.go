package entities

import (
	"strconv"
	"strings"

	"github.com/JonMunkholm/sgq/internal/core"
)

// NormalizePercent converts "5%" to "0.05". Values without a percent sign
// are already fractions and pass through unchanged.
func NormalizePercent(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "%") {
		return s
	}

	v, ok := core.ParseNumber(strings.TrimSuffix(s, "%"))
	if !ok {
		return s
	}
	return strconv.FormatFloat(v/100, 'f', -1, 64)
}

// Export column builders.

func text(label, field string) core.ExportColumn {
	return core.ExportColumn{Label: label, Value: func(r core.Record) any {
		return r[field]
	}}
}

func number(label, field string) core.ExportColumn {
	return core.ExportColumn{Label: label, Value: func(r core.Record) any {
		if r[field] == nil {
			return nil
		}
		return r.Number(field)
	}}
}

func percent(label, field string) core.ExportColumn {
	return core.ExportColumn{Label: label, Value: func(r core.Record) any {
		return core.FormatPercent(r.Number(field))
	}}
}

func currency(label, field string) core.ExportColumn {
	return core.ExportColumn{Label: label, Value: func(r core.Record) any {
		return core.FormatCurrency(r.Number(field))
	}}
}

func date(label, field string) core.ExportColumn {
	return core.ExportColumn{Label: label, Value: func(r core.Record) any {
		if r[field] == nil {
			return nil
		}
		return core.FormatDate(r.String(field))
	}}
}

// ref reads a field of the record attached under alias.
func ref(label, alias string, col func(string, string) core.ExportColumn, field string) core.ExportColumn {
	inner := col(label, field)
	return core.ExportColumn{Label: label, Value: func(r core.Record) any {
		return inner.Value(r.Ref(alias))
	}}
}

var newestFirst = []core.Order{{Field: "created_at", Desc: true}, {Field: "id", Desc: true}}
