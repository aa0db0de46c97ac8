package core

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is Excel's worksheet name limit.
const maxSheetName = 31

// Sheet is one worksheet ready to be written.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// BuildSheet lays out records under the entity's fixed header list. Nested
// collections are flattened into numbered title/value column pairs, as many
// as the largest collection in recs (at most MaxNestedSlots).
func BuildSheet(def EntityDefinition, recs []Record) Sheet {
	sheet := Sheet{Name: def.Info.Sheet}
	for _, col := range def.Columns {
		sheet.Headers = append(sheet.Headers, col.Label)
	}

	slots := make([]int, len(def.Nested))
	for i, nested := range def.Nested {
		for _, rec := range recs {
			slots[i] = max(slots[i], len(rec.Items(nested.Key)))
		}
		slots[i] = min(slots[i], MaxNestedSlots)
		for n := 1; n <= slots[i]; n++ {
			sheet.Headers = append(sheet.Headers, nested.TitleLabel(n), nested.ValueLabel(n))
		}
	}

	for _, rec := range recs {
		row := make([]any, 0, len(sheet.Headers))
		for _, col := range def.Columns {
			row = append(row, col.Value(rec))
		}
		for i, nested := range def.Nested {
			items := rec.Items(nested.Key)
			for n := 0; n < slots[i]; n++ {
				if n < len(items) {
					row = append(row, items[n].Title, items[n].Value)
				} else {
					row = append(row, nil, nil)
				}
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	return sheet
}

// WriteWorkbook renders sheets into .xlsx bytes, one worksheet each.
func WriteWorkbook(sheets ...Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	for i, sheet := range sheets {
		name := sheetName(sheet.Name)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("add sheet %s: %w", name, err)
		}

		if err := writeSheet(f, name, sheet); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, name string, sheet Sheet) error {
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return fmt.Errorf("stream sheet %s: %w", name, err)
	}

	header := make([]any, len(sheet.Headers))
	for i, h := range sheet.Headers {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header %s: %w", name, err)
	}

	for i, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write %s row %d: %w", name, i+2, err)
		}
	}

	return sw.Flush()
}

// sheetName strips characters Excel rejects and truncates to 31 runes.
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, name)

	if runes := []rune(name); len(runes) > maxSheetName {
		name = string(runes[:maxSheetName])
	}
	if name == "" {
		return "Sheet"
	}
	return name
}
