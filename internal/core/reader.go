package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// File signatures. Every .xlsx is a zip archive; legacy .xls workbooks
// are OLE2 compound documents, which excelize cannot read.
var (
	zipMagic  = []byte("PK\x03\x04")
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// errBinaryInput rejects files that are neither a workbook nor text.
var errBinaryInput = errors.New("not a workbook or delimited text file")

// Table is a parsed input file: the header labels and one SourceRow per
// non-blank data row. Lines holds the 1-based sheet line of each row.
type Table struct {
	Headers []string
	Rows    []SourceRow
	Lines   []int
}

// ReadTable parses an uploaded workbook or CSV file. Only the first
// worksheet of a workbook is read; row 1 supplies the column labels.
// Unreadable input yields a *FormatError.
func ReadTable(fileName string, data []byte) (*Table, error) {
	var (
		records [][]string
		err     error
	)
	switch {
	case bytes.HasPrefix(data, ole2Magic):
		err = errors.New("legacy .xls workbooks are not supported, save as .xlsx")
	case isWorkbook(fileName, data):
		records, err = readWorkbook(data)
	default:
		records, err = readCSV(data)
	}
	if err != nil {
		return nil, &FormatError{FileName: fileName, Err: err}
	}

	return buildTable(records), nil
}

func isWorkbook(fileName string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return bytes.HasPrefix(data, zipMagic)
}

func readWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no worksheets")
	}

	iter, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	defer iter.Close()

	var records [][]string
	for iter.Next() {
		cols, err := iter.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(records)+1, err)
		}
		records = append(records, cols)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return records, nil
}

func readCSV(data []byte) ([][]string, error) {
	decoded, err := io.ReadAll(DecodeText(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if !isText(decoded) {
		return nil, errBinaryInput
	}

	r := csv.NewReader(bytes.NewReader(decoded))
	r.Comma = sniffDelimiter(decoded)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// isText reports whether decoded holds no control characters other than
// tab, line breaks and form feed.
func isText(decoded []byte) bool {
	for _, c := range decoded {
		switch {
		case c == '\t', c == '\n', c == '\r', c == '\f':
		case c < 0x20, c == 0x7F:
			return false
		}
	}
	return true
}

// sniffDelimiter picks the most frequent of ';', ',' and tab on the first
// line. Excel in pt-BR saves CSV with ';'.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, c := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(c))); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

// buildTable keys each data row by header label. Blank cells, unlabelled
// columns, and blank rows are dropped. When two columns share a label the
// first non-blank value wins.
func buildTable(records [][]string) *Table {
	t := &Table{}
	if len(records) == 0 {
		return t
	}
	t.Headers = records[0]

	for i, rec := range records[1:] {
		if isEmptyRow(rec) {
			continue
		}

		row := make(SourceRow, len(rec))
		for col, value := range rec {
			if col >= len(t.Headers) || t.Headers[col] == "" {
				continue
			}
			if strings.TrimSpace(value) == "" {
				continue
			}
			if _, seen := row[t.Headers[col]]; seen {
				continue
			}
			row[t.Headers[col]] = value
		}

		t.Rows = append(t.Rows, row)
		t.Lines = append(t.Lines, i+2)
	}
	return t
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
