package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
)

var errNoHeaders = errors.New("dataset has no headers")

// utf8BOM lets spreadsheet apps detect the encoding of accented names.
const utf8BOM = "\ufeff"

// CSVExporter writes a Dataset as comma separated values. Cells that a
// spreadsheet would evaluate as a formula are prefixed with a quote.
type CSVExporter struct {
	Comma rune
	BOM   bool
}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{Comma: ','}
}

func (e *CSVExporter) ContentType() string { return "text/csv; charset=utf-8" }

func (e *CSVExporter) Extension() string { return "csv" }

func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("render csv: %w", errNoHeaders)
	}

	var buf bytes.Buffer
	if e.BOM {
		buf.WriteString(utf8BOM)
	}
	w := csv.NewWriter(&buf)
	if e.Comma != 0 {
		w.Comma = e.Comma
	}

	records := make([][]string, 0, len(data.Rows)+1)
	records = append(records, data.Headers)
	for _, row := range data.Rows {
		records = append(records, neutralize(data.Record(row)))
	}
	// WriteAll flushes and reports the first write error.
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	return buf.Bytes(), nil
}

func neutralize(record []string) []string {
	for i, cell := range record {
		if cell != "" && strings.ContainsRune("=+@\t\r", rune(cell[0])) {
			record[i] = "'" + cell
		}
	}
	return record
}
