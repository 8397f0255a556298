package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Column describes one exported field.
type Column struct {
	Key   string
	Title string
	// Numeric columns are right-aligned in PDF output.
	Numeric bool
	// Width is relative to the other columns. Zero counts as 1.
	Width float64
}

func (c Column) heading() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Key
}

// Dataset is a table of rows keyed by column key.
type Dataset struct {
	Columns []Column
	Rows    []map[string]string
}

func (d Dataset) record(row map[string]string) []string {
	out := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		out[i] = row[col.Key]
	}
	return out
}

// CSVExporter writes a header line of column titles followed by one line per row.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Columns) == 0 {
		return nil, fmt.Errorf("csv requires at least one column")
	}
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	headings := make([]string, len(data.Columns))
	for i, col := range data.Columns {
		headings[i] = col.heading()
	}
	if err := w.Write(headings); err != nil {
		return nil, fmt.Errorf("write csv headings: %w", err)
	}
	for _, row := range data.Rows {
		if err := w.Write(data.record(row)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
