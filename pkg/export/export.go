package export

import (
	"fmt"
	"strings"
)

// Format identifies an export encoding.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts "csv" or "pdf" in any case, defaulting to CSV.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Renderer produces a document in any supported format.
type Renderer struct {
	csv *CSVExporter
	pdf *PDFExporter
}

// NewRenderer wires both exporters.
func NewRenderer() *Renderer {
	return &Renderer{csv: NewCSVExporter(), pdf: NewPDFExporter()}
}

// Render encodes data as f. The title is used by PDF only.
func (r *Renderer) Render(f Format, data Dataset, title string) ([]byte, error) {
	switch f {
	case FormatPDF:
		return r.pdf.Render(data, title)
	case FormatCSV:
		return r.csv.Render(data)
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
}
