package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth  = 210.0
	pageMargin = 12.0
	rowHeight  = 7.0
)

// PDFExporter renders a dataset as a paginated A4 table with a repeated header row.
type PDFExporter struct {
	now func() time.Time
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{now: time.Now}
}

// Render draws the title, a generation timestamp and the table.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Columns) == 0 {
		return nil, fmt.Errorf("pdf requires at least one column")
	}
	widths := columnWidths(data.Columns, pageWidth-2*pageMargin)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, 15, pageMargin)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	header := func() {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(230, 236, 245)
		for i, col := range data.Columns {
			pdf.CellFormat(widths[i], rowHeight+1, tr(col.heading()), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 9, tr(title), "", 1, "C", false, 0, "")
	}
	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(0, 6, "Generated "+e.now().UTC().Format("2006-01-02 15:04 UTC"), "", 1, "C", false, 0, "")
	pdf.Ln(3)
	header()

	for n, row := range data.Rows {
		// Alternate row shading.
		fill := n%2 == 1
		if fill {
			pdf.SetFillColor(247, 247, 247)
		}
		for i, col := range data.Columns {
			align := "L"
			if col.Numeric {
				align = "R"
			}
			pdf.CellFormat(widths[i], rowHeight, tr(row[col.Key]), "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(cols []Column, total float64) []float64 {
	sum := 0.0
	for _, c := range cols {
		sum += weight(c)
	}
	out := make([]float64, len(cols))
	for i, c := range cols {
		out[i] = total * weight(c) / sum
	}
	return out
}

func weight(c Column) float64 {
	if c.Width <= 0 {
		return 1
	}
	return c.Width
}
