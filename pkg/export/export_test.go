package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Columns: []Column{
			{Key: "rank", Title: "Rank", Numeric: true, Width: 0.5},
			{Key: "name", Title: "Participant", Width: 3},
			{Key: "points", Numeric: true},
		},
		Rows: []map[string]string{
			{"rank": "1", "name": "Aïcha", "points": "42"},
			{"rank": "2", "name": "Bram, Jr.", "points": "30"},
		},
	}
}

func TestRendererCSV(t *testing.T) {
	out, err := NewRenderer().Render(FormatCSV, sampleDataset(), "")
	require.NoError(t, err)
	assert.Equal(t, "Rank,Participant,points\n1,Aïcha,42\n2,\"Bram, Jr.\",30\n", string(out))
}

func TestRendererPDF(t *testing.T) {
	data := sampleDataset()
	for i := 0; i < 120; i++ {
		data.Rows = append(data.Rows, map[string]string{"rank": "3", "name": "Filler", "points": "1"})
	}
	out, err := NewRenderer().Render(FormatPDF, data, "Leaderboard")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRendererRequiresColumns(t *testing.T) {
	_, err := NewRenderer().Render(FormatCSV, Dataset{}, "")
	assert.Error(t, err)
	_, err = NewRenderer().Render(FormatPDF, Dataset{}, "")
	assert.Error(t, err)
}

func TestColumnWidthsAreProportional(t *testing.T) {
	widths := columnWidths(sampleDataset().Columns, 180)
	require.Len(t, widths, 3)
	assert.InDelta(t, 20.0, widths[0], 0.001)
	assert.InDelta(t, 120.0, widths[1], 0.001)
	assert.InDelta(t, 40.0, widths[2], 0.001)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}
