package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/brikomag/pricewatch/internal/models"
)

func strp(s string) *string { return &s }

func TestWriteTagReport(t *testing.T) {
	rows := []models.TagReportRow{
		{ItemID: 1, OurSKU: "A1", OurName: "Widget", OurPrice: 9.99, CompSKU: strp("PX1"), CompName: strp("Widget BG")},
		{ItemID: 2, OurSKU: "A2", OurName: "Gadget", OurPrice: 4.50},
	}
	path := filepath.Join(t.TempDir(), "report.xlsx")

	got, err := NewWriter().WriteTagReport(rows, path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	cells, err := f.GetRows("Comparison")
	require.NoError(t, err)
	require.Len(t, cells, 3)

	assert.Equal(t, []string{"our_sku", "comp_sku", "our_name", "comp_name", "our_price", "comp_price", "diff"}, cells[0][:7])
	assert.Equal(t, "A1", cells[1][0])
	assert.Equal(t, "PX1", cells[1][1])
	// Unmatched item keeps its own columns and empty competitor cells.
	assert.Equal(t, "A2", cells[2][0])
	assert.Equal(t, "Gadget", cells[2][2])
}

func TestWriteComparisonCreatesDirectory(t *testing.T) {
	rows := []models.CompareRow{
		{OurSKU: "A1", CompSKU: strp("PX1"), OurName: "Widget", CompName: strp("Widget BG"), OurPrice: 9.99},
	}
	path := filepath.Join(t.TempDir(), "nested", "out", "compare.xlsx")

	got, err := NewWriter().WriteComparison(rows, path)
	require.NoError(t, err)

	f, err := excelize.OpenFile(got)
	require.NoError(t, err)
	defer f.Close()

	cells, err := f.GetRows("Comparison")
	require.NoError(t, err)
	require.Len(t, cells, 2)
	assert.Equal(t, "A1", cells[1][0])
}
