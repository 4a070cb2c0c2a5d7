package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/brikomag/pricewatch/internal/models"
)

const sheetName = "Comparison"

// Writer produces xlsx report artifacts.
type Writer struct{}

// NewWriter constructs a Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteTagReport writes the per-tag report rows to path and returns the
// path of the written artifact.
func (w *Writer) WriteTagReport(rows []models.TagReportRow, path string) (string, error) {
	header := []interface{}{"our_sku", "comp_sku", "our_name", "comp_name", "our_price", "comp_price", "diff"}
	records := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		records = append(records, []interface{}{
			r.OurSKU, strPtr(r.CompSKU), r.OurName, strPtr(r.CompName), r.OurPrice, nil, nil,
		})
	}
	return writeSheet(header, records, path)
}

// WriteComparison writes the approved-only comparison rows to path and
// returns the path of the written artifact.
func (w *Writer) WriteComparison(rows []models.CompareRow, path string) (string, error) {
	header := []interface{}{"our_sku", "comp_sku", "our_name", "comp_name", "our_price", "comp_price", "diff"}
	records := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		records = append(records, []interface{}{
			r.OurSKU, strPtr(r.CompSKU), r.OurName, strPtr(r.CompName), r.OurPrice, floatPtr(r.CompPrice), floatPtr(r.Diff),
		})
	}
	return writeSheet(header, records, path)
}

func writeSheet(header []interface{}, records [][]interface{}, path string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return "", err
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return "", err
	}
	for i, rec := range records {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetName, cell, &rec); err != nil {
			return "", err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}
	return path, nil
}

func strPtr(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func floatPtr(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
