package progress

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbook renders a progress report as an xlsx workbook: one sheet of
// per-subcategory rows and one of totals.
func WriteWorkbook(w io.Writer, uuid string, report *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	const detailSheet = "Progress"
	f.SetSheetName("Sheet1", detailSheet)

	header := []any{"Theme", "Category", "Subcategory", "Answered", "Correct", "Total questions", "Attempts", "Avg score", "Best score"}
	if err := f.SetSheetRow(detailSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, sc := range report.BySubcategory {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			sc.Theme, sc.Category, sc.Subcategory,
			sc.Answered, sc.Correct, sc.TotalQuestions,
			sc.Attempts, sc.AvgScore, sc.BestScore,
		}
		if err := f.SetSheetRow(detailSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	const totalsSheet = "Totals"
	if _, err := f.NewSheet(totalsSheet); err != nil {
		return fmt.Errorf("create totals sheet: %w", err)
	}
	totalsRows := [][]any{
		{"User", uuid},
		{"Answered", report.Totals.Answered},
		{"Correct", report.Totals.Correct},
		{"Total questions", report.Totals.TotalQuestions},
	}
	for i, row := range totalsRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(totalsSheet, cell, &row); err != nil {
			return fmt.Errorf("write totals row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
