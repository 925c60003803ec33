package progress

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	report := &Report{
		BySubcategory: []SubcategoryTotals{
			{
				Theme: "rhcsa", Category: "storage", Subcategory: "lvm",
				Answered: 8, Correct: 6, TotalQuestions: 10,
				Attempts: 2, AvgScore: 63, BestScore: 75,
			},
		},
		Totals: Totals{Answered: 8, Correct: 6, TotalQuestions: 10},
	}

	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, "u1", report); err != nil {
		t.Fatalf("WriteWorkbook() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue("Progress", "A1"); got != "Theme" {
		t.Errorf("Progress!A1 = %q, want Theme", got)
	}
	if got, _ := f.GetCellValue("Progress", "C2"); got != "lvm" {
		t.Errorf("Progress!C2 = %q, want lvm", got)
	}
	if got, _ := f.GetCellValue("Progress", "I2"); got != "75" {
		t.Errorf("Progress!I2 = %q, want 75", got)
	}
	if got, _ := f.GetCellValue("Totals", "B1"); got != "u1" {
		t.Errorf("Totals!B1 = %q, want u1", got)
	}
	if got, _ := f.GetCellValue("Totals", "B2"); got != "8" {
		t.Errorf("Totals!B2 = %q, want 8", got)
	}
}

func TestWriteWorkbookEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	report := &Report{}
	if err := WriteWorkbook(&buf, "nobody", report); err != nil {
		t.Fatalf("WriteWorkbook() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Error("empty report produced no bytes")
	}
}
