package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/willslawrence/sfla-tracker/internal/core/ports"
)

func sampleReport() *ports.MonthlyReport {
	return &ports.MonthlyReport{
		Year:        2026,
		Month:       time.February,
		GeneratedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		TotalSites:  2,
		TotalChecks: 7,
		Counts: []ports.StatusCount{
			{Status: "ok", Count: 1, Percent: 50},
			{Status: "issue", Count: 1, Percent: 50},
		},
		Changes: []ports.ChangeItem{{
			SiteName:       "Alpha",
			PreviousStatus: "unchecked",
			NewStatus:      "ok",
			Operator:       "willy",
			Timestamp:      time.Date(2026, 2, 10, 14, 0, 0, 0, time.UTC),
		}},
		Sites: []ports.ReportSite{
			{Name: "Alpha", Status: "ok", LastChecked: time.Date(2026, 2, 10, 14, 0, 0, 0, time.UTC)},
			{Name: "Bravo", Status: "issue"},
		},
	}
}

func TestToXLSX_SheetsAndCells(t *testing.T) {
	data, err := ToXLSX(sampleReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("workbook does not open: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{sheetSummary, sheetChangeLog, sheetSites} {
		if _, err := f.GetSheetIndex(sheet); err != nil {
			t.Errorf("missing sheet %q: %v", sheet, err)
		}
	}

	title, err := f.GetCellValue(sheetSummary, "A1")
	if err != nil || title != "SFLA Report — February 2026" {
		t.Errorf("summary title wrong: %q (%v)", title, err)
	}

	site, _ := f.GetCellValue(sheetChangeLog, "B2")
	if site != "Alpha" {
		t.Errorf("change log row wrong, got site %q", site)
	}
	to, _ := f.GetCellValue(sheetChangeLog, "D2")
	if to != "ok" {
		t.Errorf("change log new status wrong: %q", to)
	}

	// Unchecked site has an empty last-checked cell.
	last, _ := f.GetCellValue(sheetSites, "C3")
	if last != "" {
		t.Errorf("expected empty last checked for Bravo, got %q", last)
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(2026, time.February); got != "SFLA_Report_2026-02.xlsx" {
		t.Errorf("filename wrong: %q", got)
	}
}
