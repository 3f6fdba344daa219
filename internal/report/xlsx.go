// Package report renders monthly reports into spreadsheet workbooks for
// distribution outside the tracker.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/willslawrence/sfla-tracker/internal/core/ports"
)

const (
	sheetSummary   = "Summary"
	sheetChangeLog = "Change Log"
	sheetSites     = "Sites"
)

const dateFormat = "2006-01-02 15:04"

// ToXLSX renders the report as an XLSX workbook.
func ToXLSX(r *ports.MonthlyReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummary(f, r); err != nil {
		return nil, err
	}
	if err := writeChangeLog(f, r); err != nil {
		return nil, err
	}
	if err := writeSites(f, r); err != nil {
		return nil, err
	}

	// Sheet1 was renamed to Summary; open the workbook on it.
	if idx, err := f.GetSheetIndex(sheetSummary); err == nil {
		f.SetActiveSheet(idx)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("report: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, r *ports.MonthlyReport) error {
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("report: rename sheet: %w", err)
	}

	title := fmt.Sprintf("SFLA Report — %s %d", r.Month.String(), r.Year)
	rows := [][]any{
		{title},
		{"Generated", r.GeneratedAt.Format(dateFormat)},
		{},
		{"Total sites", r.TotalSites},
		{"Total checks completed", r.TotalChecks},
		{"Status changes this month", len(r.Changes)},
		{},
		{"Status", "Count", "Percent"},
	}
	for _, c := range r.Counts {
		rows = append(rows, []any{c.Status, c.Count, c.Percent})
	}
	return writeRows(f, sheetSummary, rows)
}

func writeChangeLog(f *excelize.File, r *ports.MonthlyReport) error {
	if _, err := f.NewSheet(sheetChangeLog); err != nil {
		return fmt.Errorf("report: new sheet: %w", err)
	}

	rows := [][]any{{"Date", "Site", "From", "To", "Operator", "Notes"}}
	for _, c := range r.Changes {
		rows = append(rows, []any{
			c.Timestamp.Format(dateFormat),
			c.SiteName,
			c.PreviousStatus,
			c.NewStatus,
			c.Operator,
			c.Notes,
		})
	}
	return writeRows(f, sheetChangeLog, rows)
}

func writeSites(f *excelize.File, r *ports.MonthlyReport) error {
	if _, err := f.NewSheet(sheetSites); err != nil {
		return fmt.Errorf("report: new sheet: %w", err)
	}

	rows := [][]any{{"Site", "Status", "Last checked"}}
	for _, s := range r.Sites {
		lastChecked := ""
		if !s.LastChecked.IsZero() {
			lastChecked = s.LastChecked.Format(dateFormat)
		}
		rows = append(rows, []any{s.Name, s.Status, lastChecked})
	}
	return writeRows(f, sheetSites, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return fmt.Errorf("report: cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return fmt.Errorf("report: set %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

// Filename returns the canonical attachment name for a report period.
func Filename(year int, month time.Month) string {
	return fmt.Sprintf("SFLA_Report_%04d-%02d.xlsx", year, int(month))
}
