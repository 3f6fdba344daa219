package ports

import (
	"context"
	"time"
)

// StatusCount is one row of the report summary.
type StatusCount struct {
	Status  string
	Count   int
	Percent float64
}

// ReportSite is a site row in the monthly report.
type ReportSite struct {
	Name        string
	Status      string
	LastChecked time.Time
}

// MonthlyReport aggregates site state and the month's change log.
type MonthlyReport struct {
	Year        int
	Month       time.Month
	GeneratedAt time.Time
	TotalSites  int
	TotalChecks int
	Counts      []StatusCount
	Changes     []ChangeItem
	Sites       []ReportSite
}

// ReportService builds monthly reports from the store.
type ReportService interface {
	Monthly(ctx context.Context, year int, month time.Month) (*MonthlyReport, error)
}
