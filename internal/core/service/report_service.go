package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/willslawrence/sfla-tracker/internal/core/domain"
	"github.com/willslawrence/sfla-tracker/internal/core/ports"
)

type reportService struct {
	sites   ports.SiteRepository
	changes ports.ChangeLogRepository
	log     zerolog.Logger
}

// NewReportService returns a ReportService implementation.
func NewReportService(sites ports.SiteRepository, changes ports.ChangeLogRepository, log zerolog.Logger) ports.ReportService {
	return &reportService{sites: sites, changes: changes, log: log}
}

// Monthly aggregates the current site state plus the month's change log.
func (s *reportService) Monthly(ctx context.Context, year int, month time.Month) (*ports.MonthlyReport, error) {
	sites, err := s.sites.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("monthly report: %w", err)
	}

	from, to := monthRange(year, month)
	changes, err := s.changes.ListByRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("monthly report: change log: %w", err)
	}

	report := &ports.MonthlyReport{
		Year:        year,
		Month:       month,
		GeneratedAt: time.Now().UTC(),
		TotalSites:  len(sites),
		Changes:     toChangeItems(changes),
	}

	counts := make(map[domain.SiteStatus]int)
	for _, site := range sites {
		counts[site.Status]++
		report.TotalChecks += site.CheckCount
		report.Sites = append(report.Sites, ports.ReportSite{
			Name:        markerName(site),
			Status:      string(site.Status),
			LastChecked: site.LastChecked,
		})
	}
	sort.Slice(report.Sites, func(i, j int) bool { return report.Sites[i].Name < report.Sites[j].Name })

	for _, status := range domain.AllStatuses {
		c := counts[status]
		if c == 0 {
			continue
		}
		pct := 0.0
		if len(sites) > 0 {
			pct = math.Round(float64(c)/float64(len(sites))*1000) / 10
		}
		report.Counts = append(report.Counts, ports.StatusCount{
			Status:  string(status),
			Count:   c,
			Percent: pct,
		})
	}

	s.log.Info().Int("year", year).Str("month", month.String()).
		Int("sites", report.TotalSites).
		Int("changes", len(report.Changes)).
		Msg("monthly report generated")

	return report, nil
}

// monthRange returns [first day of month, first day of next month).
func monthRange(year int, month time.Month) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}
