package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/willslawrence/sfla-tracker/internal/core/domain"
	"github.com/willslawrence/sfla-tracker/internal/core/ports"
)

type SiteService struct {
	repo    ports.SiteRepository
	changes ports.ChangeLogRepository
	logger  zerolog.Logger
}

func NewSiteService(repo ports.SiteRepository, changes ports.ChangeLogRepository, logger zerolog.Logger) *SiteService {
	return &SiteService{repo: repo, changes: changes, logger: logger}
}

// ListMarkers returns one marker per unique site. Sites with out-of-range
// coordinates are dropped, duplicate IDs are collapsed keeping the first
// occurrence, and unrecognized status values are ignored rather than rendered.
func (s *SiteService) ListMarkers(ctx context.Context) ([]ports.MarkerView, error) {
	sites, err := s.repo.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list markers: %w", err)
	}

	seen := make(map[string]struct{}, len(sites))
	markers := make([]ports.MarkerView, 0, len(sites))
	for _, site := range sites {
		if _, dup := seen[site.ID]; dup {
			s.logger.Warn().Str("site_id", site.ID).Msg("duplicate site id skipped")
			continue
		}
		if !site.Coordinates.Valid() {
			s.logger.Warn().Str("site_id", site.ID).
				Float64("lat", site.Coordinates.Lat).
				Float64("lng", site.Coordinates.Lng).
				Msg("site with invalid coordinates skipped")
			continue
		}
		if !site.Status.Valid() {
			s.logger.Warn().Str("site_id", site.ID).Str("status", string(site.Status)).
				Msg("site with unrecognized status skipped")
			continue
		}
		seen[site.ID] = struct{}{}
		markers = append(markers, ports.MarkerView{
			ID:          site.ID,
			Name:        markerName(site),
			Lat:         site.Coordinates.Lat,
			Lng:         site.Coordinates.Lng,
			Status:      string(site.Status),
			Notes:       site.Notes,
			CheckCount:  site.CheckCount,
			LastChecked: site.LastChecked,
		})
	}
	return markers, nil
}

// GetSite returns the full site view including its change history.
func (s *SiteService) GetSite(ctx context.Context, id string) (*ports.SiteDetail, error) {
	site, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	history, err := s.changes.ListBySite(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("site_id", id).Msg("change history unavailable")
		history = nil
	}

	return &ports.SiteDetail{
		ID:          site.ID,
		Name:        site.Name,
		DisplayName: markerName(site),
		Lat:         site.Coordinates.Lat,
		Lng:         site.Coordinates.Lng,
		Status:      string(site.Status),
		Notes:       site.Notes,
		CheckCount:  site.CheckCount,
		LastChecked: site.LastChecked,
		CreatedAt:   site.CreatedAt,
		History:     toChangeItems(history),
	}, nil
}

// ListChanges returns the change log for a single site, newest first.
func (s *SiteService) ListChanges(ctx context.Context, siteID string) ([]ports.ChangeItem, error) {
	if _, err := s.repo.FindByID(ctx, siteID); err != nil {
		return nil, err
	}
	changes, err := s.changes.ListBySite(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("list changes: %w", err)
	}
	return toChangeItems(changes), nil
}

func markerName(site *domain.Site) string {
	if site.DisplayName != "" {
		return site.DisplayName
	}
	return site.Name
}

func toChangeItems(changes []*domain.StatusChange) []ports.ChangeItem {
	items := make([]ports.ChangeItem, len(changes))
	for i, c := range changes {
		items[i] = ports.ChangeItem{
			SiteID:         c.SiteID,
			SiteName:       c.SiteName,
			PreviousStatus: string(c.PreviousStatus),
			NewStatus:      string(c.NewStatus),
			Notes:          c.Notes,
			Operator:       c.Operator,
			Timestamp:      c.Timestamp,
		}
	}
	return items
}
