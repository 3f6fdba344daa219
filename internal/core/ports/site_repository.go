package ports

import (
	"context"
	"time"

	"github.com/willslawrence/sfla-tracker/internal/core/domain"
)

// SiteRepository defines persistence operations for sites.
type SiteRepository interface {
	// FetchAll returns every site, ordered by name.
	FetchAll(ctx context.Context) ([]*domain.Site, error)
	FindByID(ctx context.Context, id string) (*domain.Site, error)
	FindByName(ctx context.Context, name string) (*domain.Site, error)
	Create(ctx context.Context, site *domain.Site) error
	// ApplyStatus atomically sets the site's status and notes, stamps
	// last_checked, and increments check_count. Returns the previous status.
	ApplyStatus(ctx context.Context, id string, status domain.SiteStatus, notes string, ts time.Time) (domain.SiteStatus, error)
	// UpdateCoordinates replaces a site's coordinates (KML sync path).
	UpdateCoordinates(ctx context.Context, id string, coords domain.Coordinates) error
}

// ChangeLogRepository persists the status change audit trail.
type ChangeLogRepository interface {
	Insert(ctx context.Context, change *domain.StatusChange) error
	ListBySite(ctx context.Context, siteID string) ([]*domain.StatusChange, error)
	// ListByRange returns changes with from <= timestamp < to, newest first.
	ListByRange(ctx context.Context, from, to time.Time) ([]*domain.StatusChange, error)
}
