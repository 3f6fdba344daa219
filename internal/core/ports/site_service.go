package ports

import (
	"context"
	"time"
)

// MarkerView is the per-site view the map renders. Exactly one marker exists
// per unique site ID; sites with invalid coordinates are excluded.
type MarkerView struct {
	ID          string
	Name        string
	Lat         float64
	Lng         float64
	Status      string
	Notes       string
	CheckCount  int
	LastChecked time.Time
}

// SiteDetail is the full site view returned by GetSite.
type SiteDetail struct {
	ID          string
	Name        string
	DisplayName string
	Lat         float64
	Lng         float64
	Status      string
	Notes       string
	CheckCount  int
	LastChecked time.Time
	CreatedAt   time.Time
	History     []ChangeItem
}

// ChangeItem is a single change log entry in API views.
type ChangeItem struct {
	SiteID         string
	SiteName       string
	PreviousStatus string
	NewStatus      string
	Notes          string
	Operator       string
	Timestamp      time.Time
}

// SiteService defines read-side use cases over the site store.
type SiteService interface {
	// ListMarkers returns one marker per unique site with valid coordinates.
	// Duplicate IDs are collapsed (first occurrence wins) rather than rendered twice.
	ListMarkers(ctx context.Context) ([]MarkerView, error)
	GetSite(ctx context.Context, id string) (*SiteDetail, error)
	ListChanges(ctx context.Context, siteID string) ([]ChangeItem, error)
}
