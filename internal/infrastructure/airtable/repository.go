package airtable

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/willslawrence/sfla-tracker/internal/core/domain"
	"github.com/willslawrence/sfla-tracker/internal/core/ports"
)

// Repository serves sites straight from the hosted base, as an alternative
// site store backend (STORE_BACKEND=airtable). Record ids double as site ids.
// The change log and operator collections stay in Mongo either way.
type Repository struct {
	client *Client
}

var _ ports.SiteRepository = (*Repository)(nil)

func NewRepository(client *Client) *Repository {
	return &Repository{client: client}
}

// FetchAll returns every site ordered by name. The store returns records in
// table view order, so the sort happens here.
func (r *Repository) FetchAll(ctx context.Context) ([]*domain.Site, error) {
	sites, err := r.client.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i].Name < sites[j].Name })
	return sites, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Site, error) {
	rec, err := r.client.fetchRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSite(*rec), nil
}

// FindByName scans the full table; the store has no indexed lookup by field.
func (r *Repository) FindByName(ctx context.Context, name string) (*domain.Site, error) {
	sites, err := r.client.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, site := range sites {
		if site.Name == name {
			return site, nil
		}
	}
	return nil, domain.ErrSiteNotFound
}

// Create inserts one record. The store accepts duplicate names, so the
// uniqueness check happens here first.
func (r *Repository) Create(ctx context.Context, site *domain.Site) error {
	_, err := r.FindByName(ctx, site.Name)
	if err == nil {
		return domain.ErrDuplicateSite
	}
	if !errors.Is(err, domain.ErrSiteNotFound) {
		return err
	}
	return r.client.CreateSites(ctx, []*domain.Site{site})
}

// ApplyStatus reads the record for the previous status and check count, then
// patches the new state. The read-modify-write is safe because all checks for
// one site are applied by the same dispatcher worker.
func (r *Repository) ApplyStatus(ctx context.Context, id string, status domain.SiteStatus, notes string, ts time.Time) (domain.SiteStatus, error) {
	rec, err := r.client.fetchRecord(ctx, id)
	if err != nil {
		return "", err
	}
	if err := r.client.UpdateStatus(ctx, id, status, notes, rec.Fields.CheckCount+1, ts); err != nil {
		return "", err
	}
	previous := domain.SiteStatus(rec.Fields.Status)
	if previous == "" {
		previous = domain.StatusUnchecked
	}
	return previous, nil
}

func (r *Repository) UpdateCoordinates(ctx context.Context, id string, coords domain.Coordinates) error {
	return r.client.UpdateCoordinates(ctx, id, coords)
}
