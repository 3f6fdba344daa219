// Package sync diffs a parsed KML export against the record store and
// applies the changes. The rules follow the manual sync process the tracker
// replaced: new sites are created as unchecked, changed outlines only move
// the marker, and sites missing from the export are flagged but never
// deleted.
package sync

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/willslawrence/sfla-tracker/internal/api/metrics"
	"github.com/willslawrence/sfla-tracker/internal/core/domain"
	"github.com/willslawrence/sfla-tracker/internal/core/ports"
	"github.com/willslawrence/sfla-tracker/internal/geo"
)

// Coordinates closer than this are treated as unchanged.
const coordEpsilon = 1e-6

// Candidate is one site extracted from the KML export.
type Candidate struct {
	Name   string
	Coords domain.Coordinates
}

// Move records a coordinate change for an existing site.
type Move struct {
	SiteID string
	Name   string
	Old    domain.Coordinates
	New    domain.Coordinates
}

// Diff is the outcome of comparing a KML export to the store.
type Diff struct {
	Added     []Candidate
	Removed   []string // in store, missing from the export; kept, only flagged
	Moved     []Move
	Unchanged []string
	Skipped   int // malformed placemarks dropped by the parser
	Routes    int
}

// Empty reports whether applying the diff would write nothing.
func (d *Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Moved) == 0
}

// Syncer compares KML exports against the site store and applies changes.
type Syncer struct {
	repo ports.SiteRepository
	log  zerolog.Logger
}

func NewSyncer(repo ports.SiteRepository, log zerolog.Logger) *Syncer {
	return &Syncer{repo: repo, log: log}
}

// Diff compares doc against the current store contents without writing.
func (s *Syncer) Diff(ctx context.Context, doc *geo.Document) (*Diff, error) {
	current, err := s.repo.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync diff: %w", err)
	}

	byName := make(map[string]*domain.Site, len(current))
	for _, site := range current {
		byName[site.Name] = site
	}

	diff := &Diff{Skipped: doc.Skipped, Routes: len(doc.Routes)}
	seen := make(map[string]struct{})
	for _, cand := range candidates(doc) {
		seen[cand.Name] = struct{}{}
		existing, ok := byName[cand.Name]
		if !ok {
			diff.Added = append(diff.Added, cand)
			continue
		}
		if coordsChanged(existing.Coordinates, cand.Coords) {
			diff.Moved = append(diff.Moved, Move{
				SiteID: existing.ID,
				Name:   cand.Name,
				Old:    existing.Coordinates,
				New:    cand.Coords,
			})
			continue
		}
		diff.Unchanged = append(diff.Unchanged, cand.Name)
	}

	for name := range byName {
		if _, ok := seen[name]; !ok {
			diff.Removed = append(diff.Removed, name)
		}
	}
	sort.Strings(diff.Removed)

	return diff, nil
}

// Apply writes the diff to the store: added sites are created as unchecked,
// moved sites get their coordinates replaced. Removed sites are untouched.
func (s *Syncer) Apply(ctx context.Context, diff *Diff) error {
	now := time.Now().UTC()
	for _, cand := range diff.Added {
		site := &domain.Site{
			ID:          uuid.NewString(),
			Name:        cand.Name,
			Coordinates: cand.Coords,
			Status:      domain.StatusUnchecked,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repo.Create(ctx, site); err != nil {
			return fmt.Errorf("sync apply: create %q: %w", cand.Name, err)
		}
		metrics.SitesSyncedTotal.WithLabelValues("created").Inc()
		s.log.Info().Str("site", cand.Name).Msg("site created as unchecked")
	}

	for _, move := range diff.Moved {
		if err := s.repo.UpdateCoordinates(ctx, move.SiteID, move.New); err != nil {
			return fmt.Errorf("sync apply: move %q: %w", move.Name, err)
		}
		metrics.SitesSyncedTotal.WithLabelValues("coords_updated").Inc()
		s.log.Info().Str("site", move.Name).Msg("site coordinates updated")
	}

	if len(diff.Removed) > 0 {
		s.log.Warn().Strs("sites", diff.Removed).
			Msg("sites missing from export were NOT deleted; remove from the store manually if retired")
	}
	return nil
}

// candidates flattens shapes (placed at their centroid) and GPS points into
// one ordered site list, matching the export's placemark order.
func candidates(doc *geo.Document) []Candidate {
	out := make([]Candidate, 0, len(doc.Shapes)+len(doc.Points))
	for _, shape := range doc.Shapes {
		out = append(out, Candidate{Name: shape.Name, Coords: shape.Center})
	}
	for _, point := range doc.Points {
		out = append(out, Candidate{Name: point.Name, Coords: point.Coords})
	}
	return out
}

func coordsChanged(a, b domain.Coordinates) bool {
	return math.Abs(a.Lat-b.Lat) > coordEpsilon || math.Abs(a.Lng-b.Lng) > coordEpsilon
}
