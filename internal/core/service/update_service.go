package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/willslawrence/sfla-tracker/internal/core/domain"
	"github.com/willslawrence/sfla-tracker/internal/core/ports"
)

// SequenceGuard abstracts the per-site request sequence store (Redis).
// It implements last-write-wins across concurrent operator edits: a check
// carrying a sequence number below the last committed one is superseded.
type SequenceGuard interface {
	Supersedes(ctx context.Context, siteID string, seq int64) (bool, error)
	Commit(ctx context.Context, siteID string, seq int64) error
}

type updateService struct {
	sites   ports.SiteRepository
	changes ports.ChangeLogRepository
	guard   SequenceGuard
	log     zerolog.Logger
}

// NewUpdateService returns an UpdateService implementation.
func NewUpdateService(
	sites ports.SiteRepository,
	changes ports.ChangeLogRepository,
	guard SequenceGuard,
	log zerolog.Logger,
) ports.UpdateService {
	return &updateService{
		sites:   sites,
		changes: changes,
		guard:   guard,
		log:     log,
	}
}

// Apply validates and persists a single status check.
func (s *updateService) Apply(ctx context.Context, in ports.StatusCheckInput) (*ports.StatusCheckResult, error) {
	newStatus := domain.SiteStatus(in.NewStatus)

	// 1. Reject unrecognized status values before any store call.
	if !newStatus.Valid() {
		return nil, fmt.Errorf("apply check: %w (%q)", domain.ErrInvalidStatus, in.NewStatus)
	}

	// 2. Last-write-wins: drop checks superseded by a newer request for the
	// same site. A guard failure is logged and the check proceeds.
	if in.Seq > 0 {
		newer, err := s.guard.Supersedes(ctx, in.SiteID, in.Seq)
		if err != nil {
			s.log.Warn().Err(err).Str("site_id", in.SiteID).Msg("sequence check failed, applying anyway")
		} else if !newer {
			s.log.Debug().Str("site_id", in.SiteID).Int64("seq", in.Seq).Msg("superseded check dropped")
			return s.supersededResult(ctx, in)
		}
	}

	// 3. The site must still exist in the store.
	site, err := s.sites.FindByID(ctx, in.SiteID)
	if err != nil {
		return nil, fmt.Errorf("apply check: %w", err)
	}

	ts := in.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	// 4. Atomically set status, stamp last_checked, bump check_count.
	prev, err := s.sites.ApplyStatus(ctx, in.SiteID, newStatus, in.Notes, ts)
	if err != nil {
		return nil, fmt.Errorf("apply check: update status: %w", err)
	}

	// 5. Commit the sequence after the write so a failed write never blocks
	// the client's rollback-and-retry path.
	if in.Seq > 0 {
		if commitErr := s.guard.Commit(ctx, in.SiteID, in.Seq); commitErr != nil {
			s.log.Warn().Err(commitErr).Str("site_id", in.SiteID).Msg("failed to commit sequence")
		}
	}

	// 6. Append to the change log (non-fatal on failure).
	change := &domain.StatusChange{
		ID:             uuid.NewString(),
		SiteID:         site.ID,
		SiteName:       site.Name,
		PreviousStatus: prev,
		NewStatus:      newStatus,
		Notes:          in.Notes,
		Operator:       in.Operator,
		Timestamp:      ts,
	}
	if err := s.changes.Insert(ctx, change); err != nil {
		s.log.Warn().Err(err).Str("site_id", in.SiteID).Msg("failed to insert change log entry")
	}

	s.log.Info().
		Str("site_id", in.SiteID).
		Str("from", string(prev)).
		Str("to", in.NewStatus).
		Str("operator", in.Operator).
		Msg("status check applied")

	return &ports.StatusCheckResult{
		Applied:        true,
		SiteID:         in.SiteID,
		PreviousStatus: string(prev),
		Status:         in.NewStatus,
		Timestamp:      ts,
	}, nil
}

// supersededResult reports the store's current state so the client can
// reconcile the marker without rolling back past the newer request.
func (s *updateService) supersededResult(ctx context.Context, in ports.StatusCheckInput) (*ports.StatusCheckResult, error) {
	site, err := s.sites.FindByID(ctx, in.SiteID)
	if err != nil {
		return nil, fmt.Errorf("apply check: %w", err)
	}
	return &ports.StatusCheckResult{
		Applied:   false,
		SiteID:    site.ID,
		Status:    string(site.Status),
		Timestamp: site.LastChecked,
	}, nil
}
