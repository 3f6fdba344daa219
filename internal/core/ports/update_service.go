package ports

import (
	"context"
	"time"
)

// StatusCheckInput is the DTO passed from the transport layer to UpdateService.
// Seq is the per-site request sequence number assigned by the client; a check
// whose Seq is below the last applied sequence for the site is superseded and
// must not overwrite newer state (last write wins).
type StatusCheckInput struct {
	SiteID    string
	NewStatus string
	Notes     string
	Operator  string
	Seq       int64
	Timestamp time.Time
}

// StatusCheckResult reports the outcome of a status check.
type StatusCheckResult struct {
	// Applied is false when the check was superseded by a newer request.
	Applied        bool
	SiteID         string
	PreviousStatus string
	Status         string
	Timestamp      time.Time
}

// UpdateService applies operator status checks to the store.
type UpdateService interface {
	Apply(ctx context.Context, in StatusCheckInput) (*StatusCheckResult, error)
}
