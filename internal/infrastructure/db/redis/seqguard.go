package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const seqTTL = 24 * time.Hour

// SequenceGuard tracks the last applied request sequence per site, backed by
// Redis. It is the arbiter for last-write-wins across operator devices: a
// status check is applied only when its sequence is above the last committed
// one for that site.
// Key format: seq:<site_id>
type SequenceGuard struct {
	client *redis.Client
}

// NewSequenceGuard creates a SequenceGuard wrapping the given Redis client.
func NewSequenceGuard(client *redis.Client) *SequenceGuard {
	return &SequenceGuard{client: client}
}

// Supersedes reports whether seq is newer than the last committed sequence
// for the site. A missing key counts as sequence zero.
func (g *SequenceGuard) Supersedes(ctx context.Context, siteID string, seq int64) (bool, error) {
	last, err := g.client.Get(ctx, g.key(siteID)).Int64()
	if err != nil {
		if err == redis.Nil {
			return true, nil
		}
		return false, fmt.Errorf("sequence check: %w", err)
	}
	return seq > last, nil
}

// Commit records seq as applied for the site (expires after seqTTL).
// All checks for one site — synchronous and batched — are applied by that
// site's dispatcher worker, so commits are single-writer and a plain SET
// cannot go backwards.
func (g *SequenceGuard) Commit(ctx context.Context, siteID string, seq int64) error {
	if err := g.client.Set(ctx, g.key(siteID), seq, seqTTL).Err(); err != nil {
		return fmt.Errorf("sequence commit: %w", err)
	}
	return nil
}

func (g *SequenceGuard) key(siteID string) string {
	return fmt.Sprintf("seq:%s", siteID)
}
