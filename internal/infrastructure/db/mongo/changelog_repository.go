package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/willslawrence/sfla-tracker/internal/core/domain"
	"github.com/willslawrence/sfla-tracker/internal/core/ports"
)

const collectionChanges = "status_changes"

// ChangeLogRepository implements ports.ChangeLogRepository using MongoDB.
type ChangeLogRepository struct {
	col *mongo.Collection
}

// NewChangeLogRepository creates a new ChangeLogRepository.
func NewChangeLogRepository(db *mongo.Database) *ChangeLogRepository {
	return &ChangeLogRepository{col: db.Collection(collectionChanges)}
}

var _ ports.ChangeLogRepository = (*ChangeLogRepository)(nil)

// Insert persists a status change to the audit collection.
func (r *ChangeLogRepository) Insert(ctx context.Context, change *domain.StatusChange) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"_id":             change.ID,
		"site_id":         change.SiteID,
		"site_name":       change.SiteName,
		"previous_status": string(change.PreviousStatus),
		"new_status":      string(change.NewStatus),
		"notes":           change.Notes,
		"operator":        change.Operator,
		"timestamp":       change.Timestamp.UTC(),
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}

// ListBySite returns all changes for one site, newest first.
func (r *ChangeLogRepository) ListBySite(ctx context.Context, siteID string) ([]*domain.StatusChange, error) {
	return r.list(ctx, bson.M{"site_id": siteID})
}

// ListByRange returns changes with from <= timestamp < to, newest first.
func (r *ChangeLogRepository) ListByRange(ctx context.Context, from, to time.Time) ([]*domain.StatusChange, error) {
	return r.list(ctx, bson.M{
		"timestamp": bson.M{"$gte": from.UTC(), "$lt": to.UTC()},
	})
}

func (r *ChangeLogRepository) list(ctx context.Context, filter bson.M) ([]*domain.StatusChange, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var changes []*domain.StatusChange
	if err := cur.All(ctx, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}

// EnsureIndexes creates necessary indexes on the status_changes collection.
func (r *ChangeLogRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "site_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
