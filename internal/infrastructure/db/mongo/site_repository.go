package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/willslawrence/sfla-tracker/internal/core/domain"
)

const collectionSites = "sites"

type SiteRepository struct {
	col *mongo.Collection
}

func NewSiteRepository(db *mongo.Database) *SiteRepository {
	return &SiteRepository{col: db.Collection(collectionSites)}
}

// FetchAll returns every site ordered by name.
func (r *SiteRepository) FetchAll(ctx context.Context) ([]*domain.Site, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var sites []*domain.Site
	if err := cur.All(ctx, &sites); err != nil {
		return nil, err
	}
	return sites, nil
}

func (r *SiteRepository) FindByID(ctx context.Context, id string) (*domain.Site, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var s domain.Site
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSiteNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SiteRepository) FindByName(ctx context.Context, name string) (*domain.Site, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var s domain.Site
	err := r.col.FindOne(ctx, bson.M{"name": name}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSiteNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Create inserts a new site document.
func (r *SiteRepository) Create(ctx context.Context, site *domain.Site) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, site); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateSite
		}
		return err
	}
	return nil
}

// ApplyStatus atomically sets the status and notes, stamps last_checked, and
// increments check_count. The previous status is taken from the pre-update
// document so concurrent writers cannot observe a half-applied state.
func (r *SiteRepository) ApplyStatus(ctx context.Context, id string, status domain.SiteStatus, notes string, ts time.Time) (domain.SiteStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"status":       string(status),
			"notes":        notes,
			"last_checked": ts.UTC(),
			"updated_at":   time.Now().UTC(),
		},
		"$inc": bson.M{"check_count": 1},
	}

	var before domain.Site
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.Before)).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", domain.ErrSiteNotFound
		}
		return "", err
	}
	return before.Status, nil
}

// UpdateCoordinates replaces a site's coordinates (KML sync path).
func (r *SiteRepository) UpdateCoordinates(ctx context.Context, id string, coords domain.Coordinates) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"coordinates": coords,
			"updated_at":  time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrSiteNotFound
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the sites collection.
func (r *SiteRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
