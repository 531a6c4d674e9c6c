package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/greenloop/waste-platform/internal/core/domain"
)

const activitiesCollection = "activities"

// ActivityRepository implements ports.ActivityRepository using MongoDB.
type ActivityRepository struct {
	col *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{col: db.Collection(activitiesCollection)}
}

type mongoActivity struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	UserID            string             `bson:"userId"`
	ActorID           string             `bson:"actorId"`
	Kind              string             `bson:"kind"`
	ModuleSlug        string             `bson:"moduleSlug,omitempty"`
	PointsDelta       int                `bson:"pointsDelta"`
	GreenCreditsDelta int                `bson:"greenCreditsDelta"`
	At                time.Time          `bson:"at"`
	RecordedAt        time.Time          `bson:"recordedAt"`
}

// Insert persists an activity entry to the audit collection.
func (r *ActivityRepository) Insert(ctx context.Context, a *domain.Activity) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoActivity{
		UserID:            a.UserID,
		ActorID:           a.ActorID,
		Kind:              string(a.Kind),
		ModuleSlug:        a.ModuleSlug,
		PointsDelta:       a.PointsDelta,
		GreenCreditsDelta: a.GreenCreditsDelta,
		At:                a.At.UTC(),
		RecordedAt:        time.Now().UTC(),
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *ActivityRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Activity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find activity: %w", err)
	}

	var docs []mongoActivity
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode activity: %w", err)
	}

	out := make([]domain.Activity, len(docs))
	for i, d := range docs {
		out[i] = domain.Activity{
			ID:                d.ID.Hex(),
			UserID:            d.UserID,
			ActorID:           d.ActorID,
			Kind:              domain.ActivityKind(d.Kind),
			ModuleSlug:        d.ModuleSlug,
			PointsDelta:       d.PointsDelta,
			GreenCreditsDelta: d.GreenCreditsDelta,
			At:                d.At.UTC(),
		}
	}
	return out, nil
}

// EnsureIndexes supports the per-user, newest-first listing.
func (r *ActivityRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "at", Value: -1}},
	})
	return err
}
