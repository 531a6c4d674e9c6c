package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/greenloop/waste-platform/internal/core/domain"
)

const usersCollection = "users"

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoStats struct {
	GreenCredits     int      `bson:"greenCredits"`
	Level            int      `bson:"level"`
	Points           int      `bson:"points"`
	ModulesCompleted []string `bson:"modulesCompleted"`
}

type mongoUser struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Role      string             `bson:"role"`
	Avatar    string             `bson:"avatar,omitempty"`
	Location  string             `bson:"location,omitempty"`
	Stats     mongoStats         `bson:"stats"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
	Rev       int64              `bson:"rev"`
}

func toMongoStats(s domain.Stats) mongoStats {
	modules := s.ModulesCompleted
	if modules == nil {
		// A null array would make $addToSet fail later on.
		modules = []string{}
	}
	return mongoStats{
		GreenCredits:     s.GreenCredits,
		Level:            s.Level,
		Points:           s.Points,
		ModulesCompleted: modules,
	}
}

func (mu *mongoUser) toDomain() *domain.User {
	modules := mu.Stats.ModulesCompleted
	if modules == nil {
		modules = []string{}
	}
	return &domain.User{
		ID:           mu.ID.Hex(),
		Name:         mu.Name,
		Email:        mu.Email,
		PasswordHash: mu.Password,
		Role:         domain.Role(mu.Role),
		Avatar:       mu.Avatar,
		Location:     mu.Location,
		Stats: domain.Stats{
			GreenCredits:     mu.Stats.GreenCredits,
			Level:            mu.Stats.Level,
			Points:           mu.Stats.Points,
			ModulesCompleted: modules,
		},
		CreatedAt: mu.CreatedAt.UTC(),
		UpdatedAt: mu.UpdatedAt.UTC(),
		Revision:  mu.Rev,
	}
}

// Create inserts a user. Timestamps are truncated to the millisecond
// precision BSON dates keep, so the returned UpdatedAt round-trips exactly.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created := user.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	created = bsonTime(created)

	doc := mongoUser{
		Name:      user.Name,
		Email:     domain.NormalizeEmail(user.Email),
		Password:  user.PasswordHash,
		Role:      string(user.Role),
		Avatar:    user.Avatar,
		Location:  user.Location,
		Stats:     toMongoStats(user.Stats),
		CreatedAt: created,
		UpdatedAt: created,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": domain.NormalizeEmail(email)})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// CompleteModule relies on a single conditional findAndModify: the filter only
// matches while slug is absent and both counters have room for the credit, so
// concurrent completions credit once and never overflow.
func (r *UserRepository) CompleteModule(ctx context.Context, id, slug string, points, credits int) (*domain.User, bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":                    oid,
		"stats.modulesCompleted": bson.M{"$ne": slug},
		"stats.points":           bson.M{"$lte": domain.MaxStatValue - points},
		"stats.greenCredits":     bson.M{"$lte": domain.MaxStatValue - credits},
	}
	update := bson.M{
		"$addToSet": bson.M{"stats.modulesCompleted": slug},
		"$inc": bson.M{
			"stats.points":       points,
			"stats.greenCredits": credits,
			"rev":                1,
		},
		"$set": bson.M{"updatedAt": bsonTime(time.Now())},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var mu mongoUser
	err = r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&mu)
	if err == nil {
		return mu.toDomain(), true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, fmt.Errorf("complete module: %w", err)
	}

	// The user is gone, the module was already there, or a counter is full.
	current, err := r.findOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, false, err
	}
	switch {
	case current.Stats.HasCompleted(slug):
		return current, false, nil
	case !current.Stats.CanCredit(points, credits):
		return nil, false, domain.ErrStatsLimit
	default:
		// Another write landed between the update and the read.
		return nil, false, domain.ErrStatsConflict
	}
}

// ReplaceStats is guarded by the rev counter rather than updatedAt, since two
// writes within one millisecond share a BSON timestamp.
func (r *UserRepository) ReplaceStats(ctx context.Context, id string, stats domain.Stats, expectedRevision int64) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": oid, "rev": expectedRevision}
	if expectedRevision == 0 {
		// Documents written before rev existed decode as 0.
		filter["rev"] = bson.M{"$in": bson.A{int64(0), nil}}
	}
	update := bson.M{
		"$set": bson.M{
			"stats":     toMongoStats(stats),
			"updatedAt": bsonTime(time.Now()),
		},
		"$inc": bson.M{"rev": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var mu mongoUser
	err = r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&mu)
	if err == nil {
		return mu.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("replace stats: %w", err)
	}

	if _, err := r.findOne(ctx, bson.M{"_id": oid}); err != nil {
		return nil, err
	}
	return nil, domain.ErrStatsConflict
}

// EnsureIndexes creates the unique email index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

// bsonTime drops precision BSON dates cannot hold.
func bsonTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
