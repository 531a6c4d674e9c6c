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

const modulesCollection = "modules"

type ModuleRepository struct {
	col *mongo.Collection
}

func NewModuleRepository(db *mongo.Database) *ModuleRepository {
	return &ModuleRepository{col: db.Collection(modulesCollection)}
}

type mongoModule struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Slug        string             `bson:"slug"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Duration    string             `bson:"duration"`
	Difficulty  string             `bson:"difficulty"`
	Topics      []string           `bson:"topics"`
	Points      int                `bson:"points"`
	Path        string             `bson:"path"`
	Published   bool               `bson:"published"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (mm *mongoModule) toDomain() domain.Module {
	topics := mm.Topics
	if topics == nil {
		topics = []string{}
	}
	return domain.Module{
		ID:          mm.ID.Hex(),
		Slug:        mm.Slug,
		Title:       mm.Title,
		Description: mm.Description,
		Duration:    mm.Duration,
		Difficulty:  domain.Difficulty(mm.Difficulty),
		Topics:      topics,
		Points:      mm.Points,
		Path:        mm.Path,
		Published:   mm.Published,
		CreatedAt:   mm.CreatedAt.UTC(),
		UpdatedAt:   mm.UpdatedAt.UTC(),
	}
}

// Create inserts a module; the unique slug index turns clashes into
// domain.ErrModuleExists.
func (r *ModuleRepository) Create(ctx context.Context, m *domain.Module) (*domain.Module, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created := m.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	created = bsonTime(created)

	doc := mongoModule{
		Slug:        m.Slug,
		Title:       m.Title,
		Description: m.Description,
		Duration:    m.Duration,
		Difficulty:  string(m.Difficulty),
		Topics:      m.Topics,
		Points:      m.Points,
		Path:        m.Path,
		Published:   m.Published,
		CreatedAt:   created,
		UpdatedAt:   created,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrModuleExists
		}
		return nil, fmt.Errorf("insert module: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}

	out := doc.toDomain()
	return &out, nil
}

// ListPublished returns published modules sorted by createdAt descending.
func (r *ModuleRepository) ListPublished(ctx context.Context) ([]domain.Module, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"published": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("find modules: %w", err)
	}
	defer cur.Close(ctx)

	modules := make([]domain.Module, 0)
	for cur.Next(ctx) {
		var mm mongoModule
		if err := cur.Decode(&mm); err != nil {
			return nil, fmt.Errorf("decode module: %w", err)
		}
		modules = append(modules, mm.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate modules: %w", err)
	}
	return modules, nil
}

// EnsureIndexes creates necessary indexes on the modules collection.
func (r *ModuleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "published", Value: 1}, {Key: "createdAt", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
