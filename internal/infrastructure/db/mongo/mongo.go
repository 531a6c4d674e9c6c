package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultTimeout = 10 * time.Second
	indexTimeout   = 30 * time.Second
	appName        = "waste-platform"
)

// Config captures the settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().ApplyURI(cfg.URI).SetAppName(appName)
	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// Repositories bundles the collections the service persists to.
type Repositories struct {
	Users      *UserRepository
	Modules    *ModuleRepository
	Activities *ActivityRepository
}

// NewRepositories wires every repository against db.
func NewRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(db),
		Modules:    NewModuleRepository(db),
		Activities: NewActivityRepository(db),
	}
}

// EnsureIndexes creates the indexes of every repository. The unique email
// and slug indexes back the uniqueness invariants, so failure is fatal.
func (r *Repositories) EnsureIndexes(ctx context.Context) error {
	for name, ix := range map[string]indexer{
		usersCollection:      r.Users,
		modulesCollection:    r.Modules,
		activitiesCollection: r.Activities,
	} {
		if err := ix.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}
	return nil
}
