package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/greenloop/waste-platform/internal/core/domain"
)

func TestMongoUser_DocumentShape(t *testing.T) {
	doc := mongoUser{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "hash",
		Role:     "citizen",
		Stats:    toMongoStats(domain.Stats{Level: 1}),
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if _, ok := m["_id"]; ok {
		t.Fatalf("zero id must be omitted so the server assigns one")
	}
	for _, key := range []string{"name", "email", "password", "role", "stats", "createdAt", "updatedAt", "rev"} {
		if _, ok := m[key]; !ok {
			t.Fatalf("missing field %q in %v", key, m)
		}
	}
	stats := m["stats"].(bson.M)
	if modules, ok := stats["modulesCompleted"].(bson.A); !ok || len(modules) != 0 {
		t.Fatalf("modulesCompleted must be stored as an empty array, got %#v", stats["modulesCompleted"])
	}
}

func TestMongoUser_ToDomainNeverReturnsNilModules(t *testing.T) {
	mu := mongoUser{Role: "worker"}
	u := mu.toDomain()
	if u.Stats.ModulesCompleted == nil {
		t.Fatalf("expected empty slice")
	}
	if u.Role != domain.RoleWorker {
		t.Fatalf("unexpected role %q", u.Role)
	}
}

func TestBsonTime_TruncatesToMillis(t *testing.T) {
	in := time.Date(2025, 3, 1, 10, 0, 0, 123456789, time.FixedZone("X", 3600))
	got := bsonTime(in)
	if got.Nanosecond() != 123000000 || got.Location() != time.UTC {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestUserRepository_MalformedIDIsNotFound(t *testing.T) {
	// The driver connects lazily, so no server is needed for these paths.
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://127.0.0.1:1"))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	repo := NewUserRepository(client.Database("test"))

	if _, err := repo.FindByID(context.Background(), "not-an-id"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("FindByID: expected ErrUserNotFound, got %v", err)
	}
	if _, _, err := repo.CompleteModule(context.Background(), "not-an-id", "intro", 50, 5); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("CompleteModule: expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.ReplaceStats(context.Background(), "not-an-id", domain.DefaultStats(), 0); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("ReplaceStats: expected ErrUserNotFound, got %v", err)
	}
}
