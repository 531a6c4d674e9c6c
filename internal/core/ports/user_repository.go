package ports

import (
	"context"

	"github.com/greenloop/waste-platform/internal/core/domain"
)

// UserRepository defines persistence for user records.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByID returns domain.ErrUserNotFound for unknown or malformed ids.
	FindByID(ctx context.Context, id string) (*domain.User, error)

	// CompleteModule atomically appends slug to modulesCompleted and adds
	// points and credits, but only when slug is not already present. The
	// returned bool reports whether the user was credited. A credit that would
	// push a counter past domain.MaxStatValue fails with domain.ErrStatsLimit.
	CompleteModule(ctx context.Context, id, slug string, points, credits int) (*domain.User, bool, error)

	// ReplaceStats overwrites the stats sub-record if the stored revision
	// still equals expectedRevision; otherwise domain.ErrStatsConflict. Every
	// stats write, including CompleteModule, bumps the revision.
	ReplaceStats(ctx context.Context, id string, stats domain.Stats, expectedRevision int64) (*domain.User, error)
}
