package ports

import (
	"context"
	"time"

	"github.com/greenloop/waste-platform/internal/core/domain"
)

// ModuleRepository defines persistence for the training catalog.
type ModuleRepository interface {
	// Create returns domain.ErrModuleExists when the slug is taken.
	Create(ctx context.Context, m *domain.Module) (*domain.Module, error)
	// ListPublished returns published modules, newest first.
	ListPublished(ctx context.Context) ([]domain.Module, error)
}

// ModuleCache holds the published listing between catalog changes.
type ModuleCache interface {
	Get(ctx context.Context) ([]domain.Module, bool, error)
	Set(ctx context.Context, modules []domain.Module, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}
