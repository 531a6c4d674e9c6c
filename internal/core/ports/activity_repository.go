package ports

import (
	"context"

	"github.com/greenloop/waste-platform/internal/core/domain"
)

// ActivityRepository persists the stats audit trail.
type ActivityRepository interface {
	Insert(ctx context.Context, a *domain.Activity) error
	// ListByUser returns at most limit entries for userID, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Activity, error)
}

// ActivityRecorder accepts activity for asynchronous persistence.
type ActivityRecorder interface {
	Record(a domain.Activity)
}
