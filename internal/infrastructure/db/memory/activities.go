package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/greenloop/waste-platform/internal/core/domain"
)

// ActivityRepository is an append-only in-memory audit log.
type ActivityRepository struct {
	mu    sync.RWMutex
	items []domain.Activity
}

func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{}
}

func (r *ActivityRepository) Insert(_ context.Context, a *domain.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *a
	stored.ID = "a" + strconv.Itoa(len(r.items)+1)
	r.items = append(r.items, stored)
	return nil
}

func (r *ActivityRepository) ListByUser(_ context.Context, userID string, limit int) ([]domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Activity, 0)
	for i := len(r.items) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if r.items[i].UserID == userID {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}
