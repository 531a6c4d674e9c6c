// Package memory provides goroutine-safe in-process implementations of the
// storage ports. They follow the same contracts as the MongoDB repositories
// and back the "memory" storage driver and the test suites.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/greenloop/waste-platform/internal/core/domain"
)

// UserRepository keeps users in a map guarded by a mutex.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string
	seq     int
	now     func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	clone.Stats = u.Stats.Clone()
	return &clone
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := domain.NormalizeEmail(user.Email)
	if _, exists := r.byEmail[email]; exists {
		return nil, domain.ErrUserExists
	}

	r.seq++
	stored := cloneUser(user)
	stored.ID = "u" + strconv.Itoa(r.seq)
	stored.Email = email
	if stored.Stats.ModulesCompleted == nil {
		stored.Stats.ModulesCompleted = []string{}
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.now().UTC()
	}
	stored.UpdatedAt = stored.CreatedAt
	stored.Revision = 0

	r.byID[stored.ID] = stored
	r.byEmail[email] = stored.ID
	return cloneUser(stored), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) CompleteModule(_ context.Context, id, slug string, points, credits int) (*domain.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, false, domain.ErrUserNotFound
	}
	if u.Stats.HasCompleted(slug) {
		return cloneUser(u), false, nil
	}
	if !u.Stats.CanCredit(points, credits) {
		return nil, false, domain.ErrStatsLimit
	}

	u.Stats.ModulesCompleted = append(u.Stats.ModulesCompleted, slug)
	u.Stats.Points += points
	u.Stats.GreenCredits += credits
	u.Revision++
	u.UpdatedAt = r.tick(u.UpdatedAt)
	return cloneUser(u), true, nil
}

func (r *UserRepository) ReplaceStats(_ context.Context, id string, stats domain.Stats, expectedRevision int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if u.Revision != expectedRevision {
		return nil, domain.ErrStatsConflict
	}

	u.Stats = stats.Clone()
	u.Revision++
	u.UpdatedAt = r.tick(u.UpdatedAt)
	return cloneUser(u), nil
}

// tick keeps updatedAt strictly increasing across writes.
func (r *UserRepository) tick(prev time.Time) time.Time {
	now := r.now().UTC()
	if !now.After(prev) {
		now = prev.Add(time.Millisecond)
	}
	return now
}
