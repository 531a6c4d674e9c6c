package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenloop/waste-platform/internal/core/domain"
)

func newUser(email string) *domain.User {
	return &domain.User{Name: "Priya", Email: email, Role: domain.RoleCitizen, Stats: domain.DefaultStats()}
}

func TestUserRepository_EmailIsCaseInsensitive(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, newUser("Priya@Example.com"))
	require.NoError(t, err)
	assert.Equal(t, "priya@example.com", created.Email)

	_, err = repo.Create(ctx, newUser("PRIYA@example.com"))
	assert.ErrorIs(t, err, domain.ErrUserExists)

	found, err := repo.FindByEmail(ctx, "priya@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestUserRepository_CompleteModuleIsIdempotentUnderConcurrency(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	u, err := repo.Create(ctx, newUser("a@example.com"))
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		credited int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := repo.CompleteModule(ctx, u.ID, "basics", 50, 5)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				credited++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, credited)
	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Stats.Points)
	assert.Equal(t, 5, got.Stats.GreenCredits)
	assert.Equal(t, []string{"basics"}, got.Stats.ModulesCompleted)
}

func TestUserRepository_ReplaceStatsDetectsStaleWrites(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	u, err := repo.Create(ctx, newUser("a@example.com"))
	require.NoError(t, err)

	updated, err := repo.ReplaceStats(ctx, u.ID, domain.Stats{Points: 10, Level: 1, ModulesCompleted: []string{}}, u.Revision)
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Stats.Points)
	assert.Equal(t, u.Revision+1, updated.Revision)
	assert.True(t, updated.UpdatedAt.After(u.UpdatedAt))

	_, err = repo.ReplaceStats(ctx, u.ID, domain.Stats{Points: 20, Level: 1}, u.Revision)
	assert.ErrorIs(t, err, domain.ErrStatsConflict)

	_, err = repo.ReplaceStats(ctx, "missing", domain.Stats{}, 0)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_CompletionInvalidatesPendingReplace(t *testing.T) {
	repo := NewUserRepository()
	frozen := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return frozen }
	ctx := context.Background()

	u, err := repo.Create(ctx, newUser("a@example.com"))
	require.NoError(t, err)

	_, credited, err := repo.CompleteModule(ctx, u.ID, "basics", 50, 5)
	require.NoError(t, err)
	require.True(t, credited)

	// A stats merge computed from the pre-completion read must not win.
	_, err = repo.ReplaceStats(ctx, u.ID, domain.Stats{Points: 10, Level: 1, ModulesCompleted: []string{}}, u.Revision)
	assert.ErrorIs(t, err, domain.ErrStatsConflict)

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Stats.Points)
	assert.Equal(t, []string{"basics"}, got.Stats.ModulesCompleted)
}

func TestUserRepository_CompleteModuleRefusesOverflow(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	u, err := repo.Create(ctx, newUser("a@example.com"))
	require.NoError(t, err)
	_, err = repo.ReplaceStats(ctx, u.ID, domain.Stats{Points: domain.MaxStatValue, Level: 1, ModulesCompleted: []string{}}, u.Revision)
	require.NoError(t, err)

	_, credited, err := repo.CompleteModule(ctx, u.ID, "basics", 1, 0)
	assert.ErrorIs(t, err, domain.ErrStatsLimit)
	assert.False(t, credited)

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxStatValue, got.Stats.Points)
	assert.Empty(t, got.Stats.ModulesCompleted)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	u, err := repo.Create(ctx, newUser("a@example.com"))
	require.NoError(t, err)
	u.Stats.Points = 999

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Stats.Points)
}

func TestModuleRepository_ListPublishedNewestFirst(t *testing.T) {
	repo := NewModuleRepository()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, m := range []domain.Module{
		{Slug: "basics", Published: true, CreatedAt: base},
		{Slug: "draft", Published: false, CreatedAt: base.Add(time.Hour)},
		{Slug: "composting", Published: true, CreatedAt: base.Add(2 * time.Hour)},
	} {
		m := m
		_, err := repo.Create(ctx, &m)
		require.NoError(t, err, "module %d", i)
	}

	_, err := repo.Create(ctx, &domain.Module{Slug: "basics"})
	assert.ErrorIs(t, err, domain.ErrModuleExists)

	list, err := repo.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "composting", list[0].Slug)
	assert.Equal(t, "basics", list[1].Slug)
}

func TestActivityRepository_ListByUser(t *testing.T) {
	repo := NewActivityRepository()
	ctx := context.Background()

	for _, a := range []domain.Activity{
		{UserID: "u1", ModuleSlug: "one"},
		{UserID: "u2", ModuleSlug: "other"},
		{UserID: "u1", ModuleSlug: "two"},
		{UserID: "u1", ModuleSlug: "three"},
	} {
		a := a
		require.NoError(t, repo.Insert(ctx, &a))
	}

	list, err := repo.ListByUser(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "three", list[0].ModuleSlug)
	assert.Equal(t, "two", list[1].ModuleSlug)
}
