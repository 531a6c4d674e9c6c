package ports

import (
	"context"

	"github.com/greenloop/waste-platform/internal/core/domain"
)

// StatsPatch is the restricted vocabulary accepted by the stats endpoint.
// Nil fields are left unchanged.
type StatsPatch struct {
	GreenCredits     *int
	Level            *int
	Points           *int
	ModulesCompleted []string // nil = unchanged
}

// IsEmpty reports whether the patch names no field at all.
func (p StatsPatch) IsEmpty() bool {
	return p.GreenCredits == nil && p.Level == nil && p.Points == nil && p.ModulesCompleted == nil
}

// CompleteModuleInput identifies a completion. Points defaults to
// domain.DefaultModulePoints when nil.
type CompleteModuleInput struct {
	TargetID   string
	ModuleSlug string
	Points     *int
}

type UserService interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	CompleteModule(ctx context.Context, actor *domain.User, in CompleteModuleInput) (*domain.User, error)
	UpdateStats(ctx context.Context, actor *domain.User, targetID string, patch StatsPatch) (*domain.User, error)
	ListActivity(ctx context.Context, actor *domain.User, targetID string, limit int) ([]domain.Activity, error)
}
