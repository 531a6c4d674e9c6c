package ports

import (
	"context"

	"github.com/greenloop/waste-platform/internal/core/domain"
)

// CreateModuleInput carries a new catalog entry. Nil pointers take defaults.
type CreateModuleInput struct {
	Slug        string
	Title       string
	Description string
	Duration    string
	Difficulty  string
	Topics      []string
	Points      *int
	Path        string
	Published   *bool
}

type ModuleService interface {
	List(ctx context.Context) ([]domain.Module, error)
	Create(ctx context.Context, in CreateModuleInput) (*domain.Module, error)
}
