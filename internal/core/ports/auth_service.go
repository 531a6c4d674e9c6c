package ports

import (
	"context"

	"github.com/greenloop/waste-platform/internal/core/domain"
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Location string
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User  *domain.User
	Token string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Authenticate(ctx context.Context, token string) (*domain.Session, error)
}
