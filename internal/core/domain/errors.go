package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("forbidden")
	ErrModuleExists       = errors.New("module slug already exists")
	ErrStatsConflict      = errors.New("stats were modified concurrently")
)

// ErrStatsLimit is returned when a credit would push a counter past
// MaxStatValue. It is a validation error.
var ErrStatsLimit = fmt.Errorf("%w: stats counters would exceed %d", ErrValidation, MaxStatValue)

// Session errors. All of them surface as 401.
var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
)
