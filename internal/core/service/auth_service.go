package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/greenloop/waste-platform/internal/api/metrics"
	"github.com/greenloop/waste-platform/internal/core/domain"
	"github.com/greenloop/waste-platform/internal/core/ports"
)

const (
	// DefaultTokenTTL applies when the configured TTL is not positive.
	DefaultTokenTTL = 7 * 24 * time.Hour

	minNameLength     = 2
	minPasswordLength = 6
)

// sessionClaims is the whole token payload: who and which role, plus iat/exp.
type sessionClaims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService implements registration, login and session verification.
type AuthService struct {
	repo      ports.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	hashCost  int
	now       func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(repo ports.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &AuthService{
		repo:      repo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		hashCost:  bcrypt.DefaultCost,
		now:       time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	user, err := s.newUser(in)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, user.Email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	token, err := s.generateToken(created)
	if err != nil {
		return nil, err
	}

	metrics.UsersRegisteredTotal.WithLabelValues(string(created.Role)).Inc()
	return &ports.AuthResult{User: created, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Burn the same bcrypt work as a real comparison.
			_ = bcrypt.CompareHashAndPassword(s.placeholderHash(), []byte(password))
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return &ports.AuthResult{User: user, Token: token}, nil
}

// Authenticate verifies a bearer token and resolves it to a live user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	return &domain.Session{User: user, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// EnsureAccount registers the account described by in unless its email is
// already taken, in which case the existing user is returned untouched.
func (s *AuthService) EnsureAccount(ctx context.Context, in ports.RegisterInput) (*domain.User, bool, error) {
	existing, err := s.repo.FindByEmail(ctx, domain.NormalizeEmail(in.Email))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, false, fmt.Errorf("ensure account: %w", err)
	}

	res, err := s.Register(ctx, in)
	if err != nil {
		return nil, false, err
	}
	return res.User, true, nil
}

func (s *AuthService) newUser(in ports.RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)

	switch {
	case len([]rune(name)) < minNameLength:
		return nil, fmt.Errorf("%w: name must be at least %d characters", domain.ErrValidation, minNameLength)
	case email == "" || !strings.Contains(email, "@"):
		return nil, fmt.Errorf("%w: email must be a valid email", domain.ErrValidation)
	case len(in.Password) < minPasswordLength:
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}

	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	return &domain.User{
		Name:      name,
		Email:     email,
		Role:      role,
		Avatar:    domain.AvatarFor(email),
		Location:  strings.TrimSpace(in.Location),
		Stats:     domain.DefaultStats(),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := s.now()
	claims := sessionClaims{
		UserID: user.ID,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) placeholderHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("placeholder-password"), s.hashCost)
	})
	return s.dummyHash
}
