package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog"

	"github.com/greenloop/waste-platform/internal/api/metrics"
	"github.com/greenloop/waste-platform/internal/core/domain"
	"github.com/greenloop/waste-platform/internal/core/ports"
)

const defaultModuleCacheTTL = 5 * time.Minute

type moduleService struct {
	repo     ports.ModuleRepository
	cache    ports.ModuleCache
	cacheTTL time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

// NewModuleService returns a ModuleService. cache may be nil, in which case
// every listing goes to the repository.
func NewModuleService(repo ports.ModuleRepository, cache ports.ModuleCache, cacheTTL time.Duration, log zerolog.Logger) ports.ModuleService {
	if cacheTTL <= 0 {
		cacheTTL = defaultModuleCacheTTL
	}
	return &moduleService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
		now:      time.Now,
	}
}

// List returns the published catalog, newest first.
func (s *moduleService) List(ctx context.Context) ([]domain.Module, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			metrics.ModuleCacheTotal.WithLabelValues("error").Inc()
			s.log.Warn().Err(err).Msg("module cache read failed, falling back to store")
		case ok:
			metrics.ModuleCacheTotal.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.ModuleCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	modules, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, modules, s.cacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("module cache write failed")
		}
	}
	return modules, nil
}

func (s *moduleService) Create(ctx context.Context, in ports.CreateModuleInput) (*domain.Module, error) {
	m, err := s.newModule(in)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, m)
	if err != nil {
		if errors.Is(err, domain.ErrModuleExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create module: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn().Err(err).Str("slug", created.Slug).Msg("module cache invalidation failed")
		}
	}

	s.log.Info().Str("slug", created.Slug).Bool("published", created.Published).Msg("module created")
	return created, nil
}

func (s *moduleService) newModule(in ports.CreateModuleInput) (*domain.Module, error) {
	normalized := slug.Make(strings.TrimSpace(in.Slug))
	if normalized == "" {
		return nil, fmt.Errorf("%w: slug is required", domain.ErrValidation)
	}

	difficulty, err := domain.ParseDifficulty(in.Difficulty)
	if err != nil {
		return nil, err
	}

	points := domain.DefaultModulePoints
	if in.Points != nil {
		points = *in.Points
	}
	if points < 0 || points > domain.MaxModulePoints {
		return nil, fmt.Errorf("%w: points must be between 0 and %d", domain.ErrValidation, domain.MaxModulePoints)
	}

	published := true
	if in.Published != nil {
		published = *in.Published
	}

	topics := in.Topics
	if topics == nil {
		topics = []string{}
	}

	now := s.now().UTC()
	return &domain.Module{
		Slug:        normalized,
		Title:       in.Title,
		Description: in.Description,
		Duration:    in.Duration,
		Difficulty:  difficulty,
		Topics:      topics,
		Points:      points,
		Path:        in.Path,
		Published:   published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
