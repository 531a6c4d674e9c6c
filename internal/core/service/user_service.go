package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenloop/waste-platform/internal/api/metrics"
	"github.com/greenloop/waste-platform/internal/core/domain"
	"github.com/greenloop/waste-platform/internal/core/ports"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

type userService struct {
	repo       ports.UserRepository
	activities ports.ActivityRepository
	recorder   ports.ActivityRecorder
	log        zerolog.Logger
	now        func() time.Time
}

// NewUserService returns a UserService implementation. recorder receives an
// Activity for every stats change that took effect.
func NewUserService(
	repo ports.UserRepository,
	activities ports.ActivityRepository,
	recorder ports.ActivityRecorder,
	log zerolog.Logger,
) ports.UserService {
	return &userService{
		repo:       repo,
		activities: activities,
		recorder:   recorder,
		log:        log,
		now:        time.Now,
	}
}

func (s *userService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// CompleteModule credits a module once per user. Repeating the call returns
// the current profile without touching the counters.
func (s *userService) CompleteModule(ctx context.Context, actor *domain.User, in ports.CompleteModuleInput) (*domain.User, error) {
	if !domain.CanManageStats(actor, in.TargetID) {
		return nil, domain.ErrForbidden
	}
	if in.ModuleSlug == "" {
		return nil, fmt.Errorf("%w: moduleSlug is required", domain.ErrValidation)
	}

	points := domain.DefaultModulePoints
	if in.Points != nil {
		points = *in.Points
	}
	if points < 0 || points > domain.MaxModulePoints {
		return nil, fmt.Errorf("%w: points must be between 0 and %d", domain.ErrValidation, domain.MaxModulePoints)
	}
	credits := domain.GreenCreditsFor(points)

	user, credited, err := s.repo.CompleteModule(ctx, in.TargetID, in.ModuleSlug, points, credits)
	if err != nil {
		return nil, fmt.Errorf("complete module: %w", err)
	}

	if !credited {
		metrics.ModuleCompletionsTotal.WithLabelValues("duplicate").Inc()
		s.log.Debug().
			Str("user_id", in.TargetID).
			Str("module", in.ModuleSlug).
			Msg("module already completed, nothing credited")
		return user, nil
	}

	metrics.ModuleCompletionsTotal.WithLabelValues("credited").Inc()
	s.recorder.Record(domain.Activity{
		UserID:            user.ID,
		ActorID:           actor.ID,
		Kind:              domain.ActivityModuleCompleted,
		ModuleSlug:        in.ModuleSlug,
		PointsDelta:       points,
		GreenCreditsDelta: credits,
		At:                s.now().UTC(),
	})

	s.log.Info().
		Str("user_id", user.ID).
		Str("actor_id", actor.ID).
		Str("module", in.ModuleSlug).
		Int("points", points).
		Msg("module completed")

	return user, nil
}

// UpdateStats merges patch over the user's stats. Points and green credits
// never go down and completed modules are never forgotten.
func (s *userService) UpdateStats(ctx context.Context, actor *domain.User, targetID string, patch ports.StatsPatch) (*domain.User, error) {
	if !domain.CanManageStats(actor, targetID) {
		return nil, domain.ErrForbidden
	}
	if patch.IsEmpty() {
		metrics.StatsUpdatesTotal.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: stats must set at least one field", domain.ErrValidation)
	}

	user, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	next, err := mergeStats(user.Stats, patch)
	if err != nil {
		metrics.StatsUpdatesTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	updated, err := s.repo.ReplaceStats(ctx, targetID, next, user.Revision)
	if err != nil {
		if errors.Is(err, domain.ErrStatsConflict) {
			metrics.StatsUpdatesTotal.WithLabelValues("conflict").Inc()
		}
		return nil, fmt.Errorf("update stats: %w", err)
	}

	metrics.StatsUpdatesTotal.WithLabelValues("applied").Inc()
	s.recorder.Record(domain.Activity{
		UserID:            updated.ID,
		ActorID:           actor.ID,
		Kind:              domain.ActivityStatsUpdated,
		PointsDelta:       next.Points - user.Stats.Points,
		GreenCreditsDelta: next.GreenCredits - user.Stats.GreenCredits,
		At:                s.now().UTC(),
	})

	return updated, nil
}

func (s *userService) ListActivity(ctx context.Context, actor *domain.User, targetID string, limit int) ([]domain.Activity, error) {
	if !domain.CanManageStats(actor, targetID) {
		return nil, domain.ErrForbidden
	}
	if _, err := s.repo.FindByID(ctx, targetID); err != nil {
		return nil, err
	}

	switch {
	case limit <= 0:
		limit = defaultActivityLimit
	case limit > maxActivityLimit:
		limit = maxActivityLimit
	}

	items, err := s.activities.ListByUser(ctx, targetID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return items, nil
}

func mergeStats(current domain.Stats, patch ports.StatsPatch) (domain.Stats, error) {
	next := current.Clone()

	bounded := []struct {
		name  string
		value *int
	}{
		{"points", patch.Points},
		{"greenCredits", patch.GreenCredits},
		{"level", patch.Level},
	}
	for _, f := range bounded {
		if f.value != nil && *f.value > domain.MaxStatValue {
			return domain.Stats{}, fmt.Errorf("%w: %s cannot exceed %d", domain.ErrValidation, f.name, domain.MaxStatValue)
		}
	}
	if patch.Points != nil {
		if *patch.Points < current.Points {
			return domain.Stats{}, fmt.Errorf("%w: points cannot decrease (current %d)", domain.ErrValidation, current.Points)
		}
		next.Points = *patch.Points
	}
	if patch.GreenCredits != nil {
		if *patch.GreenCredits < current.GreenCredits {
			return domain.Stats{}, fmt.Errorf("%w: greenCredits cannot decrease (current %d)", domain.ErrValidation, current.GreenCredits)
		}
		next.GreenCredits = *patch.GreenCredits
	}
	if patch.Level != nil {
		if *patch.Level < 1 {
			return domain.Stats{}, fmt.Errorf("%w: level must be at least 1", domain.ErrValidation)
		}
		next.Level = *patch.Level
	}
	if patch.ModulesCompleted != nil {
		seen := make(map[string]struct{}, len(patch.ModulesCompleted))
		modules := make([]string, 0, len(patch.ModulesCompleted))
		for _, slug := range patch.ModulesCompleted {
			if slug == "" {
				continue
			}
			if _, dup := seen[slug]; dup {
				continue
			}
			seen[slug] = struct{}{}
			modules = append(modules, slug)
		}
		for _, done := range current.ModulesCompleted {
			if _, kept := seen[done]; !kept {
				return domain.Stats{}, fmt.Errorf("%w: modulesCompleted cannot drop %q", domain.ErrValidation, done)
			}
		}
		next.ModulesCompleted = modules
	}

	return next, nil
}
