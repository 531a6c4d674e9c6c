package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenloop/waste-platform/internal/core/domain"
	"github.com/greenloop/waste-platform/internal/core/ports"
	"github.com/greenloop/waste-platform/internal/infrastructure/db/memory"
)

type stubModuleCache struct {
	modules     []domain.Module
	present     bool
	getErr      error
	gets        int
	sets        int
	invalidates int
	lastTTL     time.Duration
}

func (c *stubModuleCache) Get(context.Context) ([]domain.Module, bool, error) {
	c.gets++
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	return c.modules, c.present, nil
}

func (c *stubModuleCache) Set(_ context.Context, modules []domain.Module, ttl time.Duration) error {
	c.sets++
	c.modules, c.present, c.lastTTL = modules, true, ttl
	return nil
}

func (c *stubModuleCache) Invalidate(context.Context) error {
	c.invalidates++
	c.modules, c.present = nil, false
	return nil
}

func boolPtr(v bool) *bool { return &v }

func TestModuleService_Create_AppliesDefaults(t *testing.T) {
	svc := NewModuleService(memory.NewModuleRepository(), nil, 0, zerolog.Nop())

	m, err := svc.Create(context.Background(), ports.CreateModuleInput{
		Slug:  "  Waste Sorting 101 ",
		Title: "Waste Sorting",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if m.Slug != "waste-sorting-101" {
		t.Fatalf("unexpected slug: %q", m.Slug)
	}
	if m.Difficulty != domain.DifficultyBeginner || m.Points != domain.DefaultModulePoints || !m.Published {
		t.Fatalf("defaults not applied: %+v", m)
	}
	if m.Topics == nil {
		t.Fatalf("expected empty topics, got nil")
	}
}

func TestModuleService_Create_Validation(t *testing.T) {
	svc := NewModuleService(memory.NewModuleRepository(), nil, 0, zerolog.Nop())

	cases := map[string]ports.CreateModuleInput{
		"empty slug":      {Slug: "  "},
		"bad difficulty":  {Slug: "intro", Difficulty: "Legendary"},
		"negative points": {Slug: "intro", Points: intPtr(-5)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), in)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestModuleService_Create_DuplicateSlug(t *testing.T) {
	svc := NewModuleService(memory.NewModuleRepository(), nil, 0, zerolog.Nop())

	if _, err := svc.Create(context.Background(), ports.CreateModuleInput{Slug: "intro"}); err != nil {
		t.Fatalf("first Create returned error: %v", err)
	}
	_, err := svc.Create(context.Background(), ports.CreateModuleInput{Slug: "Intro"})
	if !errors.Is(err, domain.ErrModuleExists) {
		t.Fatalf("expected ErrModuleExists, got %v", err)
	}
}

func TestModuleService_List_UsesCache(t *testing.T) {
	cache := &stubModuleCache{}
	svc := NewModuleService(memory.NewModuleRepository(), cache, time.Minute, zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.Create(ctx, ports.CreateModuleInput{Slug: "intro"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, ports.CreateModuleInput{Slug: "draft", Published: boolPtr(false)}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(first) != 1 || first[0].Slug != "intro" {
		t.Fatalf("expected only the published module, got %+v", first)
	}
	if cache.sets != 1 || cache.lastTTL != time.Minute {
		t.Fatalf("expected listing to be cached for 1m, sets=%d ttl=%s", cache.sets, cache.lastTTL)
	}

	if _, err := svc.List(ctx); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected second listing to be served from cache")
	}

	if _, err := svc.Create(ctx, ports.CreateModuleInput{Slug: "compost"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if cache.invalidates != 3 {
		t.Fatalf("expected every create to invalidate, got %d", cache.invalidates)
	}

	after, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(after) != 2 || after[0].Slug != "compost" {
		t.Fatalf("expected newest first after invalidation, got %+v", after)
	}
}

func TestModuleService_List_CacheErrorFallsBack(t *testing.T) {
	cache := &stubModuleCache{getErr: errors.New("connection refused")}
	svc := NewModuleService(memory.NewModuleRepository(), cache, 0, zerolog.Nop())

	if _, err := svc.Create(context.Background(), ports.CreateModuleInput{Slug: "intro"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	modules, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(modules) != 1 {
		t.Fatalf("expected store result, got %+v", modules)
	}
}
