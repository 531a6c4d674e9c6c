package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/greenloop/waste-platform/internal/api/middleware"
	"github.com/greenloop/waste-platform/internal/core/domain"
	"github.com/greenloop/waste-platform/internal/core/ports"
)

type stubUserService struct {
	lastActor *domain.User
	lastPatch ports.StatsPatch
	lastInput ports.CompleteModuleInput
	lastLimit int
	err       error
}

func (s *stubUserService) GetUser(_ context.Context, id string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.User{ID: id, Role: domain.RoleCitizen, Stats: domain.DefaultStats()}, nil
}

func (s *stubUserService) CompleteModule(_ context.Context, actor *domain.User, in ports.CompleteModuleInput) (*domain.User, error) {
	s.lastActor, s.lastInput = actor, in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.User{ID: in.TargetID, Stats: domain.Stats{Points: 50, GreenCredits: 5, Level: 1, ModulesCompleted: []string{in.ModuleSlug}}}, nil
}

func (s *stubUserService) UpdateStats(_ context.Context, actor *domain.User, targetID string, patch ports.StatsPatch) (*domain.User, error) {
	s.lastActor, s.lastPatch = actor, patch
	if s.err != nil {
		return nil, s.err
	}
	return &domain.User{ID: targetID, Stats: domain.DefaultStats()}, nil
}

func (s *stubUserService) ListActivity(_ context.Context, actor *domain.User, _ string, limit int) ([]domain.Activity, error) {
	s.lastActor, s.lastLimit = actor, limit
	if s.err != nil {
		return nil, s.err
	}
	return []domain.Activity{{ID: "a1", Kind: domain.ActivityModuleCompleted, ModuleSlug: "intro", PointsDelta: 50}}, nil
}

var alice = &domain.User{ID: "u1", Role: domain.RoleCitizen}

func TestUserHandler_CompleteModule(t *testing.T) {
	stub := &stubUserService{}
	h := NewUserHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/", `{"moduleSlug":"intro","points":30}`)
	c.SetParamNames("id")
	c.SetParamValues("u1")
	middleware.SetSession(c, &domain.Session{User: alice})

	if err := h.CompleteModule(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.lastActor != alice || stub.lastInput.TargetID != "u1" || stub.lastInput.ModuleSlug != "intro" {
		t.Fatalf("unexpected call: actor=%v input=%+v", stub.lastActor, stub.lastInput)
	}
	if stub.lastInput.Points == nil || *stub.lastInput.Points != 30 {
		t.Fatalf("expected points 30, got %v", stub.lastInput.Points)
	}

	var resp userEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.User.Stats.Points != 50 || resp.User.Stats.GreenCredits != 5 {
		t.Fatalf("unexpected stats: %+v", resp.User.Stats)
	}
}

func TestUserHandler_CompleteModule_DefaultPointsAndValidation(t *testing.T) {
	stub := &stubUserService{}
	h := NewUserHandler(stub)

	c, _ := newJSONContext(http.MethodPost, "/", `{"moduleSlug":"intro"}`)
	c.SetParamNames("id")
	c.SetParamValues("u1")
	if err := h.CompleteModule(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.lastInput.Points != nil {
		t.Fatalf("expected points to be left to the service default")
	}

	for _, body := range []string{`{}`, `{"moduleSlug":"intro","points":-5}`, `{"moduleSlug":"intro","points":10001}`} {
		c, _ = newJSONContext(http.MethodPost, "/", body)
		if err := h.CompleteModule(c); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", body, err)
		}
	}
}

func TestUserHandler_UpdateStats(t *testing.T) {
	stub := &stubUserService{}
	h := NewUserHandler(stub)

	c, rec := newJSONContext(http.MethodPut, "/", `{"stats":{"points":120,"modulesCompleted":["intro","sorting"]}}`)
	c.SetParamNames("id")
	c.SetParamValues("u1")
	middleware.SetSession(c, &domain.Session{User: alice})

	if err := h.UpdateStats(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.lastPatch.Points == nil || *stub.lastPatch.Points != 120 {
		t.Fatalf("unexpected points in patch: %+v", stub.lastPatch)
	}
	if stub.lastPatch.Level != nil || stub.lastPatch.GreenCredits != nil {
		t.Fatalf("absent fields must stay nil: %+v", stub.lastPatch)
	}
	if len(stub.lastPatch.ModulesCompleted) != 2 {
		t.Fatalf("unexpected modules: %v", stub.lastPatch.ModulesCompleted)
	}
}

func TestUserHandler_UpdateStats_RejectsUnknownKeys(t *testing.T) {
	h := NewUserHandler(&stubUserService{})

	for _, body := range []string{`{}`, `{"stats":{"role":"government"}}`, `{"stats":{"points":"many"}}`} {
		c, _ := newJSONContext(http.MethodPut, "/", body)
		c.SetParamNames("id")
		c.SetParamValues("u1")
		if err := h.UpdateStats(c); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", body, err)
		}
	}
}

func TestUserHandler_PropagatesServiceErrors(t *testing.T) {
	h := NewUserHandler(&stubUserService{err: domain.ErrForbidden})

	c, _ := newJSONContext(http.MethodPost, "/", `{"moduleSlug":"intro"}`)
	c.SetParamNames("id")
	c.SetParamValues("u2")
	middleware.SetSession(c, &domain.Session{User: alice})

	if err := h.CompleteModule(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	h = NewUserHandler(&stubUserService{err: domain.ErrUserNotFound})
	c, _ = newJSONContext(http.MethodGet, "/", "")
	c.SetParamNames("id")
	c.SetParamValues("missing")
	if err := h.Get(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserHandler_Activity(t *testing.T) {
	stub := &stubUserService{}
	h := NewUserHandler(stub)

	c, rec := newJSONContext(http.MethodGet, "/?limit=5", "")
	c.SetParamNames("id")
	c.SetParamValues("u1")
	middleware.SetSession(c, &domain.Session{User: alice})

	if err := h.Activity(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.lastLimit != 5 {
		t.Fatalf("expected limit 5, got %d", stub.lastLimit)
	}

	var resp activityEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Activity) != 1 || resp.Activity[0].ModuleSlug != "intro" {
		t.Fatalf("unexpected activity: %+v", resp.Activity)
	}

	c, _ = newJSONContext(http.MethodGet, "/?limit=zero", "")
	if err := h.Activity(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for bad limit, got %v", err)
	}
}
