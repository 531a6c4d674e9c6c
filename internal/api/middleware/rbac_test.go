package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/greenloop/waste-platform/internal/core/domain"
)

func runRBAC(t *testing.T, session *domain.Session, roles ...domain.Role) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if session != nil {
		SetSession(c, session)
	}

	called := false
	handler := RBAC(roles...)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func sessionFor(role domain.Role) *domain.Session {
	return &domain.Session{User: &domain.User{ID: "u1", Role: role}}
}

func TestRBAC_Allows(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleChampion, domain.RoleGovernment} {
		rec, called := runRBAC(t, sessionFor(role), domain.RoleChampion, domain.RoleGovernment)
		if !called {
			t.Fatalf("next handler not called for %s", role)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}
}

func TestRBAC_Forbids(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleCitizen, domain.RoleWorker} {
		rec, called := runRBAC(t, sessionFor(role), domain.RoleChampion, domain.RoleGovernment)
		if called {
			t.Fatalf("should not reach next handler for %s", role)
		}
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	}
}

func TestRBAC_RequiresSession(t *testing.T) {
	rec, called := runRBAC(t, nil, domain.RoleGovernment)
	if called {
		t.Fatalf("should not reach next handler")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
