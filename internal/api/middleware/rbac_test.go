package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/itdesk/helpdesk-api/internal/api/metrics"
	"github.com/itdesk/helpdesk-api/internal/core/domain"
	"github.com/itdesk/helpdesk-api/internal/core/policy"
)

func runGate(t *testing.T, principal *domain.User, check policy.Checker) (bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if principal != nil {
		SetPrincipal(c, principal)
	}

	called := false
	handler := Require(check)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	return called, err
}

func TestRequire_Allows(t *testing.T) {
	called, err := runGate(t, &domain.User{Username: "root", Role: domain.RoleAdmin}, policy.Managers)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
}

func TestRequire_Forbidden(t *testing.T) {
	called, err := runGate(t, &domain.User{Username: "tech", Role: domain.RoleTechnician}, policy.Managers)
	if err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if called {
		t.Fatalf("next handler must not be called")
	}
}

func TestRequire_NoPrincipalIsUnauthenticated(t *testing.T) {
	called, err := runGate(t, nil, policy.AdminsOnly)
	if err != domain.ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if called {
		t.Fatalf("next handler must not be called")
	}
}

func TestRequire_CountsDenials(t *testing.T) {
	denials := metrics.AuthorizationDenialsTotal.WithLabelValues("role_gate")
	before := testutil.ToFloat64(denials)

	_, _ = runGate(t, &domain.User{Username: "bob", Role: domain.RoleUser}, policy.AdminsOnly)
	_, _ = runGate(t, &domain.User{Username: "root", Role: domain.RoleAdmin}, policy.AdminsOnly)
	_, _ = runGate(t, nil, policy.AdminsOnly)

	if got := testutil.ToFloat64(denials) - before; got != 1 {
		t.Errorf("role_gate denials grew by %v, want 1", got)
	}
}
