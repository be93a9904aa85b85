package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/itdesk/helpdesk-api/internal/api/metrics"
	"github.com/itdesk/helpdesk-api/internal/core/domain"
	"github.com/itdesk/helpdesk-api/internal/core/policy"
)

// Require applies a role checker such as policy.Managers to the request
// principal. It must be mounted after Auth.
func Require(check policy.Checker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := check(Principal(c)); err != nil {
				if errors.Is(err, domain.ErrForbidden) {
					metrics.AuthorizationDenialsTotal.WithLabelValues("role_gate").Inc()
				}
				return err
			}
			return next(c)
		}
	}
}
