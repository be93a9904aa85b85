package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/itdesk/helpdesk-api/internal/api/metrics"
	"github.com/itdesk/helpdesk-api/internal/core/domain"
	"github.com/itdesk/helpdesk-api/internal/core/ports"
)

const principalKey = "principal"

// Auth validates the bearer token and resolves its subject to an active user,
// which is stored in the context as the request principal. Every rejection is
// reported as domain.ErrUnauthenticated regardless of cause.
func Auth(tokens ports.TokenValidator, users ports.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.TokenValidationsTotal.WithLabelValues("missing").Inc()
				return domain.ErrUnauthenticated
			}

			username, err := tokens.Validate(token)
			if err != nil {
				if errors.Is(err, domain.ErrTokenExpired) {
					metrics.TokenValidationsTotal.WithLabelValues("expired").Inc()
				} else {
					metrics.TokenValidationsTotal.WithLabelValues("invalid").Inc()
				}
				return domain.ErrUnauthenticated
			}

			user, err := users.FindByUsername(c.Request().Context(), username)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					metrics.TokenValidationsTotal.WithLabelValues("unknown_subject").Inc()
					return domain.ErrUnauthenticated
				}
				return fmt.Errorf("resolve principal: %w", err)
			}
			if !user.IsActive {
				metrics.TokenValidationsTotal.WithLabelValues("inactive_subject").Inc()
				return domain.ErrUnauthenticated
			}

			metrics.TokenValidationsTotal.WithLabelValues("valid").Inc()
			c.Set(principalKey, user)
			return next(c)
		}
	}
}

// Principal returns the user stored by Auth, or nil when the request was not
// authenticated.
func Principal(c echo.Context) *domain.User {
	u, _ := c.Get(principalKey).(*domain.User)
	return u
}

// SetPrincipal stores u as the request principal.
func SetPrincipal(c echo.Context, u *domain.User) {
	c.Set(principalKey, u)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
