package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/itdesk/helpdesk-api/internal/api/middleware"
	"github.com/itdesk/helpdesk-api/internal/core/domain"
)

// currentUser returns the principal resolved by the Auth middleware. A missing
// principal means the route was mounted without Auth; treat it as
// unauthenticated rather than panicking.
func currentUser(c echo.Context) (*domain.User, error) {
	u := middleware.Principal(c)
	if u == nil {
		return nil, domain.ErrUnauthenticated
	}
	return u, nil
}
