package ports

import (
	"context"

	"github.com/itdesk/helpdesk-api/internal/core/domain"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string
	User  *domain.User
	// IsFirstLogin is true when the user had never logged in before this call.
	IsFirstLogin bool
}

// TokenValidator turns a bearer token into the username it was issued for.
type TokenValidator interface {
	Validate(token string) (string, error)
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
}
