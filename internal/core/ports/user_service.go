package ports

import (
	"context"

	"github.com/itdesk/helpdesk-api/internal/core/domain"
)

// RegisterInput carries self-service signup data. The role is always user.
type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string
}

// CreateUserInput carries an administrative create.
type CreateUserInput struct {
	Username string
	Email    string
	FullName string
	Password string
	Role     domain.Role // empty = user
}

// UpdateUserInput carries a partial update; nil fields were absent from the payload.
type UpdateUserInput struct {
	Email    *string
	FullName *string
	Password *string
	Role     *domain.Role
	IsActive *bool
}

// ListUsersInput carries the parameters of the list endpoint.
type ListUsersInput struct {
	Role   domain.Role
	Search string
	Page   int
	Limit  int
}

// ListUsersResult is a page of users.
type ListUsersResult struct {
	Items      []*domain.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// UserService holds the user-management use cases. actor is the authenticated
// principal; policy rules are evaluated against it.
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Create(ctx context.Context, actor *domain.User, input CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, actor *domain.User, id string, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
	Get(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, input ListUsersInput) (*ListUsersResult, error)
	Audit(ctx context.Context, limit int) ([]*domain.AuditEntry, error)
}
