package ports

import (
	"context"
	"time"

	"github.com/itdesk/helpdesk-api/internal/core/domain"
)

// ListUsersFilter carries the query parameters for listing users.
type ListUsersFilter struct {
	Role   domain.Role // optional
	Search string      // optional: partial match on username, full name or email
	Page   int         // 1-based
	Limit  int
}

// UserRepository is the credential store. Every write is a single-document
// mutation; concurrent updates are last-write-wins.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter ListUsersFilter) ([]*domain.User, int64, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// AuditRepository persists the user-management audit trail.
type AuditRepository interface {
	Record(ctx context.Context, entry *domain.AuditEntry) error
	// Recent returns the newest entries first.
	Recent(ctx context.Context, limit int) ([]*domain.AuditEntry, error)
}

// LoginLimiter throttles repeated failed logins per username.
type LoginLimiter interface {
	Allowed(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}
