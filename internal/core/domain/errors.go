package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated covers every reason a bearer token is rejected.
	ErrUnauthenticated = errors.New("could not validate credentials")
	ErrInvalidToken    = fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	ErrTokenExpired    = fmt.Errorf("%w: token expired", ErrUnauthenticated)

	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInactiveUser       = errors.New("inactive user")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")

	ErrForbidden = errors.New("not enough permissions")

	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already registered")
	ErrEmailTaken    = errors.New("email already registered")
	ErrUserExists    = errors.New("username or email already registered")
	ErrUnknownRole   = errors.New("unknown role")

	ErrPasswordTooLong = fmt.Errorf("password must be at most %d bytes", MaxPasswordBytes)
)

// PolicyError is a Forbidden-class rejection raised by a field-level rule.
type PolicyError struct {
	Rule    string
	Message string
}

func (e *PolicyError) Error() string { return e.Message }

// Is makes every PolicyError match ErrForbidden.
func (e *PolicyError) Is(target error) bool { return target == ErrForbidden }

var (
	ErrSelfDeletion = &PolicyError{
		Rule:    "self_deletion",
		Message: "You cannot delete your own account",
	}
	ErrDeletionForbidden = &PolicyError{
		Rule:    "deletion_authority",
		Message: "Only administrators can delete users",
	}
	ErrUpdateForbidden = &PolicyError{
		Rule:    "update_authority",
		Message: "Not enough permissions to modify other users",
	}
	ErrRoleElevationForbidden = &PolicyError{
		Rule:    "role_elevation_on_create",
		Message: "Only administrators can create managers or administrators",
	}
	ErrRoleChangeForbidden = &PolicyError{
		Rule:    "role_change_on_update",
		Message: "Only administrators can change user roles",
	}
	ErrActivationForbidden = &PolicyError{
		Rule:    "activation_change",
		Message: "Only managers and administrators can activate or deactivate users",
	}
)
