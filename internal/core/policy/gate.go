// Package policy holds the permission model: the Role Gate applied at every
// protected endpoint and the field-level rules applied to user mutations.
//
// Everything here is a pure function of the principal and the request; no
// state is kept between calls.
package policy

import "github.com/itdesk/helpdesk-api/internal/core/domain"

// Checker authorizes a principal, returning it unchanged on success.
type Checker func(principal *domain.User) (*domain.User, error)

// Gate builds a Checker admitting only principals whose role is in allowed.
// A nil principal is unauthenticated, never forbidden.
func Gate(allowed ...domain.Role) Checker {
	set := make(map[domain.Role]struct{}, len(allowed))
	for _, r := range allowed {
		set[r] = struct{}{}
	}

	return func(principal *domain.User) (*domain.User, error) {
		if principal == nil {
			return nil, domain.ErrUnauthenticated
		}
		if _, ok := set[principal.Role]; !ok {
			return nil, domain.ErrForbidden
		}
		return principal, nil
	}
}

// Common role sets.
var (
	Authenticated = Gate(domain.Roles...)
	Managers      = Gate(domain.RoleManager, domain.RoleAdmin)
	AdminsOnly    = Gate(domain.RoleAdmin)
)
