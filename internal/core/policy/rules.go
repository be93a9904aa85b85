package policy

import "github.com/itdesk/helpdesk-api/internal/core/domain"

// Action is the kind of user mutation being authorized.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Mutation describes a user mutation for rule evaluation.
type Mutation struct {
	Action Action
	Actor  *domain.User
	// TargetID is empty on create.
	TargetID string
	// RequestedRole is non-nil when the payload carries a role field.
	RequestedRole *domain.Role
	// ActiveChange is true when the payload carries an is_active field.
	ActiveChange bool
}

// Rule is a single field-level restriction. Check returns nil when the rule
// does not apply or is satisfied.
type Rule struct {
	Name  string
	Check func(m Mutation) error
}

// AuthorityRules decide whether the actor may touch the target at all. They do
// not look at the payload.
var AuthorityRules = []Rule{
	{
		Name: "self_deletion",
		Check: func(m Mutation) error {
			if m.Action == ActionDelete && m.TargetID == m.Actor.ID {
				return domain.ErrSelfDeletion
			}
			return nil
		},
	},
	{
		Name: "deletion_authority",
		Check: func(m Mutation) error {
			if m.Action == ActionDelete && m.Actor.Role != domain.RoleAdmin {
				return domain.ErrDeletionForbidden
			}
			return nil
		},
	},
	{
		Name: "update_authority",
		Check: func(m Mutation) error {
			if m.Action == ActionUpdate && m.TargetID != m.Actor.ID && !m.Actor.Role.Privileged() {
				return domain.ErrUpdateForbidden
			}
			return nil
		},
	},
}

// PayloadRules restrict what the payload may change. Callers run them after
// uniqueness checks so a duplicate is reported before a forbidden role.
var PayloadRules = []Rule{
	{
		Name: "role_elevation_on_create",
		Check: func(m Mutation) error {
			if m.Action == ActionCreate && m.RequestedRole != nil &&
				m.RequestedRole.Privileged() && m.Actor.Role != domain.RoleAdmin {
				return domain.ErrRoleElevationForbidden
			}
			return nil
		},
	},
	{
		Name: "role_change_on_update",
		Check: func(m Mutation) error {
			if m.Action == ActionUpdate && m.RequestedRole != nil && m.Actor.Role != domain.RoleAdmin {
				return domain.ErrRoleChangeForbidden
			}
			return nil
		},
	},
	{
		Name: "activation_change",
		Check: func(m Mutation) error {
			if m.Action == ActionUpdate && m.ActiveChange && !m.Actor.Role.Privileged() {
				return domain.ErrActivationForbidden
			}
			return nil
		},
	},
}

// CheckAuthority evaluates AuthorityRules, failing on the first violation.
func CheckAuthority(m Mutation) error {
	return evaluate(AuthorityRules, m)
}

// CheckPayload evaluates PayloadRules, failing on the first violation.
func CheckPayload(m Mutation) error {
	return evaluate(PayloadRules, m)
}

func evaluate(rules []Rule, m Mutation) error {
	if m.Actor == nil {
		return domain.ErrUnauthenticated
	}
	for _, r := range rules {
		if err := r.Check(m); err != nil {
			return err
		}
	}
	return nil
}
