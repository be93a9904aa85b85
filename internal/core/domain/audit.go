package domain

import "time"

// AuditAction names a user-management event worth keeping a trail of.
type AuditAction string

const (
	AuditLogin          AuditAction = "login"
	AuditUserRegistered AuditAction = "user_registered"
	AuditUserCreated    AuditAction = "user_created"
	AuditUserUpdated    AuditAction = "user_updated"
	AuditRoleChanged    AuditAction = "role_changed"
	AuditUserDeleted    AuditAction = "user_deleted"
)

// AuditEntry records who did what to which account.
type AuditEntry struct {
	ID             string      `json:"id"`
	Action         AuditAction `json:"action"`
	ActorID        string      `json:"actor_id,omitempty"`
	ActorUsername  string      `json:"actor_username,omitempty"`
	TargetID       string      `json:"target_id,omitempty"`
	TargetUsername string      `json:"target_username,omitempty"`
	Detail         string      `json:"detail,omitempty"`
	OccurredAt     time.Time   `json:"occurred_at"`
}
