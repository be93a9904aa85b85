package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/itdesk/helpdesk-api/internal/core/domain"
	"github.com/itdesk/helpdesk-api/internal/core/ports"
)

// recordAudit writes an audit entry. Failures are logged and swallowed; the
// user-facing operation has already succeeded.
func recordAudit(ctx context.Context, repo ports.AuditRepository, log zerolog.Logger, entry *domain.AuditEntry) {
	if repo == nil {
		return
	}
	if err := repo.Record(ctx, entry); err != nil {
		log.Warn().Err(err).Str("action", string(entry.Action)).Str("target", entry.TargetUsername).Msg("failed to record audit entry")
	}
}
