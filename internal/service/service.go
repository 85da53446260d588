package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pressmapapp/pressmap-server/internal/domain"
	"github.com/pressmapapp/pressmap-server/internal/store"
)

// deref flattens a slice of pointers into values for the pure analysis
// functions, which operate on value slices.
func deref[T any](items []*T) []T {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = *item
	}
	return out
}

// writeAudit appends one entry to the audit log. Audit failures are logged
// and swallowed; they never fail the operation being recorded.
func writeAudit(ctx context.Context, st *store.Store, logger *slog.Logger, action, detail string, affected int) {
	entry := &domain.AuditEntry{
		ID:        uuid.NewString(),
		Action:    action,
		Detail:    detail,
		Affected:  affected,
		CreatedAt: time.Now(),
	}
	if err := st.AuditLog.Put(ctx, entry); err != nil {
		logger.Error("failed to write audit entry", "action", action, "error", err)
	}
}
