// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"log/slog"
	"time"

	"chainvote/models"
	"chainvote/store"
)

// DefaultAuditLimit matches the admin audit view.
const DefaultAuditLimit = 100

// AuditLog appends administrative audit entries. Record is best-effort:
// a persistence failure is logged and never fails the caller's workflow.
type AuditLog struct {
	store store.AuditStore
}

func NewAuditLog(s store.AuditStore) *AuditLog {
	return &AuditLog{store: s}
}

// Record appends one entry, stamping the time if unset.
func (a *AuditLog) Record(ctx context.Context, entry models.AuditLogEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if err := a.store.InsertAudit(ctx, &entry); err != nil {
		slog.Error("failed to record audit entry", "action", entry.Action, "error", err)
	}
}

// Query returns up to limit entries, newest first. A non-positive limit
// uses DefaultAuditLimit.
func (a *AuditLog) Query(ctx context.Context, limit int64) ([]models.AuditLogEntry, error) {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	return a.store.ListAudit(ctx, limit)
}
