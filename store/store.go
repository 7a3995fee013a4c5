// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"time"

	"chainvote/models"
)

var (
	// ErrNotFound: no document matched the filter.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate: an insert violated a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate document")
)

// CredentialStore manages voter credentials. Reserve, AttachTx,
// MarkUsed, and Release are each atomic single-document transitions;
// the status filter in every update is what closes the concurrent
// same-voter race.
type CredentialStore interface {
	// InsertCredential adds a new unused credential. ErrDuplicate if the
	// voter ID already exists.
	InsertCredential(ctx context.Context, cred *models.VoterCredential) error

	// FindCredential looks up a credential regardless of status.
	FindCredential(ctx context.Context, voterID string) (*models.VoterCredential, error)

	// Reserve atomically flips an unused credential to pending and
	// stamps reserved_at. ErrNotFound if no unused credential matches,
	// whether it never existed or was already consumed.
	Reserve(ctx context.Context, voterID string, now time.Time) (*models.VoterCredential, error)

	// AttachTx records the submitted transaction hash on a pending
	// reservation so the reconciler can resolve it later.
	AttachTx(ctx context.Context, voterID, txHash string) error

	// MarkUsed atomically flips a pending credential to used with the
	// confirming transaction hash. This is the sole commit point; used
	// never reverts.
	MarkUsed(ctx context.Context, voterID, txHash string, usedAt time.Time) error

	// Release returns a pending credential to unused, clearing the
	// reservation and any attached hash. No-op on non-pending status.
	Release(ctx context.Context, voterID string) error

	// StaleReservations lists credentials stuck in pending since before
	// cutoff. This is the repair interface for reconciliation sweeps.
	StaleReservations(ctx context.Context, cutoff time.Time) ([]models.VoterCredential, error)
}

// SessionStore persists mirrored voting sessions.
type SessionStore interface {
	InsertSession(ctx context.Context, s *models.VotingSession) error
	ListSessions(ctx context.Context) ([]models.VotingSession, error)
}

// ReleaseStore persists result-release records.
type ReleaseStore interface {
	InsertRelease(ctx context.Context, r *models.ElectionResultRelease) error
}

// AuditStore persists append-only audit entries.
type AuditStore interface {
	InsertAudit(ctx context.Context, e *models.AuditLogEntry) error
	// ListAudit returns up to limit entries, newest first.
	ListAudit(ctx context.Context, limit int64) ([]models.AuditLogEntry, error)
}

// UserStore persists administrator accounts.
type UserStore interface {
	InsertUser(ctx context.Context, u *models.AdminUser) error
	// FindAdmin looks up an admin-role user by username.
	FindAdmin(ctx context.Context, username string) (*models.AdminUser, error)
}

// ErrorLogStore records vote failures. Contract-level failures go to
// the vote error log; everything else goes to the generic error log.
// Both are keyed by voter ID for the out-of-band repair process.
type ErrorLogStore interface {
	InsertVoteError(ctx context.Context, e *models.VoteErrorEntry) error
	InsertError(ctx context.Context, e *models.VoteErrorEntry) error
}
