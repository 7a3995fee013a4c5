// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chainvote/chain"
	"chainvote/models"
	"chainvote/store"
)

// Reconciliation defaults.
const (
	DefaultReconcileInterval  = time.Minute
	DefaultReconcileThreshold = 5 * time.Minute
)

// Reconciler resolves credentials stuck in the pending state: votes
// whose transaction was submitted but whose outcome was never committed
// (confirmation timeout, process crash, or a failed database update
// after a confirmed receipt).
//
// Resolution policy: a pending credential becomes used only when its
// attached transaction has a confirmed success receipt; it is released
// back to unused when the transaction reverted or never landed within
// the threshold. A credential is never counted twice.
type Reconciler struct {
	chain     chain.Client
	creds     store.CredentialStore
	errlog    store.ErrorLogStore
	interval  time.Duration
	threshold time.Duration
}

func NewReconciler(c chain.Client, creds store.CredentialStore, errlog store.ErrorLogStore, interval, threshold time.Duration) *Reconciler {
	if interval <= 0 {
		interval = DefaultReconcileInterval
	}
	if threshold <= 0 {
		threshold = DefaultReconcileThreshold
	}
	return &Reconciler{chain: c, creds: creds, errlog: errlog, interval: interval, threshold: threshold}
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Sweep(ctx); err != nil {
				slog.Error("reconciliation sweep failed", "error", err)
			}
		}
	}
}

// Pending lists reservations older than the threshold, for the admin
// reconciliation view.
func (r *Reconciler) Pending(ctx context.Context) ([]models.VoterCredential, error) {
	return r.creds.StaleReservations(ctx, time.Now().UTC().Add(-r.threshold))
}

// Sweep resolves every stale reservation it can. Individual failures
// are logged and left for the next sweep.
func (r *Reconciler) Sweep(ctx context.Context) error {
	stale, err := r.creds.StaleReservations(ctx, time.Now().UTC().Add(-r.threshold))
	if err != nil {
		return fmt.Errorf("failed to list stale reservations: %w", err)
	}

	for _, cred := range stale {
		if err := r.resolve(ctx, cred); err != nil {
			slog.Warn("could not resolve stale reservation", "voter_id", cred.VoterID, "error", err)
		}
	}
	return nil
}

func (r *Reconciler) resolve(ctx context.Context, cred models.VoterCredential) error {
	// No transaction was ever attached: the submission failed before a
	// hash existed, so the reservation is safe to return.
	if cred.TxHash == "" {
		slog.Info("releasing reservation with no transaction", "voter_id", cred.VoterID)
		return r.creds.Release(ctx, cred.VoterID)
	}

	receipt, err := r.chain.LookupReceipt(ctx, cred.TxHash)
	if errors.Is(err, chain.ErrReceiptNotFound) {
		// Past the threshold with no receipt: treat the vote as lost.
		// Record the released hash so a late-landing transaction can be
		// traced back to this decision.
		slog.Info("releasing reservation with no receipt", "voter_id", cred.VoterID, "tx_hash", cred.TxHash)
		entry := &models.VoteErrorEntry{
			VoterID:   cred.VoterID,
			Error:     fmt.Sprintf("transaction %s released with no receipt (resolved by reconciler)", cred.TxHash),
			Timestamp: time.Now().UTC(),
		}
		if err := r.errlog.InsertVoteError(ctx, entry); err != nil {
			slog.Error("failed to record reconciled vote error", "voter_id", cred.VoterID, "error", err)
		}
		return r.creds.Release(ctx, cred.VoterID)
	}
	if err != nil {
		return err
	}

	if receipt.Succeeded() {
		// The vote landed; repair the divergence.
		slog.Info("reconciling confirmed vote", "voter_id", cred.VoterID, "tx_hash", cred.TxHash)
		return r.creds.MarkUsed(ctx, cred.VoterID, cred.TxHash, time.Now().UTC())
	}

	entry := &models.VoteErrorEntry{
		VoterID:   cred.VoterID,
		Error:     fmt.Sprintf("transaction %s reverted (resolved by reconciler)", cred.TxHash),
		Timestamp: time.Now().UTC(),
	}
	if err := r.errlog.InsertVoteError(ctx, entry); err != nil {
		slog.Error("failed to record reconciled vote error", "voter_id", cred.VoterID, "error", err)
	}
	return r.creds.Release(ctx, cred.VoterID)
}
