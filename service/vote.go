// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chainvote/chain"
	"chainvote/models"
	"chainvote/store"
)

// VoteService runs the vote submission workflow: validate, check the
// session on chain, reserve the credential, submit the transaction,
// wait for the receipt, and commit the credential as used.
type VoteService struct {
	chain  chain.Client
	creds  store.CredentialStore
	errlog store.ErrorLogStore
}

func NewVoteService(c chain.Client, creds store.CredentialStore, errlog store.ErrorLogStore) *VoteService {
	return &VoteService{chain: c, creds: creds, errlog: errlog}
}

// SubmitVote processes one vote. Workflow failures wrap exactly one of
// the models error kinds; a store failure before anything was submitted
// surfaces as a plain internal error. The credential is only marked
// used after a confirmed success receipt; any earlier failure releases
// the reservation so the credential is not burned.
func (s *VoteService) SubmitVote(ctx context.Context, req models.VoteRequest) (*models.VoteResponse, error) {
	voterID := strings.TrimSpace(req.VoterID)
	option := strings.TrimSpace(req.Option)

	// Step 1: input shape. No side effects on failure.
	if len(voterID) < models.VoterIDMinLen || len(voterID) > models.VoterIDMaxLen {
		return nil, fmt.Errorf("%w: voter ID must be %d-%d characters", models.ErrValidation, models.VoterIDMinLen, models.VoterIDMaxLen)
	}
	if req.SessionID < 0 {
		return nil, fmt.Errorf("%w: session ID must be non-negative", models.ErrValidation)
	}
	if option == "" {
		return nil, fmt.Errorf("%w: option must not be empty", models.ErrValidation)
	}

	// Step 2: session must be active on chain. No side effects, no log.
	active, err := s.chain.IsSessionActive(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrContractRead, err)
	}
	if !active {
		return nil, models.ErrSessionInactive
	}

	// Step 3: atomically reserve the credential. The same filtered
	// transition rejects a second concurrent request for this voter.
	now := time.Now().UTC()
	if _, err := s.creds.Reserve(ctx, voterID, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, models.ErrIneligibleVoter
		}
		// Nothing was submitted; this is a plain store failure, not a
		// chain/database divergence.
		return nil, fmt.Errorf("failed to reserve credential: %w", err)
	}

	// From here on the workflow must survive a client disconnect: the
	// submission is about to exist on chain, and a caller-driven cancel
	// of the wait or the store updates would release a credential whose
	// vote may still land.
	ctx = context.WithoutCancel(ctx)

	// Step 4: the single point of on-chain mutation.
	txHash, err := s.chain.SubmitVote(ctx, req.SessionID, option)
	if err != nil {
		s.release(ctx, voterID)
		s.recordError(ctx, voterID, err)
		return nil, fmt.Errorf("%w: %v", models.ErrChainExecution, err)
	}

	// Record the hash on the reservation so the reconciler can resolve
	// the outcome if we crash or time out past this point.
	if err := s.creds.AttachTx(ctx, voterID, txHash); err != nil {
		slog.Warn("failed to attach tx hash to reservation", "voter_id", voterID, "tx_hash", txHash, "error", err)
	}

	// Step 5: wait for confirmation. Nothing is held during the wait.
	receipt, err := s.chain.WaitForReceipt(ctx, txHash)
	if err != nil {
		if errors.Is(err, models.ErrConfirmationTimeout) {
			// Ambiguous outcome: the tx may still land. Leave the
			// credential to the reconciler rather than releasing it here,
			// so a late success cannot be double-spent.
			slog.Warn("vote confirmation timed out", "voter_id", voterID, "tx_hash", txHash)
			return nil, err
		}
		s.release(ctx, voterID)
		s.recordError(ctx, voterID, err)
		return nil, fmt.Errorf("%w: %v", models.ErrChainExecution, err)
	}

	if !receipt.Succeeded() {
		s.release(ctx, voterID)
		s.recordVoteError(ctx, voterID, fmt.Errorf("transaction %s reverted", txHash))
		return nil, fmt.Errorf("%w: transaction %s reverted", models.ErrChainExecution, txHash)
	}

	// Step 6: the sole commit point.
	if err := s.creds.MarkUsed(ctx, voterID, txHash, time.Now().UTC()); err != nil {
		slog.Error("vote confirmed on chain but credential update failed",
			"voter_id", voterID, "tx_hash", txHash, "error", err)
		s.recordError(ctx, voterID, fmt.Errorf("reconciliation needed for tx %s: %w", txHash, err))
		return nil, fmt.Errorf("%w: tx %s", models.ErrReconciliation, txHash)
	}

	slog.Info("vote recorded", "voter_id", voterID, "session_id", req.SessionID, "tx_hash", txHash)

	return &models.VoteResponse{
		TxHash:      txHash,
		ResultsPath: fmt.Sprintf("/results?session_id=%d", req.SessionID),
		Message:     "Vote recorded successfully",
	}, nil
}

func (s *VoteService) release(ctx context.Context, voterID string) {
	if err := s.creds.Release(ctx, voterID); err != nil {
		slog.Error("failed to release credential reservation", "voter_id", voterID, "error", err)
	}
}

// recordVoteError logs a contract-level vote failure, keyed by voter ID.
func (s *VoteService) recordVoteError(ctx context.Context, voterID string, cause error) {
	entry := &models.VoteErrorEntry{
		VoterID:   voterID,
		Error:     cause.Error(),
		Timestamp: time.Now().UTC(),
	}
	if err := s.errlog.InsertVoteError(ctx, entry); err != nil {
		slog.Error("failed to record vote error", "voter_id", voterID, "error", err)
	}
}

// recordError logs a generic failure, keyed by voter ID.
func (s *VoteService) recordError(ctx context.Context, voterID string, cause error) {
	entry := &models.VoteErrorEntry{
		VoterID:   voterID,
		Error:     cause.Error(),
		Timestamp: time.Now().UTC(),
	}
	if err := s.errlog.InsertError(ctx, entry); err != nil {
		slog.Error("failed to record error log", "voter_id", voterID, "error", err)
	}
}
