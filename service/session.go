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

// SessionService runs the admin session lifecycle: creating voting
// sessions on chain and releasing their results.
//
// By default both operations are optimistic: the database record and
// audit entry are written from the submitted transaction hash without
// waiting for a receipt. ConfirmBeforeRecord hardens this by waiting
// for a success receipt before recording.
type SessionService struct {
	chain               chain.Client
	sessions            store.SessionStore
	releases            store.ReleaseStore
	audit               *AuditLog
	confirmBeforeRecord bool
}

func NewSessionService(c chain.Client, sessions store.SessionStore, releases store.ReleaseStore, audit *AuditLog, confirmBeforeRecord bool) *SessionService {
	return &SessionService{
		chain:               c,
		sessions:            sessions,
		releases:            releases,
		audit:               audit,
		confirmBeforeRecord: confirmBeforeRecord,
	}
}

// CreateSession validates the window and candidate list, submits the
// session-creation transaction, and records the mirrored session.
// Validation failures issue zero chain calls and zero writes.
func (s *SessionService) CreateSession(ctx context.Context, actorID string, req models.CreateSessionRequest) (*models.CreateSessionResponse, error) {
	start, err := time.Parse(models.SessionTimeFormat, req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start time %q", models.ErrValidation, req.StartTime)
	}
	end, err := time.Parse(models.SessionTimeFormat, req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid end time %q", models.ErrValidation, req.EndTime)
	}

	duration := int64(end.Sub(start).Seconds())
	if duration <= 0 {
		return nil, fmt.Errorf("%w: end time must be after start time", models.ErrValidation)
	}

	candidates := make([]string, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		if trimmed := strings.TrimSpace(c); trimmed != "" {
			candidates = append(candidates, trimmed)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: at least one candidate is required", models.ErrValidation)
	}

	name := fmt.Sprintf("Session from %s to %s", req.StartTime, req.EndTime)

	txHash, err := s.chain.CreateSession(ctx, name, candidates, duration)
	if err != nil {
		s.auditError(ctx, actorID, models.ActionCreateSessionError, err)
		return nil, fmt.Errorf("%w: %v", models.ErrChainExecution, err)
	}

	if s.confirmBeforeRecord {
		if err := s.confirm(ctx, txHash); err != nil {
			s.auditError(ctx, actorID, models.ActionCreateSessionError, err)
			return nil, err
		}
	}

	session := &models.VotingSession{
		Name:       name,
		StartTime:  start,
		EndTime:    end,
		Candidates: candidates,
		CreatedBy:  actorID,
		TxHash:     txHash,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.sessions.InsertSession(ctx, session); err != nil {
		s.auditError(ctx, actorID, models.ActionCreateSessionError, err)
		return nil, fmt.Errorf("%w: session submitted as %s but not recorded", models.ErrReconciliation, txHash)
	}

	s.audit.Record(ctx, models.AuditLogEntry{
		AdminID: actorID,
		Action:  models.ActionCreateSession,
		Details: fmt.Sprintf("Created session: %s", name),
	})

	slog.Info("session creation submitted", "name", name, "duration_s", duration, "tx_hash", txHash)

	return &models.CreateSessionResponse{
		TxHash:          txHash,
		Name:            name,
		DurationSeconds: duration,
		Message:         fmt.Sprintf("Session creation initiated. Transaction hash: %s", txHash),
	}, nil
}

// ReleaseResults submits a result-release transaction and records it.
func (s *SessionService) ReleaseResults(ctx context.Context, actorID string, sessionID int64) (*models.ReleaseResultsResponse, error) {
	if sessionID < 0 {
		return nil, fmt.Errorf("%w: session ID must be non-negative", models.ErrValidation)
	}

	txHash, err := s.chain.ReleaseResults(ctx, sessionID)
	if err != nil {
		s.auditError(ctx, actorID, models.ActionReleaseResultsError, err)
		return nil, fmt.Errorf("%w: %v", models.ErrChainExecution, err)
	}

	if s.confirmBeforeRecord {
		if err := s.confirm(ctx, txHash); err != nil {
			s.auditError(ctx, actorID, models.ActionReleaseResultsError, err)
			return nil, err
		}
	}

	release := &models.ElectionResultRelease{
		SessionID:   sessionID,
		TxHash:      txHash,
		ReleasedBy:  actorID,
		ReleaseTime: time.Now().UTC(),
	}
	if err := s.releases.InsertRelease(ctx, release); err != nil {
		s.auditError(ctx, actorID, models.ActionReleaseResultsError, err)
		return nil, fmt.Errorf("%w: release submitted as %s but not recorded", models.ErrReconciliation, txHash)
	}

	s.audit.Record(ctx, models.AuditLogEntry{
		AdminID: actorID,
		Action:  models.ActionReleaseResults,
		Details: fmt.Sprintf("Released results for session %d", sessionID),
	})

	slog.Info("result release submitted", "session_id", sessionID, "tx_hash", txHash)

	return &models.ReleaseResultsResponse{
		TxHash:  txHash,
		Message: fmt.Sprintf("Results release initiated. Transaction hash: %s", txHash),
	}, nil
}

func (s *SessionService) confirm(ctx context.Context, txHash string) error {
	receipt, err := s.chain.WaitForReceipt(ctx, txHash)
	if err != nil {
		if errors.Is(err, models.ErrConfirmationTimeout) {
			return err
		}
		return fmt.Errorf("%w: %v", models.ErrChainExecution, err)
	}
	if !receipt.Succeeded() {
		return fmt.Errorf("%w: transaction %s reverted", models.ErrChainExecution, txHash)
	}
	return nil
}

func (s *SessionService) auditError(ctx context.Context, actorID, action string, cause error) {
	s.audit.Record(ctx, models.AuditLogEntry{
		AdminID: actorID,
		Action:  action,
		Error:   cause.Error(),
	})
}
