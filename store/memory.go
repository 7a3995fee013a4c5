// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"chainvote/models"
)

// Memory implements every store interface in process. It backs the test
// suites; the mutex gives it the same single-document atomicity the
// Mongo transitions have.
type Memory struct {
	mu          sync.Mutex
	credentials map[string]*models.VoterCredential
	sessions    []models.VotingSession
	releases    []models.ElectionResultRelease
	audit       []models.AuditLogEntry
	users       map[string]*models.AdminUser
	voteErrors  []models.VoteErrorEntry
	errors      []models.VoteErrorEntry
}

func NewMemory() *Memory {
	return &Memory{
		credentials: make(map[string]*models.VoterCredential),
		users:       make(map[string]*models.AdminUser),
	}
}

// Credentials

func (m *Memory) InsertCredential(_ context.Context, cred *models.VoterCredential) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.credentials[cred.VoterID]; exists {
		return ErrDuplicate
	}
	c := *cred
	m.credentials[cred.VoterID] = &c
	return nil
}

func (m *Memory) FindCredential(_ context.Context, voterID string) (*models.VoterCredential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cred, ok := m.credentials[voterID]
	if !ok {
		return nil, ErrNotFound
	}
	c := *cred
	return &c, nil
}

func (m *Memory) Reserve(_ context.Context, voterID string, now time.Time) (*models.VoterCredential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cred, ok := m.credentials[voterID]
	if !ok || cred.Status != models.CredentialUnused {
		return nil, ErrNotFound
	}
	cred.Status = models.CredentialPending
	t := now
	cred.ReservedAt = &t
	c := *cred
	return &c, nil
}

func (m *Memory) AttachTx(_ context.Context, voterID, txHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cred, ok := m.credentials[voterID]
	if !ok || cred.Status != models.CredentialPending {
		return ErrNotFound
	}
	cred.TxHash = txHash
	return nil
}

func (m *Memory) MarkUsed(_ context.Context, voterID, txHash string, usedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cred, ok := m.credentials[voterID]
	if !ok || cred.Status != models.CredentialPending {
		return ErrNotFound
	}
	cred.Status = models.CredentialUsed
	cred.TxHash = txHash
	t := usedAt
	cred.UsedAt = &t
	cred.ReservedAt = nil
	return nil
}

func (m *Memory) Release(_ context.Context, voterID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cred, ok := m.credentials[voterID]
	if !ok || cred.Status != models.CredentialPending {
		return nil
	}
	cred.Status = models.CredentialUnused
	cred.ReservedAt = nil
	cred.TxHash = ""
	return nil
}

func (m *Memory) StaleReservations(_ context.Context, cutoff time.Time) ([]models.VoterCredential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var stale []models.VoterCredential
	for _, cred := range m.credentials {
		if cred.Status == models.CredentialPending && cred.ReservedAt != nil && cred.ReservedAt.Before(cutoff) {
			stale = append(stale, *cred)
		}
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].VoterID < stale[j].VoterID })
	return stale, nil
}

// Sessions

func (m *Memory) InsertSession(_ context.Context, s *models.VotingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, *s)
	return nil
}

func (m *Memory) ListSessions(_ context.Context) ([]models.VotingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.VotingSession, len(m.sessions))
	copy(out, m.sessions)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Releases

func (m *Memory) InsertRelease(_ context.Context, r *models.ElectionResultRelease) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releases = append(m.releases, *r)
	return nil
}

// Releases returns all recorded result releases, for tests.
func (m *Memory) Releases() []models.ElectionResultRelease {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ElectionResultRelease, len(m.releases))
	copy(out, m.releases)
	return out
}

// Audit log

func (m *Memory) InsertAudit(_ context.Context, e *models.AuditLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, *e)
	return nil
}

func (m *Memory) ListAudit(_ context.Context, limit int64) ([]models.AuditLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.AuditLogEntry, len(m.audit))
	copy(out, m.audit)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Users

func (m *Memory) InsertUser(_ context.Context, u *models.AdminUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[u.Username]; exists {
		return ErrDuplicate
	}
	c := *u
	m.users[u.Username] = &c
	return nil
}

func (m *Memory) FindAdmin(_ context.Context, username string) (*models.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[username]
	if !ok || user.Role != "admin" {
		return nil, ErrNotFound
	}
	c := *user
	return &c, nil
}

// Error logs

func (m *Memory) InsertVoteError(_ context.Context, e *models.VoteErrorEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voteErrors = append(m.voteErrors, *e)
	return nil
}

func (m *Memory) InsertError(_ context.Context, e *models.VoteErrorEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, *e)
	return nil
}

// VoteErrors returns the recorded contract-level vote failures, for tests.
func (m *Memory) VoteErrors() []models.VoteErrorEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.VoteErrorEntry, len(m.voteErrors))
	copy(out, m.voteErrors)
	return out
}

// Errors returns the recorded generic failures, for tests.
func (m *Memory) Errors() []models.VoteErrorEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.VoteErrorEntry, len(m.errors))
	copy(out, m.errors)
	return out
}
