// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Credential status constants
const (
	CredentialUnused  = "unused"
	CredentialPending = "pending"
	CredentialUsed    = "used"
)

// Audit log actions
const (
	ActionCreateSession       = "create_session"
	ActionCreateSessionError  = "create_session_error"
	ActionReleaseResults      = "release_results"
	ActionReleaseResultsError = "release_results_error"
	ActionLoginSuccess        = "login_success"
	ActionLoginFailed         = "login_failed"
	ActionLoginError          = "login_error"
	ActionProvisionVoters     = "provision_voters"
)

// Voter ID length bounds
const (
	VoterIDMinLen = 6
	VoterIDMaxLen = 20
)

// SessionTimeFormat is the layout used for session start/end times in
// admin requests (HTML datetime-local format).
const SessionTimeFormat = "2006-01-02T15:04"

// Request types

type VoteRequest struct {
	VoterID   string `json:"voter_id"`
	SessionID int64  `json:"session_id"`
	Option    string `json:"option"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateSessionRequest struct {
	StartTime  string   `json:"start_time"` // SessionTimeFormat
	EndTime    string   `json:"end_time"`   // SessionTimeFormat
	Candidates []string `json:"candidates"`
}

type ReleaseResultsRequest struct {
	SessionID int64 `json:"session_id"`
}

type CreateAdminRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ProvisionVotersRequest struct {
	Count int `json:"count"`
}

// Response types

type VoteResponse struct {
	TxHash      string `json:"tx_hash"`
	ResultsPath string `json:"results_path"`
	Message     string `json:"message"`
}

type CreateSessionResponse struct {
	TxHash          string `json:"tx_hash"`
	Name            string `json:"name"`
	DurationSeconds int64  `json:"duration_seconds"`
	Message         string `json:"message"`
}

type ReleaseResultsResponse struct {
	TxHash  string `json:"tx_hash"`
	Message string `json:"message"`
}

type ResultsResponse struct {
	SessionID int64         `json:"session_id"`
	Results   []OptionCount `json:"results"`
	Error     string        `json:"error,omitempty"`
}

type LoginResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type ProvisionVotersResponse struct {
	VoterIDs []string `json:"voter_ids"`
}

// Domain types

// OptionCount is one row of a session tally as read from the contract.
type OptionCount struct {
	Label string `json:"label"`
	Votes uint64 `json:"votes"`
}

// VoterCredential is a one-time token authorizing a single vote.
// Status moves unused -> pending -> used; used never reverts. The
// pending state is a reservation taken before the chain submission and
// released if the submission does not confirm.
type VoterCredential struct {
	ID         primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	VoterID    string             `json:"voter_id" bson:"voter_id"`
	Status     string             `json:"status" bson:"status"`
	TxHash     string             `json:"tx_hash,omitempty" bson:"tx_hash,omitempty"`
	ReservedAt *time.Time         `json:"reserved_at,omitempty" bson:"reserved_at,omitempty"`
	UsedAt     *time.Time         `json:"used_at,omitempty" bson:"used_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

// VotingSession mirrors a chain-created session. The chain is
// authoritative for active/inactive state; this record is an audit
// trail, not the source of truth.
type VotingSession struct {
	ID         primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	Name       string             `json:"name" bson:"name"`
	StartTime  time.Time          `json:"start_time" bson:"start_time"`
	EndTime    time.Time          `json:"end_time" bson:"end_time"`
	Candidates []string           `json:"candidates" bson:"candidates"`
	CreatedBy  string             `json:"created_by" bson:"created_by"`
	TxHash     string             `json:"tx_hash" bson:"tx_hash"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

// ElectionResultRelease records an admin releasing results for a session.
type ElectionResultRelease struct {
	ID          primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	SessionID   int64              `json:"session_id" bson:"session_id"`
	TxHash      string             `json:"tx_hash" bson:"tx_hash"`
	ReleasedBy  string             `json:"released_by" bson:"released_by"`
	ReleaseTime time.Time          `json:"release_time" bson:"release_time"`
}

// AuditLogEntry is an append-only record of an administrative action.
// Entries are never mutated or deleted.
type AuditLogEntry struct {
	ID            primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	AdminID       string             `json:"admin_id,omitempty" bson:"admin_id,omitempty"`
	AttemptedUser string             `json:"attempted_user,omitempty" bson:"attempted_user,omitempty"`
	Action        string             `json:"action" bson:"action"`
	Details       string             `json:"details,omitempty" bson:"details,omitempty"`
	Error         string             `json:"error,omitempty" bson:"error,omitempty"`
	Timestamp     time.Time          `json:"timestamp" bson:"timestamp"`
}

// VoteErrorEntry is one row of the voter error logs, keyed by voter ID.
type VoteErrorEntry struct {
	ID        primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	VoterID   string             `json:"voter_id" bson:"voter_id"`
	Error     string             `json:"error" bson:"error"`
	Timestamp time.Time          `json:"timestamp" bson:"timestamp"`
}

// AdminUser is a stored administrator account.
type AdminUser struct {
	ID           primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	Username     string             `json:"username" bson:"username"`
	PasswordHash string             `json:"-" bson:"password"`
	Role         string             `json:"role" bson:"role"`
	CreatedBy    string             `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
