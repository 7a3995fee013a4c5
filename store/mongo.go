// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chainvote/models"
)

// Collection names, matching the audit layout the admins already query.
const (
	colVoterIDs  = "voter_ids"
	colSessions  = "sessions"
	colReleases  = "election_results"
	colAdminLogs = "admin_logs"
	colVoterLogs = "voter_logs"
	colErrorLogs = "error_logs"
	colUsers     = "users"
)

// Mongo implements every store interface over one mongo database.
type Mongo struct {
	db *mongo.Database
}

// NewMongo wraps an already-connected database handle.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

// EnsureIndexes creates the uniqueness constraints the data model
// relies on. Safe to call on every startup.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.db.Collection(colVoterIDs).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "voter_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create voter_id index: %w", err)
	}

	_, err = m.db.Collection(colUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create username index: %w", err)
	}
	return nil
}

// Credentials

func (m *Mongo) InsertCredential(ctx context.Context, cred *models.VoterCredential) error {
	_, err := m.db.Collection(colVoterIDs).InsertOne(ctx, cred)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert credential: %w", err)
	}
	return nil
}

func (m *Mongo) FindCredential(ctx context.Context, voterID string) (*models.VoterCredential, error) {
	var cred models.VoterCredential
	err := m.db.Collection(colVoterIDs).FindOne(ctx, bson.M{"voter_id": voterID}).Decode(&cred)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find credential: %w", err)
	}
	return &cred, nil
}

func (m *Mongo) Reserve(ctx context.Context, voterID string, now time.Time) (*models.VoterCredential, error) {
	var cred models.VoterCredential
	err := m.db.Collection(colVoterIDs).FindOneAndUpdate(ctx,
		bson.M{"voter_id": voterID, "status": models.CredentialUnused},
		bson.M{"$set": bson.M{"status": models.CredentialPending, "reserved_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&cred)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reserve credential: %w", err)
	}
	return &cred, nil
}

func (m *Mongo) AttachTx(ctx context.Context, voterID, txHash string) error {
	res, err := m.db.Collection(colVoterIDs).UpdateOne(ctx,
		bson.M{"voter_id": voterID, "status": models.CredentialPending},
		bson.M{"$set": bson.M{"tx_hash": txHash}},
	)
	if err != nil {
		return fmt.Errorf("failed to attach tx hash: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) MarkUsed(ctx context.Context, voterID, txHash string, usedAt time.Time) error {
	res, err := m.db.Collection(colVoterIDs).UpdateOne(ctx,
		bson.M{"voter_id": voterID, "status": models.CredentialPending},
		bson.M{
			"$set":   bson.M{"status": models.CredentialUsed, "tx_hash": txHash, "used_at": usedAt},
			"$unset": bson.M{"reserved_at": ""},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to mark credential used: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) Release(ctx context.Context, voterID string) error {
	_, err := m.db.Collection(colVoterIDs).UpdateOne(ctx,
		bson.M{"voter_id": voterID, "status": models.CredentialPending},
		bson.M{
			"$set":   bson.M{"status": models.CredentialUnused},
			"$unset": bson.M{"reserved_at": "", "tx_hash": ""},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to release credential: %w", err)
	}
	return nil
}

func (m *Mongo) StaleReservations(ctx context.Context, cutoff time.Time) ([]models.VoterCredential, error) {
	cur, err := m.db.Collection(colVoterIDs).Find(ctx, bson.M{
		"status":      models.CredentialPending,
		"reserved_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list stale reservations: %w", err)
	}
	defer cur.Close(ctx)

	var creds []models.VoterCredential
	if err := cur.All(ctx, &creds); err != nil {
		return nil, fmt.Errorf("failed to decode stale reservations: %w", err)
	}
	return creds, nil
}

// Sessions

func (m *Mongo) InsertSession(ctx context.Context, s *models.VotingSession) error {
	_, err := m.db.Collection(colSessions).InsertOne(ctx, s)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (m *Mongo) ListSessions(ctx context.Context) ([]models.VotingSession, error) {
	cur, err := m.db.Collection(colSessions).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer cur.Close(ctx)

	var sessions []models.VotingSession
	if err := cur.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	return sessions, nil
}

// Releases

func (m *Mongo) InsertRelease(ctx context.Context, r *models.ElectionResultRelease) error {
	_, err := m.db.Collection(colReleases).InsertOne(ctx, r)
	if err != nil {
		return fmt.Errorf("failed to insert result release: %w", err)
	}
	return nil
}

// Audit log

func (m *Mongo) InsertAudit(ctx context.Context, e *models.AuditLogEntry) error {
	_, err := m.db.Collection(colAdminLogs).InsertOne(ctx, e)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

func (m *Mongo) ListAudit(ctx context.Context, limit int64) ([]models.AuditLogEntry, error) {
	cur, err := m.db.Collection(colAdminLogs).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer cur.Close(ctx)

	var entries []models.AuditLogEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode audit entries: %w", err)
	}
	return entries, nil
}

// Users

func (m *Mongo) InsertUser(ctx context.Context, u *models.AdminUser) error {
	_, err := m.db.Collection(colUsers).InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (m *Mongo) FindAdmin(ctx context.Context, username string) (*models.AdminUser, error) {
	var user models.AdminUser
	err := m.db.Collection(colUsers).FindOne(ctx, bson.M{"username": username, "role": "admin"}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find admin user: %w", err)
	}
	return &user, nil
}

// Error logs

func (m *Mongo) InsertVoteError(ctx context.Context, e *models.VoteErrorEntry) error {
	_, err := m.db.Collection(colVoterLogs).InsertOne(ctx, e)
	if err != nil {
		return fmt.Errorf("failed to insert vote error: %w", err)
	}
	return nil
}

func (m *Mongo) InsertError(ctx context.Context, e *models.VoteErrorEntry) error {
	_, err := m.db.Collection(colErrorLogs).InsertOne(ctx, e)
	if err != nil {
		return fmt.Errorf("failed to insert error log: %w", err)
	}
	return nil
}
