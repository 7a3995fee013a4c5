// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var ErrNoSession = errors.New("no valid session")

// SessionCookieName is the admin login cookie.
const SessionCookieName = "admin_session"

// DefaultSessionTTL bounds an admin login.
const DefaultSessionTTL = 12 * time.Hour

// HashPassword produces a bcrypt hash suitable for storage.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

// VerifyPassword compares a stored hash against a candidate password.
// Returns nil on match.
func VerifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateToken creates a random URL-safe session token.
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// Session is one live admin login.
type Session struct {
	Token     string
	UserID    string
	Username  string
	ExpiresAt time.Time
}

// Sessions is the in-process admin session table. Entries expire after
// the configured TTL and are removed lazily on lookup.
type Sessions struct {
	mu   sync.RWMutex
	ttl  time.Duration
	byID map[string]Session
}

func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{ttl: ttl, byID: make(map[string]Session)}
}

// Create issues a new session for an authenticated admin.
func (s *Sessions) Create(userID, username string) (Session, error) {
	token, err := GenerateToken()
	if err != nil {
		return Session{}, err
	}

	sess := Session{
		Token:     token,
		UserID:    userID,
		Username:  username,
		ExpiresAt: time.Now().Add(s.ttl),
	}

	s.mu.Lock()
	s.byID[token] = sess
	s.mu.Unlock()

	return sess, nil
}

// Get returns the session for token, or ErrNoSession if the token is
// unknown or expired.
func (s *Sessions) Get(token string) (Session, error) {
	s.mu.RLock()
	sess, ok := s.byID[token]
	s.mu.RUnlock()

	if !ok {
		return Session{}, ErrNoSession
	}
	if time.Now().After(sess.ExpiresAt) {
		s.Destroy(token)
		return Session{}, ErrNoSession
	}
	return sess, nil
}

// Destroy removes a session.
func (s *Sessions) Destroy(token string) {
	s.mu.Lock()
	delete(s.byID, token)
	s.mu.Unlock()
}
