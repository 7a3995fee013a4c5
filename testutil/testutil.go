// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"chainvote/auth"
	"chainvote/chain"
	"chainvote/cliparse"
	"chainvote/models"
	"chainvote/store"
)

// FakeChain is an in-memory chain.Client for tests. Every knob is
// settable; the zero value behaves like a healthy chain with no
// active sessions. All methods are safe for concurrent use.
type FakeChain struct {
	mu sync.Mutex

	// ActiveSessions gates IsSessionActive.
	ActiveSessions map[int64]bool

	// ActiveErr, if set, is returned by IsSessionActive.
	ActiveErr error

	// SubmitErr, if set, is returned by SubmitVote / CreateSession /
	// ReleaseResults instead of a tx hash.
	SubmitErr error

	// ReceiptStatus is the status reported for every receipt (1 by
	// default via the zero-value check in receipt()).
	ReceiptStatus uint64
	receiptSet    bool

	// ReceiptErr, if set, is returned by WaitForReceipt and
	// LookupReceipt.
	ReceiptErr error

	// Labels/Counts back GetResults.
	Labels []string
	Counts []uint64

	// ResultsErr, if set, is returned by GetResults.
	ResultsErr error

	submissions int
	lastOption  string
}

func NewFakeChain() *FakeChain {
	return &FakeChain{ActiveSessions: map[int64]bool{}}
}

// SetReceiptStatus scripts the status of every subsequent receipt.
func (f *FakeChain) SetReceiptStatus(status uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReceiptStatus = status
	f.receiptSet = true
}

// Submissions reports how many transactions were submitted. Race tests
// use it to prove a credential produced at most one submission.
func (f *FakeChain) Submissions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submissions
}

// LastOption returns the option of the most recent vote submission.
func (f *FakeChain) LastOption() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOption
}

func (f *FakeChain) IsSessionActive(_ context.Context, sessionID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ActiveErr != nil {
		return false, f.ActiveErr
	}
	return f.ActiveSessions[sessionID], nil
}

func (f *FakeChain) SubmitVote(_ context.Context, _ int64, option string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SubmitErr != nil {
		return "", f.SubmitErr
	}
	f.submissions++
	f.lastOption = option
	return fmt.Sprintf("0xvote%04d", f.submissions), nil
}

func (f *FakeChain) CreateSession(_ context.Context, _ string, _ []string, _ int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SubmitErr != nil {
		return "", f.SubmitErr
	}
	f.submissions++
	return fmt.Sprintf("0xsession%04d", f.submissions), nil
}

func (f *FakeChain) ReleaseResults(_ context.Context, _ int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SubmitErr != nil {
		return "", f.SubmitErr
	}
	f.submissions++
	return fmt.Sprintf("0xrelease%04d", f.submissions), nil
}

func (f *FakeChain) WaitForReceipt(_ context.Context, txHash string) (*chain.Receipt, error) {
	return f.receipt(txHash)
}

func (f *FakeChain) LookupReceipt(_ context.Context, txHash string) (*chain.Receipt, error) {
	return f.receipt(txHash)
}

func (f *FakeChain) receipt(txHash string) (*chain.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReceiptErr != nil {
		return nil, f.ReceiptErr
	}
	status := uint64(1)
	if f.receiptSet {
		status = f.ReceiptStatus
	}
	return &chain.Receipt{TxHash: txHash, Status: status, BlockNumber: 1}, nil
}

func (f *FakeChain) GetResults(_ context.Context, _ int64) ([]string, []uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ResultsErr != nil {
		return nil, nil, f.ResultsErr
	}
	return f.Labels, f.Counts, nil
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               3318,
		EthRPCURL:          "http://localhost:8545",
		ContractAddress:    "0x000000000000000000000000000000000000dEaD",
		ServicePrivateKey:  "aa",
		MongoURI:           "mongodb://localhost:27017",
		MongoDatabase:      "chainvote_test",
		ReceiptTimeout:     time.Second,
		PollInterval:       10 * time.Millisecond,
		ReconcileInterval:  time.Minute,
		ReconcileThreshold: 5 * time.Minute,
		SessionTTL:         time.Hour,
	}
}

// SeedCredential inserts an unused credential into a memory store.
func SeedCredential(t *testing.T, m *store.Memory, voterID string) {
	t.Helper()

	err := m.InsertCredential(context.Background(), &models.VoterCredential{
		VoterID:   voterID,
		Status:    models.CredentialUnused,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Failed to seed credential %s: %v", voterID, err)
	}
}

// SeedAdmin inserts an admin user and returns the plaintext password.
func SeedAdmin(t *testing.T, m *store.Memory, username string) string {
	t.Helper()

	const password = "correct-horse-battery"
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	err = m.InsertUser(context.Background(), &models.AdminUser{
		Username:     username,
		PasswordHash: hash,
		Role:         "admin",
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Failed to seed admin %s: %v", username, err)
	}
	return password
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
