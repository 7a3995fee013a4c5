// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chain

import (
	"context"
	"errors"
)

// ErrReceiptNotFound is returned by LookupReceipt when the transaction
// has no receipt yet (not mined, or unknown to the node).
var ErrReceiptNotFound = errors.New("transaction receipt not found")

// Receipt is the confirmation record for a submitted transaction.
type Receipt struct {
	TxHash      string
	Status      uint64
	BlockNumber uint64
}

// Succeeded reports whether the transaction executed without reverting.
func (r *Receipt) Succeeded() bool {
	return r.Status == 1
}

// Client is the contract-facing surface the workflows depend on. The
// production implementation is EthClient; tests substitute a fake.
type Client interface {
	// IsSessionActive calls the contract's isSessionActive view.
	IsSessionActive(ctx context.Context, sessionID int64) (bool, error)

	// SubmitVote signs and submits a vote(sessionID, option) transaction
	// and returns its hash. It does not wait for confirmation.
	SubmitVote(ctx context.Context, sessionID int64, option string) (string, error)

	// CreateSession submits a createVotingSession transaction.
	CreateSession(ctx context.Context, name string, candidates []string, durationSeconds int64) (string, error)

	// ReleaseResults submits a releaseResults transaction.
	ReleaseResults(ctx context.Context, sessionID int64) (string, error)

	// WaitForReceipt polls for the receipt of txHash until the
	// confirmation budget elapses. Returns models.ErrConfirmationTimeout
	// (wrapped) when the budget is exhausted without a receipt.
	WaitForReceipt(ctx context.Context, txHash string) (*Receipt, error)

	// LookupReceipt fetches the receipt once, without polling. Returns
	// ErrReceiptNotFound when the transaction is not yet mined.
	LookupReceipt(ctx context.Context, txHash string) (*Receipt, error)

	// GetResults calls the contract's getResults view and returns the
	// option labels and their vote counts, in contract order. The two
	// slices always have equal length.
	GetResults(ctx context.Context, sessionID int64) ([]string, []uint64, error)
}
