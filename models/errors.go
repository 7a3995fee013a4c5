// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "errors"

// Closed set of workflow failure kinds. Every failure path in the vote
// and session workflows resolves to exactly one of these; callers match
// with errors.Is.
var (
	// ErrValidation: bad input, no side effects.
	ErrValidation = errors.New("invalid input")

	// ErrSessionInactive: the target voting session is not active on chain.
	ErrSessionInactive = errors.New("voting session is not active")

	// ErrIneligibleVoter: no unused credential for the voter ID. Never
	// distinguishes "never existed" from "already used".
	ErrIneligibleVoter = errors.New("invalid or already used voter ID")

	// ErrChainExecution: the transaction failed to submit or reverted.
	ErrChainExecution = errors.New("transaction failed on chain")

	// ErrConfirmationTimeout: no receipt within the confirmation budget.
	// The transaction may still land later; the reservation is left in
	// place and the reconciler resolves the ambiguity.
	ErrConfirmationTimeout = errors.New("transaction confirmation timed out")

	// ErrReconciliation: the vote is confirmed on chain but the mirrored
	// database update failed. Most severe; must be surfaced for repair.
	ErrReconciliation = errors.New("confirmed on chain but database update failed")

	// ErrContractRead: a read-only contract call failed.
	ErrContractRead = errors.New("contract read failed")
)
