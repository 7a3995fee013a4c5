// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package chain wraps the voting contract behind a small Client interface.

# Client

Client exposes exactly the contract surface the workflows need: two
views (isSessionActive, getResults) and three state-changing methods
(vote, createVotingSession, releaseResults), plus receipt polling.

The production implementation, EthClient, signs legacy transactions with
a single service account over go-ethereum's ethclient. Nonce acquisition
is serialized with a mutex so concurrent submissions from the one
account cannot collide.

# Receipts

WaitForReceipt polls TransactionReceipt at a fixed interval up to a
fixed budget (120s / 500ms by default). Exhausting the budget yields
models.ErrConfirmationTimeout; the transaction may still land later, and
the reconciler uses LookupReceipt to resolve that ambiguity.
*/
package chain
