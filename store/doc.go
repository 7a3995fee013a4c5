// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store defines the persistence interfaces for the chainvote
server and two implementations: Mongo (production) and Memory (tests).

# Collections

The Mongo implementation uses the collections the original audit layout
expects: voter_ids, sessions, election_results, admin_logs, voter_logs,
error_logs, users. EnsureIndexes creates the unique indexes on
voter_ids.voter_id and users.username.

# Credential Transitions

A credential moves unused -> pending -> used. Every transition is a
single filtered update, so two concurrent requests for the same voter
cannot both reserve the credential: the second Reserve finds no document
with status "unused" and fails with ErrNotFound. "used" is terminal.

StaleReservations exposes the reconciliation interface: credentials left
pending past a cutoff, for the background sweep to resolve.
*/
package store
