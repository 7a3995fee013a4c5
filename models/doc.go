// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models contains the shared domain, request, and response types
for the chainvote server.

# Domain Types

Durable documents mirrored into the store:

  - VoterCredential: one-time voting token (unused -> pending -> used)
  - VotingSession: cached copy of a chain-created session
  - ElectionResultRelease: record of an admin result release
  - AuditLogEntry: append-only administrative audit record
  - VoteErrorEntry: vote failure log row keyed by voter ID
  - AdminUser: administrator account with a bcrypt password hash

The chain is authoritative for tallies and session activity; the store
copies exist for auditing and must never be treated as the source of
truth.

# Errors

errors.go defines the closed error taxonomy for the vote and session
workflows. Handlers map each kind to an HTTP status; services never
return an error outside this set for a workflow failure.
*/
package models
