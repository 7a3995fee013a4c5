// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the chainvote API.

# Handler Types

Each handler is a struct wired with the services it fronts:

  - VoteHandler: ballot submission and public results
  - AdminHandler: login, session lifecycle, results release, audit and
    credential provisioning

Handlers are created via constructor functions that accept their
service dependencies:

	voteHandler := handlers.NewVoteHandler(votes, results)

# Voting Flow

Voters interact with two endpoints, no account required:

	POST /vote     → SubmitVote (voter ID + session + option)
	GET  /results  → GetResults

A vote is accepted only once per voter ID. The handler maps the
service error taxonomy onto HTTP statuses: validation failures are
400, an inactive session is 409, an unknown or spent voter ID is 403,
a confirmation timeout is 504, and chain execution failures are 502.
Response messages never reveal whether a voter ID exists.

# Admin Flow

Admins authenticate with a session cookie:

	POST /admin/login            → Login (sets cookie)
	POST /admin/logout           → Logout
	POST /admin/create-session   → CreateSession (202 Accepted)
	POST /admin/release-results  → ReleaseResults (202 Accepted)
	GET  /admin/view-results     → ViewResults
	GET  /admin/audit-logs       → AuditLogs
	POST /admin/create-admin     → CreateAdmin
	POST /admin/provision-voters → ProvisionVoters
	GET  /admin/reconciliation/pending → ReconciliationPending

Session lifecycle operations return 202 because the database record is
written optimistically before the chain transaction confirms.
*/
package handlers
