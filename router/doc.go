// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the chainvote API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(voteHandler, adminHandler, sessions)

# Endpoints

Health:

	GET /health

Voting (public):

	POST /vote    - Submit a vote with a provisioned voter ID
	GET  /results - Read tallies for a session

Admin authentication:

	POST /admin/login  - Password login, sets session cookie
	POST /admin/logout - Clears the session

Admin operations (session cookie required):

	POST /admin/create-session         - Start a voting session on chain
	POST /admin/release-results        - Publish results on chain
	GET  /admin/view-results           - Read tallies for a session
	GET  /admin/audit-logs             - Recent admin actions
	POST /admin/create-admin           - Register another admin
	POST /admin/provision-voters       - Mint voter credentials
	GET  /admin/reconciliation/pending - Reservations awaiting repair

Admin routes are wrapped with middleware.RequireAdmin, which resolves
the session cookie before the handler runs.
*/
package router
