// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth handles admin authentication for the chainvote server.

Passwords are hashed with bcrypt. Logins are tracked in an in-process
session table keyed by random 256-bit tokens carried in the
admin_session cookie; sessions expire after a configurable TTL.

Voter requests are not authenticated here: voter eligibility is a
one-time credential consumed by the vote workflow, not a login.
*/
package auth
