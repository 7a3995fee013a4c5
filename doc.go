// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the chainvote API server.

chainvote is a voting service that records ballots on an Ethereum
voting contract while keeping voter credentials, session records, and
audit trails in MongoDB. Voters authenticate with single-use voter IDs;
admins manage session lifecycle behind a password login.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	ETH_RPC_URL=... CONTRACT_ADDRESS=0x... SERVICE_PRIVATE_KEY=... \
	MONGO_URI=mongodb://... go run main.go

Or with flags:

	go run main.go -p 3318 -rpc "https://..." -contract 0x... -mongo "mongodb://..."

# Configuration

Required settings:

  - ETH_RPC_URL (-rpc): Ethereum JSON-RPC endpoint
  - CONTRACT_ADDRESS (-contract): Deployed voting contract
  - SERVICE_PRIVATE_KEY (-service-key): Service wallet key hex
  - MONGO_URI (-mongo): MongoDB connection string

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - MONGO_DATABASE (-mongo-db): Database name (default: chainvote)
  - CONFIRM_BEFORE_RECORD: Wait for receipts before recording admin actions
  - RECEIPT_TIMEOUT, POLL_INTERVAL: Receipt confirmation budget and cadence
  - RECONCILE_INTERVAL, RECONCILE_THRESHOLD: Background sweep timing
  - SESSION_TTL: Admin session lifetime (default: 12h)
  - ADMIN_USERNAME, ADMIN_PASSWORD: Bootstrap the first admin account

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (voting, admin operations)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers, admin session guard
  - service: Vote, session lifecycle, results, audit, reconciliation workflows
  - chain: Ethereum contract client (go-ethereum)
  - store: MongoDB persistence plus an in-memory implementation for tests
  - models: Request/response and document types
  - auth: Password hashing and admin session tokens

A vote is accepted exactly once per credential: the credential is
reserved atomically before the transaction is submitted, and marked
used only after the receipt confirms success. A background reconciler
repairs reservations left pending by crashes or timeouts.
*/
package main
