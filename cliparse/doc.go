// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - EthRPCURL: Ethereum JSON-RPC endpoint (required)
  - ContractAddress: deployed voting contract address (required)
  - ServicePrivateKey: service wallet key hex (required)
  - MongoURI: MongoDB connection string (required)
  - MongoDatabase: database name (default: chainvote)
  - ConfirmBeforeRecord: wait for receipts before recording admin actions
  - ReceiptTimeout / PollInterval: receipt confirmation budget and cadence
  - ReconcileInterval / ReconcileThreshold: background sweep timing
  - SessionTTL: admin session lifetime

# CLI Flags

	-p                 Server port
	-rpc               Ethereum RPC endpoint
	-contract          Contract address
	-mongo             MongoDB URI
	-mongo-db          Database name
	-service-key       Service wallet key (prefer env)
	-confirm-before-record
	-receipt-timeout, -poll-interval
	-reconcile-interval, -reconcile-threshold
	-session-ttl

# Environment Variables

Flags fall back to environment variables:

	PORT                → -p
	ETH_RPC_URL         → -rpc
	CONTRACT_ADDRESS    → -contract
	MONGO_URI           → -mongo
	MONGO_DATABASE      → -mongo-db
	SERVICE_PRIVATE_KEY → -service-key
	CONFIRM_BEFORE_RECORD, RECEIPT_TIMEOUT, POLL_INTERVAL,
	RECONCILE_INTERVAL, RECONCILE_THRESHOLD, SESSION_TTL

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - ETH_RPC_URL must be provided
  - CONTRACT_ADDRESS must be provided
  - MONGO_URI must be provided
  - SERVICE_PRIVATE_KEY must be provided
*/
package cliparse
