// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port                int
	EthRPCURL           string
	ContractAddress     string
	ServicePrivateKey   string
	MongoURI            string
	MongoDatabase       string
	ConfirmBeforeRecord bool
	ReceiptTimeout      time.Duration
	PollInterval        time.Duration
	ReconcileInterval   time.Duration
	ReconcileThreshold  time.Duration
	SessionTTL          time.Duration
}

// ParseFlags validates flags and applies environment fallbacks
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("chainvote", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.EthRPCURL, "rpc", "", "Ethereum JSON-RPC endpoint")
	fs.StringVar(&cfg.ContractAddress, "contract", "", "Voting contract address")
	fs.StringVar(&cfg.MongoURI, "mongo", "", "MongoDB connection URI")
	fs.StringVar(&cfg.MongoDatabase, "mongo-db", "", "MongoDB database name")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.ServicePrivateKey, "service-key", "", "Service wallet private key hex (prefer env)")

	// Timing knobs
	fs.BoolVar(&cfg.ConfirmBeforeRecord, "confirm-before-record", false, "Wait for receipts before recording admin actions")
	fs.DurationVar(&cfg.ReceiptTimeout, "receipt-timeout", 0, "Receipt confirmation budget")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", 0, "Receipt polling interval")
	fs.DurationVar(&cfg.ReconcileInterval, "reconcile-interval", 0, "Reconciliation sweep interval")
	fs.DurationVar(&cfg.ReconcileThreshold, "reconcile-threshold", 0, "Age before a pending reservation is swept")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", 0, "Admin session lifetime")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}

	if cfg.EthRPCURL == "" {
		cfg.EthRPCURL = os.Getenv("ETH_RPC_URL")
	}
	if cfg.EthRPCURL == "" {
		return Config{}, errors.New("Ethereum RPC URL required (use -rpc or ETH_RPC_URL env)")
	}

	if cfg.ContractAddress == "" {
		cfg.ContractAddress = os.Getenv("CONTRACT_ADDRESS")
	}
	if cfg.ContractAddress == "" {
		return Config{}, errors.New("CONTRACT_ADDRESS required")
	}

	if cfg.MongoURI == "" {
		cfg.MongoURI = os.Getenv("MONGO_URI")
	}
	if cfg.MongoURI == "" {
		return Config{}, errors.New("MongoDB URI required (use -mongo or MONGO_URI env)")
	}

	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = os.Getenv("MONGO_DATABASE")
		if cfg.MongoDatabase == "" {
			cfg.MongoDatabase = "chainvote"
		}
	}

	// Secrets - MUST be provided
	if cfg.ServicePrivateKey == "" {
		cfg.ServicePrivateKey = os.Getenv("SERVICE_PRIVATE_KEY")
	}
	if cfg.ServicePrivateKey == "" {
		return Config{}, errors.New("SERVICE_PRIVATE_KEY required")
	}

	if !cfg.ConfirmBeforeRecord {
		cfg.ConfirmBeforeRecord = os.Getenv("CONFIRM_BEFORE_RECORD") == "true"
	}

	if cfg.ReceiptTimeout == 0 {
		cfg.ReceiptTimeout = durationEnv("RECEIPT_TIMEOUT", 120*time.Second)
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = durationEnv("POLL_INTERVAL", 500*time.Millisecond)
	}
	if cfg.ReconcileInterval == 0 {
		cfg.ReconcileInterval = durationEnv("RECONCILE_INTERVAL", time.Minute)
	}
	if cfg.ReconcileThreshold == 0 {
		cfg.ReconcileThreshold = durationEnv("RECONCILE_THRESHOLD", 5*time.Minute)
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = durationEnv("SESSION_TTL", 12*time.Hour)
	}

	return cfg, nil
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			return d
		}
	}
	return fallback
}
