// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Setenv("ETH_RPC_URL", "http://localhost:8545")
	os.Setenv("CONTRACT_ADDRESS", "0x000000000000000000000000000000000000dEaD")
	os.Setenv("MONGO_URI", "mongodb://localhost:27017")
	os.Setenv("SERVICE_PRIVATE_KEY", "aa")
}

func TestParseFlags_EnvVars(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("PORT", "9000")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.MongoDatabase != "chainvote" {
		t.Errorf("expected default database name, got %q", cfg.MongoDatabase)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("PORT", "9000")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-p", "8080"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
}

func TestParseFlags_MissingRPCURL(t *testing.T) {
	os.Clearenv()
	defer os.Clearenv()

	_, err := ParseFlags([]string{})
	if err == nil {
		t.Fatal("expected error for missing RPC URL")
	}
}

func TestParseFlags_MissingServiceKey(t *testing.T) {
	os.Clearenv()
	os.Setenv("ETH_RPC_URL", "http://localhost:8545")
	os.Setenv("CONTRACT_ADDRESS", "0x000000000000000000000000000000000000dEaD")
	os.Setenv("MONGO_URI", "mongodb://localhost:27017")
	defer os.Clearenv()

	_, err := ParseFlags([]string{})
	if err == nil {
		t.Fatal("expected error for missing service key")
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	setRequiredEnv(t)
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 {
		t.Errorf("expected default port 3318, got %d", cfg.Port)
	}
	if cfg.ReceiptTimeout != 120*time.Second {
		t.Errorf("expected 120s receipt timeout, got %s", cfg.ReceiptTimeout)
	}
	if cfg.ReconcileThreshold != 5*time.Minute {
		t.Errorf("expected 5m reconcile threshold, got %s", cfg.ReconcileThreshold)
	}
	if cfg.ConfirmBeforeRecord {
		t.Error("confirm-before-record should default to false")
	}
}

func TestParseFlags_DurationEnv(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("RECEIPT_TIMEOUT", "30s")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.ReceiptTimeout != 30*time.Second {
		t.Errorf("expected 30s receipt timeout, got %s", cfg.ReceiptTimeout)
	}
}

func TestParseFlags_InvalidPortEnv(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("PORT", "not-a-port")
	defer os.Clearenv()

	_, err := ParseFlags([]string{})
	if err == nil {
		t.Fatal("expected error for invalid PORT")
	}
}
