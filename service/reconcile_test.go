// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"chainvote/chain"
	"chainvote/models"
	"chainvote/service"
	"chainvote/store"
	"chainvote/testutil"
)

// reservePast puts a credential into pending with a reservation old
// enough to be swept, optionally attaching a transaction hash.
func reservePast(t *testing.T, mem *store.Memory, voterID, txHash string) {
	t.Helper()
	testutil.SeedCredential(t, mem, voterID)
	if _, err := mem.Reserve(context.Background(), voterID, time.Now().UTC().Add(-time.Hour)); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if txHash != "" {
		if err := mem.AttachTx(context.Background(), voterID, txHash); err != nil {
			t.Fatalf("AttachTx: %v", err)
		}
	}
}

func TestSweep_NoTxHashReleases(t *testing.T) {
	fc := testutil.NewFakeChain()
	mem := store.NewMemory()
	reservePast(t, mem, "VOT-AAAA11", "")

	rec := service.NewReconciler(fc, mem, mem, time.Minute, 5*time.Minute)
	if err := rec.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	cred, _ := mem.FindCredential(context.Background(), "VOT-AAAA11")
	if cred.Status != models.CredentialUnused {
		t.Errorf("expected released credential, got %q", cred.Status)
	}
}

func TestSweep_MissingReceiptReleases(t *testing.T) {
	fc := testutil.NewFakeChain()
	fc.ReceiptErr = chain.ErrReceiptNotFound
	mem := store.NewMemory()
	reservePast(t, mem, "VOT-AAAA11", "0xdead")

	rec := service.NewReconciler(fc, mem, mem, time.Minute, 5*time.Minute)
	if err := rec.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	cred, _ := mem.FindCredential(context.Background(), "VOT-AAAA11")
	if cred.Status != models.CredentialUnused {
		t.Errorf("expected released credential, got %q", cred.Status)
	}
	if cred.TxHash != "" {
		t.Errorf("expected cleared tx hash, got %q", cred.TxHash)
	}
	logged := mem.VoteErrors()
	if len(logged) != 1 {
		t.Fatalf("expected one vote error record, got %d", len(logged))
	}
	if !strings.Contains(logged[0].Error, "0xdead") {
		t.Errorf("released tx hash missing from record: %q", logged[0].Error)
	}
}

func TestSweep_ConfirmedReceiptMarksUsed(t *testing.T) {
	fc := testutil.NewFakeChain()
	mem := store.NewMemory()
	reservePast(t, mem, "VOT-AAAA11", "0xbeef")

	rec := service.NewReconciler(fc, mem, mem, time.Minute, 5*time.Minute)
	if err := rec.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	cred, _ := mem.FindCredential(context.Background(), "VOT-AAAA11")
	if cred.Status != models.CredentialUsed {
		t.Errorf("landed vote should mark the credential used, got %q", cred.Status)
	}
}

func TestSweep_RevertedReceiptReleasesAndLogs(t *testing.T) {
	fc := testutil.NewFakeChain()
	fc.SetReceiptStatus(0)
	mem := store.NewMemory()
	reservePast(t, mem, "VOT-AAAA11", "0xdead")

	rec := service.NewReconciler(fc, mem, mem, time.Minute, 5*time.Minute)
	if err := rec.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	cred, _ := mem.FindCredential(context.Background(), "VOT-AAAA11")
	if cred.Status != models.CredentialUnused {
		t.Errorf("reverted vote should release the credential, got %q", cred.Status)
	}
	if len(mem.VoteErrors()) != 1 {
		t.Errorf("expected 1 vote error record, got %d", len(mem.VoteErrors()))
	}
}

func TestSweep_FreshReservationLeftAlone(t *testing.T) {
	fc := testutil.NewFakeChain()
	mem := store.NewMemory()
	testutil.SeedCredential(t, mem, "VOT-AAAA11")
	if _, err := mem.Reserve(context.Background(), "VOT-AAAA11", time.Now().UTC()); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	rec := service.NewReconciler(fc, mem, mem, time.Minute, 5*time.Minute)
	if err := rec.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	cred, _ := mem.FindCredential(context.Background(), "VOT-AAAA11")
	if cred.Status != models.CredentialPending {
		t.Errorf("fresh reservation must stay pending, got %q", cred.Status)
	}
}

func TestPending_ListsOnlyStale(t *testing.T) {
	fc := testutil.NewFakeChain()
	mem := store.NewMemory()
	reservePast(t, mem, "VOT-STALE1", "0xaaa")
	testutil.SeedCredential(t, mem, "VOT-FRESH1")
	if _, err := mem.Reserve(context.Background(), "VOT-FRESH1", time.Now().UTC()); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	rec := service.NewReconciler(fc, mem, mem, time.Minute, 5*time.Minute)
	pending, err := rec.Pending(context.Background())
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 1 || pending[0].VoterID != "VOT-STALE1" {
		t.Errorf("expected only the stale reservation, got %+v", pending)
	}
}
