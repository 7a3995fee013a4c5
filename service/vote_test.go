// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"chainvote/chain"
	"chainvote/models"
	"chainvote/service"
	"chainvote/store"
	"chainvote/testutil"
)

func newVoteFixture(t *testing.T) (*service.VoteService, *testutil.FakeChain, *store.Memory) {
	t.Helper()
	fc := testutil.NewFakeChain()
	fc.ActiveSessions[1] = true
	mem := store.NewMemory()
	return service.NewVoteService(fc, mem, mem), fc, mem
}

func credentialStatus(t *testing.T, mem *store.Memory, voterID string) string {
	t.Helper()
	cred, err := mem.FindCredential(context.Background(), voterID)
	if err != nil {
		t.Fatalf("FindCredential: %v", err)
	}
	return cred.Status
}

func TestSubmitVote_Success(t *testing.T) {
	svc, fc, mem := newVoteFixture(t)
	testutil.SeedCredential(t, mem, "VOT-AAAA11")

	resp, err := svc.SubmitVote(context.Background(), models.VoteRequest{
		VoterID:   "VOT-AAAA11",
		SessionID: 1,
		Option:    "Alice",
	})
	if err != nil {
		t.Fatalf("SubmitVote: %v", err)
	}

	if resp.TxHash == "" {
		t.Error("expected a transaction hash")
	}
	if resp.ResultsPath != "/results?session_id=1" {
		t.Errorf("unexpected results path %q", resp.ResultsPath)
	}
	if fc.LastOption() != "Alice" {
		t.Errorf("expected option Alice submitted, got %q", fc.LastOption())
	}
	if got := credentialStatus(t, mem, "VOT-AAAA11"); got != models.CredentialUsed {
		t.Errorf("credential should be used, got %q", got)
	}
}

func TestSubmitVote_SecondAttemptRejected(t *testing.T) {
	svc, fc, mem := newVoteFixture(t)
	testutil.SeedCredential(t, mem, "VOT-AAAA11")

	req := models.VoteRequest{VoterID: "VOT-AAAA11", SessionID: 1, Option: "Alice"}
	if _, err := svc.SubmitVote(context.Background(), req); err != nil {
		t.Fatalf("first vote: %v", err)
	}

	_, err := svc.SubmitVote(context.Background(), req)
	if !errors.Is(err, models.ErrIneligibleVoter) {
		t.Fatalf("expected ErrIneligibleVoter, got %v", err)
	}
	if fc.Submissions() != 1 {
		t.Errorf("expected exactly 1 submission, got %d", fc.Submissions())
	}
}

func TestSubmitVote_ValidationNoSideEffects(t *testing.T) {
	svc, fc, mem := newVoteFixture(t)
	testutil.SeedCredential(t, mem, "VOT-AAAA11")

	cases := []struct {
		name string
		req  models.VoteRequest
	}{
		{"short voter ID", models.VoteRequest{VoterID: "abc", SessionID: 1, Option: "Alice"}},
		{"long voter ID", models.VoteRequest{VoterID: "this-is-far-too-long-for-a-credential", SessionID: 1, Option: "Alice"}},
		{"negative session", models.VoteRequest{VoterID: "VOT-AAAA11", SessionID: -1, Option: "Alice"}},
		{"empty option", models.VoteRequest{VoterID: "VOT-AAAA11", SessionID: 1, Option: "   "}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SubmitVote(context.Background(), tc.req)
			if !errors.Is(err, models.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}

	if fc.Submissions() != 0 {
		t.Errorf("validation failures must not reach the chain, got %d submissions", fc.Submissions())
	}
	if got := credentialStatus(t, mem, "VOT-AAAA11"); got != models.CredentialUnused {
		t.Errorf("credential should be untouched, got %q", got)
	}
}

func TestSubmitVote_InactiveSession(t *testing.T) {
	svc, fc, mem := newVoteFixture(t)
	testutil.SeedCredential(t, mem, "VOT-AAAA11")

	_, err := svc.SubmitVote(context.Background(), models.VoteRequest{
		VoterID:   "VOT-AAAA11",
		SessionID: 2, // not active
		Option:    "Alice",
	})
	if !errors.Is(err, models.ErrSessionInactive) {
		t.Fatalf("expected ErrSessionInactive, got %v", err)
	}
	if fc.Submissions() != 0 {
		t.Error("inactive session must not produce a submission")
	}
	if got := credentialStatus(t, mem, "VOT-AAAA11"); got != models.CredentialUnused {
		t.Errorf("credential should be untouched, got %q", got)
	}
}

func TestSubmitVote_ActiveCheckFailure(t *testing.T) {
	svc, fc, _ := newVoteFixture(t)
	fc.ActiveErr = errors.New("rpc unreachable")

	_, err := svc.SubmitVote(context.Background(), models.VoteRequest{
		VoterID:   "VOT-AAAA11",
		SessionID: 1,
		Option:    "Alice",
	})
	if !errors.Is(err, models.ErrContractRead) {
		t.Fatalf("expected ErrContractRead, got %v", err)
	}
}

func TestSubmitVote_UnknownVoterNoChainCall(t *testing.T) {
	svc, fc, _ := newVoteFixture(t)

	_, err := svc.SubmitVote(context.Background(), models.VoteRequest{
		VoterID:   "VOT-UNKNOWN",
		SessionID: 1,
		Option:    "Alice",
	})
	if !errors.Is(err, models.ErrIneligibleVoter) {
		t.Fatalf("expected ErrIneligibleVoter, got %v", err)
	}
	if fc.Submissions() != 0 {
		t.Error("ineligible voter must never reach the chain")
	}
}

func TestSubmitVote_SubmitFailureReleasesCredential(t *testing.T) {
	svc, fc, mem := newVoteFixture(t)
	testutil.SeedCredential(t, mem, "VOT-AAAA11")
	fc.SubmitErr = errors.New("nonce too low")

	_, err := svc.SubmitVote(context.Background(), models.VoteRequest{
		VoterID:   "VOT-AAAA11",
		SessionID: 1,
		Option:    "Alice",
	})
	if !errors.Is(err, models.ErrChainExecution) {
		t.Fatalf("expected ErrChainExecution, got %v", err)
	}
	if got := credentialStatus(t, mem, "VOT-AAAA11"); got != models.CredentialUnused {
		t.Errorf("credential should be released after submit failure, got %q", got)
	}
	if len(mem.Errors()) == 0 {
		t.Error("expected the failure to be logged")
	}
}

func TestSubmitVote_RevertedReceiptNeverMarksUsed(t *testing.T) {
	svc, _, mem := newVoteFixture(t)
	testutil.SeedCredential(t, mem, "VOT-AAAA11")

	fc2 := testutil.NewFakeChain()
	fc2.ActiveSessions[1] = true
	fc2.SetReceiptStatus(0)
	svc = service.NewVoteService(fc2, mem, mem)

	_, err := svc.SubmitVote(context.Background(), models.VoteRequest{
		VoterID:   "VOT-AAAA11",
		SessionID: 1,
		Option:    "Alice",
	})
	if !errors.Is(err, models.ErrChainExecution) {
		t.Fatalf("expected ErrChainExecution, got %v", err)
	}
	if got := credentialStatus(t, mem, "VOT-AAAA11"); got != models.CredentialUnused {
		t.Errorf("reverted tx must release the credential, got %q", got)
	}
	if len(mem.VoteErrors()) == 0 {
		t.Error("expected a vote error record for the revert")
	}
}

func TestSubmitVote_ConfirmationTimeoutLeavesPending(t *testing.T) {
	svc, fc, mem := newVoteFixture(t)
	testutil.SeedCredential(t, mem, "VOT-AAAA11")
	fc.ReceiptErr = fmt.Errorf("%w: no receipt after budget", models.ErrConfirmationTimeout)

	_, err := svc.SubmitVote(context.Background(), models.VoteRequest{
		VoterID:   "VOT-AAAA11",
		SessionID: 1,
		Option:    "Alice",
	})
	if !errors.Is(err, models.ErrConfirmationTimeout) {
		t.Fatalf("expected ErrConfirmationTimeout, got %v", err)
	}
	// The outcome is unknown: the reservation stays pending for the
	// reconciler instead of being released or committed.
	if got := credentialStatus(t, mem, "VOT-AAAA11"); got != models.CredentialPending {
		t.Errorf("timeout should leave the credential pending, got %q", got)
	}
}

func TestSubmitVote_ConcurrentSameVoter(t *testing.T) {
	svc, fc, mem := newVoteFixture(t)
	testutil.SeedCredential(t, mem, "VOT-AAAA11")

	const attempts = 16
	var wg sync.WaitGroup
	errsCh := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SubmitVote(context.Background(), models.VoteRequest{
				VoterID:   "VOT-AAAA11",
				SessionID: 1,
				Option:    "Alice",
			})
			errsCh <- err
		}()
	}
	wg.Wait()
	close(errsCh)

	successes := 0
	for err := range errsCh {
		if err == nil {
			successes++
		} else if !errors.Is(err, models.ErrIneligibleVoter) {
			t.Errorf("unexpected error from concurrent attempt: %v", err)
		}
	}

	if successes != 1 {
		t.Errorf("expected exactly 1 success, got %d", successes)
	}
	if fc.Submissions() != 1 {
		t.Errorf("expected exactly 1 chain submission, got %d", fc.Submissions())
	}
	if got := credentialStatus(t, mem, "VOT-AAAA11"); got != models.CredentialUsed {
		t.Errorf("credential should end used, got %q", got)
	}
}

func TestSubmitVote_TrimsVoterID(t *testing.T) {
	svc, _, mem := newVoteFixture(t)
	testutil.SeedCredential(t, mem, "VOT-AAAA11")

	_, err := svc.SubmitVote(context.Background(), models.VoteRequest{
		VoterID:   "  VOT-AAAA11  ",
		SessionID: 1,
		Option:    "Alice",
	})
	if err != nil {
		t.Fatalf("SubmitVote with padded ID: %v", err)
	}
	if got := credentialStatus(t, mem, "VOT-AAAA11"); got != models.CredentialUsed {
		t.Errorf("credential should be used, got %q", got)
	}
}

// disconnectingChain simulates a voter closing the connection the
// moment the transaction is submitted: it cancels the request context
// inside SubmitVote and honors cancellation in WaitForReceipt.
type disconnectingChain struct {
	*testutil.FakeChain
	cancel context.CancelFunc
}

func (c *disconnectingChain) SubmitVote(ctx context.Context, sessionID int64, option string) (string, error) {
	hash, err := c.FakeChain.SubmitVote(ctx, sessionID, option)
	c.cancel()
	return hash, err
}

func (c *disconnectingChain) WaitForReceipt(ctx context.Context, txHash string) (*chain.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.FakeChain.WaitForReceipt(ctx, txHash)
}

func TestSubmitVote_ClientDisconnectAfterSubmit(t *testing.T) {
	fc := testutil.NewFakeChain()
	fc.ActiveSessions[1] = true
	mem := store.NewMemory()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dc := &disconnectingChain{FakeChain: fc, cancel: cancel}
	svc := service.NewVoteService(dc, mem, mem)

	testutil.SeedCredential(t, mem, "VOT-AAAA11")

	req := models.VoteRequest{VoterID: "VOT-AAAA11", SessionID: 1, Option: "Alice"}
	if _, err := svc.SubmitVote(ctx, req); err != nil {
		t.Fatalf("vote with mid-flight disconnect: %v", err)
	}

	// The in-flight submission must not be abandoned: the credential is
	// committed, and the same voter cannot vote again.
	if got := credentialStatus(t, mem, "VOT-AAAA11"); got != models.CredentialUsed {
		t.Errorf("credential should be used after disconnect, got %q", got)
	}
	if _, err := svc.SubmitVote(context.Background(), req); !errors.Is(err, models.ErrIneligibleVoter) {
		t.Fatalf("expected ErrIneligibleVoter on second attempt, got %v", err)
	}
	if fc.Submissions() != 1 {
		t.Errorf("expected exactly 1 chain submission, got %d", fc.Submissions())
	}
}

// failingReserveStore injects a store outage into the reservation step.
type failingReserveStore struct {
	*store.Memory
}

func (f *failingReserveStore) Reserve(_ context.Context, _ string, _ time.Time) (*models.VoterCredential, error) {
	return nil, errors.New("connection reset by peer")
}

func TestSubmitVote_ReserveStoreFailure(t *testing.T) {
	fc := testutil.NewFakeChain()
	fc.ActiveSessions[1] = true
	mem := store.NewMemory()
	testutil.SeedCredential(t, mem, "VOT-AAAA11")
	svc := service.NewVoteService(fc, &failingReserveStore{Memory: mem}, mem)

	_, err := svc.SubmitVote(context.Background(), models.VoteRequest{
		VoterID:   "VOT-AAAA11",
		SessionID: 1,
		Option:    "Alice",
	})
	if err == nil {
		t.Fatal("expected an error from the reserve failure")
	}
	// Nothing was submitted, so the chain/database divergence error is
	// wrong here; it is reserved for a failed commit after a confirmed
	// receipt.
	if errors.Is(err, models.ErrReconciliation) {
		t.Errorf("reserve failure must not report ErrReconciliation: %v", err)
	}
	if fc.Submissions() != 0 {
		t.Errorf("reserve failure must not reach the chain, got %d submissions", fc.Submissions())
	}
}
