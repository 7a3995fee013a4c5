// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service_test

import (
	"context"
	"errors"
	"testing"

	"chainvote/models"
	"chainvote/service"
	"chainvote/testutil"
)

func TestGetResults_Success(t *testing.T) {
	fc := testutil.NewFakeChain()
	fc.Labels = []string{"Alice", "Bob", "Carol"}
	fc.Counts = []uint64{10, 4, 0}
	svc := service.NewResultsService(fc)

	results, err := svc.GetResults(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetResults: %v", err)
	}

	want := []models.OptionCount{
		{Label: "Alice", Votes: 10},
		{Label: "Bob", Votes: 4},
		{Label: "Carol", Votes: 0},
	}
	if len(results) != len(want) {
		t.Fatalf("expected %d options, got %d", len(want), len(results))
	}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("option %d: expected %+v, got %+v", i, want[i], results[i])
		}
	}
}

func TestGetResults_EmptySession(t *testing.T) {
	fc := testutil.NewFakeChain()
	svc := service.NewResultsService(fc)

	results, err := svc.GetResults(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetResults: %v", err)
	}
	if results == nil {
		t.Fatal("expected a non-nil empty slice")
	}
	if len(results) != 0 {
		t.Errorf("expected no options, got %d", len(results))
	}
}

func TestGetResults_ReadFailure(t *testing.T) {
	fc := testutil.NewFakeChain()
	fc.ResultsErr = errors.New("rpc unreachable")
	svc := service.NewResultsService(fc)

	results, err := svc.GetResults(context.Background(), 1)
	if !errors.Is(err, models.ErrContractRead) {
		t.Fatalf("expected ErrContractRead, got %v", err)
	}
	// Callers render the empty slice alongside the error message.
	if results == nil {
		t.Fatal("expected a non-nil empty slice on failure")
	}
	if len(results) != 0 {
		t.Errorf("expected no options on failure, got %d", len(results))
	}
}
