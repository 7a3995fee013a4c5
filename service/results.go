// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"fmt"
	"log/slog"

	"chainvote/chain"
	"chainvote/models"
)

// ResultsService is a read-through to the contract's tally view.
type ResultsService struct {
	chain chain.Client
}

func NewResultsService(c chain.Client) *ResultsService {
	return &ResultsService{chain: c}
}

// GetResults returns the tally for a session in contract order. On any
// contract or network failure it returns an empty (non-nil) slice and a
// wrapped models.ErrContractRead; it never returns a partial tally.
func (s *ResultsService) GetResults(ctx context.Context, sessionID int64) ([]models.OptionCount, error) {
	labels, counts, err := s.chain.GetResults(ctx, sessionID)
	if err != nil {
		slog.Error("failed to read results", "session_id", sessionID, "error", err)
		return []models.OptionCount{}, fmt.Errorf("%w: %v", models.ErrContractRead, err)
	}

	results := make([]models.OptionCount, len(labels))
	for i, label := range labels {
		results[i] = models.OptionCount{Label: label, Votes: counts[i]}
	}
	return results, nil
}
