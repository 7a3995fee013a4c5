// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"chainvote/middleware"
	"chainvote/models"
	"chainvote/service"
)

type VoteHandler struct {
	votes   *service.VoteService
	results *service.ResultsService
}

func NewVoteHandler(votes *service.VoteService, results *service.ResultsService) *VoteHandler {
	return &VoteHandler{votes: votes, results: results}
}

// SubmitVote handles POST /vote
func (h *VoteHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, err := h.votes.SubmitVote(r.Context(), req)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// GetResults handles GET /results?session_id=
// A failed contract read returns an empty result set with an error
// message rather than a failure status, mirroring the results page.
func (h *VoteHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	sessionID := int64(0)
	if raw := r.URL.Query().Get("session_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "session_id must be a non-negative integer")
			return
		}
		sessionID = parsed
	}

	resp := models.ResultsResponse{SessionID: sessionID}
	results, err := h.results.GetResults(r.Context(), sessionID)
	resp.Results = results
	if err != nil {
		resp.Error = "Error fetching results"
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// writeWorkflowError maps the closed workflow error set onto HTTP
// statuses. Messages stay generic: eligibility failures never reveal
// whether a voter ID existed.
func writeWorkflowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrSessionInactive):
		middleware.ErrorResponse(w, http.StatusConflict, "Voting session is not active")
	case errors.Is(err, models.ErrIneligibleVoter):
		middleware.ErrorResponse(w, http.StatusForbidden, "Invalid or already used voter ID")
	case errors.Is(err, models.ErrConfirmationTimeout):
		middleware.ErrorResponse(w, http.StatusGatewayTimeout, "Transaction confirmation timed out")
	case errors.Is(err, models.ErrChainExecution):
		middleware.ErrorResponse(w, http.StatusBadGateway, "Failed to process vote - please try again")
	case errors.Is(err, models.ErrContractRead):
		middleware.ErrorResponse(w, http.StatusBadGateway, "Failed to reach the voting contract")
	case errors.Is(err, models.ErrReconciliation):
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Vote confirmed on chain but not yet recorded - contact an administrator")
	default:
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal error")
	}
}
