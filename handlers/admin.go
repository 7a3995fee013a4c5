// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"chainvote/auth"
	"chainvote/middleware"
	"chainvote/models"
	"chainvote/service"
	"chainvote/store"
)

// Provisioning bounds for one request.
const maxProvisionCount = 500

type AdminHandler struct {
	users      store.UserStore
	creds      store.CredentialStore
	sessions   *auth.Sessions
	lifecycle  *service.SessionService
	results    *service.ResultsService
	audit      *service.AuditLog
	reconciler *service.Reconciler
}

func NewAdminHandler(
	users store.UserStore,
	creds store.CredentialStore,
	sessions *auth.Sessions,
	lifecycle *service.SessionService,
	results *service.ResultsService,
	audit *service.AuditLog,
	reconciler *service.Reconciler,
) *AdminHandler {
	return &AdminHandler{
		users:      users,
		creds:      creds,
		sessions:   sessions,
		lifecycle:  lifecycle,
		results:    results,
		audit:      audit,
		reconciler: reconciler,
	}
}

// Login handles POST /admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.users.FindAdmin(r.Context(), req.Username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.audit.Record(r.Context(), models.AuditLogEntry{
			Action: models.ActionLoginError,
			Error:  err.Error(),
		})
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Login error occurred")
		return
	}

	if user == nil || auth.VerifyPassword(user.PasswordHash, req.Password) != nil {
		h.audit.Record(r.Context(), models.AuditLogEntry{
			AttemptedUser: req.Username,
			Action:        models.ActionLoginFailed,
		})
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin credentials")
		return
	}

	sess, err := h.sessions.Create(user.ID.Hex(), user.Username)
	if err != nil {
		slog.Error("failed to create admin session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Login error occurred")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
	})

	h.audit.Record(r.Context(), models.AuditLogEntry{
		AdminID: user.ID.Hex(),
		Action:  models.ActionLoginSuccess,
	})

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		Username: user.Username,
		Role:     user.Role,
	})
}

// Logout handles POST /admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil {
		h.sessions.Destroy(cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// CreateSession handles POST /admin/create-session
func (h *AdminHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())

	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, err := h.lifecycle.CreateSession(r.Context(), sess.UserID, req)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	// Accepted, not created: the record is optimistic and the chain
	// outcome is not yet known.
	middleware.JSONResponse(w, http.StatusAccepted, resp)
}

// ReleaseResults handles POST /admin/release-results
func (h *AdminHandler) ReleaseResults(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())

	var req models.ReleaseResultsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, err := h.lifecycle.ReleaseResults(r.Context(), sess.UserID, req.SessionID)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusAccepted, resp)
}

// ViewResults handles GET /admin/view-results?session_id=
func (h *AdminHandler) ViewResults(w http.ResponseWriter, r *http.Request) {
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

// AuditLogs handles GET /admin/audit-logs
func (h *AdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := int64(service.DefaultAuditLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	entries, err := h.audit.Query(r.Context(), limit)
	if err != nil {
		slog.Error("failed to query audit logs", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, entries)
}

// CreateAdmin handles POST /admin/create-admin
func (h *AdminHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())

	var req models.CreateAdminRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || len(req.Password) < 8 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username and a password of at least 8 characters are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create admin")
		return
	}

	user := &models.AdminUser{
		Username:     username,
		PasswordHash: hash,
		Role:         "admin",
		CreatedBy:    sess.UserID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.users.InsertUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			middleware.ErrorResponse(w, http.StatusConflict, "Username already taken")
			return
		}
		slog.Error("failed to insert admin user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create admin")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, map[string]string{"message": "Admin user created successfully"})
}

// ProvisionVoters handles POST /admin/provision-voters
func (h *AdminHandler) ProvisionVoters(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())

	var req models.ProvisionVotersRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Count < 1 || req.Count > maxProvisionCount {
		middleware.ErrorResponse(w, http.StatusBadRequest, "count must be between 1 and 500")
		return
	}

	now := time.Now().UTC()
	voterIDs := make([]string, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		voterID := newVoterID()
		cred := &models.VoterCredential{
			VoterID:   voterID,
			Status:    models.CredentialUnused,
			CreatedAt: now,
		}
		if err := h.creds.InsertCredential(r.Context(), cred); err != nil {
			slog.Error("failed to insert credential", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to provision voter IDs")
			return
		}
		voterIDs = append(voterIDs, voterID)
	}

	h.audit.Record(r.Context(), models.AuditLogEntry{
		AdminID: sess.UserID,
		Action:  models.ActionProvisionVoters,
		Details: strconv.Itoa(req.Count) + " voter IDs provisioned",
	})

	middleware.JSONResponse(w, http.StatusCreated, models.ProvisionVotersResponse{VoterIDs: voterIDs})
}

// ReconciliationPending handles GET /admin/reconciliation/pending
// Exposes the reservations the background sweep will resolve, for
// manual repair tooling.
func (h *AdminHandler) ReconciliationPending(w http.ResponseWriter, r *http.Request) {
	creds, err := h.reconciler.Pending(r.Context())
	if err != nil {
		slog.Error("failed to list pending reconciliations", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if creds == nil {
		creds = []models.VoterCredential{}
	}
	middleware.JSONResponse(w, http.StatusOK, creds)
}

// newVoterID derives a 16-character credential from a random UUID,
// inside the 6-20 character bounds the vote form enforces.
func newVoterID() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "VOT-" + strings.ToUpper(raw[:12])
}
