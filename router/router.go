// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"chainvote/auth"
	"chainvote/handlers"
	"chainvote/middleware"
)

func NewRouter(vote *handlers.VoteHandler, admin *handlers.AdminHandler, sessions *auth.Sessions) *http.ServeMux {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Voting operations (public)
	mux.HandleFunc("POST /vote", middleware.WithLogging(vote.SubmitVote))
	mux.HandleFunc("GET /results", middleware.WithLogging(vote.GetResults))

	// Admin authentication
	mux.HandleFunc("POST /admin/login", middleware.WithLogging(admin.Login))
	mux.HandleFunc("POST /admin/logout", middleware.WithLogging(admin.Logout))

	// Admin operations (session cookie required)
	mux.HandleFunc("POST /admin/create-session", middleware.WithLogging(middleware.RequireAdmin(sessions, admin.CreateSession)))
	mux.HandleFunc("POST /admin/release-results", middleware.WithLogging(middleware.RequireAdmin(sessions, admin.ReleaseResults)))
	mux.HandleFunc("GET /admin/view-results", middleware.WithLogging(middleware.RequireAdmin(sessions, admin.ViewResults)))
	mux.HandleFunc("GET /admin/audit-logs", middleware.WithLogging(middleware.RequireAdmin(sessions, admin.AuditLogs)))
	mux.HandleFunc("POST /admin/create-admin", middleware.WithLogging(middleware.RequireAdmin(sessions, admin.CreateAdmin)))
	mux.HandleFunc("POST /admin/provision-voters", middleware.WithLogging(middleware.RequireAdmin(sessions, admin.ProvisionVoters)))
	mux.HandleFunc("GET /admin/reconciliation/pending", middleware.WithLogging(middleware.RequireAdmin(sessions, admin.ReconciliationPending)))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("chainvote API v1"))
	})

	return mux
}
