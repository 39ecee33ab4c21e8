// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pageforge/pageforge/internal/auth"
	"github.com/pageforge/pageforge/internal/middleware"
	"github.com/pageforge/pageforge/internal/model"
	"github.com/pageforge/pageforge/internal/store"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// Login authenticates a user and starts a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid JSON body", nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteBadRequest(w, "email and password are required", nil)
		return
	}

	user, err := h.queries.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("loading user for login", "error", err)
		}
		// Same response for unknown email and wrong password
		WriteUnauthorized(w, "invalid credentials")
		return
	}

	ok, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil {
		slog.Error("verifying password", "user_id", user.ID, "error", err)
		WriteInternalError(w, "authentication failed")
		return
	}
	if !ok {
		h.logEvent(r, model.EventLevelWarning, model.EventCategoryAuth,
			"failed login attempt", user.ID)
		WriteUnauthorized(w, "invalid credentials")
		return
	}

	// Rotate the session token on privilege change
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		slog.Error("renewing session token", "error", err)
		WriteInternalError(w, "authentication failed")
		return
	}
	h.sessions.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	h.logEvent(r, model.EventLevelInfo, model.EventCategoryAuth, "user logged in", user.ID)
	WriteSuccess(w, toUserResponse(&user))
}

// Logout destroys the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessions.GetInt64(r.Context(), middleware.SessionKeyUserID)
	if err := h.sessions.Destroy(r.Context()); err != nil {
		slog.Error("destroying session", "error", err)
		WriteInternalError(w, "logout failed")
		return
	}
	if userID != 0 {
		h.logEvent(r, model.EventLevelInfo, model.EventCategoryAuth, "user logged out", userID)
	}
	WriteSuccess(w, map[string]any{"logged_out": true})
}

// Me returns the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "not authenticated")
		return
	}
	WriteSuccess(w, toUserResponse(user))
}

func (h *Handler) logEvent(r *http.Request, level, category, message string, userID int64) {
	if err := h.queries.CreateEvent(r.Context(), store.CreateEventParams{
		Level:    level,
		Category: category,
		Message:  message,
		UserID:   userID,
	}); err != nil {
		slog.Warn("recording event", "error", err)
	}
}
