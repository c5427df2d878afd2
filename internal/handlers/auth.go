// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"blogify/internal/middleware"
	"blogify/internal/session"
	"blogify/internal/store"
)

// Auth groups the editor authentication endpoints.
type Auth struct {
	sessions *session.Store
	users    *store.UserStore
}

// NewAuth creates the auth handler group.
func NewAuth(sessions *session.Store, users *store.UserStore) *Auth {
	return &Auth{sessions: sessions, users: users}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userView struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
}

// Login serves POST /api/auth/login/. On success the session token is set
// as a cookie and also returned for bearer use.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := a.users.FindByEmail(r.Context(), in.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if user == nil || !a.users.CheckPassword(user, in.Password) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if !user.Role.CanEdit() {
		writeError(w, http.StatusForbidden, "editor role required")
		return
	}

	data := &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
	}
	token, err := a.sessions.Create(r.Context(), w, data)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	slog.Info("editor logged in", "user_id", user.ID)

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  viewOf(data),
	})
}

// Logout serves POST /api/auth/logout/.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me serves GET /api/auth/me/.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func viewOf(d *session.Data) userView {
	return userView{ID: d.UserID, Email: d.Email, DisplayName: d.DisplayName, Role: d.Role}
}
