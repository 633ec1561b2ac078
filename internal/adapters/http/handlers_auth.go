package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/civicid/sso-service/internal/application"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req application.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "register", err)
		return
	}
	req.Client = clientMeta(r)

	res, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "register", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "login", err)
		return
	}
	req.Client = clientMeta(r)

	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "login", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) refreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "refresh_token", err)
		return
	}
	if req.RefreshToken == "" {
		writeValidationError(r.Context(), w, "refresh_token", errors.New("refresh_token is required"))
		return
	}

	res, err := h.service.RefreshToken(r.Context(), req.RefreshToken, clientMeta(r))
	if err != nil {
		writeMappedError(r.Context(), w, "refresh_token", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing credentials")
		return
	}
	if err := h.service.Logout(r.Context(), principal.UserID, principal.SessionID, clientMeta(r)); err != nil {
		writeMappedError(r.Context(), w, "logout", err)
		return
	}
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func (h *Handler) adminLockUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "user_id"))
	if err != nil {
		writeValidationError(r.Context(), w, "admin_lock_user", errors.New("invalid user_id"))
		return
	}
	var req struct {
		DurationHours int `json:"duration_hours"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "admin_lock_user", err)
		return
	}

	lockFor := time.Duration(req.DurationHours) * time.Hour
	if err := h.service.AdminLockUser(r.Context(), userID, lockFor, clientMeta(r)); err != nil {
		writeMappedError(r.Context(), w, "admin_lock_user", err)
		return
	}
	writeMessage(w, http.StatusOK, "Account locked")
}

func (h *Handler) adminUnlockUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "user_id"))
	if err != nil {
		writeValidationError(r.Context(), w, "admin_unlock_user", errors.New("invalid user_id"))
		return
	}
	if err := h.service.AdminUnlockUser(r.Context(), userID, clientMeta(r)); err != nil {
		writeMappedError(r.Context(), w, "admin_unlock_user", err)
		return
	}
	writeMessage(w, http.StatusOK, "Account unlocked")
}

func (h *Handler) adminDeactivateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "user_id"))
	if err != nil {
		writeValidationError(r.Context(), w, "admin_deactivate_user", errors.New("invalid user_id"))
		return
	}
	if err := h.service.DeactivateUser(r.Context(), userID, clientMeta(r)); err != nil {
		writeMappedError(r.Context(), w, "admin_deactivate_user", err)
		return
	}
	writeMessage(w, http.StatusOK, "Account deactivated")
}

func clientMeta(r *http.Request) application.ClientMeta {
	return application.ClientMeta{
		IPAddress: readIP(r),
		UserAgent: r.UserAgent(),
	}
}
