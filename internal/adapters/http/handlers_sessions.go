package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/civicid/sso-service/internal/application"
)

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing credentials")
		return
	}

	query := application.SessionListQuery{
		Page:   parseIntDefault(r.URL.Query().Get("page"), 1),
		Limit:  parseIntDefault(r.URL.Query().Get("limit"), 20),
		SortBy: r.URL.Query().Get("sort_by"),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("active")); raw != "" {
		active := raw == "true"
		query.Active = &active
	}

	items, err := h.service.ListSessions(r.Context(), principal.UserID, principal.SessionID, query)
	if err != nil {
		writeMappedError(r.Context(), w, "list_sessions", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"sessions": items})
}

func (h *Handler) activeSessions(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing credentials")
		return
	}
	items, err := h.service.ActiveSessions(r.Context(), principal.UserID)
	if err != nil {
		writeMappedError(r.Context(), w, "active_sessions", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"sessions": items})
}

func (h *Handler) terminateSession(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing credentials")
		return
	}
	sessionID, err := uuid.Parse(chi.URLParam(r, "session_id"))
	if err != nil {
		writeValidationError(r.Context(), w, "terminate_session", errors.New("invalid session_id"))
		return
	}
	if err := h.service.TerminateSession(r.Context(), principal, sessionID, clientMeta(r)); err != nil {
		writeMappedError(r.Context(), w, "terminate_session", err)
		return
	}
	writeMessage(w, http.StatusOK, "Session terminated")
}

func (h *Handler) terminateAllSessions(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing credentials")
		return
	}

	// keep_current=true spares the session making the request.
	var exclude *uuid.UUID
	if r.URL.Query().Get("keep_current") == "true" {
		sid := principal.SessionID
		exclude = &sid
	}

	count, err := h.service.TerminateAllSessions(r.Context(), principal.UserID, exclude, clientMeta(r))
	if err != nil {
		writeMappedError(r.Context(), w, "terminate_all_sessions", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"terminated": count})
}

func (h *Handler) extendSession(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing credentials")
		return
	}
	sessionID, err := uuid.Parse(chi.URLParam(r, "session_id"))
	if err != nil {
		writeValidationError(r.Context(), w, "extend_session", errors.New("invalid session_id"))
		return
	}
	var req struct {
		Hours int `json:"hours"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "extend_session", err)
		return
	}

	item, err := h.service.ExtendSession(r.Context(), principal.UserID, sessionID, req.Hours, clientMeta(r))
	if err != nil {
		writeMappedError(r.Context(), w, "extend_session", err)
		return
	}
	writeSuccess(w, http.StatusOK, item)
}

func (h *Handler) adminTerminateUserSessions(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "user_id"))
	if err != nil {
		writeValidationError(r.Context(), w, "admin_terminate_user_sessions", errors.New("invalid user_id"))
		return
	}
	count, err := h.service.TerminateAllSessions(r.Context(), userID, nil, clientMeta(r))
	if err != nil {
		writeMappedError(r.Context(), w, "admin_terminate_user_sessions", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"terminated": count})
}
