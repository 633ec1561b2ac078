package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/civicid/sso-service/internal/application"
	"github.com/civicid/sso-service/internal/domain"
)

func auditQueryFromRequest(r *http.Request) (application.AuditListQuery, error) {
	q := application.AuditListQuery{
		Page:   parseIntDefault(r.URL.Query().Get("page"), 1),
		Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
		Action: domain.AuditAction(strings.TrimSpace(r.URL.Query().Get("action"))),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("user_id")); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return q, errors.New("invalid user_id")
		}
		q.UserID = &userID
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return q, errors.New("invalid from timestamp, expected RFC3339")
		}
		q.From = &from
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return q, errors.New("invalid to timestamp, expected RFC3339")
		}
		q.To = &to
	}
	return q, nil
}

func (h *Handler) listAuditEntries(w http.ResponseWriter, r *http.Request) {
	query, err := auditQueryFromRequest(r)
	if err != nil {
		writeValidationError(r.Context(), w, "list_audit_entries", err)
		return
	}
	page, err := h.service.ListAuditEntries(r.Context(), query)
	if err != nil {
		writeMappedError(r.Context(), w, "list_audit_entries", err)
		return
	}
	writeSuccess(w, http.StatusOK, page)
}

func (h *Handler) auditStats(w http.ResponseWriter, r *http.Request) {
	var from, to *time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeValidationError(r.Context(), w, "audit_stats", errors.New("invalid from timestamp, expected RFC3339"))
			return
		}
		from = &t
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeValidationError(r.Context(), w, "audit_stats", errors.New("invalid to timestamp, expected RFC3339"))
			return
		}
		to = &t
	}

	stats, err := h.service.AuditStatsReport(r.Context(), from, to)
	if err != nil {
		writeMappedError(r.Context(), w, "audit_stats", err)
		return
	}
	writeSuccess(w, http.StatusOK, stats)
}

func (h *Handler) exportAuditEntries(w http.ResponseWriter, r *http.Request) {
	query, err := auditQueryFromRequest(r)
	if err != nil {
		writeValidationError(r.Context(), w, "export_audit_entries", err)
		return
	}
	format := application.ExportFormat(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = application.ExportCSV
	}

	payload, contentType, err := h.service.ExportAuditEntries(r.Context(), query, format)
	if err != nil {
		writeMappedError(r.Context(), w, "export_audit_entries", err)
		return
	}

	filename := fmt.Sprintf("audit-export-%s.%s", time.Now().UTC().Format("20060102-150405"), format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
