package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/civicid/sso-service/internal/domain"
	"github.com/civicid/sso-service/internal/ports"
)

// ListAuditEntries returns a page of the audit trail with optional
// user, action, and date-range filters.
func (s *Service) ListAuditEntries(ctx context.Context, q AuditListQuery) (AuditPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}
	repoQuery := ports.AuditQuery{
		UserID: q.UserID,
		Action: q.Action,
		From:   q.From,
		To:     q.To,
		Limit:  q.Limit,
		Offset: (q.Page - 1) * q.Limit,
	}

	entries, err := s.audits.List(ctx, repoQuery)
	if err != nil {
		return AuditPage{}, err
	}
	total, err := s.audits.Count(ctx, repoQuery)
	if err != nil {
		return AuditPage{}, err
	}

	views := make([]AuditEntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, toAuditEntryView(entry))
	}
	return AuditPage{
		Entries: views,
		Total:   total,
		Page:    q.Page,
		Limit:   q.Limit,
	}, nil
}

// AuditStatsReport rolls up event counts by action and day plus unique
// actor and IP counts over an optional date range.
func (s *Service) AuditStatsReport(ctx context.Context, from, to *time.Time) (domain.AuditStats, error) {
	return s.audits.Stats(ctx, from, to)
}

// ExportAuditEntries renders the filtered audit set as CSV or JSON. An
// empty result is a well-formed empty rendering, not an error.
func (s *Service) ExportAuditEntries(ctx context.Context, q AuditListQuery, format ExportFormat) ([]byte, string, error) {
	if q.Limit <= 0 || q.Limit > 10000 {
		q.Limit = 10000
	}
	if q.Page < 1 {
		q.Page = 1
	}
	entries, err := s.audits.List(ctx, ports.AuditQuery{
		UserID: q.UserID,
		Action: q.Action,
		From:   q.From,
		To:     q.To,
		Limit:  q.Limit,
		Offset: (q.Page - 1) * q.Limit,
	})
	if err != nil {
		return nil, "", err
	}

	switch format {
	case ExportJSON, "":
		views := make([]AuditEntryView, 0, len(entries))
		for _, entry := range entries {
			views = append(views, toAuditEntryView(entry))
		}
		payload, err := json.MarshalIndent(views, "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("encode audit export: %w", err)
		}
		return payload, "application/json", nil
	case ExportCSV:
		payload, err := renderAuditCSV(entries)
		if err != nil {
			return nil, "", err
		}
		return payload, "text/csv", nil
	default:
		return nil, "", fmt.Errorf("%w: unsupported export format %q", domain.ErrInvalidInput, format)
	}
}

func renderAuditCSV(entries []domain.AuditEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"audit_id", "user_id", "action", "ip_address", "user_agent", "created_at", "details"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, entry := range entries {
		userID := ""
		if entry.UserID != nil {
			userID = entry.UserID.String()
		}
		details := ""
		if len(entry.Details) > 0 {
			raw, err := json.Marshal(entry.Details)
			if err != nil {
				details = strconv.Quote(fmt.Sprintf("%v", entry.Details))
			} else {
				details = string(raw)
			}
		}
		record := []string{
			entry.AuditID.String(),
			userID,
			string(entry.Action),
			entry.IPAddress,
			entry.UserAgent,
			entry.CreatedAt.UTC().Format(time.RFC3339),
			details,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
