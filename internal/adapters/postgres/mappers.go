package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/civicid/sso-service/internal/domain"
)

func toDomainUser(row userModel) domain.User {
	reason := domain.LockReason("")
	if row.LockReason != nil {
		reason = domain.LockReason(*row.LockReason)
	}
	return domain.User{
		UserID:         row.UserID,
		NationalID:     row.NationalID,
		Name:           row.Name,
		Email:          row.Email,
		PasswordHash:   row.PasswordHash,
		Role:           domain.Role(row.Role),
		Status:         domain.Status(row.Status),
		FailedAttempts: row.FailedAttempts,
		LockedUntil:    row.LockedUntil,
		LockReason:     reason,
		LastLoginAt:    row.LastLoginAt,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

func toDomainSession(row sessionModel) domain.Session {
	ip := ""
	if row.IPAddress != nil {
		ip = *row.IPAddress
	}
	return domain.Session{
		SessionID:      row.SessionID,
		UserID:         row.UserID,
		TokenHash:      row.TokenHash,
		IPAddress:      ip,
		UserAgent:      row.UserAgent,
		CreatedAt:      row.CreatedAt,
		ExpiresAt:      row.ExpiresAt,
		LastActivityAt: row.LastActivityAt,
		IsActive:       row.IsActive,
		LoggedOutAt:    row.LoggedOutAt,
	}
}

func toDomainAuditEntry(row auditEntryModel) domain.AuditEntry {
	ip := ""
	if row.IPAddress != nil {
		ip = *row.IPAddress
	}
	var details map[string]any
	if row.Details != nil && *row.Details != "" {
		_ = json.Unmarshal([]byte(*row.Details), &details)
	}
	return domain.AuditEntry{
		AuditID:   row.AuditID,
		UserID:    row.UserID,
		Action:    domain.AuditAction(row.Action),
		Details:   details,
		IPAddress: ip,
		UserAgent: row.UserAgent,
		CreatedAt: row.CreatedAt,
	}
}

func nullableString(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// mapStorageErr folds transient failures into the StorageUnavailable
// sentinel so callers can distinguish retryable outages from auth
// outcomes. Record-not-found keeps its own sentinel.
func mapStorageErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.ErrStorageUnavailable
	}
	return err
}
