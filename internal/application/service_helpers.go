package application

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/civicid/sso-service/internal/domain"
)

// audit appends a security event. The write is synchronous but
// best-effort: a failing audit store is logged to the operational sink
// and never fails the caller's primary operation.
func (s *Service) audit(ctx context.Context, userID *uuid.UUID, action domain.AuditAction, details map[string]any, client ClientMeta) {
	entry := domain.AuditEntry{
		UserID:    userID,
		Action:    action,
		Details:   details,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		CreatedAt: s.nowFn(),
	}
	if err := s.audits.Insert(ctx, entry); err != nil {
		slog.Default().ErrorContext(ctx, "audit write failed",
			"module", "application",
			"operation", "audit_record",
			"outcome", "failure",
			"action", string(action),
			"error", err,
		)
	}
}

// normalizeEmail canonicalizes and validates email format before
// persistence and comparison.
func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	return trimmed, nil
}

// hashToken stores one-way token fingerprints instead of raw bearer
// secrets.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a cryptographically random hex token.
func randomHex(bytesLen int) string {
	raw := make([]byte, bytesLen)
	_, _ = rand.Read(raw)
	return hex.EncodeToString(raw)
}
