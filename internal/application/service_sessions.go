package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/civicid/sso-service/internal/domain"
	"github.com/civicid/sso-service/internal/ports"
)

// ListSessions returns a page of the user's session history, sortable
// by creation or last activity and filterable by the active flag.
func (s *Service) ListSessions(ctx context.Context, userID uuid.UUID, currentSessionID uuid.UUID, q SessionListQuery) ([]SessionItem, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	sortBy := q.SortBy
	switch sortBy {
	case "", "created_at":
		sortBy = "created_at"
	case "last_activity_at":
	default:
		return nil, fmt.Errorf("%w: unsupported sort field %q", domain.ErrInvalidInput, q.SortBy)
	}

	sessions, err := s.sessions.ListByUser(ctx, userID, ports.SessionQuery{
		Limit:      q.Limit,
		Offset:     (q.Page - 1) * q.Limit,
		SortBy:     sortBy,
		ActiveOnly: q.Active,
	})
	if err != nil {
		return nil, err
	}

	result := make([]SessionItem, 0, len(sessions))
	for _, it := range sessions {
		result = append(result, toSessionItem(it, currentSessionID))
	}
	return result, nil
}

// ActiveSessions returns only sessions that are currently authoritative:
// active and unexpired.
func (s *Service) ActiveSessions(ctx context.Context, userID uuid.UUID) ([]SessionItem, error) {
	sessions, err := s.sessions.ListActiveByUser(ctx, userID, s.nowFn())
	if err != nil {
		return nil, err
	}
	result := make([]SessionItem, 0, len(sessions))
	for _, it := range sessions {
		result = append(result, toSessionItem(it, uuid.Nil))
	}
	return result, nil
}

// TerminateSession ends one session by id. The session must belong to
// the requester unless the requester holds an admin role.
func (s *Service) TerminateSession(ctx context.Context, requester domain.Principal, sessionID uuid.UUID, client ClientMeta) error {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.UserID != requester.UserID &&
		requester.Role != domain.RoleAdmin && requester.Role != domain.RoleSuperAdmin {
		return domain.ErrUnauthenticated
	}
	if !session.IsActive {
		return nil
	}

	now := s.nowFn()
	if err := s.sessions.Terminate(ctx, sessionID, now); err != nil {
		return err
	}
	if err := s.revocations.MarkRevoked(ctx, sessionID, now.Add(s.cfg.AccessTokenTTL)); err != nil {
		slog.Default().WarnContext(ctx, "revocation marker write failed",
			"module", "application",
			"operation", "terminate_session",
			"outcome", "warning",
			"error", err,
		)
	}
	s.audit(ctx, &session.UserID, domain.AuditSessionTerminated, map[string]any{
		"session_id":    sessionID,
		"terminated_by": requester.UserID,
	}, client)
	return nil
}

// TerminateAllSessions ends every active session for the user, keeping
// the optionally excluded one, and reports how many rows were flipped.
func (s *Service) TerminateAllSessions(ctx context.Context, userID uuid.UUID, exclude *uuid.UUID, client ClientMeta) (int64, error) {
	now := s.nowFn()

	// Revocation markers first, so terminated bearers die immediately
	// even if the marker write for one of them fails midway.
	active, err := s.sessions.ListActiveByUser(ctx, userID, now)
	if err != nil {
		return 0, err
	}
	for _, session := range active {
		if exclude != nil && session.SessionID == *exclude {
			continue
		}
		_ = s.revocations.MarkRevoked(ctx, session.SessionID, now.Add(s.cfg.AccessTokenTTL))
	}

	count, err := s.sessions.TerminateAllByUser(ctx, userID, now, exclude)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		details := map[string]any{"terminated": count}
		if exclude != nil {
			details["excluded_session_id"] = *exclude
		}
		s.audit(ctx, &userID, domain.AuditSessionsTerminated, details, client)
	}
	return count, nil
}

// ExtendSession pushes a session's expiry out by the requested number
// of hours, clamped to one week, and returns the effective state.
func (s *Service) ExtendSession(ctx context.Context, userID uuid.UUID, sessionID uuid.UUID, hours int, client ClientMeta) (SessionItem, error) {
	if hours <= 0 {
		return SessionItem{}, fmt.Errorf("%w: extension hours must be positive", domain.ErrInvalidInput)
	}
	extension := time.Duration(hours) * time.Hour
	if extension > s.cfg.MaxSessionExtension {
		extension = s.cfg.MaxSessionExtension
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return SessionItem{}, err
	}
	if session.UserID != userID {
		return SessionItem{}, domain.ErrUnauthenticated
	}
	now := s.nowFn()
	if !session.Authoritative(now) {
		return SessionItem{}, domain.ErrSessionExpired
	}

	newExpiry := session.ExpiresAt.Add(extension)
	if err := s.sessions.Extend(ctx, sessionID, newExpiry); err != nil {
		return SessionItem{}, err
	}
	session.ExpiresAt = newExpiry

	s.audit(ctx, &userID, domain.AuditSessionExtended, map[string]any{
		"session_id": sessionID,
		"expires_at": newExpiry,
	}, client)
	return toSessionItem(session, sessionID), nil
}

// SweepExpiredSessions flips expired-but-still-active sessions to
// inactive. The underlying update is conditional, so concurrent or
// repeated sweeps are harmless.
func (s *Service) SweepExpiredSessions(ctx context.Context) (int64, error) {
	count, err := s.sessions.SweepExpired(ctx, s.nowFn())
	if err != nil {
		if errors.Is(err, domain.ErrStorageUnavailable) {
			return 0, err
		}
		return 0, fmt.Errorf("sweep expired sessions: %w", err)
	}
	return count, nil
}
