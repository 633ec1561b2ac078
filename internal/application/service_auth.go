package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/civicid/sso-service/internal/domain"
	"github.com/civicid/sso-service/internal/ports"
)

// Login authenticates a national identity number and password. The
// lockout check runs before password verification so a locked account
// answers AccountLocked regardless of the secret presented.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	nationalID := strings.TrimSpace(req.NationalID)
	if err := domain.ValidateNationalID(nationalID); err != nil {
		return LoginResult{}, err
	}
	if req.Password == "" {
		return LoginResult{}, fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByNationalID(ctx, nationalID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.audit(ctx, nil, domain.AuditLoginFailed, map[string]any{
				"national_id": nationalID,
				"reason":      "not found",
			}, req.Client)
			return LoginResult{}, domain.ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	now := s.nowFn()
	if user.LockActive(now) {
		s.audit(ctx, &user.UserID, domain.AuditLoginFailed, map[string]any{
			"reason":       "account locked",
			"lock_reason":  string(user.LockReason),
			"locked_until": user.LockedUntil,
		}, req.Client)
		return LoginResult{}, domain.ErrAccountLocked
	}
	if user.Status != domain.StatusActive && user.Status != domain.StatusLocked {
		s.audit(ctx, &user.UserID, domain.AuditLoginFailed, map[string]any{
			"reason": "account " + string(user.Status),
		}, req.Client)
		return LoginResult{}, domain.ErrAccountInactive
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		updated, failErr := s.users.RecordLoginFailure(ctx, user.UserID, now, s.cfg.FailedLoginThreshold, s.cfg.LockoutDuration)
		if failErr != nil {
			slog.Default().ErrorContext(ctx, "failed to record login failure",
				"module", "application",
				"operation", "login",
				"outcome", "failure",
				"error", failErr,
			)
			s.audit(ctx, &user.UserID, domain.AuditLoginFailed, map[string]any{
				"reason": "wrong password",
			}, req.Client)
			return LoginResult{}, domain.ErrInvalidCredentials
		}

		s.audit(ctx, &user.UserID, domain.AuditLoginFailed, map[string]any{
			"reason":          "wrong password",
			"failed_attempts": updated.FailedAttempts,
		}, req.Client)

		if updated.LockActive(now) {
			s.audit(ctx, &user.UserID, domain.AuditAccountLocked, map[string]any{
				"lock_reason":     string(domain.LockReasonFailedAttempts),
				"failed_attempts": updated.FailedAttempts,
				"locked_until":    updated.LockedUntil,
			}, req.Client)
			return LoginResult{}, domain.ErrAccountLocked
		}
		return LoginResult{}, domain.ErrInvalidCredentials
	}

	if err := s.users.ResetLoginState(ctx, user.UserID, now); err != nil {
		return LoginResult{}, err
	}
	user.FailedAttempts = 0
	user.LockedUntil = nil
	user.Status = domain.StatusActive
	user.LastLoginAt = &now

	return s.issueSession(ctx, user, now, req.Client, domain.AuditLoginSuccess)
}

// Register creates a citizen account and signs it in. A duplicate
// identity number or email surfaces as DuplicateAccount without a
// partial row being left behind.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (LoginResult, error) {
	nationalID := strings.TrimSpace(req.NationalID)
	if err := domain.ValidateNationalID(nationalID); err != nil {
		return LoginResult{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return LoginResult{}, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.policy.Validate(req.Password); err != nil {
		return LoginResult{}, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return LoginResult{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.nowFn()
	user, err := s.users.Create(ctx, ports.CreateUserParams{
		NationalID:   nationalID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         domain.RoleCitizen,
		RegisteredAt: now,
	})
	if err != nil {
		return LoginResult{}, err
	}

	return s.issueSession(ctx, user, now, req.Client, domain.AuditUserRegistered)
}

// issueSession mints the access/refresh pair, creates the session row
// bound to the access token, and audits the outcome.
func (s *Service) issueSession(ctx context.Context, user domain.User, now time.Time, client ClientMeta, action domain.AuditAction) (LoginResult, error) {
	sessionID := uuid.New()

	accessToken, err := s.tokens.SignAccess(ports.AccessClaims{
		UserID:     user.UserID,
		NationalID: user.NationalID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		SessionID:  sessionID,
		IssuedAt:   now,
		ExpiresAt:  now.Add(s.cfg.AccessTokenTTL),
	})
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, err := s.tokens.SignRefresh(ports.RefreshClaims{
		UserID:    user.UserID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.RefreshTokenTTL),
	})
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign refresh token: %w", err)
	}

	session, err := s.sessions.Create(ctx, ports.SessionCreateParams{
		SessionID:      sessionID,
		UserID:         user.UserID,
		TokenHash:      hashToken(accessToken),
		IPAddress:      client.IPAddress,
		UserAgent:      client.UserAgent,
		ExpiresAt:      now.Add(s.cfg.SessionTTL),
		LastActivityAt: now,
	})
	if err != nil {
		return LoginResult{}, fmt.Errorf("create session: %w", err)
	}

	s.audit(ctx, &user.UserID, action, map[string]any{
		"session_id": session.SessionID,
	}, client)

	return LoginResult{
		User: toUserView(user),
		Tokens: TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int64(s.cfg.AccessTokenTTL.Seconds()),
		},
		SessionID: session.SessionID,
	}, nil
}

// Logout marks the named session inactive. Logging out an
// already-inactive session is a no-op success.
func (s *Service) Logout(ctx context.Context, userID, sessionID uuid.UUID, client ClientMeta) error {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrUnauthenticated
		}
		return err
	}
	if session.UserID != userID {
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
			"operation", "logout",
			"outcome", "warning",
			"error", err,
		)
	}
	s.audit(ctx, &userID, domain.AuditUserLoggedOut, map[string]any{
		"session_id": sessionID,
	}, client)
	return nil
}

// RefreshToken verifies a refresh credential and mints a fresh access
// token bound to the caller's most recently active session. No new
// session is created.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string, client ClientMeta) (RefreshResult, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return RefreshResult{}, domain.ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return RefreshResult{}, domain.ErrInvalidToken
		}
		return RefreshResult{}, err
	}
	now := s.nowFn()
	if user.LockActive(now) {
		return RefreshResult{}, domain.ErrAccountLocked
	}
	if user.Status != domain.StatusActive && user.Status != domain.StatusLocked {
		return RefreshResult{}, domain.ErrAccountInactive
	}

	active, err := s.sessions.ListActiveByUser(ctx, user.UserID, now)
	if err != nil {
		return RefreshResult{}, err
	}
	var session *domain.Session
	for i := range active {
		if revoked, _ := s.revocations.IsRevoked(ctx, active[i].SessionID); revoked {
			continue
		}
		if session == nil || active[i].LastActivityAt.After(session.LastActivityAt) {
			session = &active[i]
		}
	}
	if session == nil {
		return RefreshResult{}, domain.ErrSessionExpired
	}

	accessToken, err := s.tokens.SignAccess(ports.AccessClaims{
		UserID:     user.UserID,
		NationalID: user.NationalID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		SessionID:  session.SessionID,
		IssuedAt:   now,
		ExpiresAt:  now.Add(s.cfg.AccessTokenTTL),
	})
	if err != nil {
		return RefreshResult{}, fmt.Errorf("sign access token: %w", err)
	}

	// Rebind the session to the fresh bearer so the one-session-per-token
	// invariant holds across refreshes.
	if err := s.sessions.RotateToken(ctx, session.SessionID, hashToken(accessToken), now); err != nil {
		return RefreshResult{}, err
	}

	s.audit(ctx, &user.UserID, domain.AuditTokenRefreshed, map[string]any{
		"session_id": session.SessionID,
	}, client)

	return RefreshResult{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.cfg.AccessTokenTTL.Seconds()),
	}, nil
}

// Authenticate resolves a bearer token to a principal. The user must
// still be active and unlocked and the session active, unrevoked, and
// unexpired; an expired session is flipped inactive as a side effect.
func (s *Service) Authenticate(ctx context.Context, bearer string) (domain.Principal, error) {
	claims, err := s.tokens.ParseAccess(bearer)
	if err != nil {
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	if revoked, _ := s.revocations.IsRevoked(ctx, claims.SessionID); revoked {
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Principal{}, domain.ErrUnauthenticated
		}
		return domain.Principal{}, err
	}
	now := s.nowFn()
	if user.LockActive(now) {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	if user.Status != domain.StatusActive && user.Status != domain.StatusLocked {
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Principal{}, domain.ErrUnauthenticated
		}
		return domain.Principal{}, err
	}
	if session.UserID != claims.UserID || session.TokenHash != hashToken(bearer) {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	if !session.IsActive {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	if !now.Before(session.ExpiresAt) {
		_ = s.sessions.Terminate(ctx, session.SessionID, now)
		return domain.Principal{}, domain.ErrSessionExpired
	}

	// Fire-and-forget; a lost touch races harmlessly with the sweeper.
	_ = s.sessions.TouchActivity(ctx, session.SessionID, now)

	return domain.Principal{
		UserID:    user.UserID,
		Role:      user.Role,
		SessionID: session.SessionID,
	}, nil
}

// AdminLockUser places an administrative lock. Unlike a failed-attempt
// lockout it does not lapse on its own; AdminUnlockUser must clear it.
func (s *Service) AdminLockUser(ctx context.Context, userID uuid.UUID, lockFor time.Duration, client ClientMeta) error {
	if lockFor <= 0 {
		lockFor = s.cfg.AdminLockDuration
	}
	now := s.nowFn()
	until := now.Add(lockFor)
	if err := s.users.Lock(ctx, userID, until, domain.LockReasonAdministrative, now); err != nil {
		return err
	}
	if _, err := s.TerminateAllSessions(ctx, userID, nil, client); err != nil {
		slog.Default().WarnContext(ctx, "terminate sessions after admin lock failed",
			"module", "application",
			"operation", "admin_lock",
			"outcome", "warning",
			"error", err,
		)
	}
	s.audit(ctx, &userID, domain.AuditAccountLocked, map[string]any{
		"lock_reason":  string(domain.LockReasonAdministrative),
		"locked_until": until,
	}, client)
	return nil
}

// AdminUnlockUser clears any lock and resets the failure counter.
func (s *Service) AdminUnlockUser(ctx context.Context, userID uuid.UUID, client ClientMeta) error {
	now := s.nowFn()
	if err := s.users.Unlock(ctx, userID, now); err != nil {
		return err
	}
	s.audit(ctx, &userID, domain.AuditAccountUnlocked, nil, client)
	return nil
}

// DeactivateUser soft-deactivates an account and terminates its
// sessions. Records are never physically deleted.
func (s *Service) DeactivateUser(ctx context.Context, userID uuid.UUID, client ClientMeta) error {
	now := s.nowFn()
	if err := s.users.Deactivate(ctx, userID, now); err != nil {
		return err
	}
	if _, err := s.TerminateAllSessions(ctx, userID, nil, client); err != nil {
		return err
	}
	s.audit(ctx, &userID, domain.AuditUserDeactivated, nil, client)
	return nil
}
