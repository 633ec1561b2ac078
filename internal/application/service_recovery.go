package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/civicid/sso-service/internal/domain"
)

// RequestPasswordReset issues a one-time reset token for the account
// behind the given email. An unknown email returns success with an
// empty token so the endpoint cannot be used to enumerate accounts;
// delivering the token to the user is a collaborator concern.
func (s *Service) RequestPasswordReset(ctx context.Context, email string, client ClientMeta) (string, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}

	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	token := randomHex(32)
	now := s.nowFn()
	if err := s.recovery.CreateResetToken(ctx, user.UserID, hashToken(token), now, now.Add(s.cfg.ResetTokenTTL)); err != nil {
		return "", err
	}

	s.audit(ctx, &user.UserID, domain.AuditPasswordResetRequested, nil, client)
	return token, nil
}

// ResetPassword consumes a one-time token, rehashes the credential, and
// terminates every session for the account.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string, client ClientMeta) error {
	if token == "" {
		return fmt.Errorf("%w: token is required", domain.ErrInvalidInput)
	}
	if err := s.policy.Validate(newPassword); err != nil {
		return err
	}

	now := s.nowFn()
	userID, err := s.recovery.ConsumeResetToken(ctx, hashToken(token), now)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidToken
		}
		return err
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, passwordHash, now); err != nil {
		return err
	}
	if _, err := s.TerminateAllSessions(ctx, userID, nil, client); err != nil {
		return err
	}

	s.audit(ctx, &userID, domain.AuditPasswordReset, nil, client)
	return nil
}
