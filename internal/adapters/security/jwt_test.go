package security

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/civicid/sso-service/internal/domain"
	"github.com/civicid/sso-service/internal/ports"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()

	issuer, err := NewEphemeralJWTIssuer()
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	claims := ports.AccessClaims{
		UserID:     uuid.New(),
		NationalID: "199001011234",
		Name:       "Test Citizen",
		Email:      "citizen@example.com",
		Role:       domain.RoleCitizen,
		SessionID:  uuid.New(),
		IssuedAt:   now,
		ExpiresAt:  now.Add(time.Hour),
	}

	token, err := issuer.SignAccess(claims)
	if err != nil {
		t.Fatalf("sign access: %v", err)
	}

	parsed, err := issuer.ParseAccess(token)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if parsed.UserID != claims.UserID || parsed.SessionID != claims.SessionID {
		t.Fatalf("identity claims lost in round trip: %+v", parsed)
	}
	if parsed.NationalID != claims.NationalID || parsed.Role != claims.Role {
		t.Fatalf("profile claims lost in round trip: %+v", parsed)
	}
	if !parsed.ExpiresAt.Equal(claims.ExpiresAt) {
		t.Fatalf("expiry mismatch: got %v want %v", parsed.ExpiresAt, claims.ExpiresAt)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	t.Parallel()

	issuer, err := NewEphemeralJWTIssuer()
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	claims := ports.RefreshClaims{
		UserID:    uuid.New(),
		IssuedAt:  now,
		ExpiresAt: now.Add(7 * 24 * time.Hour),
	}
	token, err := issuer.SignRefresh(claims)
	if err != nil {
		t.Fatalf("sign refresh: %v", err)
	}
	parsed, err := issuer.ParseRefresh(token)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if parsed.UserID != claims.UserID {
		t.Fatalf("subject lost in round trip: %+v", parsed)
	}
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	t.Parallel()

	issuer, err := NewEphemeralJWTIssuer()
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}

	now := time.Now().UTC()
	refreshToken, err := issuer.SignRefresh(ports.RefreshClaims{
		UserID:    uuid.New(),
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("sign refresh: %v", err)
	}
	if _, err := issuer.ParseAccess(refreshToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("refresh token must not pass access parsing, got %v", err)
	}

	accessToken, err := issuer.SignAccess(ports.AccessClaims{
		UserID:    uuid.New(),
		SessionID: uuid.New(),
		Role:      domain.RoleCitizen,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("sign access: %v", err)
	}
	if _, err := issuer.ParseRefresh(accessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("access token must not pass refresh parsing, got %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	t.Parallel()

	issuer, err := NewEphemeralJWTIssuer()
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}

	now := time.Now().UTC()
	token, err := issuer.SignAccess(ports.AccessClaims{
		UserID:    uuid.New(),
		SessionID: uuid.New(),
		Role:      domain.RoleCitizen,
		IssuedAt:  now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("sign access: %v", err)
	}
	if _, err := issuer.ParseAccess(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected expired token rejection, got %v", err)
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	t.Parallel()

	issuer, err := NewEphemeralJWTIssuer()
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	if _, err := issuer.ParseAccess("not-a-jwt"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected garbage rejection, got %v", err)
	}

	// a token signed by a different keypair fails verification
	other, err := NewEphemeralJWTIssuer()
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	now := time.Now().UTC()
	foreign, err := other.SignAccess(ports.AccessClaims{
		UserID:    uuid.New(),
		SessionID: uuid.New(),
		Role:      domain.RoleCitizen,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("sign foreign: %v", err)
	}
	if _, err := issuer.ParseAccess(foreign); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected cross-key rejection, got %v", err)
	}
}

func TestUnknownRoleClaimRejected(t *testing.T) {
	t.Parallel()

	issuer, err := NewEphemeralJWTIssuer()
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}

	now := time.Now().UTC()
	token, err := issuer.SignAccess(ports.AccessClaims{
		UserID:    uuid.New(),
		SessionID: uuid.New(),
		Role:      domain.Role("root"),
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("sign access: %v", err)
	}
	if _, err := issuer.ParseAccess(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected unknown-role rejection, got %v", err)
	}
}

func TestTokenWithoutLifetimeClaimsRejected(t *testing.T) {
	t.Parallel()

	issuer, err := NewEphemeralJWTIssuer()
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	now := time.Now().UTC()
	subject := uuid.New().String()

	cases := []struct {
		name       string
		registered jwt.RegisteredClaims
	}{
		{name: "no exp", registered: jwt.RegisteredClaims{
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(now),
		}},
		{name: "no iat", registered: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}},
		{name: "neither", registered: jwt.RegisteredClaims{
			Subject: subject,
		}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			accessRaw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, accessJWTClaims{
				Role:             string(domain.RoleCitizen),
				SessionID:        uuid.New().String(),
				TokenType:        tokenTypeAccess,
				RegisteredClaims: tc.registered,
			}).SignedString(issuer.accessPriv)
			if err != nil {
				t.Fatalf("sign access: %v", err)
			}
			if _, err := issuer.ParseAccess(accessRaw); !errors.Is(err, domain.ErrInvalidToken) {
				t.Fatalf("access without lifetime claims must fail, got %v", err)
			}

			refreshRaw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, refreshJWTClaims{
				TokenType:        tokenTypeRefresh,
				RegisteredClaims: tc.registered,
			}).SignedString(issuer.refreshPriv)
			if err != nil {
				t.Fatalf("sign refresh: %v", err)
			}
			if _, err := issuer.ParseRefresh(refreshRaw); !errors.Is(err, domain.ErrInvalidToken) {
				t.Fatalf("refresh without lifetime claims must fail, got %v", err)
			}
		})
	}
}
