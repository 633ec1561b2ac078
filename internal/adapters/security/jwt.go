package security

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/civicid/sso-service/internal/domain"
	"github.com/civicid/sso-service/internal/ports"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// JWTIssuer implements RS256 signing and verification for the two
// token kinds. Access and refresh tokens use independent keypairs, so
// a refresh token can never be replayed on an access endpoint even if
// the type claim were stripped.
type JWTIssuer struct {
	accessKID   string
	refreshKID  string
	accessPriv  *rsa.PrivateKey
	accessPub   *rsa.PublicKey
	refreshPriv *rsa.PrivateKey
	refreshPub  *rsa.PublicKey
}

// NewJWTIssuer builds an issuer from configured PEM keypairs.
func NewJWTIssuer(accessKID, accessPrivPEM string, refreshKID, refreshPrivPEM string) (*JWTIssuer, error) {
	if accessKID == "" || refreshKID == "" {
		return nil, errors.New("jwt key ids are required")
	}
	accessPriv, err := parseRSAPrivate(accessPrivPEM)
	if err != nil {
		return nil, fmt.Errorf("parse access key: %w", err)
	}
	refreshPriv, err := parseRSAPrivate(refreshPrivPEM)
	if err != nil {
		return nil, fmt.Errorf("parse refresh key: %w", err)
	}
	return &JWTIssuer{
		accessKID:   accessKID,
		refreshKID:  refreshKID,
		accessPriv:  accessPriv,
		accessPub:   &accessPriv.PublicKey,
		refreshPriv: refreshPriv,
		refreshPub:  &refreshPriv.PublicKey,
	}, nil
}

// NewEphemeralJWTIssuer creates in-memory keypairs for local/dev use.
// This exists to unblock runtime startup when static keys are
// intentionally absent; restarts invalidate all outstanding tokens.
func NewEphemeralJWTIssuer() (*JWTIssuer, error) {
	accessPriv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	refreshPriv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	return &JWTIssuer{
		accessKID:   "ephemeral-access-1",
		refreshKID:  "ephemeral-refresh-1",
		accessPriv:  accessPriv,
		accessPub:   &accessPriv.PublicKey,
		refreshPriv: refreshPriv,
		refreshPub:  &refreshPriv.PublicKey,
	}, nil
}

type accessJWTClaims struct {
	NationalID string `json:"national_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	SessionID  string `json:"session_id"`
	TokenType  string `json:"type"`
	jwt.RegisteredClaims
}

type refreshJWTClaims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

func (s *JWTIssuer) SignAccess(claims ports.AccessClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, accessJWTClaims{
		NationalID: claims.NationalID,
		Name:       claims.Name,
		Email:      claims.Email,
		Role:       string(claims.Role),
		SessionID:  claims.SessionID.String(),
		TokenType:  tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	})
	token.Header["kid"] = s.accessKID
	return token.SignedString(s.accessPriv)
}

func (s *JWTIssuer) SignRefresh(claims ports.RefreshClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, refreshJWTClaims{
		TokenType: tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	})
	token.Header["kid"] = s.refreshKID
	return token.SignedString(s.refreshPriv)
}

func (s *JWTIssuer) ParseAccess(raw string) (ports.AccessClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &accessJWTClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return s.accessPub, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithExpirationRequired(), jwt.WithLeeway(30*time.Second))
	if err != nil {
		return ports.AccessClaims{}, fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*accessJWTClaims)
	if !ok || !parsed.Valid || claims.TokenType != tokenTypeAccess {
		return ports.AccessClaims{}, domain.ErrInvalidToken
	}
	// exp is enforced above; iat is only rejected, never defaulted.
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return ports.AccessClaims{}, domain.ErrInvalidToken
	}
	if !domain.ValidRole(domain.Role(claims.Role)) {
		return ports.AccessClaims{}, domain.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ports.AccessClaims{}, domain.ErrInvalidToken
	}
	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return ports.AccessClaims{}, domain.ErrInvalidToken
	}

	return ports.AccessClaims{
		UserID:     userID,
		NationalID: claims.NationalID,
		Name:       claims.Name,
		Email:      claims.Email,
		Role:       domain.Role(claims.Role),
		SessionID:  sessionID,
		IssuedAt:   claims.IssuedAt.Time.UTC(),
		ExpiresAt:  claims.ExpiresAt.Time.UTC(),
	}, nil
}

func (s *JWTIssuer) ParseRefresh(raw string) (ports.RefreshClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &refreshJWTClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return s.refreshPub, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithExpirationRequired(), jwt.WithLeeway(30*time.Second))
	if err != nil {
		return ports.RefreshClaims{}, fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*refreshJWTClaims)
	if !ok || !parsed.Valid || claims.TokenType != tokenTypeRefresh {
		return ports.RefreshClaims{}, domain.ErrInvalidToken
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return ports.RefreshClaims{}, domain.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ports.RefreshClaims{}, domain.ErrInvalidToken
	}
	return ports.RefreshClaims{
		UserID:    userID,
		IssuedAt:  claims.IssuedAt.Time.UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}

func parseRSAPrivate(raw string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(raw))
	if block == nil {
		return nil, errors.New("invalid private PEM")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	keyAny, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := keyAny.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not RSA")
	}
	return key, nil
}
