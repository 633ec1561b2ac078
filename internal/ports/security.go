package ports

import (
	"time"

	"github.com/google/uuid"

	"github.com/civicid/sso-service/internal/domain"
)

// PasswordHasher computes and verifies salted adaptive hashes. There is
// no reverse operation.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// AccessClaims is the payload of a short-lived bearer token.
type AccessClaims struct {
	UserID     uuid.UUID
	NationalID string
	Name       string
	Email      string
	Role       domain.Role
	SessionID  uuid.UUID
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// RefreshClaims carries only the subject; refresh tokens exist solely
// to mint new access tokens.
type RefreshClaims struct {
	UserID    uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer mints and verifies the two independently keyed token
// kinds. Verification fails closed: signature mismatch, wrong token
// type, or lifetime expiry are hard rejections.
type TokenIssuer interface {
	SignAccess(claims AccessClaims) (string, error)
	SignRefresh(claims RefreshClaims) (string, error)
	ParseAccess(token string) (AccessClaims, error)
	ParseRefresh(token string) (RefreshClaims, error)
}
