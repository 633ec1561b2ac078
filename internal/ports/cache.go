package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionRevocationStore keeps revocation markers with token-aligned
// TTL. Markers are write-only positives: the store can say "revoked"
// early but can never report a terminated session as still active, so
// it cannot serve stale lock or activity state.
type SessionRevocationStore interface {
	MarkRevoked(ctx context.Context, sessionID uuid.UUID, expiresAt time.Time) error
	IsRevoked(ctx context.Context, sessionID uuid.UUID) (bool, error)
}
