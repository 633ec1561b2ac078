package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/civicid/sso-service/internal/domain"
)

// CreateUserParams captures the immutable registration inputs.
type CreateUserParams struct {
	NationalID   string
	Name         string
	Email        string
	PasswordHash string
	Role         domain.Role
	RegisteredAt time.Time
}

// UserRepository defines persistence operations for credential records.
// RecordLoginFailure must be a single conditional update so concurrent
// failed logins serialize through the row and cannot lose increments.
type UserRepository interface {
	Create(ctx context.Context, params CreateUserParams) (domain.User, error)
	GetByNationalID(ctx context.Context, nationalID string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (domain.User, error)
	// RecordLoginFailure atomically increments the failed-attempt counter
	// and, when the threshold is reached, sets status=locked with
	// locked_until=now+lockFor in the same statement. It returns the
	// post-update row.
	RecordLoginFailure(ctx context.Context, userID uuid.UUID, now time.Time, threshold int, lockFor time.Duration) (domain.User, error)
	// ResetLoginState clears the failure counter and any lapsed lockout
	// and stamps last_login_at after a successful authentication.
	ResetLoginState(ctx context.Context, userID uuid.UUID, loginAt time.Time) error
	Lock(ctx context.Context, userID uuid.UUID, until time.Time, reason domain.LockReason, at time.Time) error
	Unlock(ctx context.Context, userID uuid.UUID, at time.Time) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, at time.Time) error
	Deactivate(ctx context.Context, userID uuid.UUID, at time.Time) error
}

// SessionCreateParams captures metadata required to create a session
// row. SessionID is generated by the caller so the bearer token minted
// alongside the session can embed it.
type SessionCreateParams struct {
	SessionID      uuid.UUID
	UserID         uuid.UUID
	TokenHash      string
	IPAddress      string
	UserAgent      string
	ExpiresAt      time.Time
	LastActivityAt time.Time
}

// SessionQuery narrows and pages session listings.
type SessionQuery struct {
	Limit      int
	Offset     int
	SortBy     string // "created_at" or "last_activity_at"
	ActiveOnly *bool
}

// SessionRepository manages the persistent session lifecycle. Rows are
// flipped inactive rather than deleted so session history survives for
// audit correlation.
type SessionRepository interface {
	Create(ctx context.Context, params SessionCreateParams) (domain.Session, error)
	GetByID(ctx context.Context, sessionID uuid.UUID) (domain.Session, error)
	ListByUser(ctx context.Context, userID uuid.UUID, q SessionQuery) ([]domain.Session, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]domain.Session, error)
	TouchActivity(ctx context.Context, sessionID uuid.UUID, touchedAt time.Time) error
	// RotateToken rebinds the session to a freshly minted bearer token.
	RotateToken(ctx context.Context, sessionID uuid.UUID, tokenHash string, at time.Time) error
	// Terminate is idempotent: terminating an already-inactive session is
	// a no-op success.
	Terminate(ctx context.Context, sessionID uuid.UUID, at time.Time) error
	// TerminateAllByUser flips every active session for the user except
	// the optional excluded one and returns the number of rows changed.
	TerminateAllByUser(ctx context.Context, userID uuid.UUID, at time.Time, exclude *uuid.UUID) (int64, error)
	Extend(ctx context.Context, sessionID uuid.UUID, newExpiry time.Time) error
	// SweepExpired flips expired-but-still-active sessions to inactive.
	// It must be safe to run concurrently and repeatedly.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

// AuditQuery narrows and pages audit listings and exports.
type AuditQuery struct {
	UserID *uuid.UUID
	Action domain.AuditAction
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// AuditRepository is the append-only security event store. Entries are
// never mutated or deleted.
type AuditRepository interface {
	Insert(ctx context.Context, entry domain.AuditEntry) error
	List(ctx context.Context, q AuditQuery) ([]domain.AuditEntry, error)
	Count(ctx context.Context, q AuditQuery) (int64, error)
	Stats(ctx context.Context, from, to *time.Time) (domain.AuditStats, error)
}

// RecoveryRepository owns one-time password-reset tokens. Tokens are
// stored hashed; consuming twice fails.
type RecoveryRepository interface {
	CreateResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, createdAt, expiresAt time.Time) error
	ConsumeResetToken(ctx context.Context, tokenHash string, usedAt time.Time) (uuid.UUID, error)
}
