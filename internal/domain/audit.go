package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction is the fixed vocabulary of security-relevant events.
type AuditAction string

const (
	AuditLoginSuccess           AuditAction = "LOGIN_SUCCESS"
	AuditLoginFailed            AuditAction = "LOGIN_FAILED"
	AuditAccountLocked          AuditAction = "ACCOUNT_LOCKED"
	AuditAccountUnlocked        AuditAction = "ACCOUNT_UNLOCKED"
	AuditUserRegistered         AuditAction = "USER_REGISTERED"
	AuditUserLoggedOut          AuditAction = "USER_LOGGED_OUT"
	AuditUserDeactivated        AuditAction = "USER_DEACTIVATED"
	AuditTokenRefreshed         AuditAction = "TOKEN_REFRESHED"
	AuditSessionTerminated      AuditAction = "SESSION_TERMINATED"
	AuditSessionsTerminated     AuditAction = "SESSIONS_TERMINATED"
	AuditSessionExtended        AuditAction = "SESSION_EXTENDED"
	AuditPasswordResetRequested AuditAction = "PASSWORD_RESET_REQUESTED"
	AuditPasswordReset          AuditAction = "PASSWORD_RESET"
)

// AuditEntry is a write-once record of a security event. UserID is nil
// when the event predates user resolution, e.g. a login attempt for an
// unknown identity number.
type AuditEntry struct {
	AuditID   uuid.UUID
	UserID    *uuid.UUID
	Action    AuditAction
	Details   map[string]any
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

// AuditStats is the rollup returned by the statistics query.
type AuditStats struct {
	Total       int64
	ByAction    map[string]int64
	ByDay       map[string]int64
	UniqueUsers int64
	UniqueIPs   int64
}
