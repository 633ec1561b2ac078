package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role classifies what a principal is allowed to do.
type Role string

const (
	RoleCitizen    Role = "citizen"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// ValidRole reports whether r is a role this service issues.
func ValidRole(r Role) bool {
	switch r {
	case RoleCitizen, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Status is the account lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
	StatusLocked    Status = "locked"
)

// LockReason distinguishes a self-inflicted lockout from an
// administrative lock; the two have different expiry semantics.
type LockReason string

const (
	LockReasonFailedAttempts LockReason = "failed_attempts"
	LockReasonAdministrative LockReason = "administrative"
)

// User is the canonical credential record keyed by national identity
// number. Accounts are never deleted, only moved to StatusInactive.
type User struct {
	UserID         uuid.UUID
	NationalID     string
	Name           string
	Email          string
	PasswordHash   string
	Role           Role
	Status         Status
	FailedAttempts int
	LockedUntil    *time.Time
	LockReason     LockReason
	LastLoginAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// LockActive reports whether the account is locked out at the given
// instant. A lapsed failed-attempts lock is treated as
// active-pending-reset; an administrative lock holds until an explicit
// unlock regardless of LockedUntil having passed.
func (u User) LockActive(now time.Time) bool {
	if u.LockedUntil != nil && u.LockedUntil.After(now) {
		return true
	}
	if u.Status == StatusLocked && u.LockReason == LockReasonAdministrative {
		return true
	}
	return false
}

// Session binds an issued bearer token to a user for a bounded,
// revocable period. Rows are flipped inactive, never deleted, so the
// session table doubles as login-device history.
type Session struct {
	SessionID      uuid.UUID
	UserID         uuid.UUID
	TokenHash      string
	IPAddress      string
	UserAgent      string
	CreatedAt      time.Time
	ExpiresAt      time.Time
	LastActivityAt time.Time
	IsActive       bool
	LoggedOutAt    *time.Time
}

// Authoritative reports whether the session may authenticate a request
// at the given instant.
func (s Session) Authoritative(now time.Time) bool {
	return s.IsActive && now.Before(s.ExpiresAt)
}

// Principal is the resolved identity attached to an authenticated
// request.
type Principal struct {
	UserID    uuid.UUID
	Role      Role
	SessionID uuid.UUID
}
