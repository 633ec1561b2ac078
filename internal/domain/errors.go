package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404/NOT_FOUND.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidCredentials hides whether the identity number or the password failed.
	// The reason is to prevent account-enumeration side channels.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked signals lockout after repeated failed attempts or an
	// administrative lock. It is intentionally distinguishable from
	// ErrInvalidCredentials so callers can surface a 423.
	ErrAccountLocked = errors.New("account locked")
	// ErrAccountInactive covers deactivated and suspended accounts.
	ErrAccountInactive = errors.New("account inactive")
	// ErrDuplicateAccount is safe to reveal; registration conflicts are not a secret.
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrInvalidToken       = errors.New("invalid token")
	ErrSessionExpired     = errors.New("session expired")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidInput       = errors.New("invalid input")
	// ErrStorageUnavailable marks transient storage failures, surfaced as 503
	// so callers can retry with backoff instead of treating them as auth failures.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
