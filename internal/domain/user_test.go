package domain

import (
	"testing"
	"time"
)

func TestUserLockActive(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	cases := []struct {
		name string
		user User
		want bool
	}{
		{
			name: "no lock",
			user: User{Status: StatusActive},
			want: false,
		},
		{
			name: "timed lock in force",
			user: User{Status: StatusLocked, LockedUntil: &future, LockReason: LockReasonFailedAttempts},
			want: true,
		},
		{
			name: "timed lock lapsed",
			user: User{Status: StatusLocked, LockedUntil: &past, LockReason: LockReasonFailedAttempts},
			want: false,
		},
		{
			name: "administrative lock ignores lapse",
			user: User{Status: StatusLocked, LockedUntil: &past, LockReason: LockReasonAdministrative},
			want: true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.user.LockActive(now); got != tc.want {
				t.Fatalf("LockActive = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSessionAuthoritative(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	live := Session{IsActive: true, ExpiresAt: now.Add(time.Hour)}
	if !live.Authoritative(now) {
		t.Fatalf("active unexpired session should be authoritative")
	}

	expired := Session{IsActive: true, ExpiresAt: now.Add(-time.Second)}
	if expired.Authoritative(now) {
		t.Fatalf("expired session should not be authoritative")
	}

	terminated := Session{IsActive: false, ExpiresAt: now.Add(time.Hour)}
	if terminated.Authoritative(now) {
		t.Fatalf("terminated session should not be authoritative")
	}
}
