package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/civicid/sso-service/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "invalid credentials", err: domain.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized, wantCode: "INVALID_CREDENTIALS"},
		{name: "account locked", err: domain.ErrAccountLocked, wantStatus: http.StatusLocked, wantCode: "ACCOUNT_LOCKED"},
		{name: "account inactive", err: domain.ErrAccountInactive, wantStatus: http.StatusUnauthorized, wantCode: "ACCOUNT_INACTIVE"},
		{name: "duplicate account", err: domain.ErrDuplicateAccount, wantStatus: http.StatusConflict, wantCode: "DUPLICATE_ACCOUNT"},
		{name: "weak password", err: domain.ErrWeakPassword, wantStatus: http.StatusBadRequest, wantCode: "WEAK_PASSWORD"},
		{name: "session expired", err: domain.ErrSessionExpired, wantStatus: http.StatusUnauthorized, wantCode: "SESSION_EXPIRED"},
		{name: "storage unavailable", err: domain.ErrStorageUnavailable, wantStatus: http.StatusServiceUnavailable, wantCode: "STORAGE_UNAVAILABLE"},
		{name: "unknown", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			status, code, _ := mapDomainError(tc.err)
			if status != tc.wantStatus || code != tc.wantCode {
				t.Fatalf("got (%d, %s), want (%d, %s)", status, code, tc.wantStatus, tc.wantCode)
			}
		})
	}
}

func TestBearerTokenFromHeader(t *testing.T) {
	t.Parallel()

	if _, err := bearerTokenFromHeader(""); err == nil {
		t.Fatalf("expected error for empty header")
	}
	if _, err := bearerTokenFromHeader("Basic abc"); err == nil {
		t.Fatalf("expected error for non-bearer scheme")
	}
	if _, err := bearerTokenFromHeader("Bearer "); err == nil {
		t.Fatalf("expected error for empty token")
	}
	token, err := bearerTokenFromHeader("Bearer abc.def.ghi")
	if err != nil || token != "abc.def.ghi" {
		t.Fatalf("got (%q, %v)", token, err)
	}
}

func TestReadIPPrefersForwardedFor(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:48213"
	if ip := readIP(r); ip != "10.0.0.1" {
		t.Fatalf("expected remote addr host, got %s", ip)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if ip := readIP(r); ip != "203.0.113.7" {
		t.Fatalf("expected first forwarded hop, got %s", ip)
	}
}

func TestDecodeBodyRejectsTrailingData(t *testing.T) {
	t.Parallel()

	var dst struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}{"name":"b"}`))
	if err := decodeBody(r, &dst); err == nil {
		t.Fatalf("expected error for multiple JSON values")
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","extra":1}`))
	if err := decodeBody(r, &dst); err == nil {
		t.Fatalf("expected error for unknown fields")
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}`))
	if err := decodeBody(r, &dst); err != nil {
		t.Fatalf("expected clean decode, got %v", err)
	}
	if dst.Name != "a" {
		t.Fatalf("decoded wrong value %q", dst.Name)
	}
}
