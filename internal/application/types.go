package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/civicid/sso-service/internal/domain"
)

// ClientMeta is the request-scoped network context recorded with audit
// entries and sessions.
type ClientMeta struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
}

type RegisterRequest struct {
	NationalID string `json:"national_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`

	Client ClientMeta `json:"-"`
}

type LoginRequest struct {
	NationalID string `json:"national_id"`
	Password   string `json:"password"`

	Client ClientMeta `json:"-"`
}

// UserView is the user record with the password hash stripped.
type UserView struct {
	UserID      uuid.UUID     `json:"user_id"`
	NationalID  string        `json:"national_id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Role        domain.Role   `json:"role"`
	Status      domain.Status `json:"status"`
	LastLoginAt *time.Time    `json:"last_login_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type LoginResult struct {
	User      UserView  `json:"user"`
	Tokens    TokenPair `json:"tokens"`
	SessionID uuid.UUID `json:"session_id"`
}

type RefreshResult struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type SessionItem struct {
	SessionID      uuid.UUID  `json:"session_id"`
	IPAddress      string     `json:"ip_address"`
	UserAgent      string     `json:"user_agent"`
	CreatedAt      time.Time  `json:"created_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	ExpiresAt      time.Time  `json:"expires_at"`
	IsActive       bool       `json:"is_active"`
	LoggedOutAt    *time.Time `json:"logged_out_at,omitempty"`
	IsCurrent      bool       `json:"is_current"`
}

// SessionListQuery pages and filters a user's session history.
type SessionListQuery struct {
	Page   int
	Limit  int
	SortBy string // created_at | last_activity_at
	Active *bool
}

// AuditListQuery pages and filters the audit trail.
type AuditListQuery struct {
	UserID *uuid.UUID
	Action domain.AuditAction
	From   *time.Time
	To     *time.Time
	Page   int
	Limit  int
}

type AuditEntryView struct {
	AuditID   uuid.UUID          `json:"audit_id"`
	UserID    *uuid.UUID         `json:"user_id,omitempty"`
	Action    domain.AuditAction `json:"action"`
	Details   map[string]any     `json:"details,omitempty"`
	IPAddress string             `json:"ip_address,omitempty"`
	UserAgent string             `json:"user_agent,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

type AuditPage struct {
	Entries []AuditEntryView `json:"entries"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
}

// ExportFormat selects the audit export rendering.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

func toUserView(u domain.User) UserView {
	return UserView{
		UserID:      u.UserID,
		NationalID:  u.NationalID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Status:      u.Status,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func toSessionItem(s domain.Session, currentSessionID uuid.UUID) SessionItem {
	return SessionItem{
		SessionID:      s.SessionID,
		IPAddress:      s.IPAddress,
		UserAgent:      s.UserAgent,
		CreatedAt:      s.CreatedAt,
		LastActivityAt: s.LastActivityAt,
		ExpiresAt:      s.ExpiresAt,
		IsActive:       s.IsActive,
		LoggedOutAt:    s.LoggedOutAt,
		IsCurrent:      s.SessionID == currentSessionID,
	}
}

func toAuditEntryView(e domain.AuditEntry) AuditEntryView {
	return AuditEntryView{
		AuditID:   e.AuditID,
		UserID:    e.UserID,
		Action:    e.Action,
		Details:   e.Details,
		IPAddress: e.IPAddress,
		UserAgent: e.UserAgent,
		CreatedAt: e.CreatedAt,
	}
}
