package postgres

import (
	"time"

	"github.com/google/uuid"
)

type userModel struct {
	UserID         uuid.UUID  `gorm:"column:user_id;type:uuid;default:gen_random_uuid();primaryKey"`
	NationalID     string     `gorm:"column:national_id"`
	Name           string     `gorm:"column:name"`
	Email          string     `gorm:"column:email"`
	PasswordHash   string     `gorm:"column:password_hash"`
	Role           string     `gorm:"column:role"`
	Status         string     `gorm:"column:status"`
	FailedAttempts int        `gorm:"column:failed_attempts"`
	LockedUntil    *time.Time `gorm:"column:locked_until"`
	LockReason     *string    `gorm:"column:lock_reason"`
	LastLoginAt    *time.Time `gorm:"column:last_login_at"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

type sessionModel struct {
	SessionID      uuid.UUID  `gorm:"column:session_id;type:uuid;primaryKey"`
	UserID         uuid.UUID  `gorm:"column:user_id"`
	TokenHash      string     `gorm:"column:token_hash"`
	IPAddress      *string    `gorm:"column:ip_address"`
	UserAgent      string     `gorm:"column:user_agent"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	ExpiresAt      time.Time  `gorm:"column:expires_at"`
	LastActivityAt time.Time  `gorm:"column:last_activity_at"`
	IsActive       bool       `gorm:"column:is_active"`
	LoggedOutAt    *time.Time `gorm:"column:logged_out_at"`
}

func (sessionModel) TableName() string { return "sessions" }

type auditEntryModel struct {
	AuditID   uuid.UUID  `gorm:"column:audit_id;type:uuid;primaryKey"`
	UserID    *uuid.UUID `gorm:"column:user_id"`
	Action    string     `gorm:"column:action"`
	Details   *string    `gorm:"column:details;type:jsonb"`
	IPAddress *string    `gorm:"column:ip_address"`
	UserAgent string     `gorm:"column:user_agent"`
	CreatedAt time.Time  `gorm:"column:created_at"`
}

func (auditEntryModel) TableName() string { return "audit_log" }

type passwordResetTokenModel struct {
	TokenID   uuid.UUID  `gorm:"column:token_id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id"`
	TokenHash string     `gorm:"column:token_hash"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	ExpiresAt time.Time  `gorm:"column:expires_at"`
	UsedAt    *time.Time `gorm:"column:used_at"`
}

func (passwordResetTokenModel) TableName() string { return "password_reset_tokens" }
