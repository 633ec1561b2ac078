package application

import (
	"time"

	"github.com/civicid/sso-service/internal/domain"
	"github.com/civicid/sso-service/internal/ports"
)

// Service orchestrates authentication, session lifecycle, and audit
// queries. It holds no mutable state of its own; all coordination is
// delegated to the stores so concurrent requests serialize there.
type Service struct {
	cfg         Config
	users       ports.UserRepository
	sessions    ports.SessionRepository
	audits      ports.AuditRepository
	recovery    ports.RecoveryRepository
	revocations ports.SessionRevocationStore
	hasher      ports.PasswordHasher
	tokens      ports.TokenIssuer
	policy      domain.PasswordPolicy
	nowFn       func() time.Time
}

// Config carries the tunable policy knobs of the engine.
type Config struct {
	AccessTokenTTL       time.Duration
	RefreshTokenTTL      time.Duration
	SessionTTL           time.Duration
	FailedLoginThreshold int
	LockoutDuration      time.Duration
	AdminLockDuration    time.Duration
	PasswordMinLength    int
	MaxSessionExtension  time.Duration
	ResetTokenTTL        time.Duration
}

// Dependencies is the full set of collaborators injected at bootstrap.
// No component is constructed at package scope.
type Dependencies struct {
	Config      Config
	Users       ports.UserRepository
	Sessions    ports.SessionRepository
	Audits      ports.AuditRepository
	Recovery    ports.RecoveryRepository
	Revocations ports.SessionRevocationStore
	Hasher      ports.PasswordHasher
	Tokens      ports.TokenIssuer
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = time.Hour
	}
	if cfg.RefreshTokenTTL <= 0 {
		cfg.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.FailedLoginThreshold <= 0 {
		cfg.FailedLoginThreshold = 5
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 30 * time.Minute
	}
	if cfg.AdminLockDuration <= 0 {
		cfg.AdminLockDuration = 24 * time.Hour
	}
	if cfg.MaxSessionExtension <= 0 {
		cfg.MaxSessionExtension = 7 * 24 * time.Hour
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = time.Hour
	}
	policy := domain.DefaultPasswordPolicy()
	if cfg.PasswordMinLength > 0 {
		policy.MinLength = cfg.PasswordMinLength
	}
	return &Service{
		cfg:         cfg,
		users:       deps.Users,
		sessions:    deps.Sessions,
		audits:      deps.Audits,
		recovery:    deps.Recovery,
		revocations: deps.Revocations,
		hasher:      deps.Hasher,
		tokens:      deps.Tokens,
		policy:      policy,
		nowFn:       func() time.Time { return time.Now().UTC() },
	}
}
