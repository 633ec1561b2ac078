package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/civicid/sso-service/internal/ports"
)

// defaultQueryTimeout bounds every storage call so a stalled backend
// surfaces as StorageUnavailable instead of hanging the request.
const defaultQueryTimeout = 5 * time.Second

type Repositories struct {
	Users    ports.UserRepository
	Sessions ports.SessionRepository
	Audits   ports.AuditRepository
	Recovery ports.RecoveryRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return NewRepositoriesWithTimeout(db, defaultQueryTimeout)
}

func NewRepositoriesWithTimeout(db *gorm.DB, timeout time.Duration) Repositories {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return Repositories{
		Users:    &userRepository{db: db, timeout: timeout},
		Sessions: &sessionRepository{db: db, timeout: timeout},
		Audits:   &auditRepository{db: db, timeout: timeout},
		Recovery: &recoveryRepository{db: db, timeout: timeout},
	}
}

func boundCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
