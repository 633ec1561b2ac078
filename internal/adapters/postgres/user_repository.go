package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/civicid/sso-service/internal/domain"
	"github.com/civicid/sso-service/internal/ports"
)

type userRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func (r *userRepository) Create(ctx context.Context, params ports.CreateUserParams) (domain.User, error) {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	rec := userModel{
		NationalID:   params.NationalID,
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Role:         string(params.Role),
		Status:       string(domain.StatusActive),
		CreatedAt:    params.RegisteredAt,
		UpdatedAt:    params.RegisteredAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrDuplicateAccount
		}
		return domain.User{}, mapStorageErr(err)
	}
	return toDomainUser(rec), nil
}

func (r *userRepository) GetByNationalID(ctx context.Context, nationalID string) (domain.User, error) {
	return r.getBy(ctx, "national_id = ?", nationalID)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getBy(ctx, "email = ?", email)
}

func (r *userRepository) GetByID(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	return r.getBy(ctx, "user_id = ?", userID)
}

func (r *userRepository) getBy(ctx context.Context, cond string, arg any) (domain.User, error) {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	var rec userModel
	if err := r.db.WithContext(ctx).Where(cond, arg).Take(&rec).Error; err != nil {
		return domain.User{}, mapStorageErr(err)
	}
	return toDomainUser(rec), nil
}

// RecordLoginFailure increments the counter and applies the lockout in
// one conditional UPDATE. Concurrent failures serialize on the row
// lock, so the threshold comparison always sees the true count and no
// increment is lost.
func (r *userRepository) RecordLoginFailure(ctx context.Context, userID uuid.UUID, now time.Time, threshold int, lockFor time.Duration) (domain.User, error) {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	lockedUntil := now.Add(lockFor)
	res := r.db.WithContext(ctx).Exec(`
		UPDATE users SET
			failed_attempts = failed_attempts + 1,
			status          = CASE WHEN failed_attempts + 1 >= ? THEN 'locked' ELSE status END,
			locked_until    = CASE WHEN failed_attempts + 1 >= ? THEN ?::timestamptz ELSE locked_until END,
			lock_reason     = CASE WHEN failed_attempts + 1 >= ? THEN 'failed_attempts' ELSE lock_reason END,
			updated_at      = ?
		WHERE user_id = ?`,
		threshold, threshold, lockedUntil, threshold, now, userID,
	)
	if res.Error != nil {
		return domain.User{}, mapStorageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.User{}, domain.ErrNotFound
	}
	return r.GetByID(ctx, userID)
}

func (r *userRepository) ResetLoginState(ctx context.Context, userID uuid.UUID, loginAt time.Time) error {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"failed_attempts": 0,
			"locked_until":    nil,
			"lock_reason":     nil,
			"status":          gorm.Expr("CASE WHEN status = 'locked' THEN 'active' ELSE status END"),
			"last_login_at":   loginAt,
			"updated_at":      loginAt,
		})
	if res.Error != nil {
		return mapStorageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepository) Lock(ctx context.Context, userID uuid.UUID, until time.Time, reason domain.LockReason, at time.Time) error {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"status":       string(domain.StatusLocked),
			"locked_until": until,
			"lock_reason":  string(reason),
			"updated_at":   at,
		})
	if res.Error != nil {
		return mapStorageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepository) Unlock(ctx context.Context, userID uuid.UUID, at time.Time) error {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"failed_attempts": 0,
			"locked_until":    nil,
			"lock_reason":     nil,
			"status":          gorm.Expr("CASE WHEN status = 'locked' THEN 'active' ELSE status END"),
			"updated_at":      at,
		})
	if res.Error != nil {
		return mapStorageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, at time.Time) error {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"password_hash": passwordHash,
			"updated_at":    at,
		})
	if res.Error != nil {
		return mapStorageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepository) Deactivate(ctx context.Context, userID uuid.UUID, at time.Time) error {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"status":     string(domain.StatusInactive),
			"updated_at": at,
		})
	if res.Error != nil {
		return mapStorageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
