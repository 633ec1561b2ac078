package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/civicid/sso-service/internal/domain"
)

type recoveryRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func (r *recoveryRepository) CreateResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, createdAt, expiresAt time.Time) error {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	rec := passwordResetTokenModel{
		UserID:    userID,
		TokenHash: tokenHash,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}
	return mapStorageErr(r.db.WithContext(ctx).Create(&rec).Error)
}

// ConsumeResetToken marks the token used in a single conditional
// update, so a token replayed concurrently redeems at most once.
func (r *recoveryRepository) ConsumeResetToken(ctx context.Context, tokenHash string, usedAt time.Time) (uuid.UUID, error) {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	var rec passwordResetTokenModel
	err := r.db.WithContext(ctx).
		Where("token_hash = ? AND used_at IS NULL AND expires_at > ?", tokenHash, usedAt).
		Take(&rec).Error
	if err != nil {
		return uuid.Nil, mapStorageErr(err)
	}

	res := r.db.WithContext(ctx).
		Model(&passwordResetTokenModel{}).
		Where("token_id = ? AND used_at IS NULL", rec.TokenID).
		Update("used_at", usedAt)
	if res.Error != nil {
		return uuid.Nil, mapStorageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return uuid.Nil, domain.ErrNotFound
	}
	return rec.UserID, nil
}
