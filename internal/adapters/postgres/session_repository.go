package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/civicid/sso-service/internal/domain"
	"github.com/civicid/sso-service/internal/ports"
)

type sessionRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func (r *sessionRepository) Create(ctx context.Context, params ports.SessionCreateParams) (domain.Session, error) {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	rec := sessionModel{
		SessionID:      params.SessionID,
		UserID:         params.UserID,
		TokenHash:      params.TokenHash,
		IPAddress:      nullableString(params.IPAddress),
		UserAgent:      params.UserAgent,
		CreatedAt:      params.LastActivityAt,
		ExpiresAt:      params.ExpiresAt,
		LastActivityAt: params.LastActivityAt,
		IsActive:       true,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return domain.Session{}, mapStorageErr(err)
	}
	return toDomainSession(rec), nil
}

func (r *sessionRepository) GetByID(ctx context.Context, sessionID uuid.UUID) (domain.Session, error) {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	var rec sessionModel
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Take(&rec).Error; err != nil {
		return domain.Session{}, mapStorageErr(err)
	}
	return toDomainSession(rec), nil
}

func (r *sessionRepository) ListByUser(ctx context.Context, userID uuid.UUID, q ports.SessionQuery) ([]domain.Session, error) {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	sortColumn := "created_at"
	if q.SortBy == "last_activity_at" {
		sortColumn = "last_activity_at"
	}
	tx := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(sortColumn + " DESC")
	if q.ActiveOnly != nil {
		tx = tx.Where("is_active = ?", *q.ActiveOnly)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}

	var rows []sessionModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, mapStorageErr(err)
	}
	out := make([]domain.Session, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainSession(row))
	}
	return out, nil
}

func (r *sessionRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]domain.Session, error) {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	var rows []sessionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = TRUE AND expires_at > ?", userID, now).
		Order("last_activity_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, mapStorageErr(err)
	}
	out := make([]domain.Session, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainSession(row))
	}
	return out, nil
}

func (r *sessionRepository) TouchActivity(ctx context.Context, sessionID uuid.UUID, touchedAt time.Time) error {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	err := r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("session_id = ? AND is_active = TRUE", sessionID).
		Update("last_activity_at", touchedAt).Error
	return mapStorageErr(err)
}

func (r *sessionRepository) RotateToken(ctx context.Context, sessionID uuid.UUID, tokenHash string, at time.Time) error {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("session_id = ? AND is_active = TRUE", sessionID).
		Updates(map[string]any{
			"token_hash":       tokenHash,
			"last_activity_at": at,
		})
	if res.Error != nil {
		return mapStorageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *sessionRepository) Terminate(ctx context.Context, sessionID uuid.UUID, at time.Time) error {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	// Conditional on is_active so a repeat terminate changes nothing.
	err := r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("session_id = ? AND is_active = TRUE", sessionID).
		Updates(map[string]any{
			"is_active":     false,
			"logged_out_at": at,
		}).Error
	return mapStorageErr(err)
}

func (r *sessionRepository) TerminateAllByUser(ctx context.Context, userID uuid.UUID, at time.Time, exclude *uuid.UUID) (int64, error) {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	tx := r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("user_id = ? AND is_active = TRUE", userID)
	if exclude != nil {
		tx = tx.Where("session_id <> ?", *exclude)
	}
	res := tx.Updates(map[string]any{
		"is_active":     false,
		"logged_out_at": at,
	})
	if res.Error != nil {
		return 0, mapStorageErr(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *sessionRepository) Extend(ctx context.Context, sessionID uuid.UUID, newExpiry time.Time) error {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("session_id = ? AND is_active = TRUE", sessionID).
		Update("expires_at", newExpiry)
	if res.Error != nil {
		return mapStorageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *sessionRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("is_active = TRUE AND expires_at <= ?", now).
		Updates(map[string]any{
			"is_active":     false,
			"logged_out_at": now,
		})
	if res.Error != nil {
		return 0, mapStorageErr(res.Error)
	}
	return res.RowsAffected, nil
}
