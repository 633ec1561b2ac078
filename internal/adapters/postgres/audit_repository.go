package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/civicid/sso-service/internal/domain"
	"github.com/civicid/sso-service/internal/ports"
)

type auditRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func (r *auditRepository) Insert(ctx context.Context, entry domain.AuditEntry) error {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	rec := auditEntryModel{
		AuditID:   entry.AuditID,
		UserID:    entry.UserID,
		Action:    string(entry.Action),
		IPAddress: nullableString(entry.IPAddress),
		UserAgent: entry.UserAgent,
		CreatedAt: entry.CreatedAt,
	}
	if rec.AuditID == uuid.Nil {
		rec.AuditID = uuid.New()
	}
	if len(entry.Details) > 0 {
		raw, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
		s := string(raw)
		rec.Details = &s
	}
	return mapStorageErr(r.db.WithContext(ctx).Create(&rec).Error)
}

func auditFilter(tx *gorm.DB, q ports.AuditQuery) *gorm.DB {
	if q.UserID != nil {
		tx = tx.Where("user_id = ?", *q.UserID)
	}
	if q.Action != "" {
		tx = tx.Where("action = ?", string(q.Action))
	}
	if q.From != nil {
		tx = tx.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		tx = tx.Where("created_at <= ?", *q.To)
	}
	return tx
}

func (r *auditRepository) List(ctx context.Context, q ports.AuditQuery) ([]domain.AuditEntry, error) {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	tx := auditFilter(r.db.WithContext(ctx).Model(&auditEntryModel{}), q).
		Order("created_at DESC")
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}

	var rows []auditEntryModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, mapStorageErr(err)
	}
	out := make([]domain.AuditEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainAuditEntry(row))
	}
	return out, nil
}

func (r *auditRepository) Count(ctx context.Context, q ports.AuditQuery) (int64, error) {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	var total int64
	err := auditFilter(r.db.WithContext(ctx).Model(&auditEntryModel{}), q).Count(&total).Error
	if err != nil {
		return 0, mapStorageErr(err)
	}
	return total, nil
}

func (r *auditRepository) Stats(ctx context.Context, from, to *time.Time) (domain.AuditStats, error) {
	ctx, cancel := boundCtx(ctx, r.timeout)
	defer cancel()

	base := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&auditEntryModel{})
		if from != nil {
			tx = tx.Where("created_at >= ?", *from)
		}
		if to != nil {
			tx = tx.Where("created_at <= ?", *to)
		}
		return tx
	}

	stats := domain.AuditStats{
		ByAction: map[string]int64{},
		ByDay:    map[string]int64{},
	}

	if err := base().Count(&stats.Total).Error; err != nil {
		return domain.AuditStats{}, mapStorageErr(err)
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var byAction []bucket
	err := base().
		Select("action AS key, COUNT(*) AS count").
		Group("action").
		Scan(&byAction).Error
	if err != nil {
		return domain.AuditStats{}, mapStorageErr(err)
	}
	for _, b := range byAction {
		stats.ByAction[b.Key] = b.Count
	}

	var byDay []bucket
	err = base().
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') AS key, COUNT(*) AS count").
		Group("key").
		Scan(&byDay).Error
	if err != nil {
		return domain.AuditStats{}, mapStorageErr(err)
	}
	for _, b := range byDay {
		stats.ByDay[b.Key] = b.Count
	}

	err = base().
		Select("COUNT(DISTINCT user_id)").
		Where("user_id IS NOT NULL").
		Scan(&stats.UniqueUsers).Error
	if err != nil {
		return domain.AuditStats{}, mapStorageErr(err)
	}

	err = base().
		Select("COUNT(DISTINCT ip_address)").
		Where("ip_address IS NOT NULL").
		Scan(&stats.UniqueIPs).Error
	if err != nil {
		return domain.AuditStats{}, mapStorageErr(err)
	}

	return stats, nil
}
