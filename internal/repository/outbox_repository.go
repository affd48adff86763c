package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-engine/internal/model"
)

type OutboxRepository interface {
	// Добавить событие (в транзакции изменения брони).
	Add(ctx context.Context, e *model.OutboxEvent) error
	// Необработанные события: сначала без неудач, затем по времени создания.
	ListPending(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	// Отметить событие обработанным.
	MarkProcessed(ctx context.Context, id uuid.UUID, at time.Time) error
	// Записать неудачу. При attempts >= maxAttempts событие закрывается;
	// возвращает true, если это произошло.
	RecordFailure(ctx context.Context, id uuid.UUID, reason string, maxAttempts int, at time.Time) (bool, error)
	// Удалить обработанные события старше cutoff. Снятые после лимита
	// попыток остаются для разбора.
	DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Реализация на GORM.
type GormOutboxRepository struct {
	db *gorm.DB
}

func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

func (r *GormOutboxRepository) Add(ctx context.Context, e *model.OutboxEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *GormOutboxRepository) ListPending(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	var out []model.OutboxEvent
	q := r.db.WithContext(ctx).
		Where("processed = ?", false).
		Order("attempts").
		Order("created_at")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

func (r *GormOutboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"processed":    true,
			"processed_at": at,
			"last_error":   "",
		}).
		Error
}

func (r *GormOutboxRepository) RecordFailure(ctx context.Context, id uuid.UUID, reason string, maxAttempts int, at time.Time) (bool, error) {
	var dead bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.OutboxEvent{}).
			Where("id = ? AND processed = ?", id, false).
			Updates(map[string]any{
				"attempts":   gorm.Expr("attempts + 1"),
				"last_error": truncateReason(reason),
			})
		if res.Error != nil || res.RowsAffected == 0 {
			return res.Error
		}
		if maxAttempts <= 0 {
			return nil
		}
		res = tx.Model(&model.OutboxEvent{}).
			Where("id = ? AND attempts >= ?", id, maxAttempts).
			Updates(map[string]any{
				"processed":    true,
				"processed_at": at,
			})
		dead = res.RowsAffected > 0
		return res.Error
	})
	return dead, err
}

func (r *GormOutboxRepository) DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("processed = ? AND processed_at < ? AND (last_error = '' OR last_error IS NULL)", true, cutoff).
		Delete(&model.OutboxEvent{})
	return res.RowsAffected, res.Error
}

const maxReasonLen = 1000

func truncateReason(s string) string {
	if len(s) > maxReasonLen {
		return s[:maxReasonLen]
	}
	return s
}
