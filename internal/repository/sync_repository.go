package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/booking-engine/internal/model"
)

type SyncJobRepository interface {
	// Поставить задачу; повтор по (booking_id, action) перезаписывает payload и сбрасывает попытки.
	Upsert(ctx context.Context, job *model.SyncJob) error
	// Захватить до limit задач: pending, failed с attempts < maxAttempts или
	// processing, не обновлявшиеся с staleBefore (воркер упал посреди задачи).
	Claim(ctx context.Context, limit, maxAttempts int, staleBefore time.Time) ([]model.SyncJob, error)
	// Завершить захваченную задачу. false — задачу успели перезапустить
	// (Upsert или повторный захват), результат отброшен.
	Finish(ctx context.Context, job model.SyncJob, status model.SyncStatus, lastError string, at time.Time) (bool, error)
	// Задача по ключу.
	Get(ctx context.Context, bookingID uuid.UUID, action model.SyncAction) (*model.SyncJob, error)
}

// Реализация на GORM.
type GormSyncJobRepository struct {
	db *gorm.DB
}

func NewGormSyncJobRepository(db *gorm.DB) *GormSyncJobRepository {
	return &GormSyncJobRepository{db: db}
}

func (r *GormSyncJobRepository) Upsert(ctx context.Context, job *model.SyncJob) error {
	job.Status = model.SyncStatusPending
	job.Attempts = 0
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "booking_id"}, {Name: "action"}},
			DoUpdates: clause.Assignments(map[string]any{
				"specialist_id": job.SpecialistID,
				"payload":       job.Payload,
				"status":        model.SyncStatusPending,
				"attempts":      0,
				"last_error":    "",
				"processed_at":  nil,
				"updated_at":    r.db.NowFunc(),
			}),
		}).
		Create(job).Error
}

func (r *GormSyncJobRepository) Claim(ctx context.Context, limit, maxAttempts int, staleBefore time.Time) ([]model.SyncJob, error) {
	var candidates []model.SyncJob
	err := r.db.WithContext(ctx).
		Where("status = ?", model.SyncStatusPending).
		Or("status = ? AND attempts < ?", model.SyncStatusFailed, maxAttempts).
		Or("status = ? AND attempts < ? AND updated_at < ?", model.SyncStatusProcessing, maxAttempts, staleBefore).
		Order("created_at").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	claimed := make([]model.SyncJob, 0, len(candidates))
	for _, job := range candidates {
		// Захват через условное обновление: параллельный воркер увидит 0 строк.
		res := r.db.WithContext(ctx).
			Model(&model.SyncJob{}).
			Where("id = ? AND status = ? AND attempts = ?", job.ID, job.Status, job.Attempts).
			Updates(map[string]any{
				"status":     model.SyncStatusProcessing,
				"attempts":   gorm.Expr("attempts + 1"),
				"updated_at": r.db.NowFunc(),
			})
		if res.Error != nil {
			return claimed, res.Error
		}
		if res.RowsAffected == 1 {
			job.Status = model.SyncStatusProcessing
			job.Attempts++
			claimed = append(claimed, job)
		}
	}
	return claimed, nil
}

func (r *GormSyncJobRepository) Finish(
	ctx context.Context,
	job model.SyncJob,
	status model.SyncStatus,
	lastError string,
	at time.Time,
) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.SyncJob{}).
		Where("id = ? AND status = ? AND attempts = ?", job.ID, model.SyncStatusProcessing, job.Attempts).
		Updates(map[string]any{
			"status":       status,
			"last_error":   lastError,
			"processed_at": at,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *GormSyncJobRepository) Get(ctx context.Context, bookingID uuid.UUID, action model.SyncAction) (*model.SyncJob, error) {
	var j model.SyncJob
	if err := r.db.WithContext(ctx).First(&j, "booking_id = ? AND action = ?", bookingID, action).Error; err != nil {
		return nil, err
	}
	return &j, nil
}
