package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-engine/internal/model"
)

type ServiceRepository interface {
	// Получить услугу по ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Service, error)
	// Доступные услуги филиала (без удалённых и приостановленных).
	ListAvailable(ctx context.Context, workPointID uuid.UUID, specialistID *uuid.UUID) ([]model.Service, error)
	// Изменить длительность услуги.
	UpdateDuration(ctx context.Context, id uuid.UUID, minutes int) error
}

// Реализация на GORM.
type GormServiceRepository struct {
	db *gorm.DB
}

func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

func (r *GormServiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	var s model.Service
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormServiceRepository) ListAvailable(
	ctx context.Context,
	workPointID uuid.UUID,
	specialistID *uuid.UUID,
) ([]model.Service, error) {
	var out []model.Service
	q := r.db.WithContext(ctx).
		Where("work_point_id = ?", workPointID).
		Where("deleted = ? AND suspended = ?", false, false)
	if specialistID != nil {
		q = q.Where("specialist_id = ?", *specialistID)
	}
	err := q.Order("name").Find(&out).Error
	return out, err
}

func (r *GormServiceRepository) UpdateDuration(ctx context.Context, id uuid.UUID, minutes int) error {
	return r.db.WithContext(ctx).
		Model(&model.Service{}).
		Where("id = ?", id).
		Update("duration_minutes", minutes).
		Error
}
