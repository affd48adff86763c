package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-engine/internal/model"
)

type SpecialistRepository interface {
	// Получить специалиста по ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Specialist, error)
	// Заблокировать строки специалистов до конца транзакции.
	Lock(ctx context.Context, ids ...uuid.UUID) error
	// Специалисты, у которых есть программа в филиале, по имени.
	ListByWorkPoint(ctx context.Context, workPointID uuid.UUID) ([]model.Specialist, error)
	// Есть ли активное подключение внешнего календаря.
	HasActiveCalendar(ctx context.Context, specialistID uuid.UUID) (bool, error)
}

// Реализация на GORM.
type GormSpecialistRepository struct {
	db      *gorm.DB
	dialect string
}

func NewGormSpecialistRepository(db *gorm.DB, dialect string) *GormSpecialistRepository {
	return &GormSpecialistRepository{db: db, dialect: dialect}
}

func (r *GormSpecialistRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Specialist, error) {
	var s model.Specialist
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormSpecialistRepository) Lock(ctx context.Context, ids ...uuid.UUID) error {
	for _, id := range sortedIDs(ids...) {
		var s model.Specialist
		if err := forUpdate(r.db.WithContext(ctx), r.dialect).First(&s, "id = ?", id).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormSpecialistRepository) ListByWorkPoint(ctx context.Context, workPointID uuid.UUID) ([]model.Specialist, error) {
	var out []model.Specialist
	sub := r.db.Model(&model.WorkingProgram{}).
		Select("specialist_id").
		Where("work_point_id = ?", workPointID)

	err := r.db.WithContext(ctx).
		Where("id IN (?)", sub).
		Order("name").
		Find(&out).Error
	return out, err
}

func (r *GormSpecialistRepository) HasActiveCalendar(ctx context.Context, specialistID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.CalendarConnection{}).
		Where("specialist_id = ? AND status = ?", specialistID, model.CalendarConnectionActive).
		Count(&n).Error
	return n > 0, err
}
