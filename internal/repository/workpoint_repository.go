package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-engine/internal/model"
)

type WorkPointRepository interface {
	// Получить филиал по ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.WorkPoint, error)
	// Филиалы, где у специалиста есть программа, по имени.
	ListBySpecialist(ctx context.Context, specialistID uuid.UUID) ([]model.WorkPoint, error)
	// Закрыт ли филиал в дату (разово или ежегодно).
	IsClosed(ctx context.Context, workPointID uuid.UUID, date time.Time) (bool, error)
}

// Реализация на GORM.
type GormWorkPointRepository struct {
	db *gorm.DB
}

func NewGormWorkPointRepository(db *gorm.DB) *GormWorkPointRepository {
	return &GormWorkPointRepository{db: db}
}

func (r *GormWorkPointRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.WorkPoint, error) {
	var w model.WorkPoint
	if err := r.db.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *GormWorkPointRepository) ListBySpecialist(ctx context.Context, specialistID uuid.UUID) ([]model.WorkPoint, error) {
	var out []model.WorkPoint
	sub := r.db.Model(&model.WorkingProgram{}).
		Select("work_point_id").
		Where("specialist_id = ?", specialistID)

	err := r.db.WithContext(ctx).
		Where("id IN (?)", sub).
		Order("name").
		Find(&out).Error
	return out, err
}

func (r *GormWorkPointRepository) IsClosed(ctx context.Context, workPointID uuid.UUID, date time.Time) (bool, error) {
	var exact int64
	err := r.db.WithContext(ctx).
		Model(&model.WorkPointClosure{}).
		Where("work_point_id = ? AND date_off = ?", workPointID, datatypes.Date(date)).
		Count(&exact).Error
	if err != nil || exact > 0 {
		return exact > 0, err
	}

	// Ежегодные закрытия сравниваем по месяцу и дню в коде,
	// чтобы не зависеть от функций дат конкретного диалекта.
	var recurring []model.WorkPointClosure
	err = r.db.WithContext(ctx).
		Where("work_point_id = ? AND is_recurring = ?", workPointID, true).
		Find(&recurring).Error
	if err != nil {
		return false, err
	}
	for _, c := range recurring {
		d := time.Time(c.DateOff)
		if d.Month() == date.Month() && d.Day() == date.Day() {
			return true, nil
		}
	}
	return false, nil
}
