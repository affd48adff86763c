package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-engine/internal/model"
)

type TimeOffRepository interface {
	// Исключение специалиста на дату (nil, если нет).
	GetByDate(ctx context.Context, specialistID uuid.UUID, date time.Time) (*model.TimeOff, error)
	// Все исключения специалиста по дате.
	ListBySpecialist(ctx context.Context, specialistID uuid.UUID) ([]model.TimeOff, error)
	// Заменить весь набор исключений специалиста.
	ReplaceAll(ctx context.Context, specialistID uuid.UUID, items []model.TimeOff) error
}

// Реализация на GORM.
type GormTimeOffRepository struct {
	db *gorm.DB
}

func NewGormTimeOffRepository(db *gorm.DB) *GormTimeOffRepository {
	return &GormTimeOffRepository{db: db}
}

func (r *GormTimeOffRepository) GetByDate(ctx context.Context, specialistID uuid.UUID, date time.Time) (*model.TimeOff, error) {
	var t model.TimeOff
	err := r.db.WithContext(ctx).
		Where("specialist_id = ? AND date_off = ?", specialistID, datatypes.Date(date)).
		Limit(1).
		Find(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == uuid.Nil {
		return nil, nil
	}
	return &t, nil
}

func (r *GormTimeOffRepository) ListBySpecialist(ctx context.Context, specialistID uuid.UUID) ([]model.TimeOff, error) {
	var out []model.TimeOff
	err := r.db.WithContext(ctx).
		Where("specialist_id = ?", specialistID).
		Order("date_off").
		Find(&out).Error
	return out, err
}

// ReplaceAll должен вызываться внутри транзакции Store.
func (r *GormTimeOffRepository) ReplaceAll(ctx context.Context, specialistID uuid.UUID, items []model.TimeOff) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("specialist_id = ?", specialistID).Delete(&model.TimeOff{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].SpecialistID = specialistID
	}
	return db.Create(&items).Error
}
