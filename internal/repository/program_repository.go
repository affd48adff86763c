package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/booking-engine/internal/model"
)

type ProgramRepository interface {
	// Программа специалиста в филиале на день недели (nil, если нет).
	Get(ctx context.Context, specialistID, workPointID uuid.UUID, day time.Weekday) (*model.WorkingProgram, error)
	// Работает ли специалист в филиале хотя бы один день.
	WorksAt(ctx context.Context, specialistID, workPointID uuid.UUID) (bool, error)
	// Создать или заменить программу дня.
	Upsert(ctx context.Context, p *model.WorkingProgram) error
}

// Реализация на GORM.
type GormProgramRepository struct {
	db *gorm.DB
}

func NewGormProgramRepository(db *gorm.DB) *GormProgramRepository {
	return &GormProgramRepository{db: db}
}

func (r *GormProgramRepository) Get(
	ctx context.Context,
	specialistID, workPointID uuid.UUID,
	day time.Weekday,
) (*model.WorkingProgram, error) {
	var p model.WorkingProgram
	err := r.db.WithContext(ctx).
		Where("specialist_id = ? AND work_point_id = ? AND day_of_week = ?", specialistID, workPointID, model.DayName(day)).
		Limit(1).
		Find(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == uuid.Nil {
		return nil, nil
	}
	return &p, nil
}

func (r *GormProgramRepository) WorksAt(ctx context.Context, specialistID, workPointID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.WorkingProgram{}).
		Where("specialist_id = ? AND work_point_id = ?", specialistID, workPointID).
		Count(&n).Error
	return n > 0, err
}

func (r *GormProgramRepository) Upsert(ctx context.Context, p *model.WorkingProgram) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "specialist_id"}, {Name: "work_point_id"}, {Name: "day_of_week"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"shift1_start", "shift1_end",
				"shift2_start", "shift2_end",
				"shift3_start", "shift3_end",
				"updated_at",
			}),
		}).
		Create(p).Error
}
