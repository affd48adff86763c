package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// working_programs — недельная программа специалиста в филиале.
// Пара 00:00:00–00:00:00 в слоте означает «смены нет».
type WorkingProgram struct {
	ID uuid.UUID `gorm:"type:varchar(36);primaryKey"`

	SpecialistID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_program_day"`
	WorkPointID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_program_day;index"`
	DayOfWeek    string    `gorm:"type:varchar(16);not null;uniqueIndex:idx_program_day"`

	Shift1Start datatypes.Time `gorm:"column:shift1_start;not null"`
	Shift1End   datatypes.Time `gorm:"column:shift1_end;not null"`
	Shift2Start datatypes.Time `gorm:"column:shift2_start;not null"`
	Shift2End   datatypes.Time `gorm:"column:shift2_end;not null"`
	Shift3Start datatypes.Time `gorm:"column:shift3_start;not null"`
	Shift3End   datatypes.Time `gorm:"column:shift3_end;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *WorkingProgram) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// ShiftPairs — три слота смен в порядке хранения.
func (p *WorkingProgram) ShiftPairs() [3][2]datatypes.Time {
	return [3][2]datatypes.Time{
		{p.Shift1Start, p.Shift1End},
		{p.Shift2Start, p.Shift2End},
		{p.Shift3Start, p.Shift3End},
	}
}

// SetShiftPairs записывает слоты обратно.
func (p *WorkingProgram) SetShiftPairs(pairs [3][2]datatypes.Time) {
	p.Shift1Start, p.Shift1End = pairs[0][0], pairs[0][1]
	p.Shift2Start, p.Shift2End = pairs[1][0], pairs[1][1]
	p.Shift3Start, p.Shift3End = pairs[2][0], pairs[2][1]
}

// DayName — значение day_of_week для дня недели.
func DayName(d time.Weekday) string {
	return strings.ToLower(d.String())
}
