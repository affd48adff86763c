package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TimeOffKind string

const (
	TimeOffFullDay    TimeOffKind = "full"
	TimeOffPartialDay TimeOffKind = "partial"
)

// specialist_time_off — исключение из недельной программы на конкретную дату.
// Для partial окно WorkStart–WorkEnd заменяет смены этого дня.
type TimeOff struct {
	ID uuid.UUID `gorm:"type:varchar(36);primaryKey"`

	SpecialistID uuid.UUID      `gorm:"type:varchar(36);not null;uniqueIndex:idx_time_off_day"`
	DateOff      datatypes.Date `gorm:"not null;uniqueIndex:idx_time_off_day"`

	Kind TimeOffKind `gorm:"type:varchar(16);not null;default:'full'"`

	WorkStart *datatypes.Time
	WorkEnd   *datatypes.Time

	CreatedAt time.Time
}

func (TimeOff) TableName() string {
	return "specialist_time_off"
}

func (t *TimeOff) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}
