package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// work_points — филиал/кабинет организации.
type WorkPoint struct {
	ID uuid.UUID `gorm:"type:varchar(36);primaryKey"`

	OrganisationID uuid.UUID `gorm:"type:varchar(36);not null;index"`

	Name    string `gorm:"type:varchar(255);not null"`
	Address string `gorm:"type:text"`

	// IANA-зона, например Europe/London. Все времена бронирований — локальные для неё.
	Timezone string `gorm:"type:varchar(64);not null;default:'Europe/London'"`
	Country  string `gorm:"type:varchar(2)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (w *WorkPoint) BeforeCreate(*gorm.DB) error {
	ensureID(&w.ID)
	return nil
}

// work_point_closures — выходной день филиала (праздник).
// IsRecurring = повторяется каждый год в тот же день.
type WorkPointClosure struct {
	ID uuid.UUID `gorm:"type:varchar(36);primaryKey"`

	WorkPointID uuid.UUID      `gorm:"type:varchar(36);not null;index:idx_closure_day"`
	DateOff     datatypes.Date `gorm:"not null;index:idx_closure_day"`
	IsRecurring bool           `gorm:"not null;default:false"`
	Description string         `gorm:"type:varchar(255)"`

	CreatedAt time.Time
}

func (c *WorkPointClosure) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
