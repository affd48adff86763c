package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// organisations
type Organisation struct {
	ID uuid.UUID `gorm:"type:varchar(36);primaryKey"`

	Name string `gorm:"type:varchar(255);not null"`

	// ISO-код страны, по нему выбирается часовой пояс по умолчанию.
	Country string `gorm:"type:varchar(2);not null;default:'GB'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (o *Organisation) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
