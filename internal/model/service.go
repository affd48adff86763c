package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Допустимая длительность услуги в минутах.
const (
	MinServiceDuration = 1
	MaxServiceDuration = 480
)

// services
type Service struct {
	ID uuid.UUID `gorm:"type:varchar(36);primaryKey"`

	SpecialistID uuid.UUID `gorm:"type:varchar(36);not null;index"`
	WorkPointID  uuid.UUID `gorm:"type:varchar(36);not null;index"`

	Name string `gorm:"type:varchar(255);not null"`

	DurationMinutes int `gorm:"not null"`

	Price      float64 `gorm:"type:decimal(10,2);not null;default:0"`
	VatPercent float64 `gorm:"type:decimal(5,2);not null;default:0"`

	Deleted   bool `gorm:"not null;default:false"`
	Suspended bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Service) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// Available — услугу можно бронировать.
func (s *Service) Available() bool {
	return !s.Deleted && !s.Suspended
}

// Duration возвращает длительность услуги.
func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// ValidDuration проверяет диапазон 1..480 минут.
func ValidDuration(minutes int) bool {
	return minutes >= MinServiceDuration && minutes <= MaxServiceDuration
}
