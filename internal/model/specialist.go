package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// specialists — мастер/врач, принадлежит ровно одной организации.
type Specialist struct {
	ID uuid.UUID `gorm:"type:varchar(36);primaryKey"`

	OrganisationID uuid.UUID `gorm:"type:varchar(36);not null;index"`

	Name       string `gorm:"type:varchar(255);not null"`
	Speciality string `gorm:"type:varchar(255)"`
	Email      string `gorm:"type:varchar(255)"`
	Phone      string `gorm:"type:varchar(20)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Specialist) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

type CalendarConnectionStatus string

const (
	CalendarConnectionActive       CalendarConnectionStatus = "active"
	CalendarConnectionDisconnected CalendarConnectionStatus = "disconnected"
)

// calendar_connections — подключение специалиста к внешнему календарю.
// Задачи синхронизации ставятся только при активном подключении.
type CalendarConnection struct {
	ID uuid.UUID `gorm:"type:varchar(36);primaryKey"`

	SpecialistID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex"`
	CalendarID   string    `gorm:"type:varchar(255);not null"`

	Status CalendarConnectionStatus `gorm:"type:varchar(32);not null;default:'active'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *CalendarConnection) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
