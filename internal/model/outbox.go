package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Тип события бронирования.
type EventType string

const (
	EventTypeBookingCreated EventType = "booking.created"
	EventTypeBookingUpdated EventType = "booking.updated"
	EventTypeBookingDeleted EventType = "booking.deleted"
)

// outbox_events — события, записанные в одной транзакции с изменением брони.
// Диспетчер читает их и публикует в каналы уведомлений.
type OutboxEvent struct {
	ID uuid.UUID `gorm:"type:varchar(36);primaryKey"`

	EventType EventType `gorm:"type:varchar(64);not null"`

	BookingID      uuid.UUID `gorm:"type:varchar(36);not null;index"`
	SpecialistID   uuid.UUID `gorm:"type:varchar(36);not null"`
	WorkPointID    uuid.UUID `gorm:"type:varchar(36);not null"`
	OrganisationID uuid.UUID `gorm:"type:varchar(36);not null"`

	SMSPreference SMSPreference `gorm:"type:varchar(16);not null;default:'default'"`

	Payload datatypes.JSON

	Processed   bool `gorm:"not null;default:false;index:idx_outbox_pending"`
	ProcessedAt *time.Time

	// Неудачные попытки публикации. После лимита событие закрывается
	// с непустым LastError и больше не публикуется.
	Attempts  int    `gorm:"not null;default:0"`
	LastError string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"index:idx_outbox_pending"`
}

// Dead — событие снято с публикации после исчерпания попыток.
func (e *OutboxEvent) Dead() bool {
	return e.Processed && e.LastError != ""
}

func (e *OutboxEvent) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}
