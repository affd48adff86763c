package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ограничения колонок source_channel и made_by.
const (
	SourceChannelMaxLen = 20
	MadeByMaxLen        = 255
)

// Предпочтение по SMS-уведомлению клиента.
type SMSPreference string

const (
	SMSYes     SMSPreference = "yes"
	SMSNo      SMSPreference = "no"
	SMSDefault SMSPreference = "default"
)

// bookings — живые бронирования.
// StartAt/EndAt — локальное (настенное) время филиала, хранится с меткой UTC.
// Интервал полуоткрытый: [StartAt, EndAt).
type Booking struct {
	ID uuid.UUID `gorm:"type:varchar(36);primaryKey"`

	SpecialistID uuid.UUID `gorm:"type:varchar(36);not null;index:idx_booking_specialist_time"`
	WorkPointID  uuid.UUID `gorm:"type:varchar(36);not null;index"`
	ServiceID    uuid.UUID `gorm:"type:varchar(36);not null;index"`

	ClientName  string `gorm:"type:varchar(255);not null"`
	ClientPhone string `gorm:"type:varchar(20);not null"`

	StartAt time.Time `gorm:"not null;index:idx_booking_specialist_time"`
	EndAt   time.Time `gorm:"not null"`

	// Момент создания по часам филиала (не сервера).
	CreatedAtLocal time.Time `gorm:"column:created_at;not null"`
	UpdatedAt      time.Time

	SourceChannel   string  `gorm:"type:varchar(20);not null"`
	ExternalEventID *string `gorm:"type:varchar(255)"`
	IdempotencyKey  *string `gorm:"type:varchar(64);uniqueIndex"`

	SMSPreference SMSPreference `gorm:"type:varchar(16);not null;default:'default'"`
}

func (b *Booking) BeforeCreate(*gorm.DB) error {
	ensureID(&b.ID)
	return nil
}

// AfterFind нормализует времена: драйверы могут вернуть их в локальной зоне процесса.
func (b *Booking) AfterFind(*gorm.DB) error {
	b.StartAt = b.StartAt.UTC()
	b.EndAt = b.EndAt.UTC()
	b.CreatedAtLocal = b.CreatedAtLocal.UTC()
	return nil
}

// IsPast — производная классификация, в БД не хранится.
func (b *Booking) IsPast(now time.Time) bool {
	return now.After(b.EndAt)
}

// canceled_bookings — архив отмен. Одна строка на бронирование, создаётся
// в одной транзакции с удалением живой записи.
type CanceledBooking struct {
	ID uuid.UUID `gorm:"type:varchar(36);primaryKey"`

	BookingID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex"`

	SpecialistID   uuid.UUID `gorm:"type:varchar(36);not null;index"`
	WorkPointID    uuid.UUID `gorm:"type:varchar(36);not null"`
	ServiceID      uuid.UUID `gorm:"type:varchar(36);not null"`
	OrganisationID uuid.UUID `gorm:"type:varchar(36);not null;index"`

	ClientName  string `gorm:"type:varchar(255);not null"`
	ClientPhone string `gorm:"type:varchar(20);not null"`

	StartAt  time.Time `gorm:"not null"`
	EndAt    time.Time `gorm:"not null"`
	BookedAt time.Time `gorm:"not null"`

	SourceChannel   string  `gorm:"type:varchar(20);not null"`
	ExternalEventID *string `gorm:"type:varchar(255)"`

	CancellationTime time.Time `gorm:"not null"`
	MadeBy           string    `gorm:"type:varchar(255);not null"`
}

func (c *CanceledBooking) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

func (c *CanceledBooking) AfterFind(*gorm.DB) error {
	c.StartAt = c.StartAt.UTC()
	c.EndAt = c.EndAt.UTC()
	c.BookedAt = c.BookedAt.UTC()
	c.CancellationTime = c.CancellationTime.UTC()
	return nil
}

// NewCanceledBooking — полный снимок живого бронирования для архива.
func NewCanceledBooking(b *Booking, organisationID uuid.UUID, at time.Time, madeBy string) *CanceledBooking {
	return &CanceledBooking{
		BookingID:        b.ID,
		SpecialistID:     b.SpecialistID,
		WorkPointID:      b.WorkPointID,
		ServiceID:        b.ServiceID,
		OrganisationID:   organisationID,
		ClientName:       b.ClientName,
		ClientPhone:      b.ClientPhone,
		StartAt:          b.StartAt,
		EndAt:            b.EndAt,
		BookedAt:         b.CreatedAtLocal,
		SourceChannel:    b.SourceChannel,
		ExternalEventID:  b.ExternalEventID,
		CancellationTime: at,
		MadeBy:           madeBy,
	}
}
