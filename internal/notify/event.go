package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/booking-engine/internal/model"
)

// ChannelAdmin получает все события.
const ChannelAdmin = "admin_all"

// MaxEventAge — подписчики игнорируют события старше этого возраста.
const MaxEventAge = 30 * time.Second

// Event — уведомление об изменении бронирования.
// ID совпадает с id строки outbox: подписчики убирают дубли по нему.
type Event struct {
	ID            uuid.UUID           `json:"id"`
	Type          model.EventType     `json:"type"`
	Timestamp     time.Time           `json:"timestamp"`
	BookingID     uuid.UUID           `json:"booking_id"`
	Channels      []string            `json:"channels"`
	SMSPreference model.SMSPreference `json:"sms_preference"`
	Data          json.RawMessage     `json:"data"`
}

// Stale — событие слишком старое для показа.
func (e Event) Stale(now time.Time) bool {
	return now.Sub(e.Timestamp) > MaxEventAge
}

// Publisher доставляет событие подписчикам.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

func SpecialistChannel(id uuid.UUID) string { return "specialist_" + id.String() }

func WorkPointChannel(id uuid.UUID) string { return "workpoint_" + id.String() }

// FromOutbox строит событие из строки outbox.
func FromOutbox(row model.OutboxEvent) Event {
	data := json.RawMessage(row.Payload)
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	return Event{
		ID:        row.ID,
		Type:      row.EventType,
		Timestamp: row.CreatedAt,
		BookingID: row.BookingID,
		Channels: []string{
			SpecialistChannel(row.SpecialistID),
			WorkPointChannel(row.WorkPointID),
			ChannelAdmin,
		},
		SMSPreference: row.SMSPreference,
		Data:          data,
	}
}
