package calsync

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Leganyst/booking-engine/internal/model"
)

// Request — одна операция над событием внешнего календаря.
type Request struct {
	Action       model.SyncAction
	BookingID    uuid.UUID
	SpecialistID uuid.UUID
	// Пусто для created и для брони, которая ещё не попала в календарь.
	ExternalEventID string
	Payload         json.RawMessage
}

// CalendarClient — провайдер внешнего календаря.
// Для created возвращает идентификатор созданного события.
type CalendarClient interface {
	Sync(ctx context.Context, req Request) (externalEventID string, err error)
}

// LogCalendarClient только пишет операции в лог.
type LogCalendarClient struct {
	Log zerolog.Logger
}

func (c LogCalendarClient) Sync(_ context.Context, req Request) (string, error) {
	payload := req.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	c.Log.Info().
		Str("action", string(req.Action)).
		Str("booking_id", req.BookingID.String()).
		Str("external_event_id", req.ExternalEventID).
		RawJSON("payload", payload).
		Msg("calendar sync")
	if req.Action == model.SyncActionCreated {
		return "local-" + req.BookingID.String(), nil
	}
	return req.ExternalEventID, nil
}
