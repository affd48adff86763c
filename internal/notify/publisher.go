package notify

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Multi рассылает событие всем получателям; ошибки объединяются.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BestEffort глушит ошибки вложенного Publisher: они только пишутся в лог.
// Так сбой необязательного канала не держит событие в outbox.
type BestEffort struct {
	Publisher Publisher
	Log       zerolog.Logger
}

func (p BestEffort) Publish(ctx context.Context, e Event) error {
	if err := p.Publisher.Publish(ctx, e); err != nil {
		p.Log.Warn().Err(err).
			Str("event_id", e.ID.String()).
			Str("booking_id", e.BookingID.String()).
			Msg("best-effort publish failed")
	}
	return nil
}

// LogPublisher пишет события в лог.
type LogPublisher struct {
	Log zerolog.Logger
}

func (p LogPublisher) Publish(_ context.Context, e Event) error {
	p.Log.Info().
		Str("event_id", e.ID.String()).
		Str("type", string(e.Type)).
		Str("booking_id", e.BookingID.String()).
		Strs("channels", e.Channels).
		Msg("booking event")
	return nil
}
