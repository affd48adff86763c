package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Leganyst/booking-engine/internal/repository"
)

const (
	DefaultBatch       = 1000
	DefaultMaxAttempts = 5
)

// Dispatcher переносит события из outbox в Publisher.
type Dispatcher struct {
	outbox    repository.OutboxRepository
	publisher Publisher

	Batch       int
	MaxAttempts int
	Now         func() time.Time

	log zerolog.Logger
}

func NewDispatcher(outbox repository.OutboxRepository, publisher Publisher, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		outbox:      outbox,
		publisher:   publisher,
		Batch:       DefaultBatch,
		MaxAttempts: DefaultMaxAttempts,
		Now:         func() time.Time { return time.Now().UTC() },
		log:         log.With().Str("component", "outbox").Logger(),
	}
}

// RunOnce публикует необработанные события по порядку создания.
// Неудачные остаются в outbox до следующего прохода, пока не исчерпают
// MaxAttempts; после этого событие закрывается с last_error.
func (d *Dispatcher) RunOnce(ctx context.Context) (int, error) {
	rows, err := d.outbox.ListPending(ctx, d.Batch)
	if err != nil {
		return 0, fmt.Errorf("list outbox: %w", err)
	}

	sent := 0
	for _, row := range rows {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		if err := d.publisher.Publish(ctx, FromOutbox(row)); err != nil {
			d.log.Warn().Err(err).Str("event_id", row.ID.String()).Int("attempt", row.Attempts+1).Msg("publish failed")
			dead, ferr := d.outbox.RecordFailure(ctx, row.ID, err.Error(), d.MaxAttempts, d.Now())
			if ferr != nil {
				return sent, fmt.Errorf("record failure: %w", ferr)
			}
			if dead {
				d.log.Error().Err(err).Str("event_id", row.ID.String()).Str("booking_id", row.BookingID.String()).Msg("event dropped after max attempts")
			}
			continue
		}
		if err := d.outbox.MarkProcessed(ctx, row.ID, d.Now()); err != nil {
			return sent, fmt.Errorf("mark processed: %w", err)
		}
		sent++
	}
	if sent > 0 {
		d.log.Debug().Int("sent", sent).Int("pending", len(rows)-sent).Msg("outbox dispatched")
	}
	return sent, nil
}

// Cleanup удаляет обработанные события старше olderThan.
func (d *Dispatcher) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := d.outbox.DeleteProcessedBefore(ctx, d.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("cleanup outbox: %w", err)
	}
	if n > 0 {
		d.log.Info().Int64("deleted", n).Msg("outbox cleaned")
	}
	return n, nil
}
