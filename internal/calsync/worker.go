package calsync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Leganyst/booking-engine/internal/model"
	"github.com/Leganyst/booking-engine/internal/repository"
)

const (
	DefaultBatch       = 50
	DefaultMaxAttempts = 5
	// Задача в processing дольше этого считается брошенной.
	DefaultStaleAfter = 10 * time.Minute
)

// Worker разбирает очередь calendar_sync_jobs.
type Worker struct {
	jobs     repository.SyncJobRepository
	bookings repository.BookingRepository
	client   CalendarClient

	Batch       int
	MaxAttempts int
	StaleAfter  time.Duration
	Now         func() time.Time

	log zerolog.Logger
}

func NewWorker(store *repository.Store, client CalendarClient, log zerolog.Logger) *Worker {
	return &Worker{
		jobs:        store.SyncJobs,
		bookings:    store.Bookings,
		client:      client,
		Batch:       DefaultBatch,
		MaxAttempts: DefaultMaxAttempts,
		StaleAfter:  DefaultStaleAfter,
		Now:         func() time.Time { return time.Now().UTC() },
		log:         log.With().Str("component", "calsync_worker").Logger(),
	}
}

// RunOnce захватывает пачку задач и выполняет их.
// Возвращает число успешно выполненных задач.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	jobs, err := w.jobs.Claim(ctx, w.Batch, w.MaxAttempts, w.Now().Add(-w.StaleAfter))
	if err != nil {
		return 0, fmt.Errorf("claim sync jobs: %w", err)
	}

	done := 0
	for _, job := range jobs {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}
		if err := w.process(ctx, job); err != nil {
			status := model.SyncStatusFailed
			if job.Attempts >= w.MaxAttempts {
				status = model.SyncStatusPermanentlyFailed
			}
			w.log.Warn().Err(err).
				Str("job_id", job.ID.String()).
				Int("attempts", job.Attempts).
				Str("status", string(status)).
				Msg("sync job failed")
			if _, ferr := w.finish(ctx, job, status, err.Error()); ferr != nil {
				return done, ferr
			}
			continue
		}
		ok, err := w.finish(ctx, job, model.SyncStatusDone, "")
		if err != nil {
			return done, err
		}
		if ok {
			done++
		}
	}
	return done, nil
}

// finish закрывает задачу, если её не перезапустили, пока она выполнялась.
func (w *Worker) finish(ctx context.Context, job model.SyncJob, status model.SyncStatus, lastError string) (bool, error) {
	ok, err := w.jobs.Finish(ctx, job, status, lastError, w.Now())
	if err != nil {
		return false, fmt.Errorf("finish sync job: %w", err)
	}
	if !ok {
		w.log.Info().Str("job_id", job.ID.String()).Msg("sync job was re-queued while running, result dropped")
	}
	return ok, nil
}

func (w *Worker) process(ctx context.Context, job model.SyncJob) error {
	req := Request{
		Action:          job.Action,
		BookingID:       job.BookingID,
		SpecialistID:    job.SpecialistID,
		ExternalEventID: w.externalID(ctx, job),
		Payload:         json.RawMessage(job.Payload),
	}
	ext, err := w.client.Sync(ctx, req)
	if err != nil {
		return err
	}
	if job.Action == model.SyncActionCreated && ext != "" {
		if err := w.bookings.SetExternalEventID(ctx, job.BookingID, ext); err != nil {
			return fmt.Errorf("store external event id: %w", err)
		}
	}
	return nil
}

// externalID ищет событие календаря в живой брони, затем в архиве.
func (w *Worker) externalID(ctx context.Context, job model.SyncJob) string {
	if job.Action == model.SyncActionCreated {
		return ""
	}
	if b, err := w.bookings.GetByID(ctx, job.BookingID); err == nil && b.ExternalEventID != nil {
		return *b.ExternalEventID
	}
	if c, err := w.bookings.GetArchived(ctx, job.BookingID); err == nil && c.ExternalEventID != nil {
		return *c.ExternalEventID
	}
	return ""
}

var _ CalendarClient = LogCalendarClient{}
