package calsync

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/Leganyst/booking-engine/internal/model"
	"github.com/Leganyst/booking-engine/internal/repository"
)

// Queue ставит задачи синхронизации бронирований с внешним календарём.
// Ошибки только логируются: бронирование не зависит от синхронизации.
type Queue struct {
	specialists repository.SpecialistRepository
	jobs        repository.SyncJobRepository
	log         zerolog.Logger
}

func NewQueue(store *repository.Store, log zerolog.Logger) *Queue {
	return &Queue{
		specialists: store.Specialists,
		jobs:        store.SyncJobs,
		log:         log.With().Str("component", "calsync").Logger(),
	}
}

// Enqueue пропускает специалистов без активного подключения календаря.
// Повтор по (booking_id, action) перезаписывает задачу.
func (q *Queue) Enqueue(ctx context.Context, action model.SyncAction, bookingID, specialistID uuid.UUID, payload any) {
	logger := q.log.With().
		Str("action", string(action)).
		Str("booking_id", bookingID.String()).
		Logger()

	active, err := q.specialists.HasActiveCalendar(ctx, specialistID)
	if err != nil {
		logger.Error().Err(err).Msg("check calendar connection")
		return
	}
	if !active {
		logger.Debug().Msg("no active calendar connection, skip")
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error().Err(err).Msg("marshal sync payload")
		return
	}

	job := &model.SyncJob{
		BookingID:    bookingID,
		Action:       action,
		SpecialistID: specialistID,
		Payload:      datatypes.JSON(data),
	}
	if err := q.jobs.Upsert(ctx, job); err != nil {
		logger.Error().Err(err).Msg("enqueue sync job")
		return
	}
	logger.Debug().Msg("sync job queued")
}
