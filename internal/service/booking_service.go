package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/Leganyst/booking-engine/internal/access"
	"github.com/Leganyst/booking-engine/internal/apperror"
	"github.com/Leganyst/booking-engine/internal/calendar"
	"github.com/Leganyst/booking-engine/internal/model"
	"github.com/Leganyst/booking-engine/internal/repository"
)

// SyncQueue — очередь синхронизации с внешним календарём.
// Enqueue не блокирует операцию и не возвращает ошибок.
type SyncQueue interface {
	Enqueue(ctx context.Context, action model.SyncAction, bookingID, specialistID uuid.UUID, payload any)
}

const (
	msgSlotOccupied   = "Time slot already occupied by the selected specialist"
	msgOutsideHours   = "Specialist is not working at this time on the selected day"
	msgBeyondShiftEnd = "Booking extends beyond shift end time"
	msgSlotRace       = "Time slot already occupied"
	msgCrossOrg       = "Cannot move booking to specialist from different organisation"
	msgNoSchedule     = "No working schedule found for this day"
	msgBrokenSchedule = "Working schedule is inconsistent"
	msgKeyReused      = "Idempotency key was already used for a different booking"

	msgForeignWorkPoint = "Work point belongs to a different organisation"
	msgForeignService   = "Service belongs to a different organisation"
)

var conflictMessages = map[calendar.Reason]string{
	calendar.ReasonSlotOccupied:   msgSlotOccupied,
	calendar.ReasonOutsideHours:   msgOutsideHours,
	calendar.ReasonBeyondShiftEnd: msgBeyondShiftEnd,
}

// BookingService — операции над бронированиями.
type BookingService struct {
	store   *repository.Store
	details *repository.DetailsRepository
	zones   calendar.TimezoneProvider
	sync    SyncQueue
	gate    *access.Gate
	log     zerolog.Logger
}

func NewBookingService(
	store *repository.Store,
	details *repository.DetailsRepository,
	zones calendar.TimezoneProvider,
	sync SyncQueue,
	log zerolog.Logger,
) *BookingService {
	return &BookingService{
		store:   store,
		details: details,
		zones:   zones,
		sync:    sync,
		gate:    access.NewGate(store.Programs),
		log:     log.With().Str("component", "booking").Logger(),
	}
}

// CreateBooking создаёт бронирование после проверки прав, пересечений и смены.
func (s *BookingService) CreateBooking(ctx context.Context, actor access.AuthContext, req CreateBookingRequest) (*CreateBookingResult, error) {
	in, err := req.parse()
	if err != nil {
		return nil, err
	}
	if err := checkActor(actor); err != nil {
		return nil, err
	}

	svc, err := s.availableService(ctx, s.store, in.serviceID)
	if err != nil {
		return nil, err
	}
	wpID := svc.WorkPointID
	if in.workPointID != nil {
		wpID = *in.workPointID
	}
	wp, err := s.workPoint(ctx, s.store, wpID)
	if err != nil {
		return nil, err
	}
	sp, err := s.specialist(ctx, s.store, in.specialistID)
	if err != nil {
		return nil, err
	}
	if err := s.sameOrganisation(ctx, sp, svc, wp); err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, actor, access.Target{SpecialistID: sp.ID, OrganisationID: sp.OrganisationID}); err != nil {
		return nil, err
	}

	slot := calendar.TimeRange{Start: in.start, End: in.start.Add(svc.Duration())}
	booking := &model.Booking{
		SpecialistID:   sp.ID,
		WorkPointID:    wp.ID,
		ServiceID:      svc.ID,
		ClientName:     in.clientName,
		ClientPhone:    in.clientPhone,
		StartAt:        slot.Start,
		EndAt:          slot.End,
		CreatedAtLocal: s.zones.NowInWorkPoint(wp.Timezone),
		SourceChannel:  actor.SourceChannel(model.SourceChannelMaxLen),
		SMSPreference:  in.sms,
	}
	if in.key != "" {
		key := in.key
		booking.IdempotencyKey = &key
	}

	replayed := false
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Specialists.Lock(ctx, sp.ID); err != nil {
			return err
		}
		if in.key != "" {
			existing, err := tx.Bookings.FindByIdempotencyKey(ctx, in.key)
			if err != nil {
				return err
			}
			if existing != nil {
				booking = existing
				replayed = true
				return nil
			}
		}
		if err := checkSlot(ctx, tx, sp.ID, wp.ID, slot, uuid.Nil); err != nil {
			return err
		}
		if err := tx.Bookings.Create(ctx, booking); err != nil {
			return err
		}
		return tx.Outbox.Add(ctx, newOutboxEvent(model.EventTypeBookingCreated, booking, sp.OrganisationID, in.sms))
	})
	if err != nil && in.key != "" && repository.IsDuplicate(err) {
		if existing, ok := s.replayAfterDuplicate(ctx, in.key); ok {
			booking, replayed, err = existing, true, nil
		}
	}
	if err != nil {
		return nil, s.translate(err, "Failed to create booking")
	}
	if replayed && !sameBooking(booking, sp.ID, svc.ID, slot.Start) {
		return nil, apperror.Conflict(msgKeyReused)
	}

	if replayed {
		s.log.Info().Str("booking_id", booking.ID.String()).Msg("idempotent replay")
	} else {
		s.sync.Enqueue(ctx, model.SyncActionCreated, booking.ID, booking.SpecialistID, bookingPayload(booking))
		s.log.Info().
			Str("booking_id", booking.ID.String()).
			Str("specialist_id", booking.SpecialistID.String()).
			Time("start", booking.StartAt).
			Msg("booking created")
	}

	return &CreateBookingResult{
		BookingID: booking.ID,
		StartAt:   formatDateTime(booking.StartAt),
		EndAt:     formatDateTime(booking.EndAt),
		Replayed:  replayed,
	}, nil
}

// ModifyBooking переносит бронирование на новое время, услугу или специалиста
// внутри той же организации. Проверки повторяются без учёта самой брони.
func (s *BookingService) ModifyBooking(ctx context.Context, actor access.AuthContext, req ModifyBookingRequest) (*ModifyBookingResult, error) {
	in, err := req.parse()
	if err != nil {
		return nil, err
	}
	if err := checkActor(actor); err != nil {
		return nil, err
	}

	current, err := s.booking(ctx, s.store, in.bookingID)
	if err != nil {
		return nil, err
	}
	currentSp, err := s.specialist(ctx, s.store, current.SpecialistID)
	if err != nil {
		return nil, err
	}
	target := currentSp
	if in.specialistID != current.SpecialistID {
		if target, err = s.specialist(ctx, s.store, in.specialistID); err != nil {
			return nil, err
		}
	}
	if target.OrganisationID != currentSp.OrganisationID {
		return nil, apperror.Conflict(msgCrossOrg)
	}
	if err := s.gate.Authorize(ctx, actor, access.Target{SpecialistID: currentSp.ID, OrganisationID: currentSp.OrganisationID}); err != nil {
		return nil, err
	}

	svc, err := s.availableService(ctx, s.store, in.serviceID)
	if err != nil {
		return nil, err
	}
	wpID := current.WorkPointID
	if in.workPointID != nil {
		wpID = *in.workPointID
	}
	wp, err := s.workPoint(ctx, s.store, wpID)
	if err != nil {
		return nil, err
	}
	if err := s.sameOrganisation(ctx, target, svc, wp); err != nil {
		return nil, err
	}

	slot := calendar.TimeRange{Start: in.start, End: in.start.Add(svc.Duration())}
	updated := *current
	updated.SpecialistID = target.ID
	updated.WorkPointID = wp.ID
	updated.ServiceID = svc.ID
	updated.ClientName = in.clientName
	updated.ClientPhone = in.clientPhone
	updated.StartAt = slot.Start
	updated.EndAt = slot.End

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Specialists.Lock(ctx, current.SpecialistID, target.ID); err != nil {
			return err
		}
		if _, err := tx.Bookings.GetForUpdate(ctx, current.ID); err != nil {
			return err
		}
		if err := checkSlot(ctx, tx, target.ID, wp.ID, slot, current.ID); err != nil {
			return err
		}
		if err := tx.Bookings.Update(ctx, &updated); err != nil {
			return err
		}
		return tx.Outbox.Add(ctx, newOutboxEvent(model.EventTypeBookingUpdated, &updated, target.OrganisationID, updated.SMSPreference))
	})
	if err != nil {
		return nil, s.translate(err, "Failed to modify booking")
	}

	s.sync.Enqueue(ctx, model.SyncActionUpdated, updated.ID, updated.SpecialistID, bookingPayload(&updated))
	s.log.Info().
		Str("booking_id", updated.ID.String()).
		Str("specialist_id", updated.SpecialistID.String()).
		Time("start", updated.StartAt).
		Msg("booking modified")

	return &ModifyBookingResult{
		BookingID: updated.ID,
		StartAt:   formatDateTime(updated.StartAt),
		EndAt:     formatDateTime(updated.EndAt),
	}, nil
}

// CancelBooking архивирует и удаляет бронирование в одной транзакции.
func (s *BookingService) CancelBooking(ctx context.Context, actor access.AuthContext, req CancelBookingRequest) (*CancelBookingResult, error) {
	id, err := parseID("booking_id", req.BookingID)
	if err != nil {
		return nil, err
	}
	sms, err := parseSMS(req.SMSPreference, model.SMSDefault)
	if err != nil {
		return nil, err
	}
	if err := checkActor(actor); err != nil {
		return nil, err
	}

	current, err := s.booking(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	sp, err := s.specialist(ctx, s.store, current.SpecialistID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, actor, access.Target{SpecialistID: sp.ID, OrganisationID: sp.OrganisationID}); err != nil {
		return nil, err
	}

	madeBy := actor.MadeBy(model.MadeByMaxLen)
	now := s.localNow(ctx, current.WorkPointID)

	var (
		archive  *model.CanceledBooking
		snapshot model.Booking
	)
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		locked, err := tx.Bookings.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		snapshot = *locked
		archive = model.NewCanceledBooking(locked, sp.OrganisationID, now, madeBy)
		if err := tx.Bookings.Archive(ctx, archive); err != nil {
			return err
		}
		n, err := tx.Bookings.Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperror.NotFound("No booking was deleted. It may have already been canceled")
		}
		return tx.Outbox.Add(ctx, newOutboxEvent(model.EventTypeBookingDeleted, locked, sp.OrganisationID, sms))
	})
	if err != nil {
		return nil, s.translate(err, "Failed to cancel booking")
	}

	s.sync.Enqueue(ctx, model.SyncActionDeleted, snapshot.ID, snapshot.SpecialistID, bookingPayload(&snapshot))
	s.log.Info().
		Str("booking_id", id.String()).
		Str("made_by", madeBy).
		Msg("booking canceled")

	return &CancelBookingResult{
		BookingID:     id,
		ArchiveID:     archive.ID,
		MadeBy:        madeBy,
		SMSPreference: sms,
	}, nil
}

// GetBookingDetails — снимок живого бронирования.
func (s *BookingService) GetBookingDetails(ctx context.Context, actor access.AuthContext, bookingID string) (*BookingDetails, error) {
	id, err := parseID("booking_id", bookingID)
	if err != nil {
		return nil, err
	}
	row, err := s.details.BookingDetails(ctx, id)
	if err != nil {
		return nil, apperror.Database(err, "Failed to load booking")
	}
	if row == nil {
		return nil, apperror.NotFound("Booking not found")
	}
	return &BookingDetails{
		BookingID:       row.ID,
		SpecialistID:    row.SpecialistID,
		SpecialistName:  row.SpecialistName,
		OrganisationID:  row.OrganisationID,
		WorkPointID:     row.WorkPointID,
		WorkPointName:   row.WorkPointName,
		ServiceID:       row.ServiceID,
		ServiceName:     row.ServiceName,
		DurationMinutes: row.DurationMinutes,
		ClientName:      row.ClientName,
		ClientPhone:     row.ClientPhone,
		StartAt:         formatDateTime(row.StartAt),
		EndAt:           formatDateTime(row.EndAt),
		CreatedAt:       formatDateTime(row.CreatedAt),
		SourceChannel:   row.SourceChannel,
		ExternalEventID: row.ExternalEventID,
		Past:            s.zones.NowInWorkPoint(row.WorkPointTimezone).After(row.EndAt),
	}, nil
}

// CheckShiftConflict — та же проверка, что при создании, без записи.
func (s *BookingService) CheckShiftConflict(ctx context.Context, actor access.AuthContext, req CheckShiftConflictRequest) (*ShiftConflictResult, error) {
	specialistID, err := parseID("specialist_id", req.SpecialistID)
	if err != nil {
		return nil, err
	}
	serviceID, err := parseID("service_id", req.ServiceID)
	if err != nil {
		return nil, err
	}
	wpOverride, err := parseOptionalID("work_point_id", req.WorkPointID)
	if err != nil {
		return nil, err
	}
	start, err := parseSlotStart(req.Date, req.Time)
	if err != nil {
		return nil, err
	}

	svc, err := s.availableService(ctx, s.store, serviceID)
	if err != nil {
		return nil, err
	}
	wpID := svc.WorkPointID
	if wpOverride != nil {
		wpID = *wpOverride
	}
	if _, err := s.workPoint(ctx, s.store, wpID); err != nil {
		return nil, err
	}
	if _, err := s.specialist(ctx, s.store, specialistID); err != nil {
		return nil, err
	}

	slot := calendar.TimeRange{Start: start, End: start.Add(svc.Duration())}
	detector := calendar.NewDetector(calendar.NewResolver(s.store.Schedule()), s.store.Bookings)
	v, err := detector.CheckCreateOrModify(ctx, specialistID, wpID, slot, uuid.Nil)
	if err != nil {
		return nil, s.translate(err, "Failed to check schedule")
	}
	if !v.Day.HasProgram && v.Day.Source == calendar.DaySourceWeekly {
		return nil, apperror.NotFound(msgNoSchedule)
	}

	res := &ShiftConflictResult{
		HasConflict:  !v.OK,
		Reason:       string(v.Reason),
		Message:      conflictMessages[v.Reason],
		BookingStart: formatDateTime(slot.Start),
		BookingEnd:   formatDateTime(slot.End),
	}
	if v.Shift != nil {
		res.Shift = &ShiftDetail{
			Index: v.ShiftIndex + 1,
			Start: calendar.ClockOf(v.Shift.Start).Short(),
			End:   calendar.ClockOf(v.Shift.End).Short(),
		}
	}
	for _, o := range v.Occupied {
		res.Occupied = append(res.Occupied, Interval{Start: formatDateTime(o.Start), End: formatDateTime(o.End)})
	}
	return res, nil
}

// ListSpecialistsForWorkPoint — специалисты, у которых есть программа в филиале.
func (s *BookingService) ListSpecialistsForWorkPoint(ctx context.Context, actor access.AuthContext, req ListRequest) (ListPage[SpecialistSummary], error) {
	wpID, err := parseID("work_point_id", req.ID)
	if err != nil {
		return ListPage[SpecialistSummary]{}, err
	}
	items, err := s.store.Specialists.ListByWorkPoint(ctx, wpID)
	if err != nil {
		return ListPage[SpecialistSummary]{}, apperror.Database(err, "Failed to list specialists")
	}
	out := make([]SpecialistSummary, 0, len(items))
	for _, sp := range items {
		out = append(out, SpecialistSummary{
			ID:             sp.ID,
			Name:           sp.Name,
			Speciality:     sp.Speciality,
			OrganisationID: sp.OrganisationID,
		})
	}
	return pageOf(out, req), nil
}

// ListWorkPointsForSpecialist — филиалы, где у специалиста есть программа.
func (s *BookingService) ListWorkPointsForSpecialist(ctx context.Context, actor access.AuthContext, req ListRequest) (ListPage[WorkPointSummary], error) {
	spID, err := parseID("specialist_id", req.ID)
	if err != nil {
		return ListPage[WorkPointSummary]{}, err
	}
	items, err := s.store.WorkPoints.ListBySpecialist(ctx, spID)
	if err != nil {
		return ListPage[WorkPointSummary]{}, apperror.Database(err, "Failed to list work points")
	}
	out := make([]WorkPointSummary, 0, len(items))
	for _, wp := range items {
		out = append(out, WorkPointSummary{
			ID:       wp.ID,
			Name:     wp.Name,
			Address:  wp.Address,
			Timezone: wp.Timezone,
		})
	}
	return pageOf(out, req), nil
}

// ListServices — доступные услуги филиала. Специалист видит только свои.
func (s *BookingService) ListServices(ctx context.Context, actor access.AuthContext, req ListRequest) (ListPage[ServiceSummary], error) {
	wpID, err := parseID("work_point_id", req.ID)
	if err != nil {
		return ListPage[ServiceSummary]{}, err
	}
	var only *uuid.UUID
	if actor.Role == access.RoleSpecialist {
		id := actor.ScopeID
		only = &id
	}
	items, err := s.store.Services.ListAvailable(ctx, wpID, only)
	if err != nil {
		return ListPage[ServiceSummary]{}, apperror.Database(err, "Failed to list services")
	}
	out := make([]ServiceSummary, 0, len(items))
	for _, svc := range items {
		out = append(out, ServiceSummary{
			ID:              svc.ID,
			SpecialistID:    svc.SpecialistID,
			Name:            svc.Name,
			DurationMinutes: svc.DurationMinutes,
			Price:           svc.Price,
			VatPercent:      svc.VatPercent,
		})
	}
	return pageOf(out, req), nil
}

func checkActor(actor access.AuthContext) error {
	if err := actor.Validate(); err != nil {
		return apperror.Permission("Invalid session")
	}
	return nil
}

// checkSlot запускает детектор на репозиториях транзакции.
func checkSlot(ctx context.Context, tx *repository.Store, specialistID, workPointID uuid.UUID, slot calendar.TimeRange, exclude uuid.UUID) error {
	detector := calendar.NewDetector(calendar.NewResolver(tx.Schedule()), tx.Bookings)
	v, err := detector.CheckCreateOrModify(ctx, specialistID, workPointID, slot, exclude)
	if err != nil {
		return err
	}
	if !v.OK {
		return apperror.Conflict(conflictMessages[v.Reason])
	}
	return nil
}

// replayAfterDuplicate: параллельный запрос с тем же ключом успел записать бронь
// первым, поэтому её можно вернуть как повтор.
func (s *BookingService) replayAfterDuplicate(ctx context.Context, key string) (*model.Booking, bool) {
	existing, err := s.store.Bookings.FindByIdempotencyKey(ctx, key)
	if err != nil || existing == nil {
		return nil, false
	}
	return existing, true
}

// sameBooking — повтор с ключом должен совпадать со специалистом, услугой и началом.
func sameBooking(b *model.Booking, specialistID, serviceID uuid.UUID, start time.Time) bool {
	return b.SpecialistID == specialistID && b.ServiceID == serviceID && b.StartAt.Equal(start)
}

// sameOrganisation: услуга и филиал должны принадлежать организации специалиста.
func (s *BookingService) sameOrganisation(ctx context.Context, sp *model.Specialist, svc *model.Service, wp *model.WorkPoint) error {
	if wp.OrganisationID != sp.OrganisationID {
		return apperror.Validation(msgForeignWorkPoint)
	}
	if svc.SpecialistID == sp.ID {
		return nil
	}
	owner, err := s.specialist(ctx, s.store, svc.SpecialistID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return apperror.Validation(msgForeignService)
		}
		return err
	}
	if owner.OrganisationID != sp.OrganisationID {
		return apperror.Validation(msgForeignService)
	}
	return nil
}

// translate приводит ошибку транзакции к классу для клиента.
func (s *BookingService) translate(err error, msg string) error {
	var ae *apperror.Error
	switch {
	case errors.As(err, &ae):
		return ae
	case repository.IsSlotRace(err), repository.IsDuplicate(err):
		return apperror.Conflict(msgSlotRace)
	case repository.IsNotFound(err):
		return apperror.NotFound("Booking not found")
	case errors.Is(err, calendar.ErrShiftOverlap),
		errors.Is(err, calendar.ErrInvalidShift),
		errors.Is(err, calendar.ErrInvalidTimeOff):
		s.log.Error().Err(err).Msg("inconsistent working schedule")
		return apperror.Database(err, msgBrokenSchedule)
	default:
		s.log.Error().Err(err).Msg(msg)
		return apperror.Database(err, msg)
	}
}

func (s *BookingService) booking(ctx context.Context, st *repository.Store, id uuid.UUID) (*model.Booking, error) {
	b, err := st.Bookings.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperror.NotFound("Booking not found")
		}
		return nil, apperror.Database(err, "Failed to load booking")
	}
	return b, nil
}

func (s *BookingService) specialist(ctx context.Context, st *repository.Store, id uuid.UUID) (*model.Specialist, error) {
	sp, err := st.Specialists.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperror.NotFound("Specialist not found")
		}
		return nil, apperror.Database(err, "Failed to load specialist")
	}
	return sp, nil
}

func (s *BookingService) workPoint(ctx context.Context, st *repository.Store, id uuid.UUID) (*model.WorkPoint, error) {
	wp, err := st.WorkPoints.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperror.NotFound("Work point not found")
		}
		return nil, apperror.Database(err, "Failed to load work point")
	}
	return wp, nil
}

// availableService — услуга существует, не удалена и не приостановлена.
func (s *BookingService) availableService(ctx context.Context, st *repository.Store, id uuid.UUID) (*model.Service, error) {
	svc, err := st.Services.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperror.NotFound("Service not found or not available")
		}
		return nil, apperror.Database(err, "Failed to load service")
	}
	if !svc.Available() {
		return nil, apperror.NotFound("Service not found or not available")
	}
	if err := validDuration(svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// localNow — текущее время филиала; если филиал не найден, берётся зона по умолчанию.
func (s *BookingService) localNow(ctx context.Context, workPointID uuid.UUID) time.Time {
	wp, err := s.store.WorkPoints.GetByID(ctx, workPointID)
	if err != nil {
		return s.zones.NowInWorkPoint("")
	}
	return s.zones.NowInWorkPoint(wp.Timezone)
}

// BookingPayload — снимок брони в событиях outbox и заданиях синхронизации.
type BookingPayload struct {
	BookingID     uuid.UUID `json:"booking_id"`
	SpecialistID  uuid.UUID `json:"specialist_id"`
	WorkPointID   uuid.UUID `json:"work_point_id"`
	ServiceID     uuid.UUID `json:"service_id"`
	ClientName    string    `json:"client_name"`
	ClientPhone   string    `json:"client_phone"`
	StartAt       string    `json:"start_datetime"`
	EndAt         string    `json:"end_datetime"`
	SourceChannel string    `json:"source_channel"`
	CreatedAt     string    `json:"created_at"`
}

func bookingPayload(b *model.Booking) BookingPayload {
	return BookingPayload{
		BookingID:     b.ID,
		SpecialistID:  b.SpecialistID,
		WorkPointID:   b.WorkPointID,
		ServiceID:     b.ServiceID,
		ClientName:    b.ClientName,
		ClientPhone:   b.ClientPhone,
		StartAt:       formatDateTime(b.StartAt),
		EndAt:         formatDateTime(b.EndAt),
		SourceChannel: b.SourceChannel,
		CreatedAt:     formatDateTime(b.CreatedAtLocal),
	}
}

func newOutboxEvent(t model.EventType, b *model.Booking, organisationID uuid.UUID, sms model.SMSPreference) *model.OutboxEvent {
	payload, _ := json.Marshal(bookingPayload(b))
	return &model.OutboxEvent{
		EventType:      t,
		BookingID:      b.ID,
		SpecialistID:   b.SpecialistID,
		WorkPointID:    b.WorkPointID,
		OrganisationID: organisationID,
		SMSPreference:  sms,
		Payload:        datatypes.JSON(payload),
	}
}
