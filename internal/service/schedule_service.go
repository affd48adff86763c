package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

const maxShifts = 3

const msgOrphanedBookings = "Schedule change leaves existing bookings outside working hours"

// ScheduleService — запись рабочих программ, исключений и длительности услуг.
type ScheduleService struct {
	store *repository.Store
	zones calendar.TimezoneProvider
	gate  *access.Gate
	log   zerolog.Logger
}

func NewScheduleService(store *repository.Store, zones calendar.TimezoneProvider, log zerolog.Logger) *ScheduleService {
	return &ScheduleService{
		store: store,
		zones: zones,
		gate:  access.NewGate(store.Programs),
		log:   log.With().Str("component", "schedule").Logger(),
	}
}

// SaveWeeklyProgram записывает до трёх смен специалиста на день недели.
// Пустой список смен — выходной.
func (s *ScheduleService) SaveWeeklyProgram(ctx context.Context, actor access.AuthContext, req SaveWeeklyProgramRequest) error {
	spID, err := parseID("specialist_id", req.SpecialistID)
	if err != nil {
		return err
	}
	wpID, err := parseID("work_point_id", req.WorkPointID)
	if err != nil {
		return err
	}
	day, err := parseWeekday(req.DayOfWeek)
	if err != nil {
		return err
	}
	if len(req.Shifts) > maxShifts {
		return apperror.Validationf("At most %d shifts per day are allowed", maxShifts)
	}

	var shifts [3]calendar.Shift
	for i, in := range req.Shifts {
		start, err := calendar.ParseClock(in.Start)
		if err != nil {
			return apperror.Validationf("Invalid start time for shift %d", i+1)
		}
		end, err := calendar.ParseClock(in.End)
		if err != nil {
			return apperror.Validationf("Invalid end time for shift %d", i+1)
		}
		if start >= end {
			return apperror.Validationf("Shift %d must start before it ends", i+1)
		}
		shifts[i] = calendar.NewShift(start, end)
	}
	// Дата не важна: проверяется только взаимное пересечение смен.
	if _, err := calendar.WeeklyIntervals(time.Time{}, shifts); err != nil {
		if errors.Is(err, calendar.ErrShiftOverlap) {
			return apperror.Validation("Shifts must not overlap")
		}
		return apperror.Validation("Invalid shift")
	}

	sp, err := s.specialist(ctx, spID)
	if err != nil {
		return err
	}
	wp, err := s.store.WorkPoints.GetByID(ctx, wpID)
	if err != nil {
		if repository.IsNotFound(err) {
			return apperror.NotFound("Work point not found")
		}
		return apperror.Database(err, "Failed to load work point")
	}
	if wp.OrganisationID != sp.OrganisationID {
		return apperror.Validation("Work point belongs to a different organisation")
	}
	if err := s.authorize(ctx, actor, sp); err != nil {
		return err
	}

	p := &model.WorkingProgram{SpecialistID: sp.ID, WorkPointID: wp.ID, DayOfWeek: model.DayName(day)}
	p.SetShiftPairs(repository.ShiftsToStored(shifts))
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Specialists.Lock(ctx, sp.ID); err != nil {
			return err
		}
		if err := tx.Programs.Upsert(ctx, p); err != nil {
			return err
		}
		return s.checkLiveBookings(ctx, tx, sp.ID, func(b model.Booking) bool {
			return b.WorkPointID == wp.ID && b.StartAt.Weekday() == day
		})
	})
	if err != nil {
		return s.translate(err, "Failed to save working program")
	}
	s.log.Info().
		Str("specialist_id", sp.ID.String()).
		Str("work_point_id", wp.ID.String()).
		Str("day", p.DayOfWeek).
		Int("shifts", len(req.Shifts)).
		Msg("weekly program saved")
	return nil
}

// SaveTimeOff заменяет все исключения специалиста переданным списком.
func (s *ScheduleService) SaveTimeOff(ctx context.Context, actor access.AuthContext, req SaveTimeOffRequest) error {
	spID, err := parseID("specialist_id", req.SpecialistID)
	if err != nil {
		return err
	}

	items := make([]model.TimeOff, 0, len(req.Days))
	seen := map[string]bool{}
	for _, in := range req.Days {
		item, err := parseTimeOff(in)
		if err != nil {
			return err
		}
		if seen[in.Date] {
			return apperror.Validationf("Duplicate day off %s", in.Date)
		}
		seen[in.Date] = true
		items = append(items, item)
	}

	sp, err := s.specialist(ctx, spID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actor, sp); err != nil {
		return err
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Specialists.Lock(ctx, sp.ID); err != nil {
			return err
		}
		if err := tx.TimeOff.ReplaceAll(ctx, sp.ID, items); err != nil {
			return err
		}
		return s.checkLiveBookings(ctx, tx, sp.ID, nil)
	})
	if err != nil {
		return s.translate(err, "Failed to save days off")
	}
	s.log.Info().Str("specialist_id", sp.ID.String()).Int("days", len(items)).Msg("days off saved")
	return nil
}

// ChangeServiceDuration меняет длительность услуги, если по ней нет будущих броней.
func (s *ScheduleService) ChangeServiceDuration(ctx context.Context, actor access.AuthContext, req ChangeServiceDurationRequest) error {
	svcID, err := parseID("service_id", req.ServiceID)
	if err != nil {
		return err
	}
	if !model.ValidDuration(req.DurationMinutes) {
		return apperror.Validationf("Duration must be between %d and %d minutes",
			model.MinServiceDuration, model.MaxServiceDuration)
	}

	svc, err := s.store.Services.GetByID(ctx, svcID)
	if err != nil {
		if repository.IsNotFound(err) {
			return apperror.NotFound("Service not found")
		}
		return apperror.Database(err, "Failed to load service")
	}
	sp, err := s.specialist(ctx, svc.SpecialistID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actor, sp); err != nil {
		return err
	}

	tz := ""
	if wp, err := s.store.WorkPoints.GetByID(ctx, svc.WorkPointID); err == nil {
		tz = wp.Timezone
	}
	busy, err := s.store.Bookings.HasFutureForService(ctx, svc.ID, s.zones.NowInWorkPoint(tz))
	if err != nil {
		return apperror.Database(err, "Failed to check bookings")
	}
	if busy {
		return apperror.Conflict("Service duration cannot be changed while future bookings exist")
	}
	if err := s.store.Services.UpdateDuration(ctx, svc.ID, req.DurationMinutes); err != nil {
		return apperror.Database(err, "Failed to update service")
	}
	s.log.Info().Str("service_id", svc.ID.String()).Int("minutes", req.DurationMinutes).Msg("service duration changed")
	return nil
}

// checkLiveBookings проверяет уже записанное в tx расписание: каждая будущая
// бронь специалиста (из отобранных affected) должна лежать внутри рабочего
// интервала. Иначе — Conflict со списком броней, транзакция откатывается.
func (s *ScheduleService) checkLiveBookings(ctx context.Context, tx *repository.Store, specialistID uuid.UUID, affected func(model.Booking) bool) error {
	// Сутки запаса: «сейчас» у филиалов в разных зонах разное.
	from := calendar.DateOnly(s.zones.NowInWorkPoint("")).AddDate(0, 0, -1)
	bookings, err := tx.Bookings.ListStartingFrom(ctx, specialistID, from)
	if err != nil {
		return err
	}

	resolver := calendar.NewResolver(tx.Schedule())
	nows := map[uuid.UUID]time.Time{}
	var orphaned []string
	for _, b := range bookings {
		if affected != nil && !affected(b) {
			continue
		}
		now, ok := nows[b.WorkPointID]
		if !ok {
			tz := ""
			if wp, err := tx.WorkPoints.GetByID(ctx, b.WorkPointID); err == nil {
				tz = wp.Timezone
			}
			now = s.zones.NowInWorkPoint(tz)
			nows[b.WorkPointID] = now
		}
		if b.StartAt.Before(now) {
			continue
		}
		intervals, err := resolver.Resolve(ctx, b.SpecialistID, b.WorkPointID, b.StartAt)
		if err != nil {
			return err
		}
		if _, reason := calendar.Contain(intervals, calendar.TimeRange{Start: b.StartAt, End: b.EndAt}); reason != "" {
			orphaned = append(orphaned, fmt.Sprintf("%s (%s)", b.ID, formatDateTime(b.StartAt)))
		}
	}
	if len(orphaned) > 0 {
		return apperror.Conflict(fmt.Sprintf("%s: %s", msgOrphanedBookings, strings.Join(orphaned, ", ")))
	}
	return nil
}

func (s *ScheduleService) translate(err error, msg string) error {
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return ae
	}
	s.log.Error().Err(err).Msg(msg)
	return apperror.Database(err, msg)
}

func (s *ScheduleService) specialist(ctx context.Context, id uuid.UUID) (*model.Specialist, error) {
	sp, err := s.store.Specialists.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperror.NotFound("Specialist not found")
		}
		return nil, apperror.Database(err, "Failed to load specialist")
	}
	return sp, nil
}

func (s *ScheduleService) authorize(ctx context.Context, actor access.AuthContext, sp *model.Specialist) error {
	if err := checkActor(actor); err != nil {
		return err
	}
	return s.gate.Authorize(ctx, actor, access.Target{SpecialistID: sp.ID, OrganisationID: sp.OrganisationID})
}

func parseWeekday(v string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(v))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if model.DayName(d) == name {
			return d, nil
		}
	}
	return 0, apperror.Validation("Invalid day_of_week")
}

func parseTimeOff(in TimeOffInput) (model.TimeOff, error) {
	date, err := calendar.ParseDate(in.Date)
	if err != nil {
		return model.TimeOff{}, apperror.Validation("Invalid date format. Expected YYYY-MM-DD")
	}
	item := model.TimeOff{DateOff: datatypes.Date(date), Kind: model.TimeOffFullDay}
	switch model.TimeOffKind(strings.ToLower(in.Kind)) {
	case "", model.TimeOffFullDay:
		return item, nil
	case model.TimeOffPartialDay:
	default:
		return model.TimeOff{}, apperror.Validation("Invalid day off kind")
	}

	start, err := calendar.ParseClock(in.WorkStart)
	if err != nil {
		return model.TimeOff{}, apperror.Validation("Invalid work_start for partial day off")
	}
	end, err := calendar.ParseClock(in.WorkEnd)
	if err != nil {
		return model.TimeOff{}, apperror.Validation("Invalid work_end for partial day off")
	}
	if start >= end {
		return model.TimeOff{}, apperror.Validation("Partial day off must start before it ends")
	}
	ws, we := datatypes.Time(start), datatypes.Time(end)
	item.Kind = model.TimeOffPartialDay
	item.WorkStart = &ws
	item.WorkEnd = &we
	return item, nil
}
