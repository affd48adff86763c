package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Leganyst/booking-engine/internal/calendar"
	"github.com/Leganyst/booking-engine/internal/model"
)

// ScheduleSource — адаптер хранилища к calendar.ScheduleSource.
type ScheduleSource struct {
	programs   ProgramRepository
	timeOff    TimeOffRepository
	workPoints WorkPointRepository
}

func (s *ScheduleSource) WeeklyProgram(
	ctx context.Context,
	specialistID, workPointID uuid.UUID,
	day time.Weekday,
) (*calendar.WeeklyProgram, error) {
	p, err := s.programs.Get(ctx, specialistID, workPointID, day)
	if err != nil || p == nil {
		return nil, err
	}
	return ProgramToCalendar(p), nil
}

func (s *ScheduleSource) TimeOff(ctx context.Context, specialistID uuid.UUID, date time.Time) (*calendar.TimeOff, error) {
	t, err := s.timeOff.GetByDate(ctx, specialistID, date)
	if err != nil || t == nil {
		return nil, err
	}
	off := &calendar.TimeOff{Kind: calendar.FullDayOff}
	if t.Kind == model.TimeOffPartialDay && t.WorkStart != nil && t.WorkEnd != nil {
		off.Kind = calendar.PartialDayOff
		off.WorkStart = calendar.Clock(*t.WorkStart)
		off.WorkEnd = calendar.Clock(*t.WorkEnd)
	}
	return off, nil
}

func (s *ScheduleSource) WorkPointClosed(ctx context.Context, workPointID uuid.UUID, date time.Time) (bool, error) {
	return s.workPoints.IsClosed(ctx, workPointID, date)
}

// ProgramToCalendar переводит хранимые пары в необязательные слоты.
func ProgramToCalendar(p *model.WorkingProgram) *calendar.WeeklyProgram {
	out := &calendar.WeeklyProgram{}
	for i, pair := range p.ShiftPairs() {
		out.Shifts[i] = calendar.ShiftFromStored(calendar.Clock(pair[0]), calendar.Clock(pair[1]))
	}
	return out
}

// ShiftsToStored — обратное преобразование для записи.
func ShiftsToStored(shifts [3]calendar.Shift) [3][2]datatypes.Time {
	var pairs [3][2]datatypes.Time
	for i, s := range shifts {
		start, end := s.Stored()
		pairs[i] = [2]datatypes.Time{datatypes.Time(start), datatypes.Time(end)}
	}
	return pairs
}
