package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WeeklyProgram — смены специалиста в филиале для одного дня недели.
type WeeklyProgram struct {
	Shifts [3]Shift
}

type TimeOffKind string

const (
	FullDayOff    TimeOffKind = "full"
	PartialDayOff TimeOffKind = "partial"
)

// TimeOff — исключение на дату. Для PartialDayOff окно WorkStart–WorkEnd
// заменяет смены дня целиком.
type TimeOff struct {
	Kind      TimeOffKind
	WorkStart Clock
	WorkEnd   Clock
}

// ScheduleSource — откуда резолвер берёт программу и исключения.
// nil-результат означает «записи нет».
type ScheduleSource interface {
	WeeklyProgram(ctx context.Context, specialistID, workPointID uuid.UUID, day time.Weekday) (*WeeklyProgram, error)
	TimeOff(ctx context.Context, specialistID uuid.UUID, date time.Time) (*TimeOff, error)
	WorkPointClosed(ctx context.Context, workPointID uuid.UUID, date time.Time) (bool, error)
}

// DaySource — какое правило определило рабочие интервалы дня.
type DaySource string

const (
	DaySourceWeekly     DaySource = "weekly"
	DaySourceFullDayOff DaySource = "full_day_off"
	DaySourcePartialDay DaySource = "partial_day_off"
	DaySourceClosure    DaySource = "work_point_closure"
)

// Day — результат разрешения рабочего дня.
type Day struct {
	Date       time.Time
	Intervals  []TimeRange
	HasProgram bool
	Source     DaySource
}

// Resolver вычисляет рабочие интервалы специалиста на дату.
type Resolver struct {
	src ScheduleSource
}

func NewResolver(src ScheduleSource) *Resolver {
	return &Resolver{src: src}
}

// Resolve возвращает упорядоченные непересекающиеся рабочие интервалы (возможно пустые).
func (r *Resolver) Resolve(ctx context.Context, specialistID, workPointID uuid.UUID, date time.Time) ([]TimeRange, error) {
	day, err := r.ResolveDay(ctx, specialistID, workPointID, date)
	if err != nil {
		return nil, err
	}
	return day.Intervals, nil
}

func (r *Resolver) ResolveDay(ctx context.Context, specialistID, workPointID uuid.UUID, date time.Time) (Day, error) {
	date = DateOnly(date)
	day := Day{Date: date, Intervals: []TimeRange{}, Source: DaySourceWeekly}

	// 1. Недельная программа.
	prog, err := r.src.WeeklyProgram(ctx, specialistID, workPointID, date.Weekday())
	if err != nil {
		return Day{}, fmt.Errorf("weekly program: %w", err)
	}
	weekly := []TimeRange{}
	if prog != nil {
		day.HasProgram = true
		weekly, err = WeeklyIntervals(date, prog.Shifts)
		if err != nil {
			return Day{}, err
		}
	}

	// 2. Закрытие филиала — выходной для всех.
	closed, err := r.src.WorkPointClosed(ctx, workPointID, date)
	if err != nil {
		return Day{}, fmt.Errorf("work point closure: %w", err)
	}
	if closed {
		day.Source = DaySourceClosure
		return day, nil
	}

	// 3. Исключение специалиста на дату.
	off, err := r.src.TimeOff(ctx, specialistID, date)
	if err != nil {
		return Day{}, fmt.Errorf("time off: %w", err)
	}
	if off != nil {
		switch off.Kind {
		case PartialDayOff:
			if off.WorkStart >= off.WorkEnd {
				return Day{}, ErrInvalidTimeOff
			}
			day.Source = DaySourcePartialDay
			day.Intervals = []TimeRange{{Start: off.WorkStart.On(date), End: off.WorkEnd.On(date)}}
		default:
			day.Source = DaySourceFullDayOff
		}
		return day, nil
	}

	day.Intervals = weekly
	return day, nil
}

// WeeklyIntervals разворачивает слоты смен в интервалы на дату:
// пустые слоты отбрасываются, остальные сортируются по началу.
// Пересечение смен — ошибка целостности данных.
func WeeklyIntervals(date time.Time, shifts [3]Shift) ([]TimeRange, error) {
	ranges := make([]TimeRange, 0, len(shifts))
	for _, s := range shifts {
		tr, ok := s.On(date)
		if !ok {
			continue
		}
		if !tr.End.After(tr.Start) {
			return nil, ErrInvalidShift
		}
		ranges = append(ranges, tr)
	}
	if err := sortRanges(ranges); err != nil {
		return nil, err
	}
	return ranges, nil
}
