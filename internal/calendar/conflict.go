package calendar

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Reason — причина отказа в слоте.
type Reason string

const (
	ReasonSlotOccupied   Reason = "slot occupied"
	ReasonOutsideHours   Reason = "outside working hours"
	ReasonBeyondShiftEnd Reason = "extends beyond shift end"
)

// BookingSource отдаёт интервалы живых бронирований специалиста в окне.
// exclude — бронирование, которое не учитывается (при переносе).
type BookingSource interface {
	Occupied(ctx context.Context, specialistID uuid.UUID, window TimeRange, exclude uuid.UUID) ([]TimeRange, error)
}

// Verdict — результат проверки кандидата.
type Verdict struct {
	OK     bool
	Reason Reason

	// Интервал, в который попало начало кандидата (если есть).
	Shift      *TimeRange
	ShiftIndex int

	Occupied []TimeRange
	Day      Day
}

// Detector проверяет кандидата на пересечение с бронями и попадание в смену.
type Detector struct {
	resolver *Resolver
	bookings BookingSource
}

func NewDetector(resolver *Resolver, bookings BookingSource) *Detector {
	return &Detector{resolver: resolver, bookings: bookings}
}

// CheckCreateOrModify выполняет обе обязательные проверки:
// пересечение с живыми бронированиями и вхождение в рабочий интервал.
func (d *Detector) CheckCreateOrModify(
	ctx context.Context,
	specialistID, workPointID uuid.UUID,
	candidate TimeRange,
	excludeBookingID uuid.UUID,
) (Verdict, error) {
	v := Verdict{ShiftIndex: -1}

	existing, err := d.bookings.Occupied(ctx, specialistID, candidate.Day(), excludeBookingID)
	if err != nil {
		return v, fmt.Errorf("occupied intervals: %w", err)
	}

	day, err := d.resolver.ResolveDay(ctx, specialistID, workPointID, candidate.Start)
	if err != nil {
		return v, err
	}
	v.Day = day

	idx, reason := Contain(day.Intervals, candidate)
	if idx >= 0 {
		shift := day.Intervals[idx]
		v.Shift = &shift
		v.ShiftIndex = idx
	}

	if overlap, conflicts := HasOverlap(candidate, existing, false); overlap {
		v.Reason = ReasonSlotOccupied
		v.Occupied = conflicts
		return v, nil
	}

	if reason != "" {
		v.Reason = reason
		return v, nil
	}

	v.OK = true
	return v, nil
}

// Contain ищет интервал, где start <= candidate.Start < end.
// Начало, совпадающее с концом смены, относится к следующей смене;
// конец, совпадающий с концом смены, допустим.
func Contain(intervals []TimeRange, candidate TimeRange) (int, Reason) {
	for i, iv := range intervals {
		if iv.Start.After(candidate.Start) || !candidate.Start.Before(iv.End) {
			continue
		}
		if candidate.End.After(iv.End) {
			return i, ReasonBeyondShiftEnd
		}
		return i, ""
	}
	return -1, ReasonOutsideHours
}
