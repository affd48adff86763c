package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func mustTime(t *testing.T, year int, month time.Month, day, hour, min int) time.Time {
	t.Helper()
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func equalTimeRange(a, b TimeRange) bool {
	return a.Start.Equal(b.Start) && a.End.Equal(b.End)
}

func equalTimeRangeSlices(a, b []TimeRange) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalTimeRange(a[i], b[i]) {
			return false
		}
	}
	return true
}

// fakeSource — источник расписания на функциях.
type fakeSource struct {
	WeeklyProgramFunc   func(day time.Weekday) (*WeeklyProgram, error)
	TimeOffFunc         func(date time.Time) (*TimeOff, error)
	WorkPointClosedFunc func(date time.Time) (bool, error)
}

func (f *fakeSource) WeeklyProgram(_ context.Context, _, _ uuid.UUID, day time.Weekday) (*WeeklyProgram, error) {
	if f.WeeklyProgramFunc == nil {
		return nil, nil
	}
	return f.WeeklyProgramFunc(day)
}

func (f *fakeSource) TimeOff(_ context.Context, _ uuid.UUID, date time.Time) (*TimeOff, error) {
	if f.TimeOffFunc == nil {
		return nil, nil
	}
	return f.TimeOffFunc(date)
}

func (f *fakeSource) WorkPointClosed(_ context.Context, _ uuid.UUID, date time.Time) (bool, error) {
	if f.WorkPointClosedFunc == nil {
		return false, nil
	}
	return f.WorkPointClosedFunc(date)
}

type fakeBookings struct {
	ranges []TimeRange
}

func (f *fakeBookings) Occupied(_ context.Context, _ uuid.UUID, window TimeRange, _ uuid.UUID) ([]TimeRange, error) {
	var out []TimeRange
	for _, r := range f.ranges {
		if rangesOverlap(r, window, false) {
			out = append(out, r)
		}
	}
	return out, nil
}

func weekly(shifts ...Shift) func(time.Weekday) (*WeeklyProgram, error) {
	return func(time.Weekday) (*WeeklyProgram, error) {
		p := &WeeklyProgram{}
		copy(p.Shifts[:], shifts)
		return p, nil
	}
}

//
// Интервалы и пересечения
//

func TestHasOverlap_HalfOpen(t *testing.T) {
	base := TimeRange{Start: mustTime(t, 2025, 1, 1, 10, 0), End: mustTime(t, 2025, 1, 1, 11, 0)}
	touching := TimeRange{Start: mustTime(t, 2025, 1, 1, 11, 0), End: mustTime(t, 2025, 1, 1, 12, 0)}
	inside := TimeRange{Start: mustTime(t, 2025, 1, 1, 10, 30), End: mustTime(t, 2025, 1, 1, 10, 45)}

	if ok, _ := HasOverlap(base, []TimeRange{touching}, false); ok {
		t.Fatalf("touching ranges must not overlap in half-open mode")
	}
	if ok, _ := HasOverlap(base, []TimeRange{touching}, true); !ok {
		t.Fatalf("touching ranges must overlap in inclusive mode")
	}
	ok, conflicts := HasOverlap(base, []TimeRange{touching, inside}, false)
	if !ok || len(conflicts) != 1 || !equalTimeRange(conflicts[0], inside) {
		t.Fatalf("expected only inner range as conflict, got %v", conflicts)
	}
}

func TestNewTimeRange_Invalid(t *testing.T) {
	start := mustTime(t, 2025, 1, 1, 10, 0)
	if _, err := NewTimeRange(start, start); !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("expected ErrInvalidTimeRange for empty range, got %v", err)
	}
}

//
// Время суток и слоты смен
//

func TestParseClock(t *testing.T) {
	c, err := ParseClock("09:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.String() != "09:30:00" || c.Short() != "09:30" {
		t.Fatalf("unexpected clock %s", c)
	}

	for _, bad := range []string{"9:30", "24:00", "12:60", "12:30:00", ""} {
		if _, err := ParseClock(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-12-25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Weekday() != time.Wednesday {
		t.Fatalf("expected wednesday, got %s", d.Weekday())
	}
	for _, bad := range []string{"2024-13-01", "25.12.2024", "2024-2-1", "2024-02-30"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestShiftFromStored_ZeroPairIsNoShift(t *testing.T) {
	if ShiftFromStored(0, 0).Present() {
		t.Fatalf("00:00:00-00:00:00 must mean no shift")
	}
	s := ShiftFromStored(0, NewClock(6, 0))
	if !s.Present() {
		t.Fatalf("shift starting at midnight must be kept")
	}
	start, end := NoShift.Stored()
	if start != 0 || end != 0 {
		t.Fatalf("absent shift must be stored as zero pair")
	}
}

//
// Резолвер рабочих часов
//

func TestResolver_SortsAndDropsAbsentShifts(t *testing.T) {
	src := &fakeSource{WeeklyProgramFunc: weekly(
		NewShift(NewClock(14, 0), NewClock(18, 0)),
		NoShift,
		NewShift(NewClock(9, 0), NewClock(12, 0)),
	)}
	r := NewResolver(src)

	got, err := r.Resolve(context.Background(), uuid.New(), uuid.New(), mustTime(t, 2025, 3, 3, 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []TimeRange{
		{Start: mustTime(t, 2025, 3, 3, 9, 0), End: mustTime(t, 2025, 3, 3, 12, 0)},
		{Start: mustTime(t, 2025, 3, 3, 14, 0), End: mustTime(t, 2025, 3, 3, 18, 0)},
	}
	if !equalTimeRangeSlices(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestResolver_OverlappingShiftsIsIntegrityError(t *testing.T) {
	src := &fakeSource{WeeklyProgramFunc: weekly(
		NewShift(NewClock(9, 0), NewClock(13, 0)),
		NewShift(NewClock(12, 0), NewClock(15, 0)),
	)}
	_, err := NewResolver(src).Resolve(context.Background(), uuid.New(), uuid.New(), mustTime(t, 2025, 3, 3, 0, 0))
	if !errors.Is(err, ErrShiftOverlap) {
		t.Fatalf("expected ErrShiftOverlap, got %v", err)
	}
}

func TestResolver_FullDayOff(t *testing.T) {
	src := &fakeSource{
		WeeklyProgramFunc: weekly(NewShift(NewClock(9, 0), NewClock(18, 0))),
		TimeOffFunc: func(time.Time) (*TimeOff, error) {
			return &TimeOff{Kind: FullDayOff}, nil
		},
	}
	day, err := NewResolver(src).ResolveDay(context.Background(), uuid.New(), uuid.New(), mustTime(t, 2024, 12, 25, 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(day.Intervals) != 0 {
		t.Fatalf("expected no intervals on full day off, got %v", day.Intervals)
	}
	if day.Source != DaySourceFullDayOff || !day.HasProgram {
		t.Fatalf("unexpected day %+v", day)
	}
}

func TestResolver_PartialDayOffReplacesShifts(t *testing.T) {
	src := &fakeSource{
		WeeklyProgramFunc: weekly(NewShift(NewClock(9, 0), NewClock(18, 0))),
		TimeOffFunc: func(time.Time) (*TimeOff, error) {
			return &TimeOff{Kind: PartialDayOff, WorkStart: NewClock(13, 0), WorkEnd: NewClock(17, 0)}, nil
		},
	}
	got, err := NewResolver(src).Resolve(context.Background(), uuid.New(), uuid.New(), mustTime(t, 2025, 3, 3, 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []TimeRange{{Start: mustTime(t, 2025, 3, 3, 13, 0), End: mustTime(t, 2025, 3, 3, 17, 0)}}
	if !equalTimeRangeSlices(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestResolver_WorkPointClosure(t *testing.T) {
	src := &fakeSource{
		WeeklyProgramFunc:   weekly(NewShift(NewClock(9, 0), NewClock(18, 0))),
		WorkPointClosedFunc: func(time.Time) (bool, error) { return true, nil },
	}
	day, err := NewResolver(src).ResolveDay(context.Background(), uuid.New(), uuid.New(), mustTime(t, 2025, 1, 1, 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(day.Intervals) != 0 || day.Source != DaySourceClosure {
		t.Fatalf("expected closed day, got %+v", day)
	}
}

//
// Детектор конфликтов
//

func newTestDetector(t *testing.T, busy []TimeRange, shifts ...Shift) *Detector {
	t.Helper()
	return NewDetector(NewResolver(&fakeSource{WeeklyProgramFunc: weekly(shifts...)}), &fakeBookings{ranges: busy})
}

func TestDetector_ExtendsBeyondShiftEnd(t *testing.T) {
	d := newTestDetector(t, nil, NewShift(NewClock(9, 0), NewClock(12, 0)))
	candidate := TimeRange{Start: mustTime(t, 2025, 3, 3, 11, 30), End: mustTime(t, 2025, 3, 3, 12, 15)}

	v, err := d.CheckCreateOrModify(context.Background(), uuid.New(), uuid.New(), candidate, uuid.Nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.OK || v.Reason != ReasonBeyondShiftEnd {
		t.Fatalf("expected %q, got %+v", ReasonBeyondShiftEnd, v)
	}
	if v.ShiftIndex != 0 || v.Shift == nil {
		t.Fatalf("expected matched shift, got %+v", v)
	}
}

func TestDetector_BoundaryEquality(t *testing.T) {
	d := newTestDetector(t, nil, NewShift(NewClock(9, 0), NewClock(12, 0)))
	ctx := context.Background()

	endsAtShiftEnd := TimeRange{Start: mustTime(t, 2025, 3, 3, 11, 30), End: mustTime(t, 2025, 3, 3, 12, 0)}
	v, err := d.CheckCreateOrModify(ctx, uuid.New(), uuid.New(), endsAtShiftEnd, uuid.Nil)
	if err != nil || !v.OK {
		t.Fatalf("booking ending at shift end must be accepted, got %+v err=%v", v, err)
	}

	startsAtShiftEnd := TimeRange{Start: mustTime(t, 2025, 3, 3, 12, 0), End: mustTime(t, 2025, 3, 3, 12, 30)}
	v, err = d.CheckCreateOrModify(ctx, uuid.New(), uuid.New(), startsAtShiftEnd, uuid.Nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.OK || v.Reason != ReasonOutsideHours {
		t.Fatalf("booking starting at shift end must be outside hours, got %+v", v)
	}
}

func TestDetector_StartAtShiftEndBelongsToNextShift(t *testing.T) {
	d := newTestDetector(t, nil,
		NewShift(NewClock(9, 0), NewClock(12, 0)),
		NewShift(NewClock(12, 0), NewClock(15, 0)),
	)
	candidate := TimeRange{Start: mustTime(t, 2025, 3, 3, 12, 0), End: mustTime(t, 2025, 3, 3, 12, 30)}
	v, err := d.CheckCreateOrModify(context.Background(), uuid.New(), uuid.New(), candidate, uuid.Nil)
	if err != nil || !v.OK || v.ShiftIndex != 1 {
		t.Fatalf("expected second shift to accept, got %+v err=%v", v, err)
	}

	spanning := TimeRange{Start: mustTime(t, 2025, 3, 3, 11, 45), End: mustTime(t, 2025, 3, 3, 12, 15)}
	v, _ = d.CheckCreateOrModify(context.Background(), uuid.New(), uuid.New(), spanning, uuid.Nil)
	if v.OK || v.Reason != ReasonBeyondShiftEnd {
		t.Fatalf("booking spanning two shifts must be rejected, got %+v", v)
	}
}

func TestDetector_SlotOccupied(t *testing.T) {
	busy := []TimeRange{{Start: mustTime(t, 2025, 3, 3, 10, 0), End: mustTime(t, 2025, 3, 3, 10, 30)}}
	d := newTestDetector(t, busy, NewShift(NewClock(9, 0), NewClock(12, 0)))

	candidate := TimeRange{Start: mustTime(t, 2025, 3, 3, 10, 15), End: mustTime(t, 2025, 3, 3, 10, 45)}
	v, err := d.CheckCreateOrModify(context.Background(), uuid.New(), uuid.New(), candidate, uuid.Nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.OK || v.Reason != ReasonSlotOccupied || len(v.Occupied) != 1 {
		t.Fatalf("expected slot occupied, got %+v", v)
	}

	adjacent := TimeRange{Start: mustTime(t, 2025, 3, 3, 10, 30), End: mustTime(t, 2025, 3, 3, 11, 0)}
	v, _ = d.CheckCreateOrModify(context.Background(), uuid.New(), uuid.New(), adjacent, uuid.Nil)
	if !v.OK {
		t.Fatalf("adjacent booking must be accepted, got %+v", v)
	}
}

func TestZones_NowInWorkPoint(t *testing.T) {
	z := NewZones("UTC")
	z.Now = func() time.Time { return time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC) }

	got := z.NowInWorkPoint("Europe/London")
	if got.Hour() != 13 || got.Location() != time.UTC {
		t.Fatalf("expected 13:00 wall clock labelled UTC, got %v", got)
	}
	if got := z.NowInWorkPoint("Not/AZone"); got.Hour() != 12 {
		t.Fatalf("unknown zone must fall back, got %v", got)
	}
}
