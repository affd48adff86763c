package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	dateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clockRe = regexp.MustCompile(`^(\d{2}):(\d{2})$`)
)

// Clock — время суток как смещение от полуночи.
// Совместим по представлению с datatypes.Time.
type Clock time.Duration

// NewClock собирает время суток из часов и минут.
func NewClock(hour, minute int) Clock {
	return Clock(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// ParseClock разбирает время запроса в формате HH:MM.
func ParseClock(s string) (Clock, error) {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	if h > 23 || min > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return NewClock(h, min), nil
}

// ParseDate разбирает дату в формате YYYY-MM-DD (в UTC).
func ParseDate(s string) (time.Time, error) {
	if !dateRe.MatchString(s) {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// On возвращает момент этого времени суток в указанную дату.
func (c Clock) On(date time.Time) time.Time {
	return DateOnly(date).Add(time.Duration(c))
}

// ClockOf — время суток момента t.
func ClockOf(t time.Time) Clock {
	return Clock(t.Sub(DateOnly(t)))
}

// String — формат хранения HH:MM:SS.
func (c Clock) String() string {
	d := time.Duration(c)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Short — формат запроса HH:MM.
func (c Clock) Short() string {
	return c.String()[:5]
}

// Shift — необязательный слот смены: либо (start, end), либо «нет смены».
type Shift struct {
	start   Clock
	end     Clock
	present bool
}

// NoShift — пустой слот.
var NoShift = Shift{}

func NewShift(start, end Clock) Shift {
	return Shift{start: start, end: end, present: true}
}

// ShiftFromStored переводит хранимую пару в слот.
// Пара 00:00:00–00:00:00 означает «нет смены», а не сутки целиком.
func ShiftFromStored(start, end Clock) Shift {
	if start == 0 && end == 0 {
		return NoShift
	}
	return NewShift(start, end)
}

// Get возвращает границы смены и признак её наличия.
func (s Shift) Get() (start, end Clock, ok bool) {
	return s.start, s.end, s.present
}

func (s Shift) Present() bool { return s.present }

// Stored — пара для хранения.
func (s Shift) Stored() (Clock, Clock) {
	if !s.present {
		return 0, 0
	}
	return s.start, s.end
}

// On — интервал смены в конкретную дату.
func (s Shift) On(date time.Time) (TimeRange, bool) {
	if !s.present {
		return TimeRange{}, false
	}
	return TimeRange{Start: s.start.On(date), End: s.end.On(date)}, true
}
