package calendar

import (
	"errors"
	"sort"
	"time"
)

var (
	ErrInvalidTimeRange = errors.New("invalid time range")
	ErrInvalidShift     = errors.New("shift start must be before shift end")
	ErrShiftOverlap     = errors.New("shifts overlap each other")
	ErrInvalidTimeOff   = errors.New("time off window start must be before end")
)

// TimeRange представляет временной интервал [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NewTimeRange создаёт интервал и делает простую валидацию.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{Start: start, End: end}, nil
}

// Duration — длина интервала.
func (tr TimeRange) Duration() time.Duration {
	return tr.End.Sub(tr.Start)
}

// Day — сутки, в которых начинается интервал.
func (tr TimeRange) Day() TimeRange {
	day := DateOnly(tr.Start)
	return TimeRange{Start: day, End: day.AddDate(0, 0, 1)}
}

// HasOverlap проверяет, пересекается ли newRange с existing.
// inclusive = true — касание концами считается пересечением.
func HasOverlap(
	newRange TimeRange,
	existing []TimeRange,
	inclusive bool,
) (bool, []TimeRange) {
	var conflicts []TimeRange

	for _, tr := range existing {
		if rangesOverlap(newRange, tr, inclusive) {
			conflicts = append(conflicts, tr)
		}
	}

	return len(conflicts) > 0, conflicts
}

func rangesOverlap(a, b TimeRange, inclusive bool) bool {
	if inclusive {
		return !a.Start.After(b.End) && !b.Start.After(a.End)
	}

	// Полуоткрытые интервалы [a,b) и [c,d) пересекаются, если a < d && c < b.
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// sortRanges сортирует по началу и проверяет, что соседние не пересекаются.
func sortRanges(ranges []TimeRange) error {
	sort.Slice(ranges, func(i, j int) bool {
		return ranges[i].Start.Before(ranges[j].Start)
	})
	for i := 1; i < len(ranges); i++ {
		if rangesOverlap(ranges[i-1], ranges[i], false) {
			return ErrShiftOverlap
		}
	}
	return nil
}

// DateOnly отбрасывает время суток.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
