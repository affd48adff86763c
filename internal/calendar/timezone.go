package calendar

import (
	"sync"
	"time"
)

// TimezoneProvider даёт текущее настенное время филиала.
// Используется только для created_at.
type TimezoneProvider interface {
	NowInWorkPoint(timezone string) time.Time
}

// Zones — реализация на базе tzdata с кешем локаций.
// Неизвестная зона заменяется Fallback.
type Zones struct {
	Now      func() time.Time
	Fallback *time.Location

	mu    sync.Mutex
	cache map[string]*time.Location
}

func NewZones(fallback string) *Zones {
	loc, err := time.LoadLocation(fallback)
	if err != nil {
		loc = time.UTC
	}
	return &Zones{Now: time.Now, Fallback: loc, cache: map[string]*time.Location{}}
}

// Location возвращает зону по имени.
func (z *Zones) Location(name string) *time.Location {
	z.mu.Lock()
	defer z.mu.Unlock()

	if loc, ok := z.cache[name]; ok {
		return loc
	}
	loc, err := time.LoadLocation(name)
	if err != nil || name == "" {
		loc = z.Fallback
	}
	if z.cache == nil {
		z.cache = map[string]*time.Location{}
	}
	z.cache[name] = loc
	return loc
}

// NowInWorkPoint возвращает настенное время зоны с меткой UTC,
// в том же представлении, что и времена бронирований.
func (z *Zones) NowInWorkPoint(timezone string) time.Time {
	return WallClock(z.Now().In(z.Location(timezone)))
}

// WallClock переносит показания часов в UTC без пересчёта.
func WallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
