package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/Leganyst/booking-engine/internal/access"
	"github.com/Leganyst/booking-engine/internal/calendar"
	"github.com/Leganyst/booking-engine/internal/config"
	"github.com/Leganyst/booking-engine/internal/db"
	"github.com/Leganyst/booking-engine/internal/model"
	"github.com/Leganyst/booking-engine/internal/repository"
)

// Понедельники для сценариев.
const (
	monday        = "2030-01-07"
	mondayDayOff  = "2030-01-14"
	mondayPartial = "2030-01-21"
)

type syncCall struct {
	action       model.SyncAction
	bookingID    uuid.UUID
	specialistID uuid.UUID
}

type recordingSync struct {
	mu    sync.Mutex
	calls []syncCall
}

func (r *recordingSync) Enqueue(_ context.Context, action model.SyncAction, bookingID, specialistID uuid.UUID, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, syncCall{action: action, bookingID: bookingID, specialistID: specialistID})
}

func (r *recordingSync) actions() []model.SyncAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.SyncAction, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, c.action)
	}
	return out
}

type fixture struct {
	store    *repository.Store
	bookings *BookingService
	schedule *ScheduleService
	sync     *recordingSync

	org, otherOrg *model.Organisation

	// alice: 09:00–12:00 и 13:00–18:00 по понедельникам.
	alice *model.Specialist
	// bob: 09:00–18:00, та же организация.
	bob *model.Specialist
	// carol: другая организация.
	carol *model.Specialist

	wp      *model.WorkPoint
	otherWP *model.WorkPoint

	svc45 *model.Service
	svc30 *model.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb, err := db.NewGormDB(&config.DBConfig{Driver: "sqlite", Name: ":memory:"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := model.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	store := repository.NewStore(gdb)
	details, err := repository.NewDetailsRepository(gdb)
	if err != nil {
		t.Fatalf("details repo: %v", err)
	}

	zones := calendar.NewZones("Europe/London")
	zones.Now = func() time.Time { return time.Date(2029, 12, 1, 9, 0, 0, 0, time.UTC) }

	f := &fixture{store: store, sync: &recordingSync{}}
	f.bookings = NewBookingService(store, details, zones, f.sync, zerolog.Nop())
	f.schedule = NewScheduleService(store, zones, zerolog.Nop())

	f.org = &model.Organisation{Name: "Clinic"}
	f.otherOrg = &model.Organisation{Name: "Salon"}
	f.create(t, f.org, f.otherOrg)

	f.alice = &model.Specialist{OrganisationID: f.org.ID, Name: "Alice", Speciality: "Dentist"}
	f.bob = &model.Specialist{OrganisationID: f.org.ID, Name: "Bob", Speciality: "Hygienist"}
	f.carol = &model.Specialist{OrganisationID: f.otherOrg.ID, Name: "Carol", Speciality: "Stylist"}
	f.create(t, f.alice, f.bob, f.carol)

	f.wp = &model.WorkPoint{OrganisationID: f.org.ID, Name: "Main street", Timezone: "Europe/London"}
	f.otherWP = &model.WorkPoint{OrganisationID: f.otherOrg.ID, Name: "High street", Timezone: "Europe/London"}
	f.create(t, f.wp, f.otherWP)

	f.svc45 = &model.Service{SpecialistID: f.alice.ID, WorkPointID: f.wp.ID, Name: "Check-up", DurationMinutes: 45}
	f.svc30 = &model.Service{SpecialistID: f.alice.ID, WorkPointID: f.wp.ID, Name: "Cleaning", DurationMinutes: 30}
	f.create(t, f.svc45, f.svc30)

	f.program(t, f.alice.ID, f.wp.ID, time.Monday,
		calendar.NewShift(calendar.NewClock(9, 0), calendar.NewClock(12, 0)),
		calendar.NewShift(calendar.NewClock(13, 0), calendar.NewClock(18, 0)),
	)
	f.program(t, f.bob.ID, f.wp.ID, time.Monday,
		calendar.NewShift(calendar.NewClock(9, 0), calendar.NewClock(18, 0)),
	)
	f.program(t, f.carol.ID, f.otherWP.ID, time.Monday,
		calendar.NewShift(calendar.NewClock(9, 0), calendar.NewClock(18, 0)),
	)
	return f
}

func (f *fixture) create(t *testing.T, values ...any) {
	t.Helper()
	for _, v := range values {
		if err := f.store.DB().Create(v).Error; err != nil {
			t.Fatalf("seed %T: %v", v, err)
		}
	}
}

func (f *fixture) program(t *testing.T, specialistID, workPointID uuid.UUID, day time.Weekday, shifts ...calendar.Shift) {
	t.Helper()
	var slots [3]calendar.Shift
	copy(slots[:], shifts)
	p := &model.WorkingProgram{SpecialistID: specialistID, WorkPointID: workPointID, DayOfWeek: model.DayName(day)}
	p.SetShiftPairs(repository.ShiftsToStored(slots))
	if err := f.store.Programs.Upsert(context.Background(), p); err != nil {
		t.Fatalf("seed program: %v", err)
	}
}

func (f *fixture) dayOff(t *testing.T, specialistID uuid.UUID, date string, window ...calendar.Clock) {
	t.Helper()
	d, err := calendar.ParseDate(date)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	off := &model.TimeOff{SpecialistID: specialistID, DateOff: datatypes.Date(d), Kind: model.TimeOffFullDay}
	if len(window) == 2 {
		ws, we := datatypes.Time(window[0]), datatypes.Time(window[1])
		off.Kind = model.TimeOffPartialDay
		off.WorkStart = &ws
		off.WorkEnd = &we
	}
	f.create(t, off)
}

func admin() access.AuthContext {
	return access.AuthContext{Role: access.RoleAdmin, Username: "root"}
}

func (f *fixture) createReq(sp *model.Specialist, svc *model.Service, date, clock string) CreateBookingRequest {
	return CreateBookingRequest{
		SpecialistID: sp.ID.String(),
		ServiceID:    svc.ID.String(),
		ClientName:   "John Smith",
		ClientPhone:  "+44 (20) 7946-0000",
		Date:         date,
		Time:         clock,
	}
}

func (f *fixture) mustCreate(t *testing.T, req CreateBookingRequest) *CreateBookingResult {
	t.Helper()
	res, err := f.bookings.CreateBooking(context.Background(), admin(), req)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return res
}

func (f *fixture) countBookings(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := f.store.DB().Model(&model.Booking{}).Count(&n).Error; err != nil {
		t.Fatalf("count bookings: %v", err)
	}
	return n
}
