package calsync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Leganyst/booking-engine/internal/config"
	"github.com/Leganyst/booking-engine/internal/db"
	"github.com/Leganyst/booking-engine/internal/model"
	"github.com/Leganyst/booking-engine/internal/repository"
)

type fakeClient struct {
	sync  func(ctx context.Context, req Request) (string, error)
	calls []Request
}

func (f *fakeClient) Sync(ctx context.Context, req Request) (string, error) {
	f.calls = append(f.calls, req)
	return f.sync(ctx, req)
}

func newStore(t *testing.T) *repository.Store {
	t.Helper()
	gdb, err := db.NewGormDB(&config.DBConfig{Driver: "sqlite", Name: ":memory:"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := model.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repository.NewStore(gdb)
}

func seedBooking(t *testing.T, store *repository.Store, connected bool) *model.Booking {
	t.Helper()
	sp := &model.Specialist{OrganisationID: uuid.New(), Name: "Alice"}
	if err := store.DB().Create(sp).Error; err != nil {
		t.Fatalf("seed specialist: %v", err)
	}
	if connected {
		conn := &model.CalendarConnection{SpecialistID: sp.ID, CalendarID: "alice@example.com", Status: model.CalendarConnectionActive}
		if err := store.DB().Create(conn).Error; err != nil {
			t.Fatalf("seed connection: %v", err)
		}
	}
	start := time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC)
	b := &model.Booking{
		SpecialistID:   sp.ID,
		WorkPointID:    uuid.New(),
		ServiceID:      uuid.New(),
		ClientName:     "John",
		ClientPhone:    "0123",
		StartAt:        start,
		EndAt:          start.Add(30 * time.Minute),
		CreatedAtLocal: start.Add(-24 * time.Hour),
		SourceChannel:  "Web-UI Admin / root",
	}
	if err := store.DB().Create(b).Error; err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return b
}

func TestQueue_SkipsWithoutActiveCalendar(t *testing.T) {
	store := newStore(t)
	b := seedBooking(t, store, false)

	NewQueue(store, zerolog.Nop()).Enqueue(context.Background(), model.SyncActionCreated, b.ID, b.SpecialistID, map[string]string{"a": "b"})

	var n int64
	store.DB().Model(&model.SyncJob{}).Count(&n)
	if n != 0 {
		t.Fatalf("expected no jobs without calendar connection, got %d", n)
	}
}

func TestQueue_UpsertResetsJob(t *testing.T) {
	store := newStore(t)
	b := seedBooking(t, store, true)
	ctx := context.Background()
	q := NewQueue(store, zerolog.Nop())

	q.Enqueue(ctx, model.SyncActionUpdated, b.ID, b.SpecialistID, map[string]string{"v": "1"})
	claimed, err := store.SyncJobs.Claim(ctx, 10, 5, time.Now().Add(-time.Hour))
	if err != nil || len(claimed) != 1 {
		t.Fatalf("claim: %d, %v", len(claimed), err)
	}
	if ok, err := store.SyncJobs.Finish(ctx, claimed[0], model.SyncStatusFailed, "boom", time.Now()); err != nil || !ok {
		t.Fatalf("finish: %v, %v", ok, err)
	}

	q.Enqueue(ctx, model.SyncActionUpdated, b.ID, b.SpecialistID, map[string]string{"v": "2"})

	var jobs []model.SyncJob
	store.DB().Find(&jobs)
	if len(jobs) != 1 {
		t.Fatalf("expected one job per (booking, action), got %d", len(jobs))
	}
	if jobs[0].Status != model.SyncStatusPending || jobs[0].Attempts != 0 || jobs[0].LastError != "" {
		t.Fatalf("job must be reset, got %+v", jobs[0])
	}
	if string(jobs[0].Payload) != `{"v":"2"}` {
		t.Fatalf("payload must be replaced, got %s", jobs[0].Payload)
	}
}

func TestWorker_CreatedStoresExternalID(t *testing.T) {
	store := newStore(t)
	b := seedBooking(t, store, true)
	ctx := context.Background()

	NewQueue(store, zerolog.Nop()).Enqueue(ctx, model.SyncActionCreated, b.ID, b.SpecialistID, map[string]string{})

	client := &fakeClient{sync: func(context.Context, Request) (string, error) { return "evt-1", nil }}
	w := NewWorker(store, client, zerolog.Nop())
	n, err := w.RunOnce(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected one processed job, got %d, %v", n, err)
	}

	got, _ := store.Bookings.GetByID(ctx, b.ID)
	if got.ExternalEventID == nil || *got.ExternalEventID != "evt-1" {
		t.Fatalf("external event id not stored: %+v", got.ExternalEventID)
	}
	job, _ := store.SyncJobs.Get(ctx, b.ID, model.SyncActionCreated)
	if job.Status != model.SyncStatusDone || job.Attempts != 1 || job.ProcessedAt == nil {
		t.Fatalf("unexpected job state %+v", job)
	}

	// Следующая задача по той же брони получает внешний идентификатор.
	NewQueue(store, zerolog.Nop()).Enqueue(ctx, model.SyncActionUpdated, b.ID, b.SpecialistID, map[string]string{})
	if _, err := w.RunOnce(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if last := client.calls[len(client.calls)-1]; last.ExternalEventID != "evt-1" || last.Action != model.SyncActionUpdated {
		t.Fatalf("unexpected update request %+v", last)
	}
}

func TestWorker_UpsertWhileRunningIsNotLost(t *testing.T) {
	store := newStore(t)
	b := seedBooking(t, store, true)
	ctx := context.Background()
	q := NewQueue(store, zerolog.Nop())

	q.Enqueue(ctx, model.SyncActionUpdated, b.ID, b.SpecialistID, map[string]string{"v": "1"})
	client := &fakeClient{sync: func(context.Context, Request) (string, error) {
		// Бронь изменили, пока задача выполнялась.
		q.Enqueue(ctx, model.SyncActionUpdated, b.ID, b.SpecialistID, map[string]string{"v": "2"})
		return "", nil
	}}
	w := NewWorker(store, client, zerolog.Nop())

	n, err := w.RunOnce(ctx)
	if err != nil || n != 0 {
		t.Fatalf("superseded run must not count as done, got %d, %v", n, err)
	}
	job, _ := store.SyncJobs.Get(ctx, b.ID, model.SyncActionUpdated)
	if job.Status != model.SyncStatusPending || string(job.Payload) != `{"v":"2"}` {
		t.Fatalf("re-queued job must stay pending, got %+v", job)
	}

	client.sync = func(context.Context, Request) (string, error) { return "", nil }
	if n, err := w.RunOnce(ctx); err != nil || n != 1 {
		t.Fatalf("expected the new payload to sync, got %d, %v", n, err)
	}
	if last := client.calls[len(client.calls)-1]; string(last.Payload) != `{"v":"2"}` {
		t.Fatalf("unexpected payload %s", last.Payload)
	}
}

func TestWorker_RetriesThenGivesUp(t *testing.T) {
	store := newStore(t)
	b := seedBooking(t, store, true)
	ctx := context.Background()

	NewQueue(store, zerolog.Nop()).Enqueue(ctx, model.SyncActionDeleted, b.ID, b.SpecialistID, map[string]string{})

	client := &fakeClient{sync: func(context.Context, Request) (string, error) { return "", errors.New("provider down") }}
	w := NewWorker(store, client, zerolog.Nop())
	w.MaxAttempts = 2

	for i := 0; i < 3; i++ {
		if _, err := w.RunOnce(ctx); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	if len(client.calls) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(client.calls))
	}
	job, _ := store.SyncJobs.Get(ctx, b.ID, model.SyncActionDeleted)
	if job.Status != model.SyncStatusPermanentlyFailed || job.LastError != "provider down" {
		t.Fatalf("unexpected job state %+v", job)
	}
}
