package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Leganyst/booking-engine/internal/access"
	"github.com/Leganyst/booking-engine/internal/apperror"
	"github.com/Leganyst/booking-engine/internal/calendar"
	"github.com/Leganyst/booking-engine/internal/config"
	"github.com/Leganyst/booking-engine/internal/db"
	"github.com/Leganyst/booking-engine/internal/model"
	"github.com/Leganyst/booking-engine/internal/repository"
	"github.com/Leganyst/booking-engine/internal/service"
)

type nopSync struct{}

func (nopSync) Enqueue(context.Context, model.SyncAction, uuid.UUID, uuid.UUID, any) {}

type testEnv struct {
	api    *API
	tokens *access.Tokens

	specialist *model.Specialist
	wp         *model.WorkPoint
	svc        *model.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb, err := db.NewGormDB(&config.DBConfig{Driver: "sqlite", Name: ":memory:"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := model.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store := repository.NewStore(gdb)
	details, err := repository.NewDetailsRepository(gdb)
	if err != nil {
		t.Fatalf("details: %v", err)
	}

	env := &testEnv{tokens: access.NewTokens("test-secret", "booking-engine")}
	org := &model.Organisation{Name: "Clinic"}
	if err := gdb.Create(org).Error; err != nil {
		t.Fatalf("seed org: %v", err)
	}
	env.specialist = &model.Specialist{OrganisationID: org.ID, Name: "Alice"}
	env.wp = &model.WorkPoint{OrganisationID: org.ID, Name: "Main street", Timezone: "Europe/London"}
	for _, v := range []any{env.specialist, env.wp} {
		if err := gdb.Create(v).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	env.svc = &model.Service{SpecialistID: env.specialist.ID, WorkPointID: env.wp.ID, Name: "Check-up", DurationMinutes: 30}
	if err := gdb.Create(env.svc).Error; err != nil {
		t.Fatalf("seed service: %v", err)
	}
	p := &model.WorkingProgram{SpecialistID: env.specialist.ID, WorkPointID: env.wp.ID, DayOfWeek: "monday"}
	p.SetShiftPairs(repository.ShiftsToStored([3]calendar.Shift{
		calendar.NewShift(calendar.NewClock(9, 0), calendar.NewClock(18, 0)),
	}))
	if err := store.Programs.Upsert(context.Background(), p); err != nil {
		t.Fatalf("seed program: %v", err)
	}

	zones := calendar.NewZones("Europe/London")
	bookings := service.NewBookingService(store, details, zones, nopSync{}, zerolog.Nop())
	schedule := service.NewScheduleService(store, zones, zerolog.Nop())
	ping := func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
	env.api = New(bookings, schedule, env.tokens, ping, zerolog.Nop())
	return env
}

func (e *testEnv) token(t *testing.T, actor access.AuthContext) string {
	t.Helper()
	tok, err := e.tokens.Issue(actor, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func (e *testEnv) adminToken(t *testing.T) string {
	return e.token(t, access.AuthContext{Role: access.RoleAdmin, Username: "root"})
}

func (e *testEnv) bookingBody() map[string]any {
	return map[string]any{
		"specialist_id": e.specialist.ID.String(),
		"service_id":    e.svc.ID.String(),
		"client_name":   "John Smith",
		"client_phone":  "+44 7946 000000",
		"date":          "2030-01-07",
		"time":          "10:00",
	}
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := map[string]any{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec.Code, out
}

func TestHTTP_RequiresToken(t *testing.T) {
	env := newTestEnv(t)
	h := env.api.NewHTTPServer()

	code, body := doJSON(t, h, http.MethodPost, "/api/v1/bookings", "", env.bookingBody())
	if code != http.StatusUnauthorized || body["success"] != false {
		t.Fatalf("expected 401 envelope, got %d %v", code, body)
	}
	code, _ = doJSON(t, h, http.MethodPost, "/api/v1/bookings", "garbage", env.bookingBody())
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", code)
	}
}

func TestHTTP_BookingLifecycle(t *testing.T) {
	env := newTestEnv(t)
	h := env.api.NewHTTPServer()
	tok := env.adminToken(t)

	code, body := doJSON(t, h, http.MethodPost, "/api/v1/bookings", tok, env.bookingBody())
	if code != http.StatusCreated || body["success"] != true {
		t.Fatalf("create: %d %v", code, body)
	}
	id, _ := body["booking_id"].(string)
	if id == "" || body["end_datetime"] != "2030-01-07 10:30:00" {
		t.Fatalf("unexpected create body %v", body)
	}

	code, body = doJSON(t, h, http.MethodPost, "/api/v1/bookings", tok, env.bookingBody())
	if code != http.StatusConflict || body["error_code"] != "conflict" {
		t.Fatalf("expected conflict, got %d %v", code, body)
	}
	if _, ok := body["error_detail"]; ok {
		t.Fatalf("conflict must not carry storage detail")
	}

	code, body = doJSON(t, h, http.MethodGet, "/api/v1/bookings/"+id, tok, nil)
	if code != http.StatusOK || body["specialist_name"] != "Alice" || body["service_name"] != "Check-up" {
		t.Fatalf("details: %d %v", code, body)
	}

	move := env.bookingBody()
	move["time"] = "11:00"
	code, body = doJSON(t, h, http.MethodPut, "/api/v1/bookings/"+id, tok, move)
	if code != http.StatusOK || body["start_datetime"] != "2030-01-07 11:00:00" {
		t.Fatalf("modify: %d %v", code, body)
	}

	code, body = doJSON(t, h, http.MethodDelete, "/api/v1/bookings/"+id, tok, nil)
	if code != http.StatusOK || body["made_by"] != "WEB-PAGE (user=root / root)" {
		t.Fatalf("cancel: %d %v", code, body)
	}

	code, body = doJSON(t, h, http.MethodGet, "/api/v1/bookings/"+id, tok, nil)
	if code != http.StatusNotFound || body["error_code"] != "not_found" {
		t.Fatalf("expected 404 after cancel, got %d %v", code, body)
	}
}

func TestHTTP_ValidationAndPermission(t *testing.T) {
	env := newTestEnv(t)
	h := env.api.NewHTTPServer()

	bad := env.bookingBody()
	bad["client_phone"] = "not a phone"
	code, body := doJSON(t, h, http.MethodPost, "/api/v1/bookings", env.adminToken(t), bad)
	if code != http.StatusBadRequest || body["message"] != "Invalid phone number format" {
		t.Fatalf("expected 400, got %d %v", code, body)
	}

	other := env.token(t, access.AuthContext{Role: access.RoleSpecialist, ScopeID: uuid.New(), Username: "eve"})
	code, body = doJSON(t, h, http.MethodPost, "/api/v1/bookings", other, env.bookingBody())
	if code != http.StatusForbidden || body["error_code"] != "permission" {
		t.Fatalf("expected 403, got %d %v", code, body)
	}
}

func TestHTTP_ListsAndSchedule(t *testing.T) {
	env := newTestEnv(t)
	h := env.api.NewHTTPServer()
	tok := env.adminToken(t)

	code, body := doJSON(t, h, http.MethodGet, "/api/v1/work-points/"+env.wp.ID.String()+"/specialists?page=1&page_size=10", tok, nil)
	if code != http.StatusOK || body["total"] != float64(1) {
		t.Fatalf("list specialists: %d %v", code, body)
	}
	items, _ := body["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one specialist, got %v", body["items"])
	}

	code, body = doJSON(t, h, http.MethodPut, "/api/v1/specialists/"+env.specialist.ID.String()+"/program", tok, map[string]any{
		"work_point_id": env.wp.ID.String(),
		"day_of_week":   "tuesday",
		"shifts":        []map[string]string{{"start": "10:00", "end": "14:00"}},
	})
	if code != http.StatusOK || body["success"] != true {
		t.Fatalf("save program: %d %v", code, body)
	}

	code, body = doJSON(t, h, http.MethodPost, "/api/v1/shift-conflicts", tok, map[string]any{
		"specialist_id": env.specialist.ID.String(),
		"service_id":    env.svc.ID.String(),
		"date":          "2030-01-08",
		"time":          "13:45",
	})
	if code != http.StatusOK || body["has_conflict"] != true || body["reason"] != "extends beyond shift end" {
		t.Fatalf("shift check: %d %v", code, body)
	}
}

func TestHTTP_Healthz(t *testing.T) {
	env := newTestEnv(t)
	code, body := doJSON(t, env.api.NewHTTPServer(), http.MethodGet, "/healthz", "", nil)
	if code != http.StatusOK || body["success"] != true {
		t.Fatalf("healthz: %d %v", code, body)
	}
}

func TestErrorEnvelope_DetailOnlyForAdmin(t *testing.T) {
	ae := apperror.Database(errors.New("pq: relation does not exist"), "Database error")

	admin := errorEnvelope(ae, access.AuthContext{Role: access.RoleAdmin})
	if admin["error_detail"] != "pq: relation does not exist" || admin["error_code"] != "database" {
		t.Fatalf("admin envelope must include detail: %v", admin)
	}
	user := errorEnvelope(ae, access.AuthContext{Role: access.RoleSpecialist, ScopeID: uuid.New()})
	if _, ok := user["error_detail"]; ok {
		t.Fatalf("non-admin envelope must not include detail: %v", user)
	}
}

func TestSuccessEnvelope_FlattensData(t *testing.T) {
	env, err := successEnvelope("done", map[string]any{"booking_id": "x"})
	if err != nil {
		t.Fatalf("envelope: %v", err)
	}
	if env["success"] != true || env["message"] != "done" || env["booking_id"] != "x" {
		t.Fatalf("unexpected envelope %v", env)
	}
	if _, err := successEnvelope("done", []int{1}); err == nil {
		t.Fatalf("non-object data must be rejected")
	}
}

func dialBufconn(t *testing.T, a *API) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := a.NewGRPCServer()
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestGRPC_CreateAndConflict(t *testing.T) {
	env := newTestEnv(t)
	conn := dialBufconn(t, env.api)

	in, err := structpb.NewStruct(env.bookingBody())
	if err != nil {
		t.Fatalf("struct: %v", err)
	}
	method := "/" + ServiceName + "/" + OpCreateBooking

	out := new(structpb.Struct)
	err = conn.Invoke(context.Background(), method, in, out)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected unauthenticated without token, got %v", err)
	}

	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+env.adminToken(t))
	if err := conn.Invoke(ctx, method, in, out); err != nil {
		t.Fatalf("create: %v", err)
	}
	fields := out.AsMap()
	if fields["success"] != true || fields["booking_id"] == "" {
		t.Fatalf("unexpected response %v", fields)
	}

	err = conn.Invoke(ctx, method, in, new(structpb.Struct))
	st := status.Convert(err)
	if st.Code() != codes.FailedPrecondition {
		t.Fatalf("expected failed precondition, got %v", err)
	}
	var envelope *structpb.Struct
	for _, d := range st.Details() {
		if s, ok := d.(*structpb.Struct); ok {
			envelope = s
		}
	}
	if envelope == nil || envelope.AsMap()["error_code"] != "conflict" {
		t.Fatalf("expected envelope in status details, got %v", st.Details())
	}
}

func TestGRPC_Health(t *testing.T) {
	env := newTestEnv(t)
	conn := dialBufconn(t, env.api)

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected serving, got %s", resp.GetStatus())
	}
}
