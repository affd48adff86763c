package api

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/Leganyst/booking-engine/internal/access"
	"github.com/Leganyst/booking-engine/internal/apperror"
	"github.com/Leganyst/booking-engine/internal/notify"
	"github.com/Leganyst/booking-engine/internal/service"
)

// decodeFunc заполняет типизированный запрос из тела транспорта.
type decodeFunc func(v any) error

type runFunc func(ctx context.Context, actor access.AuthContext, decode decodeFunc) (any, error)

// operation — одна операция API, общая для HTTP и gRPC.
type operation struct {
	message string
	run     runFunc
}

// API связывает транспорты с сервисами ядра.
type API struct {
	bookings *service.BookingService
	schedule *service.ScheduleService
	tokens   *access.Tokens
	ping     func(ctx context.Context) error
	hub      *notify.Hub
	log      zerolog.Logger

	ops map[string]operation
}

func New(
	bookings *service.BookingService,
	schedule *service.ScheduleService,
	tokens *access.Tokens,
	ping func(ctx context.Context) error,
	log zerolog.Logger,
) *API {
	a := &API{
		bookings: bookings,
		schedule: schedule,
		tokens:   tokens,
		ping:     ping,
		log:      log.With().Str("component", "api").Logger(),
	}
	a.ops = a.operations()
	return a
}

// WithHub включает поток событий /api/v1/events.
func (a *API) WithHub(hub *notify.Hub) *API {
	a.hub = hub
	return a
}

// Имена операций совпадают с именами gRPC-методов.
const (
	OpCreateBooking               = "CreateBooking"
	OpModifyBooking               = "ModifyBooking"
	OpCancelBooking               = "CancelBooking"
	OpGetBookingDetails           = "GetBookingDetails"
	OpCheckShiftConflict          = "CheckShiftConflict"
	OpListSpecialistsForWorkPoint = "ListSpecialistsForWorkPoint"
	OpListWorkPointsForSpecialist = "ListWorkPointsForSpecialist"
	OpListServices                = "ListServices"
	OpSaveWeeklyProgram           = "SaveWeeklyProgram"
	OpSaveTimeOff                 = "SaveTimeOff"
	OpChangeServiceDuration       = "ChangeServiceDuration"
)

type bookingIDRequest struct {
	BookingID string `json:"booking_id"`
}

func (a *API) operations() map[string]operation {
	return map[string]operation{
		OpCreateBooking:      {"Booking created successfully", typed(a.bookings.CreateBooking)},
		OpModifyBooking:      {"Booking updated successfully", typed(a.bookings.ModifyBooking)},
		OpCancelBooking:      {"Booking canceled successfully", typed(a.bookings.CancelBooking)},
		OpCheckShiftConflict: {"Shift check completed", typed(a.bookings.CheckShiftConflict)},
		OpGetBookingDetails: {"Booking details loaded", typed(
			func(ctx context.Context, actor access.AuthContext, req bookingIDRequest) (*service.BookingDetails, error) {
				return a.bookings.GetBookingDetails(ctx, actor, req.BookingID)
			})},
		OpListSpecialistsForWorkPoint: {"Specialists loaded", typed(a.bookings.ListSpecialistsForWorkPoint)},
		OpListWorkPointsForSpecialist: {"Work points loaded", typed(a.bookings.ListWorkPointsForSpecialist)},
		OpListServices:                {"Services loaded", typed(a.bookings.ListServices)},
		OpSaveWeeklyProgram:           {"Working program saved", command(a.schedule.SaveWeeklyProgram)},
		OpSaveTimeOff:                 {"Days off saved", command(a.schedule.SaveTimeOff)},
		OpChangeServiceDuration:       {"Service duration updated", command(a.schedule.ChangeServiceDuration)},
	}
}

func typed[Req, Resp any](fn func(context.Context, access.AuthContext, Req) (Resp, error)) runFunc {
	return func(ctx context.Context, actor access.AuthContext, decode decodeFunc) (any, error) {
		var req Req
		if err := decode(&req); err != nil {
			return nil, apperror.Validation("Invalid request body")
		}
		return fn(ctx, actor, req)
	}
}

func command[Req any](fn func(context.Context, access.AuthContext, Req) error) runFunc {
	return func(ctx context.Context, actor access.AuthContext, decode decodeFunc) (any, error) {
		var req Req
		if err := decode(&req); err != nil {
			return nil, apperror.Validation("Invalid request body")
		}
		return nil, fn(ctx, actor, req)
	}
}

// invoke выполняет операцию и собирает конверт ответа.
// Второе значение — класс ошибки (пусто при успехе).
func (a *API) invoke(ctx context.Context, actor access.AuthContext, name string, decode decodeFunc) (Envelope, *apperror.Error) {
	op, ok := a.ops[name]
	if !ok {
		ae := apperror.NotFound("Unknown operation")
		return errorEnvelope(ae, actor), ae
	}
	data, err := op.run(ctx, actor, decode)
	if err != nil {
		ae := apperror.From(err)
		if ae.Kind == apperror.KindDatabase {
			a.log.Error().Err(err).Str("op", name).Msg("operation failed")
		}
		return errorEnvelope(ae, actor), ae
	}
	env, err := successEnvelope(op.message, data)
	if err != nil {
		ae := apperror.Database(err, "Failed to encode response")
		return errorEnvelope(ae, actor), ae
	}
	return env, nil
}

// decodeMap — запрос, собранный транспортом в виде JSON-объекта.
func decodeMap(m map[string]any) decodeFunc {
	return func(v any) error {
		raw, err := json.Marshal(m)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, v)
	}
}
