package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/Leganyst/booking-engine/internal/access"
	"github.com/Leganyst/booking-engine/internal/apperror"
)

const ctxActor = "actor"

type route struct {
	method  string
	path    string
	op      string
	pathKey string
}

var routes = []route{
	{http.MethodPost, "/bookings", OpCreateBooking, ""},
	{http.MethodPut, "/bookings/:id", OpModifyBooking, "booking_id"},
	{http.MethodDelete, "/bookings/:id", OpCancelBooking, "booking_id"},
	{http.MethodGet, "/bookings/:id", OpGetBookingDetails, "booking_id"},
	{http.MethodPost, "/shift-conflicts", OpCheckShiftConflict, ""},
	{http.MethodGet, "/work-points/:id/specialists", OpListSpecialistsForWorkPoint, "id"},
	{http.MethodGet, "/specialists/:id/work-points", OpListWorkPointsForSpecialist, "id"},
	{http.MethodGet, "/work-points/:id/services", OpListServices, "id"},
	{http.MethodPut, "/specialists/:id/program", OpSaveWeeklyProgram, "specialist_id"},
	{http.MethodPut, "/specialists/:id/time-off", OpSaveTimeOff, "specialist_id"},
	{http.MethodPut, "/services/:id/duration", OpChangeServiceDuration, "service_id"},
}

// NewHTTPServer собирает echo с маршрутами /api/v1 и /healthz.
func (a *API) NewHTTPServer() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = a.httpErrorHandler

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, id string) {
			c.Set("request_id", id)
		},
	}))
	e.Use(requestLogger(a.log))
	e.Use(recovery(a.log))

	e.GET("/healthz", a.healthz)

	v1 := e.Group("/api/v1", a.requireActor)
	for _, r := range routes {
		v1.Add(r.method, r.path, a.httpHandler(r))
	}
	v1.GET("/events", a.streamEvents)
	return e
}

func (a *API) httpHandler(r route) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, _ := c.Get(ctxActor).(access.AuthContext)
		ctx := withActor(c.Request().Context(), actor)

		env, ae := a.invoke(ctx, actor, r.op, httpDecoder(c, r.pathKey))
		status := http.StatusOK
		if ae != nil {
			status = apperror.HTTPStatus(ae.Kind)
		} else if r.method == http.MethodPost && r.op == OpCreateBooking {
			status = http.StatusCreated
		}
		return c.JSON(status, env)
	}
}

// httpDecoder собирает запрос из тела, query (page, page_size) и параметра пути.
func httpDecoder(c echo.Context, pathKey string) decodeFunc {
	return func(v any) error {
		body := map[string]any{}
		raw, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &body); err != nil {
				return err
			}
		}
		for _, key := range []string{"page", "page_size"} {
			if q := c.QueryParam(key); q != "" {
				n, err := strconv.Atoi(q)
				if err != nil {
					return fmt.Errorf("query %s: %w", key, err)
				}
				body[key] = n
			}
		}
		if pathKey != "" {
			body[pathKey] = c.Param("id")
		}
		return decodeMap(body)(v)
	}
}

// requireActor строит AuthContext из bearer-токена.
func (a *API) requireActor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, ok := a.authenticate(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return c.JSON(http.StatusUnauthorized, Envelope{
				"success":    false,
				"message":    "Authentication required",
				"error_code": "unauthenticated",
			})
		}
		c.Set(ctxActor, actor)
		return next(c)
	}
}

func (a *API) healthz(c echo.Context) error {
	if a.ping != nil {
		if err := a.ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, Envelope{"success": false, "message": "database unavailable"})
		}
	}
	return c.JSON(http.StatusOK, Envelope{"success": true, "message": "ok"})
}

// httpErrorHandler отдаёт ошибки echo (404 маршрута, паника) в том же конверте.
func (a *API) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	message := "Internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		message = fmt.Sprint(he.Message)
	}
	if err := c.JSON(status, Envelope{"success": false, "message": message, "error_code": "http"}); err != nil {
		a.log.Error().Err(err).Msg("write error response")
	}
}

func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid, _ := c.Get("request_id").(string)

			err := next(c)

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}
			evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Msg("request")
			return err
		}
	}
}

func recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					var stack [4096]byte
					n := runtime.Stack(stack[:], false)
					logger.Error().
						Str("request_id", fmt.Sprintf("%v", c.Get("request_id"))).
						Str("panic", fmt.Sprintf("%v", r)).
						Str("stack", string(stack[:n])).
						Msg("panic recovered")
					err = echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
				}
			}()
			return next(c)
		}
	}
}
