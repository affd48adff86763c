package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Leganyst/booking-engine/internal/access"
	"github.com/Leganyst/booking-engine/internal/notify"
)

const (
	eventBuffer    = 64
	eventHeartbeat = 15 * time.Second
)

// eventChannel — канал уведомлений для роли актора.
func eventChannel(actor access.AuthContext) (string, bool) {
	switch actor.Role {
	case access.RoleAdmin:
		return notify.ChannelAdmin, true
	case access.RoleSpecialist:
		return notify.SpecialistChannel(actor.ScopeID), true
	case access.RoleWorkPointSupervisor:
		return notify.WorkPointChannel(actor.ScopeID), true
	default:
		return "", false
	}
}

// streamEvents отдаёт события канала актора как text/event-stream.
// Устаревшие события пропускаются.
func (a *API) streamEvents(c echo.Context) error {
	if a.hub == nil {
		return echo.NewHTTPError(http.StatusNotFound, "event stream disabled")
	}
	actor, _ := c.Get(ctxActor).(access.AuthContext)
	channel, ok := eventChannel(actor)
	if !ok {
		return c.JSON(http.StatusForbidden, Envelope{
			"success":    false,
			"message":    "No event channel for this role",
			"error_code": "permission",
		})
	}

	sub := a.hub.Subscribe(channel, eventBuffer)
	defer a.hub.Unsubscribe(sub)

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	heartbeat := time.NewTicker(eventHeartbeat)
	defer heartbeat.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return nil
			}
			w.Flush()
		case e, ok := <-sub.C:
			if !ok {
				return nil
			}
			if e.Stale(time.Now()) {
				continue
			}
			data, err := json.Marshal(e)
			if err != nil {
				a.log.Error().Err(err).Str("event_id", e.ID.String()).Msg("marshal event")
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", e.ID, e.Type, data); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
