package api

import (
	"context"
	"strings"

	"github.com/Leganyst/booking-engine/internal/access"
)

type actorKey struct{}

func withActor(ctx context.Context, actor access.AuthContext) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom — AuthContext, положенный транспортом в контекст запроса.
func ActorFrom(ctx context.Context) (access.AuthContext, bool) {
	actor, ok := ctx.Value(actorKey{}).(access.AuthContext)
	return actor, ok
}

// bearer извлекает токен из заголовка "Bearer <token>".
func bearer(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// authenticate разбирает токен и проверяет роль.
func (a *API) authenticate(header string) (access.AuthContext, bool) {
	raw := bearer(header)
	if raw == "" {
		return access.AuthContext{}, false
	}
	actor, err := a.tokens.Parse(raw)
	if err != nil {
		a.log.Debug().Err(err).Msg("reject token")
		return access.AuthContext{}, false
	}
	if err := actor.Validate(); err != nil {
		return access.AuthContext{}, false
	}
	return actor, true
}
