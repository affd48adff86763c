package api

import (
	"encoding/json"
	"fmt"

	"github.com/Leganyst/booking-engine/internal/access"
	"github.com/Leganyst/booking-engine/internal/apperror"
)

// Envelope — единый формат ответа:
// {"success", "message", "error_code"?, "error_detail"?, ...данные}.
type Envelope map[string]any

// successEnvelope раскладывает поля data на верхний уровень конверта.
func successEnvelope(message string, data any) (Envelope, error) {
	env := Envelope{}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal response: %w", err)
		}
		if string(raw) != "null" {
			if err := json.Unmarshal(raw, &env); err != nil {
				return nil, fmt.Errorf("response is not an object: %w", err)
			}
		}
	}
	env["success"] = true
	env["message"] = message
	return env, nil
}

// errorEnvelope не раскрывает детали хранилища никому, кроме администратора.
func errorEnvelope(ae *apperror.Error, actor access.AuthContext) Envelope {
	env := Envelope{
		"success":    false,
		"message":    ae.Message,
		"error_code": ae.Code(),
	}
	if actor.IsAdmin() && ae.Detail != "" {
		env["error_detail"] = ae.Detail
	}
	return env
}

// normalize приводит конверт к значениям JSON (числа — float64).
func (e Envelope) normalize() (map[string]any, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
