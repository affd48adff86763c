package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Leganyst/booking-engine/internal/model"
)

// MessageSender отправляет одно SMS.
type MessageSender interface {
	Send(ctx context.Context, to, body string) error
}

// TwilioSender — отправка через Twilio REST API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   accountSID,
		Password:   authToken,
		AccountSid: accountSID,
	})
	return &TwilioSender{client: client, from: from}
}

func (s *TwilioSender) Send(_ context.Context, to, body string) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio create message: %w", err)
	}
	return nil
}

// SMSPublisher отправляет клиенту SMS о брони, если он этого хочет.
type SMSPublisher struct {
	sender    MessageSender
	defaultOn bool
	log       zerolog.Logger
}

func NewSMSPublisher(sender MessageSender, defaultOn bool, log zerolog.Logger) *SMSPublisher {
	return &SMSPublisher{sender: sender, defaultOn: defaultOn, log: log.With().Str("component", "sms").Logger()}
}

// Wants — нужно ли SMS при данной настройке.
func (p *SMSPublisher) Wants(pref model.SMSPreference) bool {
	switch pref {
	case model.SMSYes:
		return true
	case model.SMSDefault:
		return p.defaultOn
	default:
		return false
	}
}

type smsData struct {
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	StartAt     string `json:"start_datetime"`
}

func (p *SMSPublisher) Publish(ctx context.Context, e Event) error {
	if !p.Wants(e.SMSPreference) {
		return nil
	}
	var d smsData
	if err := json.Unmarshal(e.Data, &d); err != nil {
		return fmt.Errorf("decode event data: %w", err)
	}
	if d.ClientPhone == "" {
		return nil
	}
	to := strings.Join(strings.FieldsFunc(d.ClientPhone, func(r rune) bool {
		return r == ' ' || r == '-' || r == '(' || r == ')'
	}), "")
	if !strings.HasPrefix(to, "+") {
		p.log.Warn().Str("event_id", e.ID.String()).Msg("client phone is not in E.164 format")
	}

	if err := p.sender.Send(ctx, to, smsBody(e.Type, d)); err != nil {
		return err
	}
	p.log.Info().Str("event_id", e.ID.String()).Str("type", string(e.Type)).Msg("sms sent")
	return nil
}

func smsBody(t model.EventType, d smsData) string {
	switch t {
	case model.EventTypeBookingCreated:
		return fmt.Sprintf("Hello %s, your booking on %s is confirmed.", d.ClientName, d.StartAt)
	case model.EventTypeBookingUpdated:
		return fmt.Sprintf("Hello %s, your booking was moved to %s.", d.ClientName, d.StartAt)
	default:
		return fmt.Sprintf("Hello %s, your booking on %s was cancelled.", d.ClientName, d.StartAt)
	}
}
