package service

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/booking-engine/internal/apperror"
	"github.com/Leganyst/booking-engine/internal/calendar"
	"github.com/Leganyst/booking-engine/internal/model"
)

const maxPhoneLen = 20

var phoneRe = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)

func required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return apperror.Validationf("Missing required field: %s", field)
	}
	return nil
}

func parseID(field, v string) (uuid.UUID, error) {
	if err := required(field, v); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(strings.TrimSpace(v))
	if err != nil {
		return uuid.Nil, apperror.Validationf("Invalid %s", field)
	}
	return id, nil
}

// parseOptionalID — пустое значение означает «не задано».
func parseOptionalID(field, v string) (*uuid.UUID, error) {
	if strings.TrimSpace(v) == "" {
		return nil, nil
	}
	id, err := parseID(field, v)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func validateClient(name, phone string) error {
	if err := required("client_name", name); err != nil {
		return err
	}
	if err := required("client_phone", phone); err != nil {
		return err
	}
	phone = strings.TrimSpace(phone)
	if len(phone) > maxPhoneLen || !phoneRe.MatchString(phone) {
		return apperror.Validation("Invalid phone number format")
	}
	return nil
}

// parseSlotStart собирает начало брони из даты YYYY-MM-DD и времени HH:MM.
func parseSlotStart(date, clock string) (time.Time, error) {
	if err := required("date", date); err != nil {
		return time.Time{}, err
	}
	if err := required("time", clock); err != nil {
		return time.Time{}, err
	}
	day, err := calendar.ParseDate(date)
	if err != nil {
		return time.Time{}, apperror.Validation("Invalid date format. Expected YYYY-MM-DD")
	}
	c, err := calendar.ParseClock(clock)
	if err != nil {
		return time.Time{}, apperror.Validation("Invalid time format. Expected HH:MM")
	}
	return c.On(day), nil
}

// parseSMS: yes/no/default, а также 1/0 из веб-формы.
func parseSMS(v string, def model.SMSPreference) (model.SMSPreference, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return def, nil
	case "1", "yes", "true":
		return model.SMSYes, nil
	case "0", "no", "false":
		return model.SMSNo, nil
	case "default":
		return model.SMSDefault, nil
	default:
		return "", apperror.Validation("Invalid sms_preference")
	}
}

func validDuration(svc *model.Service) error {
	if !model.ValidDuration(svc.DurationMinutes) {
		return apperror.Validation("Invalid service duration")
	}
	return nil
}

type createInput struct {
	specialistID uuid.UUID
	serviceID    uuid.UUID
	workPointID  *uuid.UUID
	clientName   string
	clientPhone  string
	start        time.Time
	sms          model.SMSPreference
	key          string
}

func (r CreateBookingRequest) parse() (createInput, error) {
	var (
		in  createInput
		err error
	)
	if in.specialistID, err = parseID("specialist_id", r.SpecialistID); err != nil {
		return in, err
	}
	if in.serviceID, err = parseID("service_id", r.ServiceID); err != nil {
		return in, err
	}
	if in.workPointID, err = parseOptionalID("work_point_id", r.WorkPointID); err != nil {
		return in, err
	}
	if err = validateClient(r.ClientName, r.ClientPhone); err != nil {
		return in, err
	}
	if in.start, err = parseSlotStart(r.Date, r.Time); err != nil {
		return in, err
	}
	if in.sms, err = parseSMS(r.SMSPreference, model.SMSYes); err != nil {
		return in, err
	}
	in.key = strings.TrimSpace(r.IdempotencyKey)
	if len(in.key) > 64 {
		return in, apperror.Validation("Idempotency key is too long")
	}
	in.clientName = strings.TrimSpace(r.ClientName)
	in.clientPhone = strings.TrimSpace(r.ClientPhone)
	return in, nil
}

type modifyInput struct {
	bookingID    uuid.UUID
	specialistID uuid.UUID
	serviceID    uuid.UUID
	workPointID  *uuid.UUID
	clientName   string
	clientPhone  string
	start        time.Time
}

func (r ModifyBookingRequest) parse() (modifyInput, error) {
	var (
		in  modifyInput
		err error
	)
	if in.bookingID, err = parseID("booking_id", r.BookingID); err != nil {
		return in, err
	}
	if in.specialistID, err = parseID("specialist_id", r.SpecialistID); err != nil {
		return in, err
	}
	if in.serviceID, err = parseID("service_id", r.ServiceID); err != nil {
		return in, err
	}
	if in.workPointID, err = parseOptionalID("work_point_id", r.WorkPointID); err != nil {
		return in, err
	}
	if err = validateClient(r.ClientName, r.ClientPhone); err != nil {
		return in, err
	}
	if in.start, err = parseSlotStart(r.Date, r.Time); err != nil {
		return in, err
	}
	in.clientName = strings.TrimSpace(r.ClientName)
	in.clientPhone = strings.TrimSpace(r.ClientPhone)
	return in, nil
}
