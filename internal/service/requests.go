package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/booking-engine/internal/model"
)

// DateTimeLayout — формат дат-времени в ответах.
const DateTimeLayout = "2006-01-02 15:04:05"

func formatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

type CreateBookingRequest struct {
	SpecialistID   string `json:"specialist_id"`
	ServiceID      string `json:"service_id"`
	WorkPointID    string `json:"work_point_id,omitempty"`
	ClientName     string `json:"client_name"`
	ClientPhone    string `json:"client_phone"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	SMSPreference  string `json:"sms_preference,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type CreateBookingResult struct {
	BookingID uuid.UUID `json:"booking_id"`
	StartAt   string    `json:"start_datetime"`
	EndAt     string    `json:"end_datetime"`
	// Replayed — запрос с тем же ключом идемпотентности уже выполнялся.
	Replayed bool `json:"replayed,omitempty"`
}

type ModifyBookingRequest struct {
	BookingID    string `json:"booking_id"`
	SpecialistID string `json:"specialist_id"`
	ServiceID    string `json:"service_id"`
	WorkPointID  string `json:"work_point_id,omitempty"`
	ClientName   string `json:"client_name"`
	ClientPhone  string `json:"client_phone"`
	Date         string `json:"date"`
	Time         string `json:"time"`
}

type ModifyBookingResult struct {
	BookingID uuid.UUID `json:"booking_id"`
	StartAt   string    `json:"start_datetime"`
	EndAt     string    `json:"end_datetime"`
}

type CancelBookingRequest struct {
	BookingID     string `json:"booking_id"`
	SMSPreference string `json:"sms_preference,omitempty"`
}

type CancelBookingResult struct {
	BookingID     uuid.UUID           `json:"booking_id"`
	ArchiveID     uuid.UUID           `json:"archive_id"`
	MadeBy        string              `json:"made_by"`
	SMSPreference model.SMSPreference `json:"sms_sent"`
}

// BookingDetails — снимок бронирования с именами специалиста, филиала и услуги.
type BookingDetails struct {
	BookingID       uuid.UUID `json:"booking_id"`
	SpecialistID    uuid.UUID `json:"specialist_id"`
	SpecialistName  string    `json:"specialist_name"`
	OrganisationID  uuid.UUID `json:"organisation_id"`
	WorkPointID     uuid.UUID `json:"work_point_id"`
	WorkPointName   string    `json:"work_point_name"`
	ServiceID       uuid.UUID `json:"service_id"`
	ServiceName     string    `json:"service_name"`
	DurationMinutes int       `json:"duration_minutes"`
	ClientName      string    `json:"client_name"`
	ClientPhone     string    `json:"client_phone"`
	StartAt         string    `json:"start_datetime"`
	EndAt           string    `json:"end_datetime"`
	CreatedAt       string    `json:"created_at"`
	SourceChannel   string    `json:"source_channel"`
	ExternalEventID *string   `json:"external_event_id,omitempty"`
	Past            bool      `json:"past"`
}

type CheckShiftConflictRequest struct {
	SpecialistID string `json:"specialist_id"`
	WorkPointID  string `json:"work_point_id,omitempty"`
	ServiceID    string `json:"service_id"`
	Date         string `json:"date"`
	Time         string `json:"time"`
}

type ShiftDetail struct {
	Index int    `json:"shift"`
	Start string `json:"shift_start"`
	End   string `json:"shift_end"`
}

type Interval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type ShiftConflictResult struct {
	HasConflict  bool         `json:"has_conflict"`
	Reason       string       `json:"reason,omitempty"`
	Message      string       `json:"message,omitempty"`
	Shift        *ShiftDetail `json:"shift,omitempty"`
	BookingStart string       `json:"booking_start"`
	BookingEnd   string       `json:"booking_end"`
	Occupied     []Interval   `json:"occupied,omitempty"`
}

// ListRequest — список по идентификатору владельца с пагинацией.
type ListRequest struct {
	ID       string `json:"id"`
	Page     int    `json:"page,omitempty"`
	PageSize int    `json:"page_size,omitempty"`
}

type SpecialistSummary struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Speciality     string    `json:"speciality"`
	OrganisationID uuid.UUID `json:"organisation_id"`
}

type WorkPointSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Address  string    `json:"address"`
	Timezone string    `json:"timezone"`
}

type ServiceSummary struct {
	ID              uuid.UUID `json:"id"`
	SpecialistID    uuid.UUID `json:"specialist_id"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           float64   `json:"price"`
	VatPercent      float64   `json:"vat_percent"`
}

type SaveWeeklyProgramRequest struct {
	SpecialistID string       `json:"specialist_id"`
	WorkPointID  string       `json:"work_point_id"`
	DayOfWeek    string       `json:"day_of_week"`
	Shifts       []ShiftInput `json:"shifts"`
}

type ShiftInput struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type SaveTimeOffRequest struct {
	SpecialistID string         `json:"specialist_id"`
	Days         []TimeOffInput `json:"days"`
}

type TimeOffInput struct {
	Date      string `json:"date"`
	Kind      string `json:"kind"`
	WorkStart string `json:"work_start,omitempty"`
	WorkEnd   string `json:"work_end,omitempty"`
}

type ChangeServiceDurationRequest struct {
	ServiceID       string `json:"service_id"`
	DurationMinutes int    `json:"duration_minutes"`
}
