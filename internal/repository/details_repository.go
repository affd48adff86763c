package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// BookingDetailsRow — снимок бронирования с именами связанных сущностей.
type BookingDetailsRow struct {
	ID              uuid.UUID `db:"id"`
	SpecialistID    uuid.UUID `db:"specialist_id"`
	WorkPointID     uuid.UUID `db:"work_point_id"`
	ServiceID       uuid.UUID `db:"service_id"`
	OrganisationID  uuid.UUID `db:"organisation_id"`
	ClientName      string    `db:"client_name"`
	ClientPhone     string    `db:"client_phone"`
	StartAt         time.Time `db:"start_at"`
	EndAt           time.Time `db:"end_at"`
	CreatedAt       time.Time `db:"created_at"`
	SourceChannel   string    `db:"source_channel"`
	ExternalEventID *string   `db:"external_event_id"`

	SpecialistName    string `db:"specialist_name"`
	WorkPointName     string `db:"work_point_name"`
	WorkPointTimezone string `db:"work_point_timezone"`
	ServiceName       string `db:"service_name"`
	DurationMinutes   int    `db:"duration_minutes"`
}

// DetailsRepository — читающая модель на sqlx поверх того же пула соединений.
type DetailsRepository struct {
	db *sqlx.DB
}

func NewDetailsRepository(gormDB *gorm.DB) (*DetailsRepository, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB(): %w", err)
	}
	return &DetailsRepository{db: sqlx.NewDb(sqlDB, driverName(gormDB.Dialector.Name()))}, nil
}

// driverName — имя драйвера для выбора плейсхолдеров sqlx.
func driverName(dialect string) string {
	switch dialect {
	case "postgres":
		return "pgx"
	case "sqlite":
		return "sqlite3"
	default:
		return dialect
	}
}

const bookingDetailsQuery = `
	SELECT
		b.id, b.specialist_id, b.work_point_id, b.service_id,
		b.client_name, b.client_phone, b.start_at, b.end_at, b.created_at,
		b.source_channel, b.external_event_id,
		s.organisation_id,
		s.name AS specialist_name,
		w.name AS work_point_name,
		w.timezone AS work_point_timezone,
		sv.name AS service_name,
		sv.duration_minutes
	FROM bookings b
	JOIN specialists s ON s.id = b.specialist_id
	JOIN work_points w ON w.id = b.work_point_id
	JOIN services sv ON sv.id = b.service_id
	WHERE b.id = ?
`

// BookingDetails возвращает снимок живого бронирования; nil, если его нет.
func (r *DetailsRepository) BookingDetails(ctx context.Context, id uuid.UUID) (*BookingDetailsRow, error) {
	var row BookingDetailsRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(bookingDetailsQuery), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	row.StartAt = row.StartAt.UTC()
	row.EndAt = row.EndAt.UTC()
	row.CreatedAt = row.CreatedAt.UTC()
	return &row, nil
}
