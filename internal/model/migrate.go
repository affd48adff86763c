package model

import (
	"fmt"

	"gorm.io/gorm"
)

// AutoMigrate выполняет миграцию всех сущностей ядра бронирования.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Organisation{},
		&Specialist{},
		&CalendarConnection{},
		&WorkPoint{},
		&WorkPointClosure{},
		&Service{},
		&WorkingProgram{},
		&TimeOff{},
		&Booking{},
		&CanceledBooking{},
		&OutboxEvent{},
		&SyncJob{},
	); err != nil {
		return err
	}

	if db.Dialector.Name() == "postgres" {
		return migratePostgres(db)
	}
	return nil
}

// Ограничение исключения: два живых бронирования одного специалиста
// не могут пересекаться. Нарушение — SQLSTATE 23P01.
const bookingOverlapConstraint = "bookings_no_overlap"

func migratePostgres(db *gorm.DB) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS btree_gist`,
		fmt.Sprintf(`DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
		ALTER TABLE bookings ADD CONSTRAINT %s
			EXCLUDE USING gist (specialist_id WITH =, tstzrange(start_at, end_at, '[)') WITH &&);
	END IF;
END $$`, bookingOverlapConstraint, bookingOverlapConstraint),
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("postgres migration: %w", err)
		}
	}
	return nil
}
