package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Коды SQLSTATE, означающие гонку за слот.
const (
	pgExclusionViolation   = "23P01"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"

	mysqlDeadlock    = 1213
	mysqlLockTimeout = 1205
)

// IsNotFound — запись не найдена.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicate — нарушение уникального индекса (с TranslateError).
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// IsSlotRace — хранилище отклонило запись из-за конкурентной брони:
// ограничение исключения, сбой сериализации или дедлок.
func IsSlotRace(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgExclusionViolation, pgSerializationFailure, pgDeadlockDetected:
			return true
		}
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDeadlock || myErr.Number == mysqlLockTimeout
	}
	return false
}
