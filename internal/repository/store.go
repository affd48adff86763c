package repository

import (
	"context"
	"database/sql"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store объединяет репозитории поверх одного *gorm.DB (или транзакции).
type Store struct {
	db      *gorm.DB
	dialect string

	Specialists *GormSpecialistRepository
	WorkPoints  *GormWorkPointRepository
	Services    *GormServiceRepository
	Programs    *GormProgramRepository
	TimeOff     *GormTimeOffRepository
	Bookings    *GormBookingRepository
	Outbox      *GormOutboxRepository
	SyncJobs    *GormSyncJobRepository
}

func NewStore(db *gorm.DB) *Store {
	dialect := db.Dialector.Name()
	return &Store{
		db:          db,
		dialect:     dialect,
		Specialists: NewGormSpecialistRepository(db, dialect),
		WorkPoints:  NewGormWorkPointRepository(db),
		Services:    NewGormServiceRepository(db),
		Programs:    NewGormProgramRepository(db),
		TimeOff:     NewGormTimeOffRepository(db),
		Bookings:    NewGormBookingRepository(db, dialect),
		Outbox:      NewGormOutboxRepository(db),
		SyncJobs:    NewGormSyncJobRepository(db),
	}
}

func (s *Store) DB() *gorm.DB { return s.db }

// Dialect — имя диалекта gorm (postgres, mysql, sqlite).
func (s *Store) Dialect() string { return s.dialect }

// Schedule — источник расписания для резолвера поверх этого Store.
func (s *Store) Schedule() *ScheduleSource {
	return &ScheduleSource{programs: s.Programs, timeOff: s.TimeOff, workPoints: s.WorkPoints}
}

// Transaction выполняет fn в одной транзакции. Для postgres — SERIALIZABLE,
// остальные диалекты полагаются на блокировку строки специалиста.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	var opts []*sql.TxOptions
	if s.dialect == "postgres" {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	}, opts...)
}

// forUpdate добавляет SELECT ... FOR UPDATE там, где диалект его поддерживает.
func forUpdate(db *gorm.DB, dialect string) *gorm.DB {
	if dialect == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// sortedIDs — порядок взятия блокировок, чтобы избежать дедлоков.
func sortedIDs(ids ...uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}
