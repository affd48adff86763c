package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SyncAction string

const (
	SyncActionCreated SyncAction = "created"
	SyncActionUpdated SyncAction = "updated"
	SyncActionDeleted SyncAction = "deleted"
)

type SyncStatus string

const (
	SyncStatusPending           SyncStatus = "pending"
	SyncStatusProcessing        SyncStatus = "processing"
	SyncStatusDone              SyncStatus = "done"
	SyncStatusFailed            SyncStatus = "failed"
	SyncStatusPermanentlyFailed SyncStatus = "permanently_failed"
)

// calendar_sync_jobs — очередь синхронизации с внешним календарём.
// Ключ идемпотентности — (booking_id, action).
type SyncJob struct {
	ID uuid.UUID `gorm:"type:varchar(36);primaryKey"`

	BookingID    uuid.UUID  `gorm:"type:varchar(36);not null;uniqueIndex:idx_sync_job_key"`
	Action       SyncAction `gorm:"type:varchar(16);not null;uniqueIndex:idx_sync_job_key"`
	SpecialistID uuid.UUID  `gorm:"type:varchar(36);not null;index"`

	Payload datatypes.JSON

	Status    SyncStatus `gorm:"type:varchar(32);not null;default:'pending';index"`
	Attempts  int        `gorm:"not null;default:0"`
	LastError string     `gorm:"type:text"`

	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (SyncJob) TableName() string {
	return "calendar_sync_jobs"
}

func (j *SyncJob) BeforeCreate(*gorm.DB) error {
	ensureID(&j.ID)
	return nil
}
