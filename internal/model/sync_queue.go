package model

import (
	"time"

	"github.com/google/uuid"
)

// SyncRefType enum constants
const (
	SyncRefDemolish = "DEMOLISH"
	SyncRefTransfer = "TRANSFER"
)

// SyncStatus enum constants
const (
	SyncPending = "PENDING"
	SyncDone    = "SYNCED"
)

// SyncQueueEntry is an outbox row for the nightly downstream propagation.
// The lifecycle engine only enqueues; delivery belongs to the sync worker.
type SyncQueueEntry struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RefType     string     `gorm:"type:varchar(10);not null;index" json:"ref_type"` // DEMOLISH, TRANSFER
	RefNo       string     `gorm:"type:varchar(20);not null;index" json:"ref_no"`
	NotifyEmail string     `gorm:"type:varchar(255)" json:"notify_email,omitempty"`
	Status      string     `gorm:"type:varchar(10);not null;default:'PENDING';index" json:"status"`
	EnqueuedAt  time.Time  `gorm:"not null" json:"enqueued_at"`
	SyncedAt    *time.Time `json:"synced_at,omitempty"`
}
