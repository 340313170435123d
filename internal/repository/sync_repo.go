package repository

import (
	"context"
	"errors"
	"time"

	"asset-backend/internal/apperr"
	"asset-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncRepository is the outbox port. The lifecycle engine only enqueues;
// the sync console lists entries and marks them propagated.
type SyncRepository interface {
	Enqueue(ctx context.Context, entry *model.SyncQueueEntry) error
	List(ctx context.Context, status string) ([]model.SyncQueueEntry, error)
	MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error
}

type syncRepository struct {
	db *gorm.DB
}

func NewSyncRepository(db *gorm.DB) SyncRepository {
	return &syncRepository{db: db}
}

func (r *syncRepository) Enqueue(ctx context.Context, entry *model.SyncQueueEntry) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *syncRepository) List(ctx context.Context, status string) ([]model.SyncQueueEntry, error) {
	var entries []model.SyncQueueEntry
	query := GetDB(ctx, r.db).Model(&model.SyncQueueEntry{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("enqueued_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *syncRepository) MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error {
	var entry model.SyncQueueEntry
	if err := GetDB(ctx, r.db).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("sync entry %s not found", id)
		}
		return err
	}
	if entry.Status == model.SyncDone {
		return apperr.InvalidState("sync entry %s is already synced", id)
	}
	return GetDB(ctx, r.db).Model(&entry).
		Updates(map[string]interface{}{"status": model.SyncDone, "synced_at": at}).Error
}
