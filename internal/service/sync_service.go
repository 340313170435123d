package service

import (
	"context"
	"time"

	"asset-backend/internal/apperr"
	"asset-backend/internal/model"
	"asset-backend/internal/repository"

	"github.com/google/uuid"
)

// SyncService backs the sync console: list what is waiting for the nightly
// downstream run and mark entries once they have been propagated.
type SyncService interface {
	List(ctx context.Context, status string) ([]model.SyncQueueEntry, error)
	MarkSynced(ctx context.Context, id string) error
}

type syncService struct {
	queue  repository.SyncRepository
	events Broadcaster
	now    func() time.Time
}

func NewSyncService(queue repository.SyncRepository, events Broadcaster) SyncService {
	return &syncService{queue: queue, events: events, now: time.Now}
}

func (s *syncService) List(ctx context.Context, status string) ([]model.SyncQueueEntry, error) {
	if status != "" && status != model.SyncPending && status != model.SyncDone {
		return nil, apperr.Validation("unknown sync status %q", status)
	}
	return s.queue.List(ctx, status)
}

func (s *syncService) MarkSynced(ctx context.Context, id string) error {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return apperr.Validation("invalid sync entry id: %v", err)
	}
	if err := s.queue.MarkSynced(ctx, entryID, s.now()); err != nil {
		return err
	}
	if s.events != nil {
		s.events.BroadcastEvent("sync.completed", map[string]interface{}{"entry_id": id})
	}
	return nil
}
