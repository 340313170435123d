package repository

import (
	"context"
	"errors"

	"asset-backend/internal/apperr"
	"asset-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestRepository is the persistence port for asset requests. Update
// carries the optimistic version check: a write against a stale Version
// fails with a Conflict instead of silently winning.
type RequestRepository interface {
	Create(ctx context.Context, req *model.AssetRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.AssetRequest, error)
	List(ctx context.Context, variant, status string) ([]model.AssetRequest, error)
	ListRequestNos(ctx context.Context, variant, prefix string) ([]string, error)
	// LockNumberPrefix serializes request-number allocation for a prefix
	// within the current transaction.
	LockNumberPrefix(ctx context.Context, prefix string) error
	Update(ctx context.Context, req *model.AssetRequest) error
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.AssetRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.AssetRequest, error) {
	var req model.AssetRequest
	err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Documents").
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("step_order ASC") }).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("action_at ASC") }).
		First(&req, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("request %s not found", id)
		}
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) List(ctx context.Context, variant, status string) ([]model.AssetRequest, error) {
	var reqs []model.AssetRequest
	query := GetDB(ctx, r.db).
		Preload("Items").
		Where("variant = ?", variant)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *requestRepository) ListRequestNos(ctx context.Context, variant, prefix string) ([]string, error) {
	var nos []string
	err := GetDB(ctx, r.db).Model(&model.AssetRequest{}).
		Where("variant = ? AND request_no LIKE ?", variant, prefix+"%").
		Pluck("request_no", &nos).Error
	if err != nil {
		return nil, err
	}
	return nos, nil
}

func (r *requestRepository) LockNumberPrefix(ctx context.Context, prefix string) error {
	// Advisory xact lock keyed by the prefix; released at commit/rollback.
	return GetDB(ctx, r.db).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix).Error
}

func (r *requestRepository) Update(ctx context.Context, req *model.AssetRequest) error {
	db := GetDB(ctx, r.db)

	loadedVersion := req.Version
	req.Version = loadedVersion + 1

	res := db.Model(&model.AssetRequest{}).
		Where("id = ? AND version = ?", req.ID, loadedVersion).
		Select("*").Omit("Items", "Documents", "Steps", "History", "CreatedAt").
		Updates(req)
	if res.Error != nil {
		req.Version = loadedVersion
		return res.Error
	}
	if res.RowsAffected == 0 {
		req.Version = loadedVersion
		return apperr.Conflict("request %s was modified concurrently", req.RequestNo)
	}

	// Child rows are append-or-keep; history is never rewritten, so plain
	// upserts by primary key are enough.
	for i := range req.Items {
		if err := db.Save(&req.Items[i]).Error; err != nil {
			return err
		}
	}
	for i := range req.Documents {
		if err := db.Save(&req.Documents[i]).Error; err != nil {
			return err
		}
	}
	for i := range req.Steps {
		if err := db.Save(&req.Steps[i]).Error; err != nil {
			return err
		}
	}
	for i := range req.History {
		if err := db.Save(&req.History[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
