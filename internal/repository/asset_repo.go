package repository

import (
	"context"
	"errors"

	"asset-backend/internal/apperr"
	"asset-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssetRepository is the catalog port: lookups when items are added, field
// mutation when an approved transfer reassigns assets. gapOnly restricts
// Search to assets disagreeing with SAP; the predicate runs before
// offset/limit so totals and paging stay correct.
type AssetRepository interface {
	Create(ctx context.Context, asset *model.Asset) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Asset, error)
	Search(ctx context.Context, search string, gapOnly bool, offset, limit int) ([]model.Asset, int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, costCenter, location string) error
}

type assetRepository struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) Create(ctx context.Context, asset *model.Asset) error {
	return GetDB(ctx, r.db).Create(asset).Error
}

func (r *assetRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Asset, error) {
	var asset model.Asset
	if err := GetDB(ctx, r.db).First(&asset, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("asset %s not found", id)
		}
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepository) Search(ctx context.Context, search string, gapOnly bool, offset, limit int) ([]model.Asset, int64, error) {
	db := GetDB(ctx, r.db)

	query := db.Model(&model.Asset{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"asset_no ILIKE ? OR asset_name ILIKE ? OR cost_center ILIKE ? OR location ILIKE ?",
			like, like, like, like,
		)
	}
	if gapOnly {
		// Mirrors model.Asset.SapGap.
		query = query.Where("sap_exists = false OR abs(book_value - sap_book_value) > 0.01")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var assets []model.Asset
	query = query.Order("asset_no ASC")
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}
	if err := query.Find(&assets).Error; err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}

func (r *assetRepository) UpdateFields(ctx context.Context, id uuid.UUID, costCenter, location string) error {
	res := GetDB(ctx, r.db).Model(&model.Asset{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"cost_center": costCenter, "location": location})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("asset %s not found", id)
	}
	return nil
}
