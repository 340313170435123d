package service

import (
	"context"
	"time"

	"asset-backend/internal/apperr"
	"asset-backend/internal/model"
	"asset-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateAssetInput struct {
	AssetNo      string `json:"asset_no" binding:"required"`
	AssetName    string `json:"asset_name" binding:"required"`
	PlantID      string `json:"plant_id" binding:"required"`
	CostCenter   string `json:"cost_center" binding:"required"`
	Location     string `json:"location" binding:"required"`
	BookValue    string `json:"book_value" binding:"required"`
	SapExists    bool   `json:"sap_exists"`
	SapBookValue string `json:"sap_book_value"`
}

type AssetFilter struct {
	Search string
	Mode   string // "", "sap-gap"
	Offset int
	Limit  int
}

// AssetMetrics are the dashboard counters over the catalog.
type AssetMetrics struct {
	Total  int `json:"total"`
	SapGap int `json:"sap_gap"`
}

// --- Interface ---

type AssetService interface {
	Create(ctx context.Context, in CreateAssetInput) (*model.Asset, error)
	Get(ctx context.Context, id string) (*model.Asset, error)
	List(ctx context.Context, filter AssetFilter) ([]model.Asset, int64, error)
	Metrics(ctx context.Context) (AssetMetrics, error)
}

type assetService struct {
	assets repository.AssetRepository
	now    func() time.Time
}

func NewAssetService(assets repository.AssetRepository) AssetService {
	return &assetService{assets: assets, now: time.Now}
}

// --- Implementation ---

func (s *assetService) Create(ctx context.Context, in CreateAssetInput) (*model.Asset, error) {
	bookValue, err := decimal.NewFromString(in.BookValue)
	if err != nil {
		return nil, apperr.Validation("invalid book value %q: %v", in.BookValue, err)
	}
	if bookValue.IsNegative() {
		return nil, apperr.Validation("book value must not be negative")
	}

	sapBookValue := decimal.Zero
	if in.SapBookValue != "" {
		sapBookValue, err = decimal.NewFromString(in.SapBookValue)
		if err != nil {
			return nil, apperr.Validation("invalid SAP book value %q: %v", in.SapBookValue, err)
		}
	}

	now := s.now()
	asset := &model.Asset{
		ID:           uuid.New(),
		AssetNo:      in.AssetNo,
		AssetName:    in.AssetName,
		PlantID:      in.PlantID,
		CostCenter:   in.CostCenter,
		Location:     in.Location,
		BookValue:    bookValue.Round(2),
		SapExists:    in.SapExists,
		SapBookValue: sapBookValue.Round(2),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.assets.Create(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *assetService) Get(ctx context.Context, id string) (*model.Asset, error) {
	aid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid asset id: %v", err)
	}
	return s.assets.FindByID(ctx, aid)
}

func (s *assetService) List(ctx context.Context, filter AssetFilter) ([]model.Asset, int64, error) {
	// The gap predicate lives in the repository so it applies before
	// offset/limit; gap rows past the first page still count.
	return s.assets.Search(ctx, filter.Search, filter.Mode == "sap-gap", filter.Offset, filter.Limit)
}

func (s *assetService) Metrics(ctx context.Context) (AssetMetrics, error) {
	assets, _, err := s.assets.Search(ctx, "", false, 0, 0)
	if err != nil {
		return AssetMetrics{}, err
	}
	metrics := AssetMetrics{Total: len(assets)}
	for _, asset := range assets {
		if asset.SapGap() {
			metrics.SapGap++
		}
	}
	return metrics, nil
}
