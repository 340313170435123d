package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Asset is a catalog record. The lifecycle engine reads it when items are
// added and writes cost center/location back when a transfer is approved.
type Asset struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	AssetNo      string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"asset_no"`
	AssetName    string          `gorm:"type:varchar(255);not null" json:"asset_name"`
	PlantID      string          `gorm:"type:varchar(50);not null;index" json:"plant_id"`
	CostCenter   string          `gorm:"type:varchar(50);not null;index" json:"cost_center"`
	Location     string          `gorm:"type:varchar(100);not null" json:"location"`
	BookValue    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"book_value"`
	SapExists    bool            `gorm:"not null;default:false" json:"sap_exists"`
	SapBookValue decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"sap_book_value"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// SapGap reports whether the record disagrees with SAP: missing there, or
// book values differing by more than 0.01.
func (a *Asset) SapGap() bool {
	if !a.SapExists {
		return true
	}
	return a.BookValue.Sub(a.SapBookValue).Abs().GreaterThan(decimal.NewFromFloat(0.01))
}
