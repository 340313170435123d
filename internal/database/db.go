package database

import (
	"log"

	"asset-backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.Asset{},
		&model.AssetRequest{},
		&model.RequestItem{},
		&model.RequestDocument{},
		&model.ApprovalStep{},
		&model.ApprovalHistoryItem{},
		&model.SyncQueueEntry{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
