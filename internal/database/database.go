package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"trading-journal-go/internal/models"
)

// NewDatabase creates a new database connection and performs auto-migration.
// Existing data is never dropped: the operations table is an append-only
// log and everything else is rebuildable from it.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.Operation{}, &models.Snapshot{}, &models.Setting{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return db, nil
}
