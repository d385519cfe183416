package database

import (
	"fmt"
	"time"

	"portal/internal/logger"
	"portal/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM and migrates the portal tables
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Migrate(db); err != nil {
		logger.Warn("Failed to auto-migrate models", "error", err)
	}

	return db, nil
}

// Migrate creates or updates the request, ledger and audit tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Request{},
		&model.Ledger{},
		&model.LedgerTransaction{},
		&model.AuditLog{},
	)
}
