package main

import (
	"fmt"

	"portal/internal/config"
	"portal/internal/database"
	"portal/internal/logger"
	"portal/internal/repository"
	"portal/internal/repository/memory"
)

// stores bundles the repositories behind the configured driver.
type stores struct {
	tx       repository.TransactionManager
	requests repository.RequestRepository
	ledger   repository.LedgerRepository
	audit    repository.AuditRepository
	stats    repository.StatisticsRepository
	close    func()
}

func openStores(cfg *config.Config) (*stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("Using in-memory store; data is lost on restart")
		s := memory.New()
		return &stores{tx: s, requests: s, ledger: s, audit: s.AuditLogs(), stats: s, close: func() {}}, nil
	}

	db, err := database.NewConnection(cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	logger.Info("Connected to PostgreSQL successfully.")

	return &stores{
		tx:       repository.NewTransactionManager(db),
		requests: repository.NewRequestRepository(db),
		ledger:   repository.NewLedgerRepository(db),
		audit:    repository.NewAuditRepository(db),
		stats:    repository.NewStatisticsRepository(db),
		close: func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}, nil
}
