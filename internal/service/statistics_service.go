package service

import (
	"context"

	"portal/internal/model"
	"portal/internal/repository"
)

type StatisticsService interface {
	GetStatistics(ctx context.Context) (model.StatisticsResponse, error)
}

type statisticsService struct {
	statsRepo  repository.StatisticsRepository
	ledgerRepo repository.LedgerRepository
}

func NewStatisticsService(statsRepo repository.StatisticsRepository, ledgerRepo repository.LedgerRepository) StatisticsService {
	return &statisticsService{statsRepo: statsRepo, ledgerRepo: ledgerRepo}
}

// GetStatistics aggregates request counts per status and type together with ledger totals
func (s *statisticsService) GetStatistics(ctx context.Context) (model.StatisticsResponse, error) {
	response := model.StatisticsResponse{
		RequestsByStatus: make(map[model.RequestStatus]int64),
		RequestsByType:   make(map[model.RequestType]int64),
	}

	byStatus, err := s.statsRepo.CountRequestsBy(ctx, "status")
	if err != nil {
		return response, internalError("failed to count requests by status", err)
	}
	for _, row := range byStatus {
		response.RequestsByStatus[model.RequestStatus(row.Bucket)] = row.Count
		response.TotalRequests += row.Count
	}

	byType, err := s.statsRepo.CountRequestsBy(ctx, "type")
	if err != nil {
		return response, internalError("failed to count requests by type", err)
	}
	for _, row := range byType {
		response.RequestsByType[model.RequestType(row.Bucket)] = row.Count
	}

	totals, err := s.ledgerRepo.Totals(ctx)
	if err != nil {
		return response, internalError("failed to total ledger transactions", err)
	}
	response.TotalCredited = totals.Credited
	response.TotalDebited = totals.Debited
	response.TransactionCount = totals.Count

	ledger, err := s.ledgerRepo.Get(ctx)
	if err != nil {
		return response, internalError("failed to load ledger", err)
	}
	response.Balance = ledger.Balance

	return response, nil
}
