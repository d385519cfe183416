package repository

import (
	"context"
	"fmt"

	"portal/internal/model"

	"gorm.io/gorm"
)

type StatisticsRepository interface {
	CountRequestsBy(ctx context.Context, column string) ([]model.CountRow, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

// CountRequestsBy groups requests by "status" or "type".
func (r *statisticsRepository) CountRequestsBy(ctx context.Context, column string) ([]model.CountRow, error) {
	if column != "status" && column != "type" {
		return nil, fmt.Errorf("unsupported grouping column %q", column)
	}

	var rows []model.CountRow
	if err := GetDB(ctx, r.db).Model(&model.Request{}).
		Select(column + " AS bucket, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count requests by %s: %w", column, err)
	}
	return rows, nil
}
