package repository

import (
	"context"
	"fmt"
	"time"

	"portal/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestRepository is the durable request collection. Listings are newest-first.
type RequestRepository interface {
	Add(ctx context.Context, req *model.Request) error
	FindByID(ctx context.Context, id string) (*model.Request, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id string) (*model.Request, error)
	List(ctx context.Context, filter model.RequestFilter) ([]model.Request, int64, error)
	UpdateStatus(ctx context.Context, id string, change model.StatusChange) (*model.Request, error)
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Add(ctx context.Context, req *model.Request) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id string) (*model.Request, error) {
	var req model.Request
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (r *requestRepository) FindByIDForUpdate(ctx context.Context, id string) (*model.Request, error) {
	var req model.Request
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (r *requestRepository) List(ctx context.Context, filter model.RequestFilter) ([]model.Request, int64, error) {
	var requests []model.Request
	var total int64

	db := GetDB(ctx, r.db)
	scope := func(q *gorm.DB) *gorm.DB {
		if filter.Target != "" && filter.Target != model.TargetAll {
			q = q.Where("target = ?", filter.Target)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.Type != "" {
			q = q.Where("type = ?", filter.Type)
		}
		if filter.CreatedByID != "" {
			q = q.Where("created_by_id = ?", filter.CreatedByID)
		}
		return q
	}

	if err := db.Model(&model.Request{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := db.Scopes(scope).Order("created_at DESC").Order("id DESC")
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.Limit).Limit(filter.Limit)
	}
	if err := query.Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// UpdateStatus merges the change under a row lock. It joins the caller's transaction when there is one.
func (r *requestRepository) UpdateStatus(ctx context.Context, id string, change model.StatusChange) (*model.Request, error) {
	var req model.Request
	err := GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, "id = ?", id).Error; err != nil {
			return translate(err)
		}
		change.Apply(&req, time.Now())
		if err := tx.Save(&req).Error; err != nil {
			return fmt.Errorf("failed to update request %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}
