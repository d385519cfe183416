package repository

import (
	"context"
	"errors"

	"portal/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository stores the company balance and its append-only transaction log.
type LedgerRepository interface {
	// Get returns the ledger, or a zero ledger when none has been written yet.
	Get(ctx context.Context) (*model.Ledger, error)
	// GetForUpdate creates the ledger row if needed and locks it until the transaction ends.
	GetForUpdate(ctx context.Context) (*model.Ledger, error)
	Save(ctx context.Context, ledger *model.Ledger) error
	AppendTransaction(ctx context.Context, tx *model.LedgerTransaction) error
	ListTransactions(ctx context.Context, page, limit int) ([]model.LedgerTransaction, int64, error)
	// LatestTransaction returns nil when the log is empty.
	LatestTransaction(ctx context.Context) (*model.LedgerTransaction, error)
	Totals(ctx context.Context) (model.LedgerTotals, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Get(ctx context.Context) (*model.Ledger, error) {
	var ledger model.Ledger
	err := GetDB(ctx, r.db).First(&ledger, "id = ?", model.CompanyLedgerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.Ledger{ID: model.CompanyLedgerID, Balance: decimal.Zero}, nil
	}
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (r *ledgerRepository) GetForUpdate(ctx context.Context) (*model.Ledger, error) {
	db := GetDB(ctx, r.db)
	seed := model.Ledger{ID: model.CompanyLedgerID, Balance: decimal.Zero}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, err
	}

	var ledger model.Ledger
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ledger, "id = ?", model.CompanyLedgerID).Error; err != nil {
		return nil, translate(err)
	}
	return &ledger, nil
}

func (r *ledgerRepository) Save(ctx context.Context, ledger *model.Ledger) error {
	return GetDB(ctx, r.db).Save(ledger).Error
}

func (r *ledgerRepository) AppendTransaction(ctx context.Context, tx *model.LedgerTransaction) error {
	return GetDB(ctx, r.db).Create(tx).Error
}

func (r *ledgerRepository) ListTransactions(ctx context.Context, page, limit int) ([]model.LedgerTransaction, int64, error) {
	var txs []model.LedgerTransaction
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.LedgerTransaction{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("date DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&txs).Error; err != nil {
		return nil, 0, err
	}

	return txs, total, nil
}

func (r *ledgerRepository) LatestTransaction(ctx context.Context) (*model.LedgerTransaction, error) {
	var tx model.LedgerTransaction
	err := GetDB(ctx, r.db).Order("date DESC").Order("id DESC").First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *ledgerRepository) Totals(ctx context.Context) (model.LedgerTotals, error) {
	var rows []struct {
		Type  model.TransactionType
		Total decimal.Decimal
		Count int64
	}
	if err := GetDB(ctx, r.db).Model(&model.LedgerTransaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Group("type").
		Scan(&rows).Error; err != nil {
		return model.LedgerTotals{}, err
	}

	totals := model.LedgerTotals{Credited: decimal.Zero, Debited: decimal.Zero}
	for _, row := range rows {
		switch row.Type {
		case model.TxCredited:
			totals.Credited = row.Total
		case model.TxDebited:
			totals.Debited = row.Total
		}
		totals.Count += row.Count
	}
	return totals, nil
}
