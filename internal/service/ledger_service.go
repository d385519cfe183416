package service

import (
	"context"
	"errors"
	"time"

	"portal/internal/logger"
	"portal/internal/metrics"
	"portal/internal/model"
	"portal/internal/repository"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

// PostTransactionInput describes one ledger posting. Amount is a positive magnitude;
// Type carries the direction.
type PostTransactionInput struct {
	Amount      decimal.Decimal
	Purpose     string
	Remarks     string
	Type        model.TransactionType
	RequestID   string
	RequestType model.RequestType
	ActorID     string
	ActorRole   string
}

type LedgerResponse struct {
	Balance      decimal.Decimal           `json:"balance"`
	Transactions []model.LedgerTransaction `json:"transactions"`
	Total        int64                     `json:"total"`
	Page         int                       `json:"page"`
	Limit        int                       `json:"limit"`
}

// ReconcileReport compares the stored balance with the transaction log.
type ReconcileReport struct {
	Balance            decimal.Decimal  `json:"balance"`
	ComputedBalance    decimal.Decimal  `json:"computedBalance"`
	LatestBalanceAfter *decimal.Decimal `json:"latestBalanceAfter,omitempty"`
	TransactionCount   int64            `json:"transactionCount"`
	Consistent         bool             `json:"consistent"`
	CheckedAt          time.Time        `json:"checkedAt"`
}

// --- Interface ---

type LedgerService interface {
	// Post is the only mutator of the ledger. It joins the caller's transaction when there is one.
	Post(ctx context.Context, in PostTransactionInput) (*model.LedgerTransaction, error)
	GetLedger(ctx context.Context, page, limit int) (LedgerResponse, error)
	Reconcile(ctx context.Context) (ReconcileReport, error)
}

type ledgerService struct {
	ledgerRepo repository.LedgerRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
	now        func() time.Time
}

func NewLedgerService(
	ledgerRepo repository.LedgerRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) LedgerService {
	return &ledgerService{
		ledgerRepo: ledgerRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
		now:        time.Now,
	}
}

// --- Implementation ---

func (s *ledgerService) Post(ctx context.Context, in PostTransactionInput) (*model.LedgerTransaction, error) {
	amount := in.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, &Error{Kind: KindInvalidAmount, Message: "invalid amount", Err: model.ErrInvalidAmount}
	}
	if in.Type != model.TxCredited && in.Type != model.TxDebited {
		return nil, newError(KindBadRequest, "unknown transaction type %q", in.Type)
	}
	if in.Purpose == "" {
		return nil, newError(KindBadRequest, "transaction purpose is required")
	}

	var posted model.LedgerTransaction
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		ledger, err := s.ledgerRepo.GetForUpdate(txCtx)
		if err != nil {
			return internalError("failed to load ledger", err)
		}

		delta := amount
		if in.Type == model.TxDebited {
			delta = amount.Neg()
		}
		next := ledger.Balance.Add(delta).Round(2)

		posted = model.LedgerTransaction{
			ID:           newID(),
			Date:         s.now(),
			Amount:       amount,
			Purpose:      in.Purpose,
			Remarks:      in.Remarks,
			Type:         in.Type,
			BalanceAfter: next,
		}
		if in.RequestID != "" {
			reqID, reqType := in.RequestID, in.RequestType
			posted.RequestID = &reqID
			posted.RequestType = &reqType
		}

		if err := s.ledgerRepo.AppendTransaction(txCtx, &posted); err != nil {
			return internalError("failed to append ledger transaction", err)
		}

		ledger.Balance = next
		if err := s.ledgerRepo.Save(txCtx, ledger); err != nil {
			return internalError("failed to save ledger balance", err)
		}

		return recordAudit(txCtx, s.auditRepo, in.ActorID, in.ActorRole, model.ActionPostTransaction,
			posted.ID, string(posted.Type), map[string]interface{}{
				"amount":        amount.StringFixed(2),
				"balance_after": next.StringFixed(2),
				"request_id":    in.RequestID,
			})
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPosting(string(posted.Type), posted.BalanceAfter)
	logger.WithService("ledger").WithFields(map[string]interface{}{
		"transaction_id": posted.ID,
		"type":           posted.Type,
		"amount":         posted.Amount.StringFixed(2),
		"balance_after":  posted.BalanceAfter.StringFixed(2),
	}).Info("ledger transaction posted")

	return &posted, nil
}

func (s *ledgerService) GetLedger(ctx context.Context, page, limit int) (LedgerResponse, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	ledger, err := s.ledgerRepo.Get(ctx)
	if err != nil {
		return LedgerResponse{}, internalError("failed to load ledger", err)
	}

	txs, total, err := s.ledgerRepo.ListTransactions(ctx, page, limit)
	if err != nil {
		return LedgerResponse{}, internalError("failed to list ledger transactions", err)
	}
	if txs == nil {
		txs = []model.LedgerTransaction{}
	}

	return LedgerResponse{
		Balance:      ledger.Balance,
		Transactions: txs,
		Total:        total,
		Page:         page,
		Limit:        limit,
	}, nil
}

// Reconcile locks the ledger so no posting interleaves with the check.
func (s *ledgerService) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		ledger, err := s.ledgerRepo.GetForUpdate(txCtx)
		if err != nil {
			return err
		}
		totals, err := s.ledgerRepo.Totals(txCtx)
		if err != nil {
			return err
		}
		latest, err := s.ledgerRepo.LatestTransaction(txCtx)
		if err != nil {
			return err
		}

		report = ReconcileReport{
			Balance:          ledger.Balance,
			ComputedBalance:  totals.Net(),
			TransactionCount: totals.Count,
			CheckedAt:        s.now(),
		}
		report.Consistent = report.ComputedBalance.Equal(ledger.Balance)
		if latest != nil {
			after := latest.BalanceAfter
			report.LatestBalanceAfter = &after
			report.Consistent = report.Consistent && after.Equal(ledger.Balance)
		} else {
			report.Consistent = report.Consistent && ledger.Balance.IsZero()
		}
		return nil
	})
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			return ReconcileReport{}, err
		}
		return ReconcileReport{}, internalError("failed to reconcile ledger", err)
	}

	metrics.SetLedgerConsistent(report.Consistent)
	metrics.SetBalance(report.Balance)
	if !report.Consistent {
		logger.WithService("ledger").WithFields(map[string]interface{}{
			"balance":  report.Balance.StringFixed(2),
			"computed": report.ComputedBalance.StringFixed(2),
		}).Warn("ledger balance drifted from transaction log")
	}
	return report, nil
}
