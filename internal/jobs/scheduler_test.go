package jobs

import (
	"context"
	"io"
	"testing"

	"portal/internal/logger"
	"portal/internal/model"
	"portal/internal/repository/memory"
	"portal/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T) (*memory.Store, service.LedgerService) {
	t.Helper()
	logger.SetOutput(io.Discard)
	store := memory.New()
	return store, service.NewLedgerService(store, store.AuditLogs(), store)
}

func TestNewScheduler_RejectsBadSchedule(t *testing.T) {
	_, ledger := newLedger(t)

	_, err := NewScheduler(ledger, "every so often")
	assert.Error(t, err)

	s, err := NewScheduler(ledger, "@every 15m")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Entries())

	s.Start()
	s.Stop()
}

type countingLedger struct {
	service.LedgerService
	calls int
}

func (c *countingLedger) Reconcile(ctx context.Context) (service.ReconcileReport, error) {
	c.calls++
	return c.LedgerService.Reconcile(ctx)
}

func TestReconcileLedger_RunsCheck(t *testing.T) {
	store, ledger := newLedger(t)
	_, err := ledger.Post(context.Background(), service.PostTransactionInput{
		Amount: decimal.NewFromInt(10), Purpose: "seed", Type: model.TxCredited,
	})
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), &model.Ledger{ID: model.CompanyLedgerID, Balance: decimal.NewFromInt(11)}))

	counting := &countingLedger{LedgerService: ledger}
	s, err := NewScheduler(counting, "@hourly")
	require.NoError(t, err)

	s.ReconcileLedger()
	assert.Equal(t, 1, counting.calls)
}
