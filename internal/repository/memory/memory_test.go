package memory

import (
	"context"
	"errors"
	"testing"

	"portal/internal/model"
	"portal/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(id string, target model.Target) *model.Request {
	return &model.Request{
		ID:          id,
		Type:        model.RequestTypeReport,
		Title:       "report " + id,
		CreatedByID: "u1",
		Payload:     model.ReportPayload{ReportTitle: id},
		Target:      target,
	}
}

func TestStore_AddPrependsAndDefaults(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, newRequest("a", model.TargetAdmin)))
	require.NoError(t, s.Add(ctx, newRequest("b", model.TargetFounder)))

	all, total, err := s.List(ctx, model.RequestFilter{Target: model.TargetAll})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "b", all[0].ID)
	assert.Equal(t, model.StatusPending, all[0].Status)
	assert.JSONEq(t, `{"reportTitle":"b"}`, all[0].PayloadData)

	assert.Error(t, s.Add(ctx, newRequest("a", model.TargetAdmin)))
	assert.Error(t, s.Add(ctx, &model.Request{ID: "no-payload"}))
}

func TestStore_FindAndUpdate(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, newRequest("a", model.TargetAdmin)))

	_, err := s.FindByID(ctx, "zzz")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.UpdateStatus(ctx, "zzz", model.StatusChange{Status: model.StatusRejected})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	target := model.TargetFounder
	updated, err := s.UpdateStatus(ctx, "a", model.StatusChange{Status: model.StatusForwarded, Target: &target})
	require.NoError(t, err)
	assert.Equal(t, model.StatusForwarded, updated.Status)

	// callers get copies
	updated.Status = model.StatusSigned
	stored, err := s.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, model.StatusForwarded, stored.Status)
	assert.Equal(t, model.TargetFounder, stored.Target)
}

func TestStore_RunInTxRestoresOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, newRequest("a", model.TargetAdmin)))

	boom := errors.New("boom")
	err := s.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.UpdateStatus(txCtx, "a", model.StatusChange{Status: model.StatusApproved}); err != nil {
			return err
		}
		ledger, err := s.GetForUpdate(txCtx)
		if err != nil {
			return err
		}
		ledger.Balance = decimal.NewFromInt(10)
		if err := s.Save(txCtx, ledger); err != nil {
			return err
		}
		if err := s.AppendTransaction(txCtx, &model.LedgerTransaction{ID: "t1", Amount: decimal.NewFromInt(10), Type: model.TxCredited}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := s.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)

	ledger, err := s.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ledger.Balance.IsZero())

	latest, err := s.LatestTransaction(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestStore_LedgerTotalsAndPaging(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i, tx := range []model.LedgerTransaction{
		{ID: "t1", Amount: decimal.NewFromInt(100), Type: model.TxCredited},
		{ID: "t2", Amount: decimal.NewFromInt(30), Type: model.TxDebited},
		{ID: "t3", Amount: decimal.NewFromInt(5), Type: model.TxDebited},
	} {
		require.NoError(t, s.AppendTransaction(ctx, &tx), "tx %d", i)
	}
	assert.Error(t, s.AppendTransaction(ctx, &model.LedgerTransaction{ID: "t1"}))

	totals, err := s.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, "65", totals.Net().String())
	assert.Equal(t, int64(3), totals.Count)

	page, total, err := s.ListTransactions(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 1)
	assert.Equal(t, "t1", page[0].ID)

	latest, err := s.LatestTransaction(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t3", latest.ID)
}

func TestStore_CountRequestsBy(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, newRequest("a", model.TargetAdmin)))
	require.NoError(t, s.Add(ctx, newRequest("b", model.TargetAdmin)))
	_, err := s.UpdateStatus(ctx, "a", model.StatusChange{Status: model.StatusRejected})
	require.NoError(t, err)

	rows, err := s.CountRequestsBy(ctx, "status")
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.CountRow{{Bucket: "pending", Count: 1}, {Bucket: "rejected", Count: 1}}, rows)

	_, err = s.CountRequestsBy(ctx, "title")
	assert.Error(t, err)
}

func TestStore_AuditLogs(t *testing.T) {
	s := New()
	ctx := context.Background()
	audit := s.AuditLogs()

	require.NoError(t, audit.Log(ctx, &model.AuditLog{ID: "1", Action: model.ActionSubmitRequest}))
	require.NoError(t, audit.Log(ctx, &model.AuditLog{ID: "2", Action: model.ActionApproveRequest}))

	logs, total, err := audit.List(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, logs, 1)
	assert.Equal(t, "2", logs[0].ID)
}
