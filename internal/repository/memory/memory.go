// Package memory provides an in-process implementation of the repository interfaces.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"portal/internal/model"
	"portal/internal/repository"

	"github.com/shopspring/decimal"
)

// Store is an in-memory implementation of the storage interfaces. A single mutex
// serializes every operation; RunInTx holds it for the whole callback and restores
// the previous state when the callback fails. Intended for tests and local development.
type Store struct {
	mu           sync.Mutex
	requests     []model.Request // newest first
	ledger       *model.Ledger
	transactions []model.LedgerTransaction // newest first
	audit        []model.AuditLog          // newest first
	now          func() time.Time
}

var _ repository.TransactionManager = (*Store)(nil)
var _ repository.RequestRepository = (*Store)(nil)
var _ repository.LedgerRepository = (*Store)(nil)
var _ repository.AuditRepository = auditView{}
var _ repository.StatisticsRepository = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{now: time.Now}
}

type txKey struct{ store *Store }

type snapshot struct {
	requests     []model.Request
	ledger       *model.Ledger
	transactions []model.LedgerTransaction
	audit        []model.AuditLog
}

func (s *Store) inTx(ctx context.Context) bool {
	return ctx.Value(txKey{s}) != nil
}

// acquire locks the store unless ctx already runs inside one of its transactions.
func (s *Store) acquire(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		requests:     append([]model.Request(nil), s.requests...),
		transactions: append([]model.LedgerTransaction(nil), s.transactions...),
		audit:        append([]model.AuditLog(nil), s.audit...),
	}
	if s.ledger != nil {
		l := *s.ledger
		snap.ledger = &l
	}

	if err := fn(context.WithValue(ctx, txKey{s}, true)); err != nil {
		s.requests = snap.requests
		s.ledger = snap.ledger
		s.transactions = snap.transactions
		s.audit = snap.audit
		return err
	}
	return nil
}

// RequestRepository implementation -------------------------------------------

func (s *Store) Add(ctx context.Context, req *model.Request) error {
	defer s.acquire(ctx)()

	if req.ID == "" {
		return fmt.Errorf("request id is required")
	}
	if s.indexOf(req.ID) >= 0 {
		return fmt.Errorf("request %s already exists", req.ID)
	}
	if err := req.BeforeSave(nil); err != nil {
		return err
	}

	now := s.now()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	if req.UpdatedAt.IsZero() {
		req.UpdatedAt = now
	}
	if req.Status == "" {
		req.Status = model.StatusPending
	}

	s.requests = append([]model.Request{cloneRequest(*req)}, s.requests...)
	return nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*model.Request, error) {
	defer s.acquire(ctx)()

	i := s.indexOf(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	req := cloneRequest(s.requests[i])
	return &req, nil
}

// FindByIDForUpdate is FindByID; the transaction already holds the store lock.
func (s *Store) FindByIDForUpdate(ctx context.Context, id string) (*model.Request, error) {
	return s.FindByID(ctx, id)
}

func (s *Store) List(ctx context.Context, filter model.RequestFilter) ([]model.Request, int64, error) {
	defer s.acquire(ctx)()

	matched := make([]model.Request, 0, len(s.requests))
	for _, r := range s.requests {
		if filter.Target != "" && filter.Target != model.TargetAll && r.Target != filter.Target {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Type != "" && r.Type != filter.Type {
			continue
		}
		if filter.CreatedByID != "" && r.CreatedByID != filter.CreatedByID {
			continue
		}
		matched = append(matched, cloneRequest(r))
	}

	total := int64(len(matched))
	if filter.Limit > 0 {
		matched = paginate(matched, filter.Page, filter.Limit)
	}
	return matched, total, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id string, change model.StatusChange) (*model.Request, error) {
	defer s.acquire(ctx)()

	i := s.indexOf(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	change.Apply(&s.requests[i], s.now())
	req := cloneRequest(s.requests[i])
	return &req, nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.requests {
		if s.requests[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneRequest(r model.Request) model.Request {
	if r.UploadedFile != nil {
		f := *r.UploadedFile
		r.UploadedFile = &f
	}
	return r
}

// LedgerRepository implementation --------------------------------------------

func (s *Store) Get(ctx context.Context) (*model.Ledger, error) {
	defer s.acquire(ctx)()

	if s.ledger == nil {
		return &model.Ledger{ID: model.CompanyLedgerID, Balance: decimal.Zero}, nil
	}
	l := *s.ledger
	return &l, nil
}

func (s *Store) GetForUpdate(ctx context.Context) (*model.Ledger, error) {
	defer s.acquire(ctx)()

	if s.ledger == nil {
		now := s.now()
		s.ledger = &model.Ledger{ID: model.CompanyLedgerID, Balance: decimal.Zero, CreatedAt: now, UpdatedAt: now}
	}
	l := *s.ledger
	return &l, nil
}

func (s *Store) Save(ctx context.Context, ledger *model.Ledger) error {
	defer s.acquire(ctx)()

	l := *ledger
	l.UpdatedAt = s.now()
	if s.ledger != nil {
		l.CreatedAt = s.ledger.CreatedAt
	}
	s.ledger = &l
	return nil
}

func (s *Store) AppendTransaction(ctx context.Context, tx *model.LedgerTransaction) error {
	defer s.acquire(ctx)()

	if tx.ID == "" {
		return fmt.Errorf("transaction id is required")
	}
	for _, existing := range s.transactions {
		if existing.ID == tx.ID {
			return fmt.Errorf("transaction %s already exists", tx.ID)
		}
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = s.now()
	}
	s.transactions = append([]model.LedgerTransaction{*tx}, s.transactions...)
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, page, limit int) ([]model.LedgerTransaction, int64, error) {
	defer s.acquire(ctx)()

	all := append([]model.LedgerTransaction(nil), s.transactions...)
	return paginate(all, page, limit), int64(len(all)), nil
}

func (s *Store) LatestTransaction(ctx context.Context) (*model.LedgerTransaction, error) {
	defer s.acquire(ctx)()

	if len(s.transactions) == 0 {
		return nil, nil
	}
	tx := s.transactions[0]
	return &tx, nil
}

func (s *Store) Totals(ctx context.Context) (model.LedgerTotals, error) {
	defer s.acquire(ctx)()

	totals := model.LedgerTotals{Credited: decimal.Zero, Debited: decimal.Zero}
	for _, tx := range s.transactions {
		switch tx.Type {
		case model.TxCredited:
			totals.Credited = totals.Credited.Add(tx.Amount)
		case model.TxDebited:
			totals.Debited = totals.Debited.Add(tx.Amount)
		}
		totals.Count++
	}
	return totals, nil
}

// AuditRepository implementation ---------------------------------------------

func (s *Store) Log(ctx context.Context, entry *model.AuditLog) error {
	defer s.acquire(ctx)()

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	s.audit = append([]model.AuditLog{*entry}, s.audit...)
	return nil
}

// AuditLogs is the AuditRepository List; the name List belongs to requests.
func (s *Store) AuditLogs() repository.AuditRepository {
	return auditView{s}
}

type auditView struct{ s *Store }

func (v auditView) Log(ctx context.Context, entry *model.AuditLog) error {
	return v.s.Log(ctx, entry)
}

func (v auditView) List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	defer v.s.acquire(ctx)()

	all := append([]model.AuditLog(nil), v.s.audit...)
	return paginate(all, page, limit), int64(len(all)), nil
}

// StatisticsRepository implementation ----------------------------------------

func (s *Store) CountRequestsBy(ctx context.Context, column string) ([]model.CountRow, error) {
	defer s.acquire(ctx)()

	var key func(model.Request) string
	switch column {
	case "status":
		key = func(r model.Request) string { return string(r.Status) }
	case "type":
		key = func(r model.Request) string { return string(r.Type) }
	default:
		return nil, fmt.Errorf("unsupported grouping column %q", column)
	}

	counts := make(map[string]int64)
	var order []string
	for _, r := range s.requests {
		k := key(r)
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}

	rows := make([]model.CountRow, 0, len(order))
	for _, k := range order {
		rows = append(rows, model.CountRow{Bucket: k, Count: counts[k]})
	}
	return rows, nil
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
