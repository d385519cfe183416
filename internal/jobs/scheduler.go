// Package jobs runs the portal's background maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"portal/internal/logger"
	"portal/internal/service"

	"github.com/robfig/cron/v3"
)

const reconcileTimeout = 30 * time.Second

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron   *cron.Cron
	ledger service.LedgerService
}

// NewScheduler registers the ledger reconciliation job under schedule
// (standard five-field expression or a descriptor such as "@every 15m").
func NewScheduler(ledger service.LedgerService, schedule string) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	s := &Scheduler{cron: c, ledger: ledger}

	if _, err := c.AddFunc(schedule, s.ReconcileLedger); err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", schedule, err)
	}
	return s, nil
}

// ReconcileLedger checks the balance invariant once and logs the outcome.
func (s *Scheduler) ReconcileLedger() {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	report, err := s.ledger.Reconcile(ctx)
	if err != nil {
		logger.Error("Ledger reconciliation failed", "error", err)
		return
	}
	if report.Consistent {
		logger.Info("Ledger reconciled", "balance", report.Balance.StringFixed(2), "transactions", report.TransactionCount)
	}
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
