package main

import (
	"encoding/json"
	"errors"
	"os"

	"portal/internal/service"

	"github.com/spf13/cobra"
)

var errLedgerDrift = errors.New("ledger balance does not match its transaction log")

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Check the ledger balance against its transactions once",
	Long: `Recomputes the balance from the transaction log and compares it with the stored
balance and the newest transaction's balanceAfter. Prints the report as JSON and
exits non-zero when they disagree.`,
	RunE: runReconcile,
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.close()

	ledgerService := service.NewLedgerService(st.ledger, st.audit, st.tx)
	report, err := ledgerService.Reconcile(cmd.Context())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	if !report.Consistent {
		return errLedgerDrift
	}
	return nil
}
