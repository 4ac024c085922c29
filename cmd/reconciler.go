package main

import (
	"context"
	"math"
	"time"

	"engineBack/internal/services"
)

// runLedgerReconciler periodically recomputes each current-month ledger's
// actual_spend from its transaction log and repairs drift. The transaction
// insert updates the ledger atomically, so drift only appears after manual
// database surgery or partial restores.
func (app *application) runLedgerReconciler(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		app.reconcileCurrentMonth()
	}
}

func (app *application) reconcileCurrentMonth() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	monthKey := services.MonthKey(time.Now())
	ledgerIDs, err := app.budgetRepo.ListLedgerIDsForMonth(ctx, monthKey)
	if err != nil {
		app.errorLog.Printf("reconciler: list ledgers: %v", err)
		return
	}

	for _, ledgerID := range ledgerIDs {
		sum, err := app.budgetRepo.SumTransactions(ctx, ledgerID)
		if err != nil {
			app.errorLog.Printf("reconciler: sum transactions for %s: %v", ledgerID, err)
			continue
		}
		ledger, err := app.budgetRepo.GetLedgerByID(ctx, ledgerID)
		if err != nil || ledger == nil {
			continue
		}
		if math.Abs(ledger.ActualSpend-sum) < 0.000001 {
			continue
		}
		app.infoLog.Printf("reconciler: ledger %s spend %.6f -> %.6f", ledgerID, ledger.ActualSpend, sum)
		if err := app.budgetRepo.SetActualSpend(ctx, ledgerID, sum); err != nil {
			app.errorLog.Printf("reconciler: set spend for %s: %v", ledgerID, err)
		}
	}
}
