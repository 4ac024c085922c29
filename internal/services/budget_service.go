package services

import (
	"context"
	"fmt"
	"time"

	"engineBack/internal/models"
)

// BudgetStore is the narrow ledger store surface the budget engine needs.
// *repositories.BudgetRepository implements it.
type BudgetStore interface {
	GetLedgerByID(ctx context.Context, ledgerID string) (*models.BudgetLedger, error)
	GetLedgerByMonth(ctx context.Context, profileID, monthKey string) (*models.BudgetLedger, error)
	ListLedgersByMonths(ctx context.Context, profileID string, monthKeys []string) ([]models.BudgetLedger, error)
	CreateLedger(ctx context.Context, ledger *models.BudgetLedger) error
	InsertTransaction(ctx context.Context, txn *models.BudgetTransaction) error
	ListTransactions(ctx context.Context, ledgerID string) ([]models.BudgetTransaction, error)
}

type BudgetService struct {
	Store BudgetStore

	now func() time.Time
}

func NewBudgetService(store BudgetStore) *BudgetService {
	return &BudgetService{Store: store, now: time.Now}
}

// MonthKey returns the first-of-month UTC date key (YYYY-MM-01) for t.
func MonthKey(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%04d-%02d-01", t.Year(), int(t.Month()))
}

// MonthKeyFor builds the key for an explicit year and 1-based month.
func MonthKeyFor(year int, month time.Month) string {
	return MonthKey(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
}

// CurrentMonthLedger returns the ledger for "now" in UTC, nil when the month
// has no ledger. It never auto-creates; callers needing guaranteed existence
// create explicitly.
func (s *BudgetService) CurrentMonthLedger(ctx context.Context, profileID string) (*models.BudgetLedger, error) {
	return s.Store.GetLedgerByMonth(ctx, profileID, MonthKey(s.now()))
}

// LedgerForMonth returns the ledger for an explicit month, nil when absent.
func (s *BudgetService) LedgerForMonth(ctx context.Context, profileID string, year int, month time.Month) (*models.BudgetLedger, error) {
	return s.Store.GetLedgerByMonth(ctx, profileID, MonthKeyFor(year, month))
}

// CreateLedger creates the monthly ledger for a profile. The store's unique
// index rejects a second ledger for the same month.
func (s *BudgetService) CreateLedger(ctx context.Context, profileID, orgID string, year int, month time.Month, cap float64, currency string) (*models.BudgetLedger, error) {
	if cap < 0 {
		return nil, fmt.Errorf("monthly cap must not be negative")
	}
	if currency == "" {
		currency = "USD"
	}
	ledger := &models.BudgetLedger{
		BusinessProfileID: profileID,
		OrganizationID:    orgID,
		Month:             MonthKeyFor(year, month),
		MonthlyCap:        cap,
		Currency:          currency,
	}
	if err := s.Store.CreateLedger(ctx, ledger); err != nil {
		return nil, err
	}
	return ledger, nil
}

// CheckAvailability answers "may I spend cost this month?". A missing ledger
// or a zero cap means the budget is unconfigured and never blocks.
func (s *BudgetService) CheckAvailability(ctx context.Context, profileID string, cost float64) (models.BudgetAvailability, error) {
	ledger, err := s.CurrentMonthLedger(ctx, profileID)
	if err != nil {
		return models.BudgetAvailability{}, err
	}
	return models.EvaluateBudget(ledger, cost), nil
}

// EnforceCheck denies the operation with a structured BudgetExceededError
// when the prospective cost would breach the cap.
func (s *BudgetService) EnforceCheck(ctx context.Context, profileID string, cost float64, operation string) error {
	check, err := s.CheckAvailability(ctx, profileID, cost)
	if err != nil {
		return err
	}
	if !check.Allowed {
		return &models.BudgetExceededError{
			Operation:    operation,
			CurrentSpend: check.CurrentSpend,
			MonthlyCap:   check.MonthlyCap,
			Cost:         cost,
		}
	}
	return nil
}

// RecordTransaction appends a realized cost to a ledger. Amounts must be
// strictly positive; zero-cost operations are the caller's no-op, not ours.
func (s *BudgetService) RecordTransaction(ctx context.Context, ledgerID string, amount float64, description, userID string, category, provider *string, metadata map[string]interface{}) (*models.BudgetTransaction, error) {
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	txn := &models.BudgetTransaction{
		BudgetLedgerID: ledgerID,
		Amount:         amount,
		Description:    description,
		Category:       category,
		Provider:       provider,
		Metadata:       metadata,
		CreatedBy:      userID,
	}
	if err := s.Store.InsertTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// ListTransactions returns a ledger's transactions, oldest first.
func (s *BudgetService) ListTransactions(ctx context.Context, ledgerID string) ([]models.BudgetTransaction, error) {
	return s.Store.ListTransactions(ctx, ledgerID)
}
