package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"engineBack/internal/models"
)

// stubBudgetStore is an in-memory BudgetStore keyed the way the repository
// queries it.
type stubBudgetStore struct {
	ledgers      map[string]*models.BudgetLedger // key: profileID + "|" + month
	transactions map[string][]models.BudgetTransaction
}

func newStubBudgetStore() *stubBudgetStore {
	return &stubBudgetStore{
		ledgers:      map[string]*models.BudgetLedger{},
		transactions: map[string][]models.BudgetTransaction{},
	}
}

func (s *stubBudgetStore) put(l *models.BudgetLedger) {
	s.ledgers[l.BusinessProfileID+"|"+l.Month] = l
}

func (s *stubBudgetStore) GetLedgerByID(ctx context.Context, ledgerID string) (*models.BudgetLedger, error) {
	for _, l := range s.ledgers {
		if l.ID == ledgerID {
			return l, nil
		}
	}
	return nil, nil
}

func (s *stubBudgetStore) GetLedgerByMonth(ctx context.Context, profileID, monthKey string) (*models.BudgetLedger, error) {
	return s.ledgers[profileID+"|"+monthKey], nil
}

func (s *stubBudgetStore) ListLedgersByMonths(ctx context.Context, profileID string, monthKeys []string) ([]models.BudgetLedger, error) {
	var out []models.BudgetLedger
	for _, key := range monthKeys {
		if l := s.ledgers[profileID+"|"+key]; l != nil {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (s *stubBudgetStore) CreateLedger(ctx context.Context, ledger *models.BudgetLedger) error {
	ledger.ID = "ledger-" + ledger.Month
	s.put(ledger)
	return nil
}

func (s *stubBudgetStore) InsertTransaction(ctx context.Context, txn *models.BudgetTransaction) error {
	for _, l := range s.ledgers {
		if l.ID == txn.BudgetLedgerID {
			txn.ID = "txn"
			txn.CreatedAt = time.Now().UTC()
			l.ActualSpend += txn.Amount
			s.transactions[l.ID] = append(s.transactions[l.ID], *txn)
			return nil
		}
	}
	return models.ErrLedgerNotFound
}

func (s *stubBudgetStore) ListTransactions(ctx context.Context, ledgerID string) ([]models.BudgetTransaction, error) {
	return s.transactions[ledgerID], nil
}

func fixedNow() time.Time {
	return time.Date(2025, time.March, 16, 12, 0, 0, 0, time.UTC)
}

func TestMonthKey(t *testing.T) {
	cases := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2025, time.March, 16, 12, 0, 0, 0, time.UTC), "2025-03-01"},
		{time.Date(2025, time.December, 31, 23, 59, 59, 0, time.UTC), "2025-12-01"},
		{time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), "2026-01-01"},
	}
	for _, c := range cases {
		if got := MonthKey(c.in); got != c.want {
			t.Errorf("MonthKey(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEvaluateBudgetUnconfigured(t *testing.T) {
	check := models.EvaluateBudget(nil, 100)
	if !check.Allowed || !check.Unlimited {
		t.Fatalf("nil ledger should be allowed and unlimited, got %+v", check)
	}

	check = models.EvaluateBudget(&models.BudgetLedger{MonthlyCap: 0, ActualSpend: 9999}, 100)
	if !check.Allowed || !check.Unlimited {
		t.Fatalf("zero cap should be allowed and unlimited, got %+v", check)
	}
}

func TestEvaluateBudgetCapBoundary(t *testing.T) {
	ledger := &models.BudgetLedger{MonthlyCap: 100, ActualSpend: 90}

	if check := models.EvaluateBudget(ledger, 10); !check.Allowed {
		t.Errorf("spend+cost == cap should be allowed, got %+v", check)
	}
	if check := models.EvaluateBudget(ledger, 10.01); check.Allowed {
		t.Errorf("spend+cost > cap should be denied, got %+v", check)
	}

	over := &models.BudgetLedger{MonthlyCap: 100, ActualSpend: 120}
	check := models.EvaluateBudget(over, 1)
	if check.Allowed {
		t.Errorf("overspent ledger should deny, got %+v", check)
	}
	if check.Remaining != 0 {
		t.Errorf("remaining should clamp to zero, got %f", check.Remaining)
	}
}

func TestCheckAvailabilityNoLedger(t *testing.T) {
	svc := NewBudgetService(newStubBudgetStore())
	svc.now = fixedNow

	check, err := svc.CheckAvailability(context.Background(), "profile-1", 50)
	if err != nil {
		t.Fatal(err)
	}
	if !check.Allowed || !check.Unlimited {
		t.Fatalf("missing ledger must not block, got %+v", check)
	}
}

func TestEnforceCheckDenied(t *testing.T) {
	store := newStubBudgetStore()
	store.put(&models.BudgetLedger{
		ID: "ledger-1", BusinessProfileID: "profile-1", Month: "2025-03-01",
		MonthlyCap: 100, ActualSpend: 95,
	})
	svc := NewBudgetService(store)
	svc.now = fixedNow

	err := svc.EnforceCheck(context.Background(), "profile-1", 10, "export")
	var exceeded *models.BudgetExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("want BudgetExceededError, got %v", err)
	}
	if exceeded.Operation != "export" || exceeded.CurrentSpend != 95 || exceeded.MonthlyCap != 100 || exceeded.Cost != 10 {
		t.Fatalf("error detail mismatch: %+v", exceeded)
	}

	if err := svc.EnforceCheck(context.Background(), "profile-1", 5, "export"); err != nil {
		t.Fatalf("affordable cost should pass, got %v", err)
	}
}

func TestRecordTransactionRejectsNonPositive(t *testing.T) {
	svc := NewBudgetService(newStubBudgetStore())

	for _, amount := range []float64{0, -1} {
		_, err := svc.RecordTransaction(context.Background(), "ledger-1", amount, "test", "user-1", nil, nil, nil)
		if !errors.Is(err, models.ErrInvalidAmount) {
			t.Errorf("amount %f: want ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestRecordTransactionAccumulates(t *testing.T) {
	store := newStubBudgetStore()
	store.put(&models.BudgetLedger{
		ID: "ledger-1", BusinessProfileID: "profile-1", Month: "2025-03-01", MonthlyCap: 100,
	})
	svc := NewBudgetService(store)
	svc.now = fixedNow

	for _, amount := range []float64{5, 7.5} {
		if _, err := svc.RecordTransaction(context.Background(), "ledger-1", amount, "ai call", "user-1", nil, nil, nil); err != nil {
			t.Fatal(err)
		}
	}

	ledger, _ := store.GetLedgerByID(context.Background(), "ledger-1")
	if ledger.ActualSpend != 12.5 {
		t.Fatalf("actual spend = %f, want 12.5", ledger.ActualSpend)
	}
	txns, _ := svc.ListTransactions(context.Background(), "ledger-1")
	if len(txns) != 2 {
		t.Fatalf("want 2 transactions, got %d", len(txns))
	}
}

func TestRecordTransactionUnknownLedger(t *testing.T) {
	svc := NewBudgetService(newStubBudgetStore())
	_, err := svc.RecordTransaction(context.Background(), "missing", 5, "x", "user-1", nil, nil, nil)
	if !errors.Is(err, models.ErrLedgerNotFound) {
		t.Fatalf("want ErrLedgerNotFound, got %v", err)
	}
}

func TestCreateLedgerDefaults(t *testing.T) {
	store := newStubBudgetStore()
	svc := NewBudgetService(store)

	ledger, err := svc.CreateLedger(context.Background(), "profile-1", "org-1", 2025, time.March, 500, "")
	if err != nil {
		t.Fatal(err)
	}
	if ledger.Month != "2025-03-01" {
		t.Errorf("month = %q, want 2025-03-01", ledger.Month)
	}
	if ledger.Currency != "USD" {
		t.Errorf("currency = %q, want USD", ledger.Currency)
	}

	if _, err := svc.CreateLedger(context.Background(), "profile-1", "org-1", 2025, time.March, -1, ""); err == nil {
		t.Error("negative cap should be rejected")
	}
}
