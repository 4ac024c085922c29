package services

import (
	"context"
	"errors"
	"testing"

	"engineBack/internal/models"
)

// fakeProvider returns a canned result and records whether Generate ran.
type fakeProvider struct {
	result    GenerationResult
	cost      float64
	generated bool
}

func (f *fakeProvider) Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error) {
	f.generated = true
	return f.result, nil
}

func (f *fakeProvider) EstimateCost(req GenerationRequest) float64          { return f.cost }
func (f *fakeProvider) CalculateCost(usage TokenUsage, model string) float64 { return f.cost }
func (f *fakeProvider) Name() string                                        { return "fake" }

// recorderBudget implements BudgetRecorder over the stub store and tracks
// enforcement calls.
type recorderBudget struct {
	svc      *BudgetService
	enforced []float64
	denyWith error
}

func (r *recorderBudget) EnforceCheck(ctx context.Context, profileID string, cost float64, operation string) error {
	r.enforced = append(r.enforced, cost)
	return r.denyWith
}

func (r *recorderBudget) CurrentMonthLedger(ctx context.Context, profileID string) (*models.BudgetLedger, error) {
	return r.svc.CurrentMonthLedger(ctx, profileID)
}

func (r *recorderBudget) RecordTransaction(ctx context.Context, ledgerID string, amount float64, description, userID string, category, provider *string, metadata map[string]interface{}) (*models.BudgetTransaction, error) {
	return r.svc.RecordTransaction(ctx, ledgerID, amount, description, userID, category, provider, metadata)
}

func TestGenerateDeniedBeforeProviderCall(t *testing.T) {
	provider := &fakeProvider{cost: 10}
	budget := &recorderBudget{
		svc:      NewBudgetService(newStubBudgetStore()),
		denyWith: &models.BudgetExceededError{Operation: "AI generation (fake)", MonthlyCap: 5, Cost: 10},
	}
	gen := &BudgetAwareGenerator{Provider: provider, Budget: budget, ProfileID: "profile-1", UserID: "user-1"}

	_, err := gen.Generate(context.Background(), GenerationRequest{Prompt: "hello"})
	var exceeded *models.BudgetExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("want BudgetExceededError, got %v", err)
	}
	if provider.generated {
		t.Fatal("provider must not be called when the budget check denies")
	}
	if len(budget.enforced) != 1 || budget.enforced[0] != 10 {
		t.Fatalf("enforced costs = %v, want [10]", budget.enforced)
	}
}

func TestGenerateRecordsActualCost(t *testing.T) {
	store := newStubBudgetStore()
	store.put(&models.BudgetLedger{
		ID: "ledger-1", BusinessProfileID: "profile-1", Month: "2025-03-01", MonthlyCap: 100,
	})
	budgetSvc := NewBudgetService(store)
	budgetSvc.now = fixedNow

	provider := &fakeProvider{
		cost: 0.25,
		result: GenerationResult{
			Content: "generated text",
			Model:   "fake-1",
			Usage:   TokenUsage{PromptTokens: 100, CompletionTokens: 200, TotalTokens: 300},
		},
	}
	budget := &recorderBudget{svc: budgetSvc}
	gen := &BudgetAwareGenerator{Provider: provider, Budget: budget, ProfileID: "profile-1", UserID: "user-1"}

	result, err := gen.Generate(context.Background(), GenerationRequest{Prompt: "hello"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Content != "generated text" {
		t.Errorf("content = %q", result.Content)
	}

	ledger, _ := store.GetLedgerByID(context.Background(), "ledger-1")
	if !almostEqual(ledger.ActualSpend, 0.25) {
		t.Fatalf("ledger spend = %f, want 0.25", ledger.ActualSpend)
	}
	txns := store.transactions["ledger-1"]
	if len(txns) != 1 {
		t.Fatalf("want 1 transaction, got %d", len(txns))
	}
	if txns[0].Category == nil || *txns[0].Category != "ai_api_call" {
		t.Errorf("category = %v, want ai_api_call", txns[0].Category)
	}
}

func TestGenerateSkipsRecordingWithoutLedger(t *testing.T) {
	budgetSvc := NewBudgetService(newStubBudgetStore())
	budgetSvc.now = fixedNow

	provider := &fakeProvider{cost: 0.25, result: GenerationResult{Content: "text", Model: "fake-1"}}
	budget := &recorderBudget{svc: budgetSvc}
	gen := &BudgetAwareGenerator{Provider: provider, Budget: budget, ProfileID: "profile-1", UserID: "user-1"}

	if _, err := gen.Generate(context.Background(), GenerationRequest{Prompt: "hello"}); err != nil {
		t.Fatalf("missing ledger must not fail generation, got %v", err)
	}
}
