package services

import (
	"context"
	"fmt"

	"engineBack/internal/models"
)

// BudgetRecorder is what the generator needs from the budget engine: gate
// before, look up the ledger and record after.
type BudgetRecorder interface {
	EnforceCheck(ctx context.Context, profileID string, cost float64, operation string) error
	CurrentMonthLedger(ctx context.Context, profileID string) (*models.BudgetLedger, error)
	RecordTransaction(ctx context.Context, ledgerID string, amount float64, description, userID string, category, provider *string, metadata map[string]interface{}) (*models.BudgetTransaction, error)
}

// BudgetAwareGenerator decorates any AIProvider with cost gating: estimate,
// enforce the budget, generate, then record the realized cost. It wraps the
// provider, so any adapter plugs in unchanged.
type BudgetAwareGenerator struct {
	Provider  AIProvider
	Budget    BudgetRecorder
	ProfileID string
	UserID    string
}

const aiTransactionCategory = "ai_api_call"

// Generate runs the estimate -> gate -> call -> record pipeline. The realized
// cost comes from the response's actual token usage and may differ from the
// estimate. Zero-cost calls and profiles without a ledger are not recorded.
func (g *BudgetAwareGenerator) Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error) {
	estimated := g.Provider.EstimateCost(req)
	operation := fmt.Sprintf("AI generation (%s)", g.Provider.Name())
	if err := g.Budget.EnforceCheck(ctx, g.ProfileID, estimated, operation); err != nil {
		return GenerationResult{}, err
	}

	result, err := g.Provider.Generate(ctx, req)
	if err != nil {
		return GenerationResult{}, err
	}

	actual := g.Provider.CalculateCost(result.Usage, result.Model)
	if err := g.record(ctx, result, actual); err != nil {
		return GenerationResult{}, err
	}
	return result, nil
}

func (g *BudgetAwareGenerator) record(ctx context.Context, result GenerationResult, cost float64) error {
	if cost <= 0 {
		return nil
	}
	ledger, err := g.Budget.CurrentMonthLedger(ctx, g.ProfileID)
	if err != nil {
		return err
	}
	if ledger == nil {
		// Budget not configured for this month; nothing to charge against.
		return nil
	}

	provider := g.Provider.Name()
	category := aiTransactionCategory
	description := fmt.Sprintf("AI API call: %s - %s", provider, result.Model)
	metadata := map[string]interface{}{
		"model":            result.Model,
		"promptTokens":     result.Usage.PromptTokens,
		"completionTokens": result.Usage.CompletionTokens,
		"totalTokens":      result.Usage.TotalTokens,
	}
	_, err = g.Budget.RecordTransaction(ctx, ledger.ID, cost, description, g.UserID, &category, &provider, metadata)
	return err
}
