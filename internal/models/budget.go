package models

import "time"

// BudgetLedger is the per-business-profile, per-calendar-month budget record.
// Month is the first-of-month UTC date in YYYY-MM-01 form. At most one ledger
// exists per (business_profile_id, month).
type BudgetLedger struct {
	ID                string     `json:"id"`
	BusinessProfileID string     `json:"business_profile_id"`
	OrganizationID    string     `json:"organization_id"`
	Month             string     `json:"month"`
	MonthlyCap        float64    `json:"monthly_cap"`
	ActualSpend       float64    `json:"actual_spend"`
	Currency          string     `json:"currency"`
	IsApproved        bool       `json:"is_approved"`
	ApprovedBy        *string    `json:"approved_by,omitempty"`
	ApprovedAt        *time.Time `json:"approved_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

// BudgetTransaction is an append-only record of a single costed event.
type BudgetTransaction struct {
	ID             string                 `json:"id"`
	BudgetLedgerID string                 `json:"budget_ledger_id"`
	Amount         float64                `json:"amount"`
	Description    string                 `json:"description"`
	Category       *string                `json:"category,omitempty"`
	Provider       *string                `json:"provider,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	CreatedBy      string                 `json:"created_by"`
	CreatedAt      time.Time              `json:"created_at"`
}

// BudgetAvailability is the outcome of an affordability check. When no ledger
// exists for the current month, or the cap is zero, the budget is treated as
// unconfigured: Unlimited is set and any cost is allowed.
type BudgetAvailability struct {
	Allowed      bool    `json:"allowed"`
	CurrentSpend float64 `json:"current_spend"`
	MonthlyCap   float64 `json:"monthly_cap"`
	Remaining    float64 `json:"remaining"`
	Unlimited    bool    `json:"unlimited"`
}

// EvaluateBudget computes availability of a prospective cost against a ledger
// snapshot. A nil ledger or a zero cap means the budget is unconfigured and
// must never block functionality.
func EvaluateBudget(ledger *BudgetLedger, cost float64) BudgetAvailability {
	if ledger == nil || ledger.MonthlyCap == 0 {
		return BudgetAvailability{Allowed: true, Unlimited: true}
	}
	remaining := ledger.MonthlyCap - ledger.ActualSpend
	if remaining < 0 {
		remaining = 0
	}
	return BudgetAvailability{
		Allowed:      ledger.ActualSpend+cost <= ledger.MonthlyCap,
		CurrentSpend: ledger.ActualSpend,
		MonthlyCap:   ledger.MonthlyCap,
		Remaining:    remaining,
	}
}

// BudgetForecast projects spend for the current and following month.
type BudgetForecast struct {
	CurrentMonth ForecastCurrentMonth `json:"current_month"`
	NextMonth    ForecastNextMonth    `json:"next_month"`
	Trends       ForecastTrends       `json:"trends"`
}

type ForecastCurrentMonth struct {
	Spend          float64 `json:"spend"`
	Cap            float64 `json:"cap"`
	ProjectedSpend float64 `json:"projected_spend"`
	Remaining      float64 `json:"remaining"`
	DaysRemaining  int     `json:"days_remaining"`
}

type ForecastNextMonth struct {
	ProjectedSpend float64 `json:"projected_spend"`
	RecommendedCap float64 `json:"recommended_cap"`
}

type ForecastTrends struct {
	AverageDailySpend  float64 `json:"average_daily_spend"`
	SpendVelocity      float64 `json:"spend_velocity"`
	ProjectedOverspend bool    `json:"projected_overspend"`
}

// SpendingTrend is one month's spend against its cap.
type SpendingTrend struct {
	Month string  `json:"month"`
	Spend float64 `json:"spend"`
	Cap   float64 `json:"cap"`
}
