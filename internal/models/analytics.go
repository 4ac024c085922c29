package models

import "time"

// ContentPackStats summarizes pack volume and review outcomes for a profile.
type ContentPackStats struct {
	Total                 int            `json:"total"`
	ByStatus              map[string]int `json:"by_status"`
	ByType                map[string]int `json:"by_type"`
	ApprovalRate          float64        `json:"approval_rate"`
	AverageTimeToApproval *float64       `json:"average_time_to_approval,omitempty"` // hours
}

// BudgetStats summarizes the current month plus historical averages.
type BudgetStats struct {
	CurrentMonth        BudgetMonthSnapshot `json:"current_month"`
	AverageMonthlySpend *float64            `json:"average_monthly_spend,omitempty"`
	TopCategories       []CategorySpend     `json:"top_categories"`
}

type BudgetMonthSnapshot struct {
	Spend      float64 `json:"spend"`
	Cap        float64 `json:"cap"`
	Remaining  float64 `json:"remaining"`
	Percentage float64 `json:"percentage"`
}

type CategorySpend struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// BusinessProfileAnalytics is the combined analytics payload for a profile.
type BusinessProfileAnalytics struct {
	ContentPackStats ContentPackStats `json:"content_pack_stats"`
	BudgetStats      BudgetStats      `json:"budget_stats"`
	Period           AnalyticsPeriod  `json:"period"`
}

type AnalyticsPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
