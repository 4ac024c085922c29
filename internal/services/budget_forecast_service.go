package services

import (
	"context"
	"time"

	"engineBack/internal/models"
)

// BudgetForecastService projects spend from the current month's run rate and
// trailing months' history. Forecasting requires a configured budget: no
// current-month ledger means no forecast.
type BudgetForecastService struct {
	Store BudgetStore

	now func() time.Time
}

func NewBudgetForecastService(store BudgetStore) *BudgetForecastService {
	return &BudgetForecastService{Store: store, now: time.Now}
}

const historyMonths = 6

// capBuffer is the 20% headroom added on top of the historical average when
// recommending next month's cap.
const capBuffer = 1.2

func (s *BudgetForecastService) CalculateForecast(ctx context.Context, profileID string) (*models.BudgetForecast, error) {
	now := s.now().UTC()
	ledger, err := s.Store.GetLedgerByMonth(ctx, profileID, MonthKey(now))
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, nil
	}

	current, trends := ProjectCurrentMonth(ledger.ActualSpend, ledger.MonthlyCap, now)

	history, err := s.trailingSpend(ctx, profileID, now)
	if err != nil {
		return nil, err
	}
	next := ProjectNextMonth(history)

	return &models.BudgetForecast{
		CurrentMonth: current,
		NextMonth:    next,
		Trends:       trends,
	}, nil
}

// trailingSpend collects actual_spend for the previous 6 months. Months with
// no ledger are omitted, not zero-filled.
func (s *BudgetForecastService) trailingSpend(ctx context.Context, profileID string, now time.Time) ([]float64, error) {
	keys := make([]string, 0, historyMonths)
	for i := 1; i <= historyMonths; i++ {
		keys = append(keys, MonthKey(now.AddDate(0, -i, 0)))
	}
	ledgers, err := s.Store.ListLedgersByMonths(ctx, profileID, keys)
	if err != nil {
		return nil, err
	}
	spend := make([]float64, 0, len(ledgers))
	for _, l := range ledgers {
		spend = append(spend, l.ActualSpend)
	}
	return spend, nil
}

// SpendingTrends returns {month, spend, cap} for the trailing window, newest
// first. Months without a ledger are simply absent from the result.
func (s *BudgetForecastService) SpendingTrends(ctx context.Context, profileID string, months int) ([]models.SpendingTrend, error) {
	if months <= 0 {
		months = historyMonths
	}
	now := s.now().UTC()
	keys := make([]string, 0, months)
	for i := 0; i < months; i++ {
		keys = append(keys, MonthKey(now.AddDate(0, -i, 0)))
	}
	ledgers, err := s.Store.ListLedgersByMonths(ctx, profileID, keys)
	if err != nil {
		return nil, err
	}
	trends := make([]models.SpendingTrend, 0, len(ledgers))
	for _, l := range ledgers {
		trends = append(trends, models.SpendingTrend{Month: l.Month, Spend: l.ActualSpend, Cap: l.MonthlyCap})
	}
	return trends, nil
}

// ProjectCurrentMonth derives the end-of-month projection from elapsed days
// and cumulative spend. daysElapsed is floored calendar days since the UTC
// month start, forced to at least 1; on day one this overstates the elapsed
// time and so understates the daily rate, a bias kept for parity with the
// historical numbers.
func ProjectCurrentMonth(spend, cap float64, now time.Time) (models.ForecastCurrentMonth, models.ForecastTrends) {
	now = now.UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonthStart := monthStart.AddDate(0, 1, 0)

	daysElapsed := int(now.Sub(monthStart).Hours() / 24)
	if daysElapsed < 1 {
		daysElapsed = 1
	}
	daysInMonth := int(nextMonthStart.Sub(monthStart).Hours() / 24)
	daysRemaining := daysInMonth - daysElapsed

	averageDailySpend := spend / float64(daysElapsed)
	projected := spend + averageDailySpend*float64(daysRemaining)
	remaining := cap - projected
	if remaining < 0 {
		remaining = 0
	}

	current := models.ForecastCurrentMonth{
		Spend:          spend,
		Cap:            cap,
		ProjectedSpend: projected,
		Remaining:      remaining,
		DaysRemaining:  daysRemaining,
	}
	trends := models.ForecastTrends{
		AverageDailySpend:  averageDailySpend,
		SpendVelocity:      averageDailySpend,
		ProjectedOverspend: projected > cap,
	}
	return current, trends
}

// ProjectNextMonth averages the trailing months' spend and recommends a cap
// with a 20% buffer. No history means no recommendation.
func ProjectNextMonth(history []float64) models.ForecastNextMonth {
	if len(history) == 0 {
		return models.ForecastNextMonth{}
	}
	var total float64
	for _, spend := range history {
		total += spend
	}
	average := total / float64(len(history))
	return models.ForecastNextMonth{
		ProjectedSpend: average,
		RecommendedCap: average * capBuffer,
	}
}
