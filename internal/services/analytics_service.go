package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"engineBack/internal/fsm"
	"engineBack/internal/models"
	"engineBack/internal/repositories"
)

// PackStatsStore is the pack projection analytics reads.
type PackStatsStore interface {
	ListForStats(ctx context.Context, profileID string, start, end *time.Time) ([]repositories.PackStatsRow, error)
}

const analyticsCacheTTL = 5 * time.Minute

// AnalyticsService aggregates pack and budget analytics per profile. Results
// are cached in Redis when a client is configured; a nil Cache degrades to
// computing on every call.
type AnalyticsService struct {
	Packs  PackStatsStore
	Budget BudgetStore
	Cache  *redis.Client

	now func() time.Time
}

func NewAnalyticsService(packs PackStatsStore, budget BudgetStore, cache *redis.Client) *AnalyticsService {
	return &AnalyticsService{Packs: packs, Budget: budget, Cache: cache, now: time.Now}
}

// ProfileAnalytics computes the combined analytics payload for a profile over
// an optional [start, end] window. A nil bound leaves that side open.
func (s *AnalyticsService) ProfileAnalytics(ctx context.Context, profileID string, start, end *time.Time) (*models.BusinessProfileAnalytics, error) {
	key := analyticsCacheKey(profileID, start, end)
	if cached := s.cacheGet(ctx, key); cached != nil {
		return cached, nil
	}

	packStats, err := s.ContentPackStats(ctx, profileID, start, end)
	if err != nil {
		return nil, err
	}
	budgetStats, err := s.BudgetStats(ctx, profileID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	period := models.AnalyticsPeriod{
		Start: now.AddDate(0, -6, 0),
		End:   now,
	}
	if start != nil {
		period.Start = start.UTC()
	}
	if end != nil {
		period.End = end.UTC()
	}

	out := &models.BusinessProfileAnalytics{
		ContentPackStats: *packStats,
		BudgetStats:      *budgetStats,
		Period:           period,
	}
	s.cacheSet(ctx, key, out)
	return out, nil
}

// ContentPackStats counts packs by status and type and derives the approval
// rate plus mean draft-to-approval latency in hours.
func (s *AnalyticsService) ContentPackStats(ctx context.Context, profileID string, start, end *time.Time) (*models.ContentPackStats, error) {
	rows, err := s.Packs.ListForStats(ctx, profileID, start, end)
	if err != nil {
		return nil, err
	}

	stats := &models.ContentPackStats{
		ByStatus: map[string]int{},
		ByType:   map[string]int{},
	}
	var reviewed, approved int
	var totalHours float64
	var timed int
	for _, row := range rows {
		stats.Total++
		stats.ByStatus[row.Status]++
		stats.ByType[row.ContentType]++
		switch row.Status {
		case fsm.StateApproved:
			reviewed++
			approved++
			if row.ApprovedAt != nil {
				totalHours += row.ApprovedAt.Sub(row.CreatedAt).Hours()
				timed++
			}
		case fsm.StateRejected:
			reviewed++
		}
	}
	if reviewed > 0 {
		stats.ApprovalRate = float64(approved) / float64(reviewed)
	}
	if timed > 0 {
		avg := totalHours / float64(timed)
		stats.AverageTimeToApproval = &avg
	}
	return stats, nil
}

// BudgetStats snapshots the current month's ledger and averages the trailing
// six months that have ledgers. Top categories come from the current month's
// transactions.
func (s *AnalyticsService) BudgetStats(ctx context.Context, profileID string) (*models.BudgetStats, error) {
	now := s.now().UTC()
	stats := &models.BudgetStats{TopCategories: []models.CategorySpend{}}

	current, err := s.Budget.GetLedgerByMonth(ctx, profileID, MonthKey(now))
	if err != nil {
		return nil, err
	}
	if current != nil {
		snap := models.BudgetMonthSnapshot{
			Spend: current.ActualSpend,
			Cap:   current.MonthlyCap,
		}
		if current.MonthlyCap > 0 {
			snap.Remaining = current.MonthlyCap - current.ActualSpend
			if snap.Remaining < 0 {
				snap.Remaining = 0
			}
			snap.Percentage = current.ActualSpend / current.MonthlyCap * 100
		}
		stats.CurrentMonth = snap

		categories, err := s.topCategories(ctx, current.ID)
		if err != nil {
			return nil, err
		}
		stats.TopCategories = categories
	}

	keys := make([]string, 0, historyMonths)
	for i := 1; i <= historyMonths; i++ {
		month := now.AddDate(0, -i, 0)
		keys = append(keys, MonthKey(month))
	}
	history, err := s.Budget.ListLedgersByMonths(ctx, profileID, keys)
	if err != nil {
		return nil, err
	}
	if len(history) > 0 {
		var total float64
		for _, l := range history {
			total += l.ActualSpend
		}
		avg := total / float64(len(history))
		stats.AverageMonthlySpend = &avg
	}
	return stats, nil
}

func (s *AnalyticsService) topCategories(ctx context.Context, ledgerID string) ([]models.CategorySpend, error) {
	txns, err := s.Budget.ListTransactions(ctx, ledgerID)
	if err != nil {
		return nil, err
	}

	totals := map[string]float64{}
	for _, t := range txns {
		category := "uncategorized"
		if t.Category != nil && *t.Category != "" {
			category = *t.Category
		}
		totals[category] += t.Amount
	}

	out := make([]models.CategorySpend, 0, len(totals))
	for category, amount := range totals {
		out = append(out, models.CategorySpend{Category: category, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	if len(out) > 5 {
		out = out[:5]
	}
	return out, nil
}

func analyticsCacheKey(profileID string, start, end *time.Time) string {
	format := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.UTC().Format("2006-01-02")
	}
	return fmt.Sprintf("analytics:profile:%s:%s:%s", profileID, format(start), format(end))
}

func (s *AnalyticsService) cacheGet(ctx context.Context, key string) *models.BusinessProfileAnalytics {
	if s.Cache == nil {
		return nil
	}
	raw, err := s.Cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var out models.BusinessProfileAnalytics
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return &out
}

func (s *AnalyticsService) cacheSet(ctx context.Context, key string, payload *models.BusinessProfileAnalytics) {
	if s.Cache == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	s.Cache.Set(ctx, key, raw, analyticsCacheTTL)
}

// InvalidateProfile drops cached analytics for a profile after writes that
// change its stats.
func (s *AnalyticsService) InvalidateProfile(ctx context.Context, profileID string) {
	if s.Cache == nil {
		return
	}
	pattern := fmt.Sprintf("analytics:profile:%s:*", profileID)
	iter := s.Cache.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		s.Cache.Del(ctx, iter.Val())
	}
}
