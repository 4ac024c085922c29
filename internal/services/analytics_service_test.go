package services

import (
	"context"
	"testing"
	"time"

	"engineBack/internal/models"
	"engineBack/internal/repositories"
)

type stubPackStats struct {
	rows []repositories.PackStatsRow
}

func (s *stubPackStats) ListForStats(ctx context.Context, profileID string, start, end *time.Time) ([]repositories.PackStatsRow, error) {
	return s.rows, nil
}

func TestContentPackStats(t *testing.T) {
	created := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	approvedFast := created.Add(2 * time.Hour)
	approvedSlow := created.Add(6 * time.Hour)

	packs := &stubPackStats{rows: []repositories.PackStatsRow{
		{Status: "approved", ContentType: "post", CreatedAt: created, ApprovedAt: &approvedFast},
		{Status: "approved", ContentType: "hook", CreatedAt: created, ApprovedAt: &approvedSlow},
		{Status: "rejected", ContentType: "post", CreatedAt: created},
		{Status: "draft", ContentType: "script", CreatedAt: created},
		{Status: "pending_approval", ContentType: "post", CreatedAt: created},
	}}
	svc := NewAnalyticsService(packs, newStubBudgetStore(), nil)

	stats, err := svc.ContentPackStats(context.Background(), "profile-1", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 5 {
		t.Errorf("total = %d, want 5", stats.Total)
	}
	if stats.ByStatus["approved"] != 2 || stats.ByType["post"] != 3 {
		t.Errorf("counts wrong: %+v", stats)
	}
	// 2 approved of 3 reviewed; drafts and pending don't count.
	if !almostEqual(stats.ApprovalRate, 2.0/3.0) {
		t.Errorf("approval rate = %f, want %f", stats.ApprovalRate, 2.0/3.0)
	}
	if stats.AverageTimeToApproval == nil || !almostEqual(*stats.AverageTimeToApproval, 4) {
		t.Errorf("avg time to approval = %v, want 4h", stats.AverageTimeToApproval)
	}
}

func TestContentPackStatsEmpty(t *testing.T) {
	svc := NewAnalyticsService(&stubPackStats{}, newStubBudgetStore(), nil)

	stats, err := svc.ContentPackStats(context.Background(), "profile-1", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 0 || stats.ApprovalRate != 0 {
		t.Errorf("empty profile stats = %+v", stats)
	}
	if stats.AverageTimeToApproval != nil {
		t.Error("no approvals should leave average nil")
	}
}

func TestBudgetStatsTopCategories(t *testing.T) {
	store := newStubBudgetStore()
	store.put(&models.BudgetLedger{
		ID: "ledger-1", BusinessProfileID: "profile-1", Month: "2025-03-01",
		MonthlyCap: 200, ActualSpend: 50,
	})
	ai := "ai_api_call"
	export := "export"
	store.transactions["ledger-1"] = []models.BudgetTransaction{
		{Amount: 20, Category: &ai},
		{Amount: 15, Category: &ai},
		{Amount: 10, Category: &export},
		{Amount: 5},
	}
	svc := NewAnalyticsService(&stubPackStats{}, store, nil)
	svc.now = fixedNow

	stats, err := svc.BudgetStats(context.Background(), "profile-1")
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(stats.CurrentMonth.Spend, 50) || !almostEqual(stats.CurrentMonth.Percentage, 25) {
		t.Errorf("current month = %+v", stats.CurrentMonth)
	}
	if len(stats.TopCategories) != 3 {
		t.Fatalf("top categories = %+v", stats.TopCategories)
	}
	if stats.TopCategories[0].Category != "ai_api_call" || !almostEqual(stats.TopCategories[0].Amount, 35) {
		t.Errorf("top category = %+v", stats.TopCategories[0])
	}
	if stats.TopCategories[2].Category != "uncategorized" {
		t.Errorf("uncategorized spend should be bucketed: %+v", stats.TopCategories)
	}
}
