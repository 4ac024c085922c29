package handlers

import (
	"context"
	"net/http"
	"time"

	"engineBack/internal/models"
	"engineBack/internal/services"
)

// SeedHandler provisions demo data for a fresh organization: business
// profiles, sample content packs in each lifecycle state, a budget ledger for
// the current month, and a two-step review template.
type SeedHandler struct {
	Profiles  *services.BusinessProfileService
	Packs     *services.ContentPackService
	Approvals *services.ApprovalService
	Budget    *services.BudgetService
	Templates interface {
		CreateTemplate(ctx context.Context, t *models.ApprovalWorkflowTemplate) error
	}
}

func strPtr(s string) *string { return &s }

func (h *SeedHandler) SeedDemoData(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}
	ctx := r.Context()

	existing, err := h.Profiles.ListByOrganization(ctx, claims.OrganizationID, false)
	if err != nil {
		respondError(w, err)
		return
	}
	if len(existing) > 0 {
		writeJSON(w, http.StatusOK, map[string]string{"status": "already seeded"})
		return
	}

	profiles := []models.BusinessProfile{
		{
			OrganizationID:  claims.OrganizationID,
			Name:            "Tech Blog",
			Description:     strPtr("Technology and software development content"),
			Market:          strPtr("B2B SaaS"),
			Platforms:       []string{"YouTube", "Medium", "Twitter"},
			RiskLevel:       models.RiskLevelLow,
			ComplianceFlags: []string{},
			IsActive:        true,
		},
		{
			OrganizationID:  claims.OrganizationID,
			Name:            "E-commerce Brand",
			Description:     strPtr("Online retail and product marketing"),
			Market:          strPtr("E-commerce"),
			Platforms:       []string{"Instagram", "TikTok", "Facebook"},
			RiskLevel:       models.RiskLevelMedium,
			ComplianceFlags: []string{"GDPR"},
			IsActive:        true,
		},
		{
			OrganizationID:  claims.OrganizationID,
			Name:            "Content Creator",
			Description:     strPtr("Personal brand and lifestyle content"),
			Market:          strPtr("Content Creator"),
			Platforms:       []string{"YouTube", "Instagram", "TikTok"},
			RiskLevel:       models.RiskLevelLow,
			ComplianceFlags: []string{"COPPA"},
			IsActive:        true,
		},
	}
	for i := range profiles {
		if _, err := h.Profiles.Create(ctx, &profiles[i]); err != nil {
			respondError(w, err)
			return
		}
	}

	first := profiles[0]
	packs := []struct {
		title, contentType, status string
		description                *string
		contentData                map[string]interface{}
		metadata                   map[string]interface{}
	}{
		{
			title:       "Getting Started with Go Modules",
			contentType: "post",
			status:      "approved",
			description: strPtr("A comprehensive guide to dependency management"),
			contentData: map[string]interface{}{
				"body": "Go modules are the standard way to manage dependencies. This guide walks through initializing a module, adding requirements, and publishing versions.",
				"tags": []string{"golang", "tooling"},
			},
			metadata: map[string]interface{}{"category": "tutorial", "difficulty": "beginner"},
		},
		{
			title:       "Understanding Context Cancellation",
			contentType: "post",
			status:      "pending_approval",
			description: strPtr("Deep dive into context propagation"),
			contentData: map[string]interface{}{
				"body": "Contexts carry deadlines and cancellation across API boundaries. Here is how to wire them through a service correctly.",
				"tags": []string{"golang", "concurrency"},
			},
			metadata: map[string]interface{}{"category": "tutorial", "difficulty": "intermediate"},
		},
		{
			title:       "Video Script: Worker Pools Explained",
			contentType: "script",
			status:      "draft",
			description: strPtr("Script for a video about worker pools"),
			contentData: map[string]interface{}{
				"intro":       "Welcome back! Today we are talking about worker pools.",
				"mainContent": "A worker pool bounds concurrency with a fixed set of goroutines pulling from a channel.",
				"outro":       "Thanks for watching.",
				"duration":    "10:00",
			},
			metadata: map[string]interface{}{"category": "video", "platform": "YouTube"},
		},
		{
			title:       "Social Media Hook: Weekly Tech Roundup",
			contentType: "hook",
			status:      "approved",
			contentData: map[string]interface{}{
				"hook":         "This week in tech: new releases, frameworks, and developer tools you need to know!",
				"callToAction": "What caught your attention this week?",
			},
			metadata: map[string]interface{}{"category": "social-media", "platform": "Twitter"},
		},
	}
	for _, seed := range packs {
		pack, err := h.Packs.Create(ctx, first.ID, claims.UserID, seed.title, seed.contentType,
			seed.contentData, seed.metadata, seed.description)
		if err != nil {
			respondError(w, err)
			return
		}
		if seed.status == "draft" {
			continue
		}
		if _, err := h.Approvals.SubmitForApproval(ctx, pack.ID, claims.UserID); err != nil {
			respondError(w, err)
			return
		}
		if seed.status == "approved" {
			if _, err := h.Approvals.ApproveContentPack(ctx, pack.ID, claims.UserID, nil); err != nil {
				respondError(w, err)
				return
			}
		}
	}

	now := time.Now().UTC()
	if _, err := h.Budget.CreateLedger(ctx, first.ID, claims.OrganizationID, now.Year(), now.Month(), 1000, "USD"); err != nil {
		respondError(w, err)
		return
	}

	template := &models.ApprovalWorkflowTemplate{
		OrganizationID: claims.OrganizationID,
		Name:           "Editorial Review",
		Description:    strPtr("Content review followed by sign-off"),
		Steps: []models.ApprovalStep{
			{StepIndex: 0, StepName: "Content Review", ApproverIDs: []string{claims.UserID}, RequireAll: true},
			{StepIndex: 1, StepName: "Final Sign-off", ApproverIDs: []string{claims.UserID}},
		},
		IsActive: true,
	}
	if err := h.Templates.CreateTemplate(ctx, template); err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status":   "seeded",
		"profiles": len(profiles),
		"packs":    len(packs),
	})
}
