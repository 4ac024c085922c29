package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole("member"))
	adminAuthMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole("admin"))

	mux := pat.New()

	// Business profiles
	mux.Post("/business_profiles", authMiddleware.ThenFunc(app.profileHandler.CreateProfile))
	mux.Get("/business_profiles", authMiddleware.ThenFunc(app.profileHandler.GetProfiles))
	mux.Get("/business_profiles/:id", authMiddleware.ThenFunc(app.profileHandler.GetProfileByID))
	mux.Put("/business_profiles/:id", authMiddleware.ThenFunc(app.profileHandler.UpdateProfile))
	mux.Del("/business_profiles/:id", adminAuthMiddleware.ThenFunc(app.profileHandler.DeactivateProfile))

	// Content packs
	mux.Post("/content_packs", authMiddleware.ThenFunc(app.packHandler.CreatePack))
	mux.Post("/content_packs/generate", authMiddleware.ThenFunc(app.generationHandler.GeneratePack))
	mux.Get("/business_profiles/:profile_id/content_packs", authMiddleware.ThenFunc(app.packHandler.GetPacksByProfile))
	mux.Get("/content_packs/:id", authMiddleware.ThenFunc(app.packHandler.GetPackByID))
	mux.Put("/content_packs/:id", authMiddleware.ThenFunc(app.packHandler.UpdatePack))
	mux.Del("/content_packs/:id", authMiddleware.ThenFunc(app.packHandler.DeletePack))
	mux.Get("/content_packs/:id/export", authMiddleware.ThenFunc(app.exportHandler.ExportPack))

	// Simple approval workflow
	mux.Post("/content_packs/:id/submit", authMiddleware.ThenFunc(app.approvalHandler.SubmitForApproval))
	mux.Post("/content_packs/:id/approve", adminAuthMiddleware.ThenFunc(app.approvalHandler.ApprovePack))
	mux.Post("/content_packs/:id/reject", adminAuthMiddleware.ThenFunc(app.approvalHandler.RejectPack))
	mux.Get("/content_packs/:id/workflow", authMiddleware.ThenFunc(app.approvalHandler.GetWorkflow))

	// Multi-step workflow
	mux.Post("/content_packs/:id/workflow/custom", authMiddleware.ThenFunc(app.approvalHandler.InitializeCustomWorkflow))
	mux.Post("/workflows/:id/steps/:step_index/approve", authMiddleware.ThenFunc(app.approvalHandler.ApproveStep))
	mux.Post("/workflows/:id/steps/:step_index/reject", authMiddleware.ThenFunc(app.approvalHandler.RejectStep))
	mux.Get("/workflows/:id/steps", authMiddleware.ThenFunc(app.approvalHandler.GetStepApprovals))

	// Workflow templates
	mux.Post("/workflow_templates", adminAuthMiddleware.ThenFunc(app.templateHandler.CreateTemplate))
	mux.Get("/workflow_templates", authMiddleware.ThenFunc(app.templateHandler.GetTemplates))
	mux.Get("/workflow_templates/:id", authMiddleware.ThenFunc(app.templateHandler.GetTemplateByID))

	// Budget
	mux.Post("/business_profiles/:profile_id/budget", adminAuthMiddleware.ThenFunc(app.budgetHandler.CreateLedger))
	mux.Get("/business_profiles/:profile_id/budget", authMiddleware.ThenFunc(app.budgetHandler.GetLedger))
	mux.Get("/business_profiles/:profile_id/budget/check", authMiddleware.ThenFunc(app.budgetHandler.CheckBudget))
	mux.Get("/business_profiles/:profile_id/budget/forecast", authMiddleware.ThenFunc(app.budgetHandler.GetForecast))
	mux.Get("/business_profiles/:profile_id/budget/trends", authMiddleware.ThenFunc(app.budgetHandler.GetSpendingTrends))
	mux.Post("/budget_ledgers/:ledger_id/transactions", authMiddleware.ThenFunc(app.budgetHandler.RecordTransaction))
	mux.Get("/budget_ledgers/:ledger_id/transactions", authMiddleware.ThenFunc(app.budgetHandler.GetTransactions))

	// Analytics
	mux.Get("/business_profiles/:profile_id/analytics", authMiddleware.ThenFunc(app.analyticsHandler.GetProfileAnalytics))

	// Notifications
	mux.Post("/notifications/tokens", authMiddleware.ThenFunc(app.deviceTokenHandler.RegisterToken))
	mux.Del("/notifications/tokens/:token", authMiddleware.ThenFunc(app.deviceTokenHandler.DeleteToken))

	// Workflow event stream
	mux.Get("/ws", authMiddleware.ThenFunc(app.WorkflowSocket))

	// Demo data
	mux.Post("/seed", adminAuthMiddleware.ThenFunc(app.seedHandler.SeedDemoData))

	return standardMiddleware.Then(mux)
}
