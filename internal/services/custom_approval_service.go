package services

import (
	"context"
	"time"

	"engineBack/internal/fsm"
	"engineBack/internal/models"
	"engineBack/internal/repositories"
)

// StepStore persists per-approver step rows. *repositories.ApprovalRepository
// implements it; ResolvePendingStep must distinguish an already-resolved row
// (models.ErrStepAlreadyResolved) from an ineligible approver
// (models.ErrApproverNotEligible).
type StepStore interface {
	ListStepApprovals(ctx context.Context, workflowID string) ([]models.WorkflowStepApproval, error)
	ResolvePendingStep(ctx context.Context, workflowID string, stepIndex int, approverID, status string, notes *string) (*models.WorkflowStepApproval, error)
	SeedStepApprovals(ctx context.Context, workflowID string, step models.ApprovalStep) error
}

// TemplateStore resolves workflow templates.
type TemplateStore interface {
	GetTemplate(ctx context.Context, orgID, templateID string) (*models.ApprovalWorkflowTemplate, error)
	GetTemplateByID(ctx context.Context, templateID string) (*models.ApprovalWorkflowTemplate, error)
}

// CustomApprovalService runs the multi-step, multi-approver workflow variant
// on top of the same terminal states as the simple engine.
type CustomApprovalService struct {
	Workflows WorkflowStore
	Steps     StepStore
	Templates TemplateStore
	Packs     PackResolver
	Events    ApprovalEvents

	now func() time.Time
}

func NewCustomApprovalService(workflows WorkflowStore, steps StepStore, templates TemplateStore, packs PackResolver, events ApprovalEvents) *CustomApprovalService {
	return &CustomApprovalService{Workflows: workflows, Steps: steps, Templates: templates, Packs: packs, Events: events, now: time.Now}
}

// GetTemplate returns an active template for the organization; an empty
// templateID selects the org's default (oldest active) template.
func (s *CustomApprovalService) GetTemplate(ctx context.Context, orgID, templateID string) (*models.ApprovalWorkflowTemplate, error) {
	return s.Templates.GetTemplate(ctx, orgID, templateID)
}

// Initialize creates the workflow in pending_approval with a template
// reference and seeds pending approval rows for step 0 only. Later steps are
// seeded as the workflow advances into them.
func (s *CustomApprovalService) Initialize(ctx context.Context, packID string, template *models.ApprovalWorkflowTemplate, actorID string) (*models.ApprovalWorkflow, error) {
	orgID, err := s.Packs.OrganizationIDForPack(ctx, packID)
	if err != nil {
		return nil, err
	}

	workflow := &models.ApprovalWorkflow{
		ContentPackID:      packID,
		OrganizationID:     orgID,
		WorkflowTemplateID: &template.ID,
		CurrentState:       fsm.StatePendingApproval,
		RequestedBy:        actorID,
	}
	if err := s.Workflows.CreateWorkflow(ctx, workflow); err != nil {
		return nil, err
	}

	if len(template.Steps) > 0 {
		if err := s.Steps.SeedStepApprovals(ctx, workflow.ID, template.Steps[0]); err != nil {
			return nil, err
		}
	}
	s.emit(ctx, *workflow)
	return workflow, nil
}

// ApproveStep records one approver's approval and re-evaluates the whole
// workflow: quorum is recomputed for every step from all rows ever created,
// the first unmet step becomes current (seeding its rows if it has none), and
// a workflow with no unmet steps transitions to approved.
func (s *CustomApprovalService) ApproveStep(ctx context.Context, workflowID string, stepIndex int, approverID string, notes *string) (*models.WorkflowStepApproval, error) {
	approval, err := s.Steps.ResolvePendingStep(ctx, workflowID, stepIndex, approverID, models.StepStatusApproved, notes)
	if err != nil {
		return nil, err
	}
	if err := s.advance(ctx, workflowID); err != nil {
		return nil, err
	}
	return approval, nil
}

// RejectStep records a rejection and kills the whole workflow: a single
// rejection at any step transitions it to rejected regardless of other
// steps' progress.
func (s *CustomApprovalService) RejectStep(ctx context.Context, workflowID string, stepIndex int, approverID string, notes *string) (*models.WorkflowStepApproval, error) {
	approval, err := s.Steps.ResolvePendingStep(ctx, workflowID, stepIndex, approverID, models.StepStatusRejected, notes)
	if err != nil {
		return nil, err
	}

	workflow, err := s.Workflows.GetWorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if workflow == nil {
		return nil, models.ErrWorkflowNotFound
	}
	if workflow.CurrentState == fsm.StatePendingApproval {
		reviewedAt := s.now().UTC()
		review := repositories.ReviewUpdate{ReviewedBy: &approverID, ReviewNotes: notes, ReviewedAt: &reviewedAt}
		if err := s.Workflows.TransitionWorkflow(ctx, workflow.ID, workflow.ContentPackID, workflow.CurrentState, fsm.StateRejected, review); err != nil {
			return nil, err
		}
		if updated, err := s.Workflows.GetWorkflowByID(ctx, workflowID); err == nil && updated != nil {
			s.emit(ctx, *updated)
		}
	}
	return approval, nil
}

// GetStepApprovals returns the audit trail ordered by step index, then
// creation time.
func (s *CustomApprovalService) GetStepApprovals(ctx context.Context, workflowID string) ([]models.WorkflowStepApproval, error) {
	return s.Steps.ListStepApprovals(ctx, workflowID)
}

func (s *CustomApprovalService) advance(ctx context.Context, workflowID string) error {
	workflow, err := s.Workflows.GetWorkflowByID(ctx, workflowID)
	if err != nil {
		return err
	}
	if workflow == nil {
		return models.ErrWorkflowNotFound
	}
	if workflow.WorkflowTemplateID == nil {
		return nil
	}
	template, err := s.Templates.GetTemplateByID(ctx, *workflow.WorkflowTemplateID)
	if err != nil {
		return err
	}
	if template == nil || len(template.Steps) == 0 {
		return nil
	}

	approvals, err := s.Steps.ListStepApprovals(ctx, workflowID)
	if err != nil {
		return err
	}

	current, complete := EvaluateProgress(template.Steps, approvals)
	if complete {
		if workflow.CurrentState != fsm.StatePendingApproval {
			return nil
		}
		lastApprover := lastApprovedBy(approvals)
		reviewedAt := s.now().UTC()
		review := repositories.ReviewUpdate{ReviewedBy: lastApprover, ReviewedAt: &reviewedAt}
		if err := s.Workflows.TransitionWorkflow(ctx, workflow.ID, workflow.ContentPackID, workflow.CurrentState, fsm.StateApproved, review); err != nil {
			return err
		}
		if updated, err := s.Workflows.GetWorkflowByID(ctx, workflowID); err == nil && updated != nil {
			s.emit(ctx, *updated)
		}
		return nil
	}

	// Seed the newly current step unless any of its rows already exist,
	// resolved or not. The store's uniqueness constraint backs this check up
	// under concurrent advancement.
	for _, sa := range approvals {
		if sa.StepIndex == current.StepIndex {
			return nil
		}
	}
	return s.Steps.SeedStepApprovals(ctx, workflowID, *current)
}

// EvaluateProgress recomputes quorum for every step in template order using
// all approval rows ever created. It returns the first step whose quorum is
// not yet met, or complete=true when every step is satisfied.
func EvaluateProgress(steps []models.ApprovalStep, approvals []models.WorkflowStepApproval) (current *models.ApprovalStep, complete bool) {
	for i := range steps {
		step := steps[i]
		approved := 0
		for _, sa := range approvals {
			if sa.StepIndex == step.StepIndex && sa.Status == models.StepStatusApproved {
				approved++
			}
		}
		if approved < step.RequiredApprovals() {
			return &steps[i], false
		}
	}
	return nil, true
}

// lastApprovedBy picks the approver of the most recently created approved
// row, for the workflow's reviewed_by audit field.
func lastApprovedBy(approvals []models.WorkflowStepApproval) *string {
	var last *models.WorkflowStepApproval
	for i := range approvals {
		sa := &approvals[i]
		if sa.Status != models.StepStatusApproved {
			continue
		}
		if last == nil || !sa.CreatedAt.Before(last.CreatedAt) {
			last = sa
		}
	}
	if last == nil {
		return nil
	}
	approver := last.ApproverID
	return &approver
}

func (s *CustomApprovalService) emit(ctx context.Context, workflow models.ApprovalWorkflow) {
	if s.Events != nil {
		s.Events.WorkflowStateChanged(ctx, workflow)
	}
}
