package services

import (
	"context"
	"time"

	"engineBack/internal/fsm"
	"engineBack/internal/models"
	"engineBack/internal/repositories"
)

// WorkflowStore is the workflow persistence surface shared by the simple and
// custom approval engines. *repositories.ApprovalRepository implements it.
// Create and Transition keep the pack's status column in lockstep with the
// workflow state inside a single store transaction.
type WorkflowStore interface {
	GetWorkflowByPackID(ctx context.Context, packID string) (*models.ApprovalWorkflow, error)
	GetWorkflowByID(ctx context.Context, workflowID string) (*models.ApprovalWorkflow, error)
	CreateWorkflow(ctx context.Context, w *models.ApprovalWorkflow) error
	TransitionWorkflow(ctx context.Context, workflowID, packID, from, to string, review repositories.ReviewUpdate) error
}

// PackResolver resolves packs and their owning organization.
type PackResolver interface {
	GetByID(ctx context.Context, packID string) (*models.ContentPack, error)
	OrganizationIDForPack(ctx context.Context, packID string) (string, error)
}

// ApprovalEvents receives workflow state changes for fan-out (websocket hub,
// push notifications). Implementations must not block.
type ApprovalEvents interface {
	WorkflowStateChanged(ctx context.Context, workflow models.ApprovalWorkflow)
}

// ApprovalService enforces the simple 4-state approval workflow.
type ApprovalService struct {
	Workflows WorkflowStore
	Packs     PackResolver
	Events    ApprovalEvents

	now func() time.Time
}

func NewApprovalService(workflows WorkflowStore, packs PackResolver, events ApprovalEvents) *ApprovalService {
	return &ApprovalService{Workflows: workflows, Packs: packs, Events: events, now: time.Now}
}

// UpdateWorkflowState is the single transition operation the named wrappers
// delegate to. First-ever submission creates the workflow row; anything else
// must be a legal edge of the transition table.
func (s *ApprovalService) UpdateWorkflowState(ctx context.Context, packID, newState, actorID string, notes *string) (*models.ApprovalWorkflow, error) {
	existing, err := s.Workflows.GetWorkflowByPackID(ctx, packID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		// A pack with no workflow row is in draft by definition.
		if newState != fsm.StatePendingApproval {
			return nil, &models.InvalidTransitionError{From: fsm.StateDraft, To: newState}
		}
		orgID, err := s.Packs.OrganizationIDForPack(ctx, packID)
		if err != nil {
			return nil, err
		}
		workflow := &models.ApprovalWorkflow{
			ContentPackID:  packID,
			OrganizationID: orgID,
			CurrentState:   fsm.StatePendingApproval,
			RequestedBy:    actorID,
		}
		if err := s.Workflows.CreateWorkflow(ctx, workflow); err != nil {
			return nil, err
		}
		s.emit(ctx, *workflow)
		return workflow, nil
	}

	if !fsm.CanTransition(existing.CurrentState, newState) {
		return nil, &models.InvalidTransitionError{From: existing.CurrentState, To: newState}
	}

	var review repositories.ReviewUpdate
	if existing.CurrentState == fsm.StatePendingApproval {
		// Reviewer fields are stamped only when a decision is made, never on
		// (re)submission.
		reviewedAt := s.now().UTC()
		review = repositories.ReviewUpdate{ReviewedBy: &actorID, ReviewNotes: notes, ReviewedAt: &reviewedAt}
	}

	err = s.Workflows.TransitionWorkflow(ctx, existing.ID, existing.ContentPackID, existing.CurrentState, newState, review)
	if err != nil {
		return nil, err
	}

	updated, err := s.Workflows.GetWorkflowByID(ctx, existing.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, models.ErrWorkflowNotFound
	}
	s.emit(ctx, *updated)
	return updated, nil
}

// SubmitForApproval moves a draft (or rejected) pack to pending_approval.
func (s *ApprovalService) SubmitForApproval(ctx context.Context, packID, userID string) (*models.ApprovalWorkflow, error) {
	return s.UpdateWorkflowState(ctx, packID, fsm.StatePendingApproval, userID, nil)
}

// ApproveContentPack moves a pending pack to the terminal approved state.
func (s *ApprovalService) ApproveContentPack(ctx context.Context, packID, approverID string, notes *string) (*models.ApprovalWorkflow, error) {
	return s.UpdateWorkflowState(ctx, packID, fsm.StateApproved, approverID, notes)
}

// RejectContentPack moves a pending pack to rejected; the pack may be
// resubmitted afterwards.
func (s *ApprovalService) RejectContentPack(ctx context.Context, packID, reviewerID string, notes *string) (*models.ApprovalWorkflow, error) {
	return s.UpdateWorkflowState(ctx, packID, fsm.StateRejected, reviewerID, notes)
}

// GetWorkflow returns the pack's workflow, nil when never submitted.
func (s *ApprovalService) GetWorkflow(ctx context.Context, packID string) (*models.ApprovalWorkflow, error) {
	return s.Workflows.GetWorkflowByPackID(ctx, packID)
}

// EnforceApprovalGate fails any gated operation unless the pack's live
// workflow state is exactly approved.
func (s *ApprovalService) EnforceApprovalGate(ctx context.Context, packID, operation string) error {
	workflow, err := s.Workflows.GetWorkflowByPackID(ctx, packID)
	if err != nil {
		return err
	}
	state := fsm.StateDraft
	if workflow != nil {
		state = workflow.CurrentState
	}
	if state != fsm.StateApproved {
		return &models.ApprovalRequiredError{Operation: operation, CurrentState: state}
	}
	return nil
}

func (s *ApprovalService) emit(ctx context.Context, workflow models.ApprovalWorkflow) {
	if s.Events != nil {
		s.Events.WorkflowStateChanged(ctx, workflow)
	}
}
