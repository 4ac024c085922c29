package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"engineBack/internal/fsm"
	"engineBack/internal/models"
	"engineBack/internal/repositories"
)

// stubWorkflowStore keeps workflows in memory and mimics the repository's
// optimistic transition semantics, including pack status sync.
type stubWorkflowStore struct {
	workflows map[string]*models.ApprovalWorkflow // by workflow ID
	packs     *stubPackResolver
	nextID    int
}

func newStubWorkflowStore(packs *stubPackResolver) *stubWorkflowStore {
	return &stubWorkflowStore{workflows: map[string]*models.ApprovalWorkflow{}, packs: packs}
}

func (s *stubWorkflowStore) GetWorkflowByPackID(ctx context.Context, packID string) (*models.ApprovalWorkflow, error) {
	for _, w := range s.workflows {
		if w.ContentPackID == packID {
			copied := *w
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubWorkflowStore) GetWorkflowByID(ctx context.Context, workflowID string) (*models.ApprovalWorkflow, error) {
	if w, ok := s.workflows[workflowID]; ok {
		copied := *w
		return &copied, nil
	}
	return nil, nil
}

func (s *stubWorkflowStore) CreateWorkflow(ctx context.Context, w *models.ApprovalWorkflow) error {
	s.nextID++
	w.ID = fmt.Sprintf("wf-%d", s.nextID)
	w.CreatedAt = time.Now().UTC()
	stored := *w
	s.workflows[w.ID] = &stored
	s.packs.setStatus(w.ContentPackID, w.CurrentState)
	return nil
}

func (s *stubWorkflowStore) TransitionWorkflow(ctx context.Context, workflowID, packID, from, to string, review repositories.ReviewUpdate) error {
	w, ok := s.workflows[workflowID]
	if !ok || w.CurrentState != from {
		return models.ErrStaleWorkflow
	}
	prev := w.CurrentState
	w.PreviousState = &prev
	w.CurrentState = to
	if review.ReviewedBy != nil {
		w.ReviewedBy = review.ReviewedBy
		w.ReviewNotes = review.ReviewNotes
		w.ReviewedAt = review.ReviewedAt
	}
	s.packs.setStatus(packID, to)
	return nil
}

// stubPackResolver serves packs by ID and tracks status writes so tests can
// assert the pack column stays in lockstep with the workflow.
type stubPackResolver struct {
	packs map[string]*models.ContentPack
	orgID string
}

func newStubPackResolver(orgID string) *stubPackResolver {
	return &stubPackResolver{packs: map[string]*models.ContentPack{}, orgID: orgID}
}

func (s *stubPackResolver) add(packID string) {
	s.packs[packID] = &models.ContentPack{
		ID: packID, BusinessProfileID: "profile-1", CreatedBy: "author-1",
		Title: "Pack " + packID, ContentType: "post", Status: fsm.StateDraft,
	}
}

func (s *stubPackResolver) setStatus(packID, status string) {
	if p, ok := s.packs[packID]; ok {
		p.Status = status
	}
}

func (s *stubPackResolver) GetByID(ctx context.Context, packID string) (*models.ContentPack, error) {
	if p, ok := s.packs[packID]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (s *stubPackResolver) OrganizationIDForPack(ctx context.Context, packID string) (string, error) {
	if _, ok := s.packs[packID]; !ok {
		return "", models.ErrPackNotFound
	}
	return s.orgID, nil
}

type recordingEvents struct {
	states []string
}

func (r *recordingEvents) WorkflowStateChanged(ctx context.Context, workflow models.ApprovalWorkflow) {
	r.states = append(r.states, workflow.CurrentState)
}

func newApprovalFixture() (*ApprovalService, *stubWorkflowStore, *stubPackResolver, *recordingEvents) {
	packs := newStubPackResolver("org-1")
	packs.add("pack-1")
	store := newStubWorkflowStore(packs)
	events := &recordingEvents{}
	svc := NewApprovalService(store, packs, events)
	return svc, store, packs, events
}

func TestSubmitCreatesWorkflow(t *testing.T) {
	svc, _, packs, events := newApprovalFixture()

	workflow, err := svc.SubmitForApproval(context.Background(), "pack-1", "author-1")
	if err != nil {
		t.Fatal(err)
	}
	if workflow.CurrentState != fsm.StatePendingApproval {
		t.Errorf("state = %q, want pending_approval", workflow.CurrentState)
	}
	if workflow.OrganizationID != "org-1" {
		t.Errorf("organization = %q, want org-1", workflow.OrganizationID)
	}
	if packs.packs["pack-1"].Status != fsm.StatePendingApproval {
		t.Errorf("pack status = %q, want pending_approval", packs.packs["pack-1"].Status)
	}
	if len(events.states) != 1 || events.states[0] != fsm.StatePendingApproval {
		t.Errorf("events = %v", events.states)
	}
}

func TestDraftCannotBeApprovedDirectly(t *testing.T) {
	svc, _, _, _ := newApprovalFixture()

	_, err := svc.ApproveContentPack(context.Background(), "pack-1", "admin-1", nil)
	var invalid *models.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("want InvalidTransitionError, got %v", err)
	}
	if invalid.From != fsm.StateDraft || invalid.To != fsm.StateApproved {
		t.Errorf("error detail mismatch: %+v", invalid)
	}
}

func TestApproveStampsReviewer(t *testing.T) {
	svc, store, _, _ := newApprovalFixture()

	if _, err := svc.SubmitForApproval(context.Background(), "pack-1", "author-1"); err != nil {
		t.Fatal(err)
	}
	notes := "ship it"
	workflow, err := svc.ApproveContentPack(context.Background(), "pack-1", "admin-1", &notes)
	if err != nil {
		t.Fatal(err)
	}
	if workflow.CurrentState != fsm.StateApproved {
		t.Errorf("state = %q, want approved", workflow.CurrentState)
	}
	if workflow.ReviewedBy == nil || *workflow.ReviewedBy != "admin-1" {
		t.Errorf("reviewed_by = %v, want admin-1", workflow.ReviewedBy)
	}
	if workflow.ReviewNotes == nil || *workflow.ReviewNotes != "ship it" {
		t.Errorf("review_notes = %v", workflow.ReviewNotes)
	}
	if workflow.ReviewedAt == nil {
		t.Error("reviewed_at should be stamped")
	}
	stored := store.workflows[workflow.ID]
	if stored.PreviousState == nil || *stored.PreviousState != fsm.StatePendingApproval {
		t.Errorf("previous_state = %v, want pending_approval", stored.PreviousState)
	}
}

func TestApprovedIsTerminal(t *testing.T) {
	svc, _, _, _ := newApprovalFixture()
	ctx := context.Background()

	svc.SubmitForApproval(ctx, "pack-1", "author-1")
	if _, err := svc.ApproveContentPack(ctx, "pack-1", "admin-1", nil); err != nil {
		t.Fatal(err)
	}

	for _, target := range []string{fsm.StatePendingApproval, fsm.StateRejected, fsm.StateDraft} {
		_, err := svc.UpdateWorkflowState(ctx, "pack-1", target, "admin-1", nil)
		var invalid *models.InvalidTransitionError
		if !errors.As(err, &invalid) {
			t.Errorf("approved -> %s: want InvalidTransitionError, got %v", target, err)
		}
	}
}

func TestRejectThenResubmit(t *testing.T) {
	svc, _, packs, _ := newApprovalFixture()
	ctx := context.Background()

	svc.SubmitForApproval(ctx, "pack-1", "author-1")
	notes := "needs work"
	workflow, err := svc.RejectContentPack(ctx, "pack-1", "admin-1", &notes)
	if err != nil {
		t.Fatal(err)
	}
	if workflow.CurrentState != fsm.StateRejected {
		t.Fatalf("state = %q, want rejected", workflow.CurrentState)
	}
	if packs.packs["pack-1"].Status != fsm.StateRejected {
		t.Errorf("pack status = %q, want rejected", packs.packs["pack-1"].Status)
	}

	resubmitted, err := svc.SubmitForApproval(ctx, "pack-1", "author-1")
	if err != nil {
		t.Fatal(err)
	}
	if resubmitted.CurrentState != fsm.StatePendingApproval {
		t.Errorf("state after resubmit = %q, want pending_approval", resubmitted.CurrentState)
	}
}

func TestEnforceApprovalGate(t *testing.T) {
	svc, _, _, _ := newApprovalFixture()
	ctx := context.Background()

	// Never submitted: treated as draft.
	err := svc.EnforceApprovalGate(ctx, "pack-1", "export")
	var required *models.ApprovalRequiredError
	if !errors.As(err, &required) {
		t.Fatalf("want ApprovalRequiredError, got %v", err)
	}
	if required.CurrentState != fsm.StateDraft {
		t.Errorf("state = %q, want draft", required.CurrentState)
	}

	svc.SubmitForApproval(ctx, "pack-1", "author-1")
	if err := svc.EnforceApprovalGate(ctx, "pack-1", "export"); err == nil {
		t.Error("pending pack should not pass the gate")
	}

	svc.ApproveContentPack(ctx, "pack-1", "admin-1", nil)
	if err := svc.EnforceApprovalGate(ctx, "pack-1", "export"); err != nil {
		t.Errorf("approved pack should pass the gate, got %v", err)
	}
}
