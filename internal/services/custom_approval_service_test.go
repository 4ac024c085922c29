package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"engineBack/internal/fsm"
	"engineBack/internal/models"
)

// stubStepStore mimics the repository's step rows: seed creates pending rows
// per approver, resolve flips exactly one pending row.
type stubStepStore struct {
	rows   []models.WorkflowStepApproval
	nextID int
	clock  time.Time
}

func newStubStepStore() *stubStepStore {
	return &stubStepStore{clock: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)}
}

func (s *stubStepStore) tick() time.Time {
	s.clock = s.clock.Add(time.Minute)
	return s.clock
}

func (s *stubStepStore) ListStepApprovals(ctx context.Context, workflowID string) ([]models.WorkflowStepApproval, error) {
	var out []models.WorkflowStepApproval
	for _, row := range s.rows {
		if row.ApprovalWorkflowID == workflowID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *stubStepStore) ResolvePendingStep(ctx context.Context, workflowID string, stepIndex int, approverID, status string, notes *string) (*models.WorkflowStepApproval, error) {
	for i := range s.rows {
		row := &s.rows[i]
		if row.ApprovalWorkflowID != workflowID || row.StepIndex != stepIndex || row.ApproverID != approverID {
			continue
		}
		if row.Status != models.StepStatusPending {
			return nil, models.ErrStepAlreadyResolved
		}
		row.Status = status
		row.Notes = notes
		resolvedAt := s.tick()
		row.ApprovedAt = &resolvedAt
		copied := *row
		return &copied, nil
	}
	return nil, models.ErrApproverNotEligible
}

func (s *stubStepStore) SeedStepApprovals(ctx context.Context, workflowID string, step models.ApprovalStep) error {
	for _, approverID := range step.ApproverIDs {
		s.nextID++
		s.rows = append(s.rows, models.WorkflowStepApproval{
			ID:                 fmt.Sprintf("sa-%d", s.nextID),
			ApprovalWorkflowID: workflowID,
			StepIndex:          step.StepIndex,
			StepName:           step.StepName,
			ApproverID:         approverID,
			Status:             models.StepStatusPending,
			CreatedAt:          s.tick(),
		})
	}
	return nil
}

func (s *stubStepStore) countAtStep(workflowID string, stepIndex int) int {
	n := 0
	for _, row := range s.rows {
		if row.ApprovalWorkflowID == workflowID && row.StepIndex == stepIndex {
			n++
		}
	}
	return n
}

type stubTemplateStore struct {
	template *models.ApprovalWorkflowTemplate
}

func (s *stubTemplateStore) GetTemplate(ctx context.Context, orgID, templateID string) (*models.ApprovalWorkflowTemplate, error) {
	return s.template, nil
}

func (s *stubTemplateStore) GetTemplateByID(ctx context.Context, templateID string) (*models.ApprovalWorkflowTemplate, error) {
	if s.template != nil && s.template.ID == templateID {
		return s.template, nil
	}
	return nil, nil
}

// reviewTemplate: step 0 needs both alice and bob, step 1 needs any one of
// carol, dave, erin.
func reviewTemplate() *models.ApprovalWorkflowTemplate {
	return &models.ApprovalWorkflowTemplate{
		ID:             "tmpl-1",
		OrganizationID: "org-1",
		Name:           "Editorial Review",
		Steps: []models.ApprovalStep{
			{StepIndex: 0, StepName: "Content Review", ApproverIDs: []string{"alice", "bob"}, RequireAll: true},
			{StepIndex: 1, StepName: "Final Sign-off", ApproverIDs: []string{"carol", "dave", "erin"}},
		},
		IsActive: true,
	}
}

func newCustomFixture(t *testing.T) (*CustomApprovalService, *stubWorkflowStore, *stubStepStore, *stubPackResolver, *models.ApprovalWorkflow) {
	t.Helper()
	packs := newStubPackResolver("org-1")
	packs.add("pack-1")
	workflows := newStubWorkflowStore(packs)
	steps := newStubStepStore()
	templates := &stubTemplateStore{template: reviewTemplate()}
	svc := NewCustomApprovalService(workflows, steps, templates, packs, &recordingEvents{})

	workflow, err := svc.Initialize(context.Background(), "pack-1", templates.template, "author-1")
	if err != nil {
		t.Fatal(err)
	}
	return svc, workflows, steps, packs, workflow
}

func TestInitializeSeedsFirstStepOnly(t *testing.T) {
	_, workflows, steps, packs, workflow := newCustomFixture(t)

	if workflow.CurrentState != fsm.StatePendingApproval {
		t.Errorf("state = %q, want pending_approval", workflow.CurrentState)
	}
	if workflow.WorkflowTemplateID == nil || *workflow.WorkflowTemplateID != "tmpl-1" {
		t.Errorf("template id = %v, want tmpl-1", workflow.WorkflowTemplateID)
	}
	if got := steps.countAtStep(workflow.ID, 0); got != 2 {
		t.Errorf("step 0 rows = %d, want 2", got)
	}
	if got := steps.countAtStep(workflow.ID, 1); got != 0 {
		t.Errorf("step 1 rows = %d, want 0 before advancement", got)
	}
	if packs.packs["pack-1"].Status != fsm.StatePendingApproval {
		t.Errorf("pack status = %q", packs.packs["pack-1"].Status)
	}
	_ = workflows
}

func TestQuorumAdvancesAndApproves(t *testing.T) {
	svc, workflows, steps, _, workflow := newCustomFixture(t)
	ctx := context.Background()

	// First of two required approvals: no advancement yet.
	if _, err := svc.ApproveStep(ctx, workflow.ID, 0, "alice", nil); err != nil {
		t.Fatal(err)
	}
	if got := steps.countAtStep(workflow.ID, 1); got != 0 {
		t.Fatalf("step 1 seeded after 1 of 2 approvals")
	}
	if w, _ := workflows.GetWorkflowByID(ctx, workflow.ID); w.CurrentState != fsm.StatePendingApproval {
		t.Fatalf("state = %q, want pending_approval", w.CurrentState)
	}

	// Quorum met on step 0: step 1 rows appear.
	if _, err := svc.ApproveStep(ctx, workflow.ID, 0, "bob", nil); err != nil {
		t.Fatal(err)
	}
	if got := steps.countAtStep(workflow.ID, 1); got != 3 {
		t.Fatalf("step 1 rows = %d, want 3", got)
	}

	// Any single approver completes step 1, which completes the workflow.
	if _, err := svc.ApproveStep(ctx, workflow.ID, 1, "carol", nil); err != nil {
		t.Fatal(err)
	}
	final, _ := workflows.GetWorkflowByID(ctx, workflow.ID)
	if final.CurrentState != fsm.StateApproved {
		t.Fatalf("state = %q, want approved", final.CurrentState)
	}
	if final.ReviewedBy == nil || *final.ReviewedBy != "carol" {
		t.Errorf("reviewed_by = %v, want carol", final.ReviewedBy)
	}
}

func TestSingleRejectionKillsWorkflow(t *testing.T) {
	svc, workflows, _, packs, workflow := newCustomFixture(t)
	ctx := context.Background()

	if _, err := svc.ApproveStep(ctx, workflow.ID, 0, "alice", nil); err != nil {
		t.Fatal(err)
	}
	notes := "off brand"
	if _, err := svc.RejectStep(ctx, workflow.ID, 0, "bob", &notes); err != nil {
		t.Fatal(err)
	}

	final, _ := workflows.GetWorkflowByID(ctx, workflow.ID)
	if final.CurrentState != fsm.StateRejected {
		t.Fatalf("state = %q, want rejected", final.CurrentState)
	}
	if final.ReviewedBy == nil || *final.ReviewedBy != "bob" {
		t.Errorf("reviewed_by = %v, want bob", final.ReviewedBy)
	}
	if packs.packs["pack-1"].Status != fsm.StateRejected {
		t.Errorf("pack status = %q, want rejected", packs.packs["pack-1"].Status)
	}
}

func TestDoubleResolveAndIneligibleApprover(t *testing.T) {
	svc, _, _, _, workflow := newCustomFixture(t)
	ctx := context.Background()

	if _, err := svc.ApproveStep(ctx, workflow.ID, 0, "alice", nil); err != nil {
		t.Fatal(err)
	}
	_, err := svc.ApproveStep(ctx, workflow.ID, 0, "alice", nil)
	if !errors.Is(err, models.ErrStepAlreadyResolved) {
		t.Errorf("double approve: want ErrStepAlreadyResolved, got %v", err)
	}

	_, err = svc.ApproveStep(ctx, workflow.ID, 0, "mallory", nil)
	if !errors.Is(err, models.ErrApproverNotEligible) {
		t.Errorf("unknown approver: want ErrApproverNotEligible, got %v", err)
	}
}

func TestEvaluateProgressQuorum(t *testing.T) {
	steps := reviewTemplate().Steps

	current, complete := EvaluateProgress(steps, nil)
	if complete || current == nil || current.StepIndex != 0 {
		t.Fatalf("empty approvals should point at step 0, got %v %v", current, complete)
	}

	approvals := []models.WorkflowStepApproval{
		{StepIndex: 0, ApproverID: "alice", Status: models.StepStatusApproved},
	}
	current, complete = EvaluateProgress(steps, approvals)
	if complete || current.StepIndex != 0 {
		t.Fatalf("1 of 2 require-all approvals should stay on step 0")
	}

	approvals = append(approvals, models.WorkflowStepApproval{StepIndex: 0, ApproverID: "bob", Status: models.StepStatusApproved})
	current, complete = EvaluateProgress(steps, approvals)
	if complete || current.StepIndex != 1 {
		t.Fatalf("step 0 met should advance to step 1, got %v %v", current, complete)
	}

	approvals = append(approvals, models.WorkflowStepApproval{StepIndex: 1, ApproverID: "erin", Status: models.StepStatusApproved})
	if _, complete = EvaluateProgress(steps, approvals); !complete {
		t.Fatal("all quorums met should complete the workflow")
	}
}

func TestEvaluateProgressEmptyApproverLists(t *testing.T) {
	// A require-all step with no approvers has a quorum of zero and passes
	// immediately; an any-of step with no approvers can never be satisfied.
	autoPass := []models.ApprovalStep{{StepIndex: 0, StepName: "Empty", ApproverIDs: nil, RequireAll: true}}
	if _, complete := EvaluateProgress(autoPass, nil); !complete {
		t.Error("require-all with no approvers should auto-pass")
	}

	stalled := []models.ApprovalStep{{StepIndex: 0, StepName: "Empty", ApproverIDs: nil}}
	current, complete := EvaluateProgress(stalled, nil)
	if complete || current == nil {
		t.Error("any-of with no approvers should stall on the step")
	}
}
