package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"engineBack/internal/fsm"
	"engineBack/internal/models"
)

type ApprovalRepository struct {
	DB *sql.DB
}

const workflowColumns = `id, content_pack_id, organization_id, workflow_template_id, current_state, previous_state, requested_by, reviewed_by, review_notes, created_at, updated_at, reviewed_at`

func scanWorkflow(scanner interface{ Scan(dest ...any) error }) (models.ApprovalWorkflow, error) {
	var w models.ApprovalWorkflow
	var templateID, previousState, reviewedBy, reviewNotes sql.NullString
	var updatedAt, reviewedAt sql.NullTime
	err := scanner.Scan(&w.ID, &w.ContentPackID, &w.OrganizationID, &templateID, &w.CurrentState,
		&previousState, &w.RequestedBy, &reviewedBy, &reviewNotes, &w.CreatedAt, &updatedAt, &reviewedAt)
	if err != nil {
		return models.ApprovalWorkflow{}, err
	}
	if templateID.Valid {
		s := templateID.String
		w.WorkflowTemplateID = &s
	}
	if previousState.Valid {
		s := previousState.String
		w.PreviousState = &s
	}
	if reviewedBy.Valid {
		s := reviewedBy.String
		w.ReviewedBy = &s
	}
	if reviewNotes.Valid {
		s := reviewNotes.String
		w.ReviewNotes = &s
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		w.UpdatedAt = &t
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		w.ReviewedAt = &t
	}
	return w, nil
}

// GetWorkflowByPackID returns the workflow governing a pack, nil when the
// pack was never submitted.
func (r *ApprovalRepository) GetWorkflowByPackID(ctx context.Context, packID string) (*models.ApprovalWorkflow, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+workflowColumns+` FROM approval_workflows WHERE content_pack_id = $1`, packID)
	w, err := scanWorkflow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get approval workflow: %w", err)
	}
	return &w, nil
}

func (r *ApprovalRepository) GetWorkflowByID(ctx context.Context, workflowID string) (*models.ApprovalWorkflow, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+workflowColumns+` FROM approval_workflows WHERE id = $1`, workflowID)
	w, err := scanWorkflow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get approval workflow: %w", err)
	}
	return &w, nil
}

// CreateWorkflow inserts the workflow row and moves the pack's status to the
// workflow's state in a single database transaction, keeping the two columns
// from ever diverging.
func (r *ApprovalRepository) CreateWorkflow(ctx context.Context, w *models.ApprovalWorkflow) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	w.ID = uuid.NewString()
	w.CreatedAt = time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO approval_workflows (id, content_pack_id, organization_id, workflow_template_id, current_state, requested_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		w.ID, w.ContentPackID, w.OrganizationID, w.WorkflowTemplateID, w.CurrentState, w.RequestedBy, w.CreatedAt)
	if err != nil {
		return fmt.Errorf("create approval workflow: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE content_packs SET status = $1, updated_at = now() WHERE id = $2`,
		w.CurrentState, w.ContentPackID)
	if err != nil {
		return fmt.Errorf("sync content pack status: %w", err)
	}

	return tx.Commit()
}

// ReviewUpdate carries the reviewer fields written on a transition out of
// pending_approval. A nil ReviewedBy leaves the reviewer columns untouched
// (resubmissions).
type ReviewUpdate struct {
	ReviewedBy  *string
	ReviewNotes *string
	ReviewedAt  *time.Time
}

// TransitionWorkflow applies from->to with the optimistic state guard, writes
// the review fields, and syncs the pack's status in one transaction.
// Returns models.ErrStaleWorkflow when another writer got there first.
func (r *ApprovalRepository) TransitionWorkflow(ctx context.Context, workflowID, packID, from, to string, review ReviewUpdate) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fsm.Apply(ctx, tx, workflowID, from, to); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrStaleWorkflow
		}
		return fmt.Errorf("transition workflow: %w", err)
	}

	if review.ReviewedBy != nil {
		_, err = tx.ExecContext(ctx,
			`UPDATE approval_workflows SET reviewed_by = $1, review_notes = $2, reviewed_at = $3 WHERE id = $4`,
			review.ReviewedBy, review.ReviewNotes, review.ReviewedAt, workflowID)
		if err != nil {
			return fmt.Errorf("record review: %w", err)
		}
	}

	if to == fsm.StateApproved {
		_, err = tx.ExecContext(ctx,
			`UPDATE content_packs SET status = $1, approved_by = $2, approved_at = $3, updated_at = now() WHERE id = $4`,
			to, review.ReviewedBy, review.ReviewedAt, packID)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE content_packs SET status = $1, updated_at = now() WHERE id = $2`,
			to, packID)
	}
	if err != nil {
		return fmt.Errorf("sync content pack status: %w", err)
	}

	return tx.Commit()
}

const templateColumns = `id, organization_id, name, description, steps, is_active, created_at, updated_at`

func scanTemplate(scanner interface{ Scan(dest ...any) error }) (models.ApprovalWorkflowTemplate, error) {
	var t models.ApprovalWorkflowTemplate
	var description sql.NullString
	var steps []byte
	var updatedAt sql.NullTime
	err := scanner.Scan(&t.ID, &t.OrganizationID, &t.Name, &description, &steps, &t.IsActive, &t.CreatedAt, &updatedAt)
	if err != nil {
		return models.ApprovalWorkflowTemplate{}, err
	}
	if description.Valid {
		s := description.String
		t.Description = &s
	}
	if updatedAt.Valid {
		u := updatedAt.Time
		t.UpdatedAt = &u
	}
	if len(steps) > 0 {
		if err := json.Unmarshal(steps, &t.Steps); err != nil {
			return models.ApprovalWorkflowTemplate{}, fmt.Errorf("decode template steps: %w", err)
		}
	}
	return t, nil
}

// GetTemplate returns an active template for the organization. An empty
// templateID selects the default: the oldest active template.
func (r *ApprovalRepository) GetTemplate(ctx context.Context, orgID, templateID string) (*models.ApprovalWorkflowTemplate, error) {
	var row *sql.Row
	if templateID != "" {
		row = r.DB.QueryRowContext(ctx,
			`SELECT `+templateColumns+` FROM approval_workflow_templates WHERE organization_id = $1 AND id = $2 AND is_active = true`,
			orgID, templateID)
	} else {
		row = r.DB.QueryRowContext(ctx,
			`SELECT `+templateColumns+` FROM approval_workflow_templates WHERE organization_id = $1 AND is_active = true ORDER BY created_at ASC LIMIT 1`,
			orgID)
	}
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow template: %w", err)
	}
	return &t, nil
}

// GetTemplateByID resolves a template referenced by an in-flight workflow.
// No is_active filter: deactivating a template must not strand workflows
// already tracking its steps.
func (r *ApprovalRepository) GetTemplateByID(ctx context.Context, templateID string) (*models.ApprovalWorkflowTemplate, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM approval_workflow_templates WHERE id = $1`, templateID)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow template: %w", err)
	}
	return &t, nil
}

func (r *ApprovalRepository) ListTemplates(ctx context.Context, orgID string) ([]models.ApprovalWorkflowTemplate, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM approval_workflow_templates WHERE organization_id = $1 ORDER BY created_at ASC`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list workflow templates: %w", err)
	}
	defer rows.Close()

	var templates []models.ApprovalWorkflowTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *ApprovalRepository) CreateTemplate(ctx context.Context, t *models.ApprovalWorkflowTemplate) error {
	steps, err := json.Marshal(t.Steps)
	if err != nil {
		return fmt.Errorf("encode template steps: %w", err)
	}

	t.ID = uuid.NewString()
	t.IsActive = true
	t.CreatedAt = time.Now().UTC()
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO approval_workflow_templates (id, organization_id, name, description, steps, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.OrganizationID, t.Name, t.Description, steps, t.IsActive, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("create workflow template: %w", err)
	}
	return nil
}

const stepApprovalColumns = `id, approval_workflow_id, step_index, step_name, approver_id, status, notes, approved_at, created_at`

func scanStepApproval(scanner interface{ Scan(dest ...any) error }) (models.WorkflowStepApproval, error) {
	var sa models.WorkflowStepApproval
	var notes sql.NullString
	var approvedAt sql.NullTime
	err := scanner.Scan(&sa.ID, &sa.ApprovalWorkflowID, &sa.StepIndex, &sa.StepName, &sa.ApproverID,
		&sa.Status, &notes, &approvedAt, &sa.CreatedAt)
	if err != nil {
		return models.WorkflowStepApproval{}, err
	}
	if notes.Valid {
		s := notes.String
		sa.Notes = &s
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		sa.ApprovedAt = &t
	}
	return sa, nil
}

// ListStepApprovals returns every approval row ever created for a workflow,
// ordered by step index then creation time.
func (r *ApprovalRepository) ListStepApprovals(ctx context.Context, workflowID string) ([]models.WorkflowStepApproval, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+stepApprovalColumns+` FROM workflow_step_approvals WHERE approval_workflow_id = $1 ORDER BY step_index ASC, created_at ASC`,
		workflowID)
	if err != nil {
		return nil, fmt.Errorf("list step approvals: %w", err)
	}
	defer rows.Close()

	var approvals []models.WorkflowStepApproval
	for rows.Next() {
		sa, err := scanStepApproval(rows)
		if err != nil {
			return nil, err
		}
		approvals = append(approvals, sa)
	}
	return approvals, rows.Err()
}

// ResolvePendingStep marks a pending row approved or rejected. When no
// pending row matches, it distinguishes an already-resolved row from an
// approver who never had one.
func (r *ApprovalRepository) ResolvePendingStep(ctx context.Context, workflowID string, stepIndex int, approverID, status string, notes *string) (*models.WorkflowStepApproval, error) {
	now := time.Now().UTC()
	row := r.DB.QueryRowContext(ctx,
		`UPDATE workflow_step_approvals SET status = $1, notes = $2, approved_at = $3
		 WHERE approval_workflow_id = $4 AND step_index = $5 AND approver_id = $6 AND status = $7
		 RETURNING `+stepApprovalColumns,
		status, notes, now, workflowID, stepIndex, approverID, models.StepStatusPending)
	sa, err := scanStepApproval(row)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		err = r.DB.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM workflow_step_approvals WHERE approval_workflow_id = $1 AND step_index = $2 AND approver_id = $3)`,
			workflowID, stepIndex, approverID).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("resolve step approval: %w", err)
		}
		if exists {
			return nil, models.ErrStepAlreadyResolved
		}
		return nil, models.ErrApproverNotEligible
	}
	if err != nil {
		return nil, fmt.Errorf("resolve step approval: %w", err)
	}
	return &sa, nil
}

// SeedStepApprovals creates pending rows for every approver of a step. The
// unique index on (approval_workflow_id, step_index, approver_id) makes
// concurrent seeding idempotent.
func (r *ApprovalRepository) SeedStepApprovals(ctx context.Context, workflowID string, step models.ApprovalStep) error {
	now := time.Now().UTC()
	for _, approverID := range step.ApproverIDs {
		_, err := r.DB.ExecContext(ctx,
			`INSERT INTO workflow_step_approvals (id, approval_workflow_id, step_index, step_name, approver_id, status, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (approval_workflow_id, step_index, approver_id) DO NOTHING`,
			uuid.NewString(), workflowID, step.StepIndex, step.StepName, approverID, models.StepStatusPending, now)
		if err != nil {
			return fmt.Errorf("seed step approvals: %w", err)
		}
	}
	return nil
}
