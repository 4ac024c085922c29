package models

import "time"

// ApprovalWorkflow tracks the approval lifecycle of one content pack.
// CurrentState must always equal the pack's status; both are written in a
// single database transaction.
type ApprovalWorkflow struct {
	ID                 string     `json:"id"`
	ContentPackID      string     `json:"content_pack_id"`
	OrganizationID     string     `json:"organization_id"`
	WorkflowTemplateID *string    `json:"workflow_template_id,omitempty"`
	CurrentState       string     `json:"current_state"`
	PreviousState      *string    `json:"previous_state,omitempty"`
	RequestedBy        string     `json:"requested_by"`
	ReviewedBy         *string    `json:"reviewed_by,omitempty"`
	ReviewNotes        *string    `json:"review_notes,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
	ReviewedAt         *time.Time `json:"reviewed_at,omitempty"`
}

// ApprovalStep is one entry of an ordered workflow template.
// RequireAll demands every listed approver; otherwise any one suffices.
type ApprovalStep struct {
	StepIndex   int      `json:"stepIndex"`
	StepName    string   `json:"stepName"`
	ApproverIDs []string `json:"approverIds"`
	RequireAll  bool     `json:"requireAll,omitempty"`
}

// RequiredApprovals returns the quorum for the step.
func (s ApprovalStep) RequiredApprovals() int {
	if s.RequireAll {
		return len(s.ApproverIDs)
	}
	return 1
}

// ApprovalWorkflowTemplate is an org-scoped ordered list of approval steps.
// Treated as immutable once referenced by an in-flight workflow.
type ApprovalWorkflowTemplate struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id"`
	Name           string         `json:"name"`
	Description    *string        `json:"description,omitempty"`
	Steps          []ApprovalStep `json:"steps"`
	IsActive       bool           `json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      *time.Time     `json:"updated_at,omitempty"`
}

// Step approval statuses.
const (
	StepStatusPending  = "pending"
	StepStatusApproved = "approved"
	StepStatusRejected = "rejected"
)

// WorkflowStepApproval is one approver's record for one workflow step.
// Rows are never deleted; they form the audit trail.
type WorkflowStepApproval struct {
	ID                 string     `json:"id"`
	ApprovalWorkflowID string     `json:"approval_workflow_id"`
	StepIndex          int        `json:"step_index"`
	StepName           string     `json:"step_name"`
	ApproverID         string     `json:"approver_id"`
	Status             string     `json:"status"`
	Notes              *string    `json:"notes,omitempty"`
	ApprovedAt         *time.Time `json:"approved_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}
