package models

import (
	"errors"
	"fmt"
)

var (
	ErrNoRecord            = errors.New("models: no matching record found")
	ErrProfileNotFound     = errors.New("business profile not found")
	ErrPackNotFound        = errors.New("content pack not found")
	ErrWorkflowNotFound    = errors.New("approval workflow not found")
	ErrTemplateNotFound    = errors.New("workflow template not found")
	ErrLedgerNotFound      = errors.New("budget ledger not found")
	ErrInvalidAmount       = errors.New("budget transaction amount must be greater than zero")
	ErrPackNotEditable     = errors.New("only draft content packs can be updated")
	ErrPackNotDeletable    = errors.New("only draft content packs can be deleted")
	ErrStepAlreadyResolved = errors.New("workflow step approval already resolved")
	ErrApproverNotEligible = errors.New("approver is not eligible for this workflow step")
	ErrStaleWorkflow       = errors.New("workflow was modified concurrently")
	ErrProviderDisabled    = errors.New("ai provider is not configured or enabled for this business profile")
)

// InvalidTransitionError reports an approval state machine rule violation.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition: cannot transition from %s to %s", e.From, e.To)
}

// BudgetExceededError carries enough detail for a user-facing denial message.
type BudgetExceededError struct {
	Operation    string
	CurrentSpend float64
	MonthlyCap   float64
	Cost         float64
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf(
		"budget exceeded: cannot perform %s. Current spend: $%.2f, Monthly cap: $%.2f, Operation cost: $%.2f",
		e.Operation, e.CurrentSpend, e.MonthlyCap, e.Cost,
	)
}

// UpstreamError reports a failure of an external AI provider API.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ApprovalRequiredError is returned by gated operations on non-approved packs.
type ApprovalRequiredError struct {
	Operation    string
	CurrentState string
}

func (e *ApprovalRequiredError) Error() string {
	return fmt.Sprintf(
		"approval required: cannot perform %s. Content pack status: %s. Content pack must be approved before this operation",
		e.Operation, e.CurrentState,
	)
}
