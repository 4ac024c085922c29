package fsm

import (
	"context"
	"database/sql"
)

// States used by the content pack approval workflow.
const (
	StateDraft           = "draft"
	StatePendingApproval = "pending_approval"
	StateApproved        = "approved"
	StateRejected        = "rejected"
)

// Closed transition table. approved is terminal; rejected packs may be
// resubmitted.
var transitions = map[string]map[string]struct{}{
	StateDraft:           {StatePendingApproval: {}},
	StatePendingApproval: {StateApproved: {}, StateRejected: {}},
	StateApproved:        {},
	StateRejected:        {StatePendingApproval: {}},
}

// ValidState reports whether s is a known approval state.
func ValidState(s string) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition returns whether a workflow may move from one state to another.
func CanTransition(from, to string) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// Apply updates a workflow state inside tx using optimistic validation: the
// update only lands if the row still holds fromState.
func Apply(ctx context.Context, tx *sql.Tx, workflowID, fromState, toState string) error {
	if !CanTransition(fromState, toState) {
		return &TransitionError{From: fromState, To: toState}
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE approval_workflows SET previous_state = current_state, current_state = $1, updated_at = now() WHERE id = $2 AND current_state = $3`,
		toState, workflowID, fromState)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// TransitionError reports an illegal edge.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return "invalid status transition: " + e.From + " -> " + e.To
}
