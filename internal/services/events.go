package services

import (
	"context"

	"engineBack/internal/models"
)

// EventFanout broadcasts workflow events to several sinks.
type EventFanout []ApprovalEvents

func (f EventFanout) WorkflowStateChanged(ctx context.Context, workflow models.ApprovalWorkflow) {
	for _, sink := range f {
		sink.WorkflowStateChanged(ctx, workflow)
	}
}
