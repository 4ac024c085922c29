package services

import (
	"context"
	"fmt"
	"log"

	"firebase.google.com/go/messaging"

	"engineBack/internal/fsm"
	"engineBack/internal/models"
)

// TokenStore resolves FCM device tokens for notification audiences.
type TokenStore interface {
	ListForUsers(ctx context.Context, userIDs []string) ([]string, error)
	ListApproverTokens(ctx context.Context, orgID string) ([]string, error)
}

// NotificationService pushes review notifications over FCM. A nil Client
// turns every send into a no-op so the rest of the system runs without
// Firebase credentials.
type NotificationService struct {
	Client   *messaging.Client
	Tokens   TokenStore
	Packs    PackResolver
	ErrorLog *log.Logger
}

// WorkflowStateChanged fans a push out to the audience of the new state:
// reviewers learn about submissions, the author learns about outcomes.
func (s *NotificationService) WorkflowStateChanged(ctx context.Context, workflow models.ApprovalWorkflow) {
	if s.Client == nil {
		return
	}

	pack, err := s.Packs.GetByID(ctx, workflow.ContentPackID)
	if err != nil || pack == nil {
		s.logError(fmt.Errorf("resolve pack %s for notification: %w", workflow.ContentPackID, err))
		return
	}

	var tokens []string
	var title, body string
	switch workflow.CurrentState {
	case fsm.StatePendingApproval:
		title = "Content pack awaiting review"
		body = fmt.Sprintf("%q was submitted for approval", pack.Title)
		tokens, err = s.Tokens.ListApproverTokens(ctx, workflow.OrganizationID)
	case fsm.StateApproved:
		title = "Content pack approved"
		body = fmt.Sprintf("%q was approved", pack.Title)
		tokens, err = s.Tokens.ListForUsers(ctx, []string{pack.CreatedBy})
	case fsm.StateRejected:
		title = "Content pack rejected"
		body = fmt.Sprintf("%q was rejected", pack.Title)
		if workflow.ReviewNotes != nil && *workflow.ReviewNotes != "" {
			body = fmt.Sprintf("%q was rejected: %s", pack.Title, *workflow.ReviewNotes)
		}
		tokens, err = s.Tokens.ListForUsers(ctx, []string{pack.CreatedBy})
	default:
		return
	}
	if err != nil {
		s.logError(fmt.Errorf("resolve notification tokens: %w", err))
		return
	}

	data := map[string]string{
		"content_pack_id": workflow.ContentPackID,
		"workflow_id":     workflow.ID,
		"state":           workflow.CurrentState,
	}
	for _, token := range tokens {
		if err := s.send(ctx, token, title, body, data); err != nil {
			s.logError(fmt.Errorf("send notification to token %s: %w", token, err))
		}
	}
}

func (s *NotificationService) send(ctx context.Context, token, title, body string, data map[string]string) error {
	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": "10"},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{Title: title, Body: body},
					Sound: "default",
				},
			},
		},
	}
	_, err := s.Client.Send(ctx, message)
	return err
}

func (s *NotificationService) logError(err error) {
	if s.ErrorLog != nil {
		s.ErrorLog.Print(err)
	}
}
