package services

import (
	"context"
	"fmt"

	"engineBack/internal/fsm"
	"engineBack/internal/models"
)

// ApprovalGate fails unless the pack is approved.
type ApprovalGate interface {
	EnforceApprovalGate(ctx context.Context, packID, operation string) error
}

// BudgetGate fails when a cost would breach the monthly cap.
type BudgetGate interface {
	EnforceCheck(ctx context.Context, profileID string, cost float64, operation string) error
}

// PackStore is the pack persistence surface.
// *repositories.ContentPackRepository implements it.
type PackStore interface {
	GetByID(ctx context.Context, packID string) (*models.ContentPack, error)
	ListForProfile(ctx context.Context, profileID, status string) ([]models.ContentPack, error)
	Create(ctx context.Context, pack *models.ContentPack) error
	Update(ctx context.Context, packID string, upd models.ContentPackUpdate) (*models.ContentPack, error)
	Delete(ctx context.Context, packID string) error
}

// ContentPackService owns pack lifecycle rules: packs are mutable only while
// in draft, and exports pass the approval gate before any budget check.
type ContentPackService struct {
	Packs  PackStore
	Gate   ApprovalGate
	Budget BudgetGate
}

func (s *ContentPackService) Create(ctx context.Context, profileID, userID, title, contentType string, contentData, metadata map[string]interface{}, description *string) (*models.ContentPack, error) {
	if title == "" {
		return nil, fmt.Errorf("content pack title is required")
	}
	if !models.ValidContentType(contentType) {
		return nil, fmt.Errorf("unknown content type: %s", contentType)
	}
	if contentData == nil {
		contentData = map[string]interface{}{}
	}
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	pack := &models.ContentPack{
		BusinessProfileID: profileID,
		CreatedBy:         userID,
		Title:             title,
		Description:       description,
		ContentType:       contentType,
		ContentData:       contentData,
		Metadata:          metadata,
	}
	if err := s.Packs.Create(ctx, pack); err != nil {
		return nil, err
	}
	return pack, nil
}

func (s *ContentPackService) Get(ctx context.Context, packID string) (*models.ContentPack, error) {
	return s.Packs.GetByID(ctx, packID)
}

func (s *ContentPackService) ListForProfile(ctx context.Context, profileID, status string) ([]models.ContentPack, error) {
	if status != "" && !fsm.ValidState(status) {
		return nil, fmt.Errorf("unknown status filter: %s", status)
	}
	return s.Packs.ListForProfile(ctx, profileID, status)
}

// Update edits a pack; only drafts are editable.
func (s *ContentPackService) Update(ctx context.Context, packID string, upd models.ContentPackUpdate) (*models.ContentPack, error) {
	current, err := s.Packs.GetByID(ctx, packID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, models.ErrPackNotFound
	}
	if current.Status != fsm.StateDraft {
		return nil, models.ErrPackNotEditable
	}
	return s.Packs.Update(ctx, packID, upd)
}

// Delete removes a pack; only drafts may be deleted.
func (s *ContentPackService) Delete(ctx context.Context, packID string) error {
	current, err := s.Packs.GetByID(ctx, packID)
	if err != nil {
		return err
	}
	if current == nil {
		return models.ErrPackNotFound
	}
	if current.Status != fsm.StateDraft {
		return models.ErrPackNotDeletable
	}
	return s.Packs.Delete(ctx, packID)
}

// PrepareForExport composes the two gates: approval always, budget only when
// the export carries a cost. Approval is checked first, so an unapproved
// pack never triggers a budget read.
func (s *ContentPackService) PrepareForExport(ctx context.Context, packID, profileID string, exportCost float64) (*models.ContentPack, error) {
	if err := s.Gate.EnforceApprovalGate(ctx, packID, "content pack export"); err != nil {
		return nil, err
	}
	if exportCost > 0 {
		if err := s.Budget.EnforceCheck(ctx, profileID, exportCost, "content pack export"); err != nil {
			return nil, err
		}
	}
	pack, err := s.Packs.GetByID(ctx, packID)
	if err != nil {
		return nil, err
	}
	if pack == nil {
		return nil, models.ErrPackNotFound
	}
	return pack, nil
}
