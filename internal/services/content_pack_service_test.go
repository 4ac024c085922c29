package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"engineBack/internal/fsm"
	"engineBack/internal/models"
)

type stubPackStore struct {
	packs  map[string]*models.ContentPack
	nextID int
}

func newStubPackStore() *stubPackStore {
	return &stubPackStore{packs: map[string]*models.ContentPack{}}
}

func (s *stubPackStore) GetByID(ctx context.Context, packID string) (*models.ContentPack, error) {
	if p, ok := s.packs[packID]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (s *stubPackStore) ListForProfile(ctx context.Context, profileID, status string) ([]models.ContentPack, error) {
	var out []models.ContentPack
	for _, p := range s.packs {
		if p.BusinessProfileID != profileID {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubPackStore) Create(ctx context.Context, pack *models.ContentPack) error {
	s.nextID++
	pack.ID = fmt.Sprintf("pack-%d", s.nextID)
	pack.Status = fsm.StateDraft
	stored := *pack
	s.packs[pack.ID] = &stored
	return nil
}

func (s *stubPackStore) Update(ctx context.Context, packID string, upd models.ContentPackUpdate) (*models.ContentPack, error) {
	p, ok := s.packs[packID]
	if !ok {
		return nil, models.ErrPackNotFound
	}
	if p.Status != fsm.StateDraft {
		return nil, models.ErrPackNotEditable
	}
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	copied := *p
	return &copied, nil
}

func (s *stubPackStore) Delete(ctx context.Context, packID string) error {
	p, ok := s.packs[packID]
	if !ok {
		return models.ErrPackNotDeletable
	}
	if p.Status != fsm.StateDraft {
		return models.ErrPackNotDeletable
	}
	delete(s.packs, packID)
	return nil
}

// gateSpy records gate invocation order across both gates.
type gateSpy struct {
	calls   *[]string
	gateErr error
}

func (g gateSpy) EnforceApprovalGate(ctx context.Context, packID, operation string) error {
	*g.calls = append(*g.calls, "approval")
	return g.gateErr
}

type budgetSpy struct {
	calls     *[]string
	budgetErr error
}

func (b budgetSpy) EnforceCheck(ctx context.Context, profileID string, cost float64, operation string) error {
	*b.calls = append(*b.calls, "budget")
	return b.budgetErr
}

func TestCreatePackValidation(t *testing.T) {
	svc := &ContentPackService{Packs: newStubPackStore()}
	ctx := context.Background()

	if _, err := svc.Create(ctx, "profile-1", "user-1", "", "post", nil, nil, nil); err == nil {
		t.Error("empty title should be rejected")
	}
	if _, err := svc.Create(ctx, "profile-1", "user-1", "T", "newsletter", nil, nil, nil); err == nil {
		t.Error("unknown content type should be rejected")
	}

	pack, err := svc.Create(ctx, "profile-1", "user-1", "T", "post", nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if pack.Status != fsm.StateDraft {
		t.Errorf("new pack status = %q, want draft", pack.Status)
	}
	if pack.ContentData == nil || pack.Metadata == nil {
		t.Error("nil maps should be defaulted to empty")
	}
}

func TestUpdateAndDeleteDraftOnly(t *testing.T) {
	store := newStubPackStore()
	svc := &ContentPackService{Packs: store}
	ctx := context.Background()

	pack, _ := svc.Create(ctx, "profile-1", "user-1", "T", "post", nil, nil, nil)
	store.packs[pack.ID].Status = fsm.StatePendingApproval

	title := "new title"
	if _, err := svc.Update(ctx, pack.ID, models.ContentPackUpdate{Title: &title}); !errors.Is(err, models.ErrPackNotEditable) {
		t.Errorf("update non-draft: want ErrPackNotEditable, got %v", err)
	}
	if err := svc.Delete(ctx, pack.ID); !errors.Is(err, models.ErrPackNotDeletable) {
		t.Errorf("delete non-draft: want ErrPackNotDeletable, got %v", err)
	}

	store.packs[pack.ID].Status = fsm.StateDraft
	updated, err := svc.Update(ctx, pack.ID, models.ContentPackUpdate{Title: &title})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Title != "new title" {
		t.Errorf("title = %q", updated.Title)
	}
	if err := svc.Delete(ctx, pack.ID); err != nil {
		t.Fatal(err)
	}
}

func TestListForProfileRejectsUnknownStatus(t *testing.T) {
	svc := &ContentPackService{Packs: newStubPackStore()}
	if _, err := svc.ListForProfile(context.Background(), "profile-1", "archived"); err == nil {
		t.Error("unknown status filter should be rejected")
	}
}

func TestPrepareForExportGateOrder(t *testing.T) {
	store := newStubPackStore()
	ctx := context.Background()

	var calls []string
	svc := &ContentPackService{
		Packs:  store,
		Gate:   gateSpy{calls: &calls, gateErr: &models.ApprovalRequiredError{Operation: "content pack export", CurrentState: fsm.StateDraft}},
		Budget: budgetSpy{calls: &calls},
	}
	pack, _ := svc.Create(ctx, "profile-1", "user-1", "T", "post", nil, nil, nil)

	_, err := svc.PrepareForExport(ctx, pack.ID, "profile-1", 5)
	var required *models.ApprovalRequiredError
	if !errors.As(err, &required) {
		t.Fatalf("want ApprovalRequiredError, got %v", err)
	}
	// Approval gate failed, so the budget gate must never have run.
	if len(calls) != 1 || calls[0] != "approval" {
		t.Fatalf("calls = %v, want [approval]", calls)
	}
}

func TestPrepareForExportSkipsBudgetWhenFree(t *testing.T) {
	store := newStubPackStore()
	ctx := context.Background()

	var calls []string
	svc := &ContentPackService{
		Packs:  store,
		Gate:   gateSpy{calls: &calls},
		Budget: budgetSpy{calls: &calls},
	}
	pack, _ := svc.Create(ctx, "profile-1", "user-1", "T", "post", nil, nil, nil)
	store.packs[pack.ID].Status = fsm.StateApproved

	got, err := svc.PrepareForExport(ctx, pack.ID, "profile-1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != pack.ID {
		t.Errorf("returned pack %q, want %q", got.ID, pack.ID)
	}
	if len(calls) != 1 || calls[0] != "approval" {
		t.Fatalf("zero-cost export ran gates %v, want [approval]", calls)
	}

	calls = nil
	if _, err := svc.PrepareForExport(ctx, pack.ID, "profile-1", 2.5); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 2 || calls[1] != "budget" {
		t.Fatalf("costed export ran gates %v, want [approval budget]", calls)
	}
}
