package fsm

import "testing"

func TestCanTransition(t *testing.T) {
	if !CanTransition(StateDraft, StatePendingApproval) {
		t.Fatal("expected draft -> pending_approval to be allowed")
	}
	if CanTransition(StateDraft, StateApproved) {
		t.Fatal("unexpected transition draft -> approved allowed")
	}
	if !CanTransition(StatePendingApproval, StateApproved) {
		t.Fatal("expected pending_approval -> approved to be allowed")
	}
	if !CanTransition(StatePendingApproval, StateRejected) {
		t.Fatal("expected pending_approval -> rejected to be allowed")
	}
	if CanTransition(StateApproved, StateRejected) {
		t.Fatal("approved must be terminal")
	}
	if CanTransition(StateApproved, StatePendingApproval) {
		t.Fatal("approved must be terminal")
	}
	if !CanTransition(StateRejected, StatePendingApproval) {
		t.Fatal("expected rejected -> pending_approval (resubmission) to be allowed")
	}
	if CanTransition(StateRejected, StateApproved) {
		t.Fatal("unexpected transition rejected -> approved allowed")
	}
	if CanTransition(StatePendingApproval, StatePendingApproval) {
		t.Fatal("self transition must not be allowed")
	}
	if CanTransition("unknown", StateApproved) {
		t.Fatal("unknown source state must not transition")
	}
}

func TestValidState(t *testing.T) {
	for _, s := range []string{StateDraft, StatePendingApproval, StateApproved, StateRejected} {
		if !ValidState(s) {
			t.Fatalf("expected %s to be a valid state", s)
		}
	}
	if ValidState("archived") {
		t.Fatal("archived must not be a valid state")
	}
}
