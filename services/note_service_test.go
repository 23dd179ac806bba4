package services

import (
	"context"
	"testing"

	"tripmate-backend/models"
)

func newBringListFixture() (*mockNoteRepo, NoteService) {
	noteRepo := &mockNoteRepo{
		lists: map[string]*models.BringList{
			"list-1": {ID: "list-1", GroupID: "group-1", Name: "Camping gear", CreatedBy: "alice"},
		},
		items: map[string]*models.BringItem{
			"item-free":    {ID: "item-free", ListID: "list-1", Name: "Tent", Quantity: 1},
			"item-claimed": {ID: "item-claimed", ListID: "list-1", Name: "Stove", Quantity: 1, ClaimedBy: strPtr("bob")},
		},
	}
	s := NewNoteService(noteRepo, &mockGroupRepo{})
	return noteRepo, s
}

func TestClaimBringItem(t *testing.T) {
	ctx := context.Background()

	t.Run("Claim Unclaimed Item", func(t *testing.T) {
		noteRepo, s := newBringListFixture()

		item, err := s.ClaimBringItem(ctx, "carol", "item-free")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.ClaimedBy == nil || *item.ClaimedBy != "carol" {
			t.Errorf("expected item claimed by carol, got %v", item.ClaimedBy)
		}
		if noteRepo.items["item-free"].ClaimedBy == nil {
			t.Error("expected claim to be persisted")
		}
	})

	t.Run("Reclaiming Your Own Item Is A No-Op", func(t *testing.T) {
		_, s := newBringListFixture()

		item, err := s.ClaimBringItem(ctx, "bob", "item-claimed")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.ClaimedBy == nil || *item.ClaimedBy != "bob" {
			t.Errorf("expected item still claimed by bob, got %v", item.ClaimedBy)
		}
	})

	t.Run("Cannot Claim Someone Elses Item", func(t *testing.T) {
		_, s := newBringListFixture()

		if _, err := s.ClaimBringItem(ctx, "carol", "item-claimed"); err == nil {
			t.Error("expected conflict for an item claimed by someone else")
		}
	})

	t.Run("Non-Members Cannot Claim", func(t *testing.T) {
		noteRepo, _ := newBringListFixture()
		groupRepo := &mockGroupRepo{nonMembers: map[string]bool{"mallory": true}}
		s := NewNoteService(noteRepo, groupRepo)

		if _, err := s.ClaimBringItem(ctx, "mallory", "item-free"); err == nil {
			t.Error("expected error for a non-member claim")
		}
	})
}

func TestUnclaimBringItem(t *testing.T) {
	ctx := context.Background()

	t.Run("Claimer Releases Item", func(t *testing.T) {
		noteRepo, s := newBringListFixture()

		item, err := s.UnclaimBringItem(ctx, "bob", "item-claimed")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.ClaimedBy != nil {
			t.Errorf("expected item to be unclaimed, got %v", item.ClaimedBy)
		}
		if noteRepo.items["item-claimed"].ClaimedBy != nil {
			t.Error("expected release to be persisted")
		}
	})

	t.Run("Only The Claimer Can Release", func(t *testing.T) {
		_, s := newBringListFixture()

		if _, err := s.UnclaimBringItem(ctx, "carol", "item-claimed"); err == nil {
			t.Error("expected error when releasing someone else's claim")
		}
	})

	t.Run("Releasing An Unclaimed Item Is A No-Op", func(t *testing.T) {
		_, s := newBringListFixture()

		item, err := s.UnclaimBringItem(ctx, "carol", "item-free")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.ClaimedBy != nil {
			t.Errorf("expected item to stay unclaimed, got %v", item.ClaimedBy)
		}
	})
}

func TestDeleteNoteOwnership(t *testing.T) {
	noteRepo := &mockNoteRepo{
		notes: map[string]*models.SharedNote{
			"note-1": {ID: "note-1", GroupID: "group-1", Title: "Packing", CreatedBy: "alice"},
		},
	}
	s := NewNoteService(noteRepo, &mockGroupRepo{})

	if err := s.DeleteNote(context.Background(), "bob", "note-1"); err == nil {
		t.Error("expected error when a non-creator deletes a note")
	}
	if err := s.DeleteNote(context.Background(), "alice", "note-1"); err != nil {
		t.Errorf("unexpected error for the creator: %v", err)
	}
}
