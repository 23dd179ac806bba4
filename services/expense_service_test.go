package services

import (
	"context"
	"math"
	"testing"
	"time"

	"tripmate-backend/models"
)

func floatPtr(f float64) *float64 { return &f }

func newSplitResolver() *expenseService {
	expenseRepo := &mockExpenseRepo{
		guests: map[string]*models.ExpenseGuest{
			"guest-1": {ID: "guest-1", GroupID: "group-1", Name: "Plus One", CreatedBy: "alice"},
			"guest-2": {ID: "guest-2", GroupID: "other-group", Name: "Stranger", CreatedBy: "dave"},
		},
	}
	return &expenseService{
		expenseRepo: expenseRepo,
		groupRepo:   &mockGroupRepo{nonMembers: map[string]bool{"mallory": true}},
	}
}

func TestResolveSplitAmounts(t *testing.T) {
	ctx := context.Background()
	s := newSplitResolver()

	t.Run("Equal Split Across Members And Guests", func(t *testing.T) {
		amounts, err := s.resolveSplitAmounts(ctx, "group-1", 100.00, models.SplitTypeEqual, []SplitInput{
			{UserID: strPtr("alice")},
			{UserID: strPtr("bob")},
			{GuestID: strPtr("guest-1")},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var sum float64
		for _, a := range amounts {
			sum += a
		}
		if math.Abs(sum-100.00) > AmountTolerance {
			t.Errorf("amounts sum to %.4f, expected 100.00", sum)
		}
	})

	t.Run("Custom Split Uses Provided Amounts", func(t *testing.T) {
		amounts, err := s.resolveSplitAmounts(ctx, "group-1", 50.00, models.SplitTypeCustom, []SplitInput{
			{UserID: strPtr("alice"), Amount: floatPtr(30.00)},
			{UserID: strPtr("bob"), Amount: floatPtr(20.00)},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if amounts[0] != 30.00 || amounts[1] != 20.00 {
			t.Errorf("expected [30.00 20.00], got %v", amounts)
		}
	})

	t.Run("Custom Split Must Match Total", func(t *testing.T) {
		_, err := s.resolveSplitAmounts(ctx, "group-1", 50.00, models.SplitTypeCustom, []SplitInput{
			{UserID: strPtr("alice"), Amount: floatPtr(30.00)},
			{UserID: strPtr("bob"), Amount: floatPtr(10.00)},
		})
		if err == nil {
			t.Error("expected error for amounts that do not sum to the total")
		}
	})

	t.Run("Percentage Split Converts To Amounts", func(t *testing.T) {
		amounts, err := s.resolveSplitAmounts(ctx, "group-1", 80.00, models.SplitTypePercentage, []SplitInput{
			{UserID: strPtr("alice"), Percentage: floatPtr(75)},
			{UserID: strPtr("bob"), Percentage: floatPtr(25)},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(amounts[0]-60.00) > AmountTolerance || math.Abs(amounts[1]-20.00) > AmountTolerance {
			t.Errorf("expected [60.00 20.00], got %v", amounts)
		}
	})

	t.Run("Participant Needs Exactly One Reference", func(t *testing.T) {
		_, err := s.resolveSplitAmounts(ctx, "group-1", 10.00, models.SplitTypeEqual, []SplitInput{
			{UserID: strPtr("alice"), GuestID: strPtr("guest-1")},
		})
		if err == nil {
			t.Error("expected error for a participant with both user_id and guest_id")
		}
	})

	t.Run("Duplicate Participants Rejected", func(t *testing.T) {
		_, err := s.resolveSplitAmounts(ctx, "group-1", 10.00, models.SplitTypeEqual, []SplitInput{
			{UserID: strPtr("alice")},
			{UserID: strPtr("alice")},
		})
		if err == nil {
			t.Error("expected error for a duplicate participant")
		}
	})

	t.Run("Non-Member Participant Rejected", func(t *testing.T) {
		_, err := s.resolveSplitAmounts(ctx, "group-1", 10.00, models.SplitTypeEqual, []SplitInput{
			{UserID: strPtr("mallory")},
		})
		if err == nil {
			t.Error("expected error for a participant outside the group")
		}
	})

	t.Run("Guest From Another Group Rejected", func(t *testing.T) {
		_, err := s.resolveSplitAmounts(ctx, "group-1", 10.00, models.SplitTypeEqual, []SplitInput{
			{GuestID: strPtr("guest-2")},
		})
		if err == nil {
			t.Error("expected error for a guest that belongs to another group")
		}
	})

	t.Run("Unknown Guest Rejected", func(t *testing.T) {
		_, err := s.resolveSplitAmounts(ctx, "group-1", 10.00, models.SplitTypeEqual, []SplitInput{
			{GuestID: strPtr("missing")},
		})
		if err == nil {
			t.Error("expected error for an unknown guest")
		}
	})

	t.Run("Unknown Split Type Rejected", func(t *testing.T) {
		_, err := s.resolveSplitAmounts(ctx, "group-1", 10.00, models.SplitType("RANDOM"), []SplitInput{
			{UserID: strPtr("alice")},
		})
		if err == nil {
			t.Error("expected error for an unknown split type")
		}
	})
}

func TestBuildSplitsPayerShareBornSettled(t *testing.T) {
	expense := &models.Expense{ID: "exp-1", GroupID: "group-1", PaidBy: "alice", Amount: 30.00}
	participants := []SplitInput{
		{UserID: strPtr("alice")},
		{UserID: strPtr("bob")},
		{GuestID: strPtr("guest-1")},
	}

	splits, err := buildSplits(expense, participants, []float64{10.00, 10.00, 10.00})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !splits[0].IsSettled {
		t.Error("payer's own share should be born settled")
	}
	if splits[0].SettledBy == nil || *splits[0].SettledBy != "alice" {
		t.Error("payer's own share should record the payer as settler")
	}
	if splits[1].IsSettled || splits[2].IsSettled {
		t.Error("other shares should start unsettled")
	}
	if splits[2].GuestID == nil || *splits[2].GuestID != "guest-1" {
		t.Error("guest share should carry the guest reference")
	}
}

func TestPreviewAgeSplit(t *testing.T) {
	ctx := context.Background()
	groupRepo := &mockGroupRepo{
		members: []models.User{
			{ID: "alice", Name: "Alice"},
			{ID: "bob", Name: "Bob"},
		},
		dependents: []models.Dependent{
			{ID: "dep-1", GroupID: "group-1", ResponsibleMemberID: "bob", Name: "Bob Jr", AgeGroup: models.AgeGroupChild},
		},
	}
	s := &expenseService{expenseRepo: &mockExpenseRepo{}, groupRepo: groupRepo}

	t.Run("Prices Only The Selected People", func(t *testing.T) {
		preview, err := s.PreviewAgeSplit(ctx, "alice", "group-1", AgeSplitPreviewRequest{
			BasePrice:    100.00,
			PricingMode:  PricingAgeBased,
			Multipliers:  map[models.AgeGroup]float64{models.AgeGroupAdult: 1.0, models.AgeGroupChild: 0.5},
			MemberIDs:    []string{"bob"},
			DependentIDs: []string{"dep-1"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(preview.Lines) != 2 {
			t.Fatalf("expected 2 lines for the selection, got %d", len(preview.Lines))
		}
		if math.Abs(preview.PerMember["bob"]-150.00) > AmountTolerance {
			t.Errorf("bob rollup: expected 150.00, got %.2f", preview.PerMember["bob"])
		}
		if _, ok := preview.PerMember["alice"]; ok {
			t.Error("unselected member should not appear in the rollup")
		}
	})

	t.Run("Empty Selection Rejected", func(t *testing.T) {
		_, err := s.PreviewAgeSplit(ctx, "alice", "group-1", AgeSplitPreviewRequest{
			BasePrice:   50.00,
			PricingMode: PricingSamePrice,
		})
		if err == nil {
			t.Error("expected error for an empty selection")
		}
	})

	t.Run("Unknown Member Rejected", func(t *testing.T) {
		_, err := s.PreviewAgeSplit(ctx, "alice", "group-1", AgeSplitPreviewRequest{
			BasePrice:   50.00,
			PricingMode: PricingSamePrice,
			MemberIDs:   []string{"stranger"},
		})
		if err == nil {
			t.Error("expected error for a selected non-member")
		}
	})

	t.Run("Unknown Dependent Rejected", func(t *testing.T) {
		_, err := s.PreviewAgeSplit(ctx, "alice", "group-1", AgeSplitPreviewRequest{
			BasePrice:    50.00,
			PricingMode:  PricingSamePrice,
			DependentIDs: []string{"dep-unknown"},
		})
		if err == nil {
			t.Error("expected error for a dependent outside the group")
		}
	})
}

func TestParseExpenseDate(t *testing.T) {
	t.Run("Explicit Date", func(t *testing.T) {
		parsed, err := parseExpenseDate("2026-07-14")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if parsed.Year() != 2026 || parsed.Month() != time.July || parsed.Day() != 14 {
			t.Errorf("unexpected date: %v", parsed)
		}
	})

	t.Run("Empty Defaults To Today", func(t *testing.T) {
		parsed, err := parseExpenseDate("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if parsed.IsZero() {
			t.Error("expected a default date, got zero time")
		}
	})

	t.Run("Bad Format Rejected", func(t *testing.T) {
		if _, err := parseExpenseDate("14/07/2026"); err == nil {
			t.Error("expected error for a non ISO date")
		}
	})
}
