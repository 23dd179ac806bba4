package services

import (
	"context"
	"math"
	"testing"

	"tripmate-backend/models"
	"tripmate-backend/repository"
)

func strPtr(s string) *string { return &s }

func TestComputeBalances(t *testing.T) {
	tests := []struct {
		name            string
		rows            []repository.UnsettledSplitRow
		expectedOwe     float64
		expectedOwed    float64
		expectedNet     float64
		expectedMembers []models.MemberBalance
	}{
		{
			name: "Mixed Debts",
			rows: []repository.UnsettledSplitRow{
				{PayerID: "bob", UserID: strPtr("alice"), Amount: 25.00},
				{PayerID: "alice", UserID: strPtr("bob"), Amount: 10.00},
				{PayerID: "alice", GuestID: strPtr("guest-1"), Amount: 5.00},
				{PayerID: "carol", UserID: strPtr("bob"), Amount: 7.00},
			},
			expectedOwe:  25.00,
			expectedOwed: 15.00,
			expectedNet:  -10.00,
			expectedMembers: []models.MemberBalance{
				{UserID: "bob", Amount: 15.00, Direction: models.DirectionYouOwe},
			},
		},
		{
			name:         "No Unsettled Splits",
			rows:         nil,
			expectedOwe:  0,
			expectedOwed: 0,
			expectedNet:  0,
		},
		{
			name: "Offsetting Debts Cancel Out",
			rows: []repository.UnsettledSplitRow{
				{PayerID: "bob", UserID: strPtr("alice"), Amount: 5.00},
				{PayerID: "alice", UserID: strPtr("bob"), Amount: 5.00},
			},
			expectedOwe:  5.00,
			expectedOwed: 5.00,
			expectedNet:  0,
		},
		{
			name: "Guest Share Counts Toward Owed Only",
			rows: []repository.UnsettledSplitRow{
				{PayerID: "alice", GuestID: strPtr("guest-1"), Amount: 12.50},
			},
			expectedOwe:  0,
			expectedOwed: 12.50,
			expectedNet:  12.50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balances := computeBalances(tt.rows, "alice")

			if math.Abs(balances.Balance.YouOwe-tt.expectedOwe) > AmountTolerance {
				t.Errorf("you_owe: expected %.2f, got %.2f", tt.expectedOwe, balances.Balance.YouOwe)
			}
			if math.Abs(balances.Balance.YouAreOwed-tt.expectedOwed) > AmountTolerance {
				t.Errorf("you_are_owed: expected %.2f, got %.2f", tt.expectedOwed, balances.Balance.YouAreOwed)
			}
			if math.Abs(balances.Balance.NetBalance-tt.expectedNet) > AmountTolerance {
				t.Errorf("net_balance: expected %.2f, got %.2f", tt.expectedNet, balances.Balance.NetBalance)
			}

			if len(balances.Members) != len(tt.expectedMembers) {
				t.Fatalf("expected %d member balances, got %d", len(tt.expectedMembers), len(balances.Members))
			}
			for i, expected := range tt.expectedMembers {
				got := balances.Members[i]
				if got.UserID != expected.UserID || got.Direction != expected.Direction {
					t.Errorf("member %d: expected %s/%s, got %s/%s",
						i, expected.UserID, expected.Direction, got.UserID, got.Direction)
				}
				if math.Abs(got.Amount-expected.Amount) > AmountTolerance {
					t.Errorf("member %d: expected amount %.2f, got %.2f", i, expected.Amount, got.Amount)
				}
			}
		})
	}
}

func TestSuggestSettlements(t *testing.T) {
	tests := []struct {
		name     string
		rows     []repository.UnsettledSplitRow
		expected []SettlementSuggestion
	}{
		{
			name: "Two People",
			rows: []repository.UnsettledSplitRow{
				{PayerID: "alice", UserID: strPtr("bob"), Amount: 20.00},
			},
			expected: []SettlementSuggestion{
				{FromUserID: "bob", ToUserID: "alice", Amount: 20.00},
			},
		},
		{
			name: "Three People Equal Split",
			rows: []repository.UnsettledSplitRow{
				{PayerID: "alice", UserID: strPtr("bob"), Amount: 3.33},
				{PayerID: "alice", UserID: strPtr("carol"), Amount: 3.34},
			},
			expected: []SettlementSuggestion{
				{FromUserID: "carol", ToUserID: "alice", Amount: 3.34},
				{FromUserID: "bob", ToUserID: "alice", Amount: 3.33},
			},
		},
		{
			name: "Debt Chain Collapses To Direct Payments",
			rows: []repository.UnsettledSplitRow{
				{PayerID: "alice", UserID: strPtr("bob"), Amount: 30.00},
				{PayerID: "bob", UserID: strPtr("carol"), Amount: 20.00},
			},
			expected: []SettlementSuggestion{
				{FromUserID: "carol", ToUserID: "alice", Amount: 20.00},
				{FromUserID: "bob", ToUserID: "alice", Amount: 10.00},
			},
		},
		{
			name: "Balances At Threshold Are Ignored",
			rows: []repository.UnsettledSplitRow{
				{PayerID: "alice", UserID: strPtr("bob"), Amount: 0.01},
			},
			expected: nil,
		},
		{
			name: "Guest Shares Excluded",
			rows: []repository.UnsettledSplitRow{
				{PayerID: "alice", GuestID: strPtr("guest-1"), Amount: 30.00},
			},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suggestions := suggestSettlements(tt.rows)
			if len(suggestions) != len(tt.expected) {
				t.Fatalf("expected %d suggestions, got %d: %+v", len(tt.expected), len(suggestions), suggestions)
			}
			for i, expected := range tt.expected {
				got := suggestions[i]
				if got.FromUserID != expected.FromUserID || got.ToUserID != expected.ToUserID {
					t.Errorf("suggestion %d: expected %s->%s, got %s->%s",
						i, expected.FromUserID, expected.ToUserID, got.FromUserID, got.ToUserID)
				}
				if math.Abs(got.Amount-expected.Amount) > AmountTolerance {
					t.Errorf("suggestion %d: expected %.2f, got %.2f", i, expected.Amount, got.Amount)
				}
			}
		})
	}
}

func newSettlementFixture() (*mockExpenseRepo, SettlementService) {
	expenseRepo := &mockExpenseRepo{
		expenses: map[string]*models.Expense{
			"exp-1": {ID: "exp-1", GroupID: "group-1", PaidBy: "alice", Amount: 30.00},
		},
		splits: map[string]*models.ExpenseSplit{
			"split-bob":   {ID: "split-bob", ExpenseID: "exp-1", UserID: strPtr("bob"), Amount: 10.00},
			"split-alice": {ID: "split-alice", ExpenseID: "exp-1", UserID: strPtr("alice"), Amount: 10.00, IsSettled: true},
		},
	}
	s := NewSettlementService(expenseRepo, &mockGroupRepo{}, &mockUserRepo{})
	return expenseRepo, s
}

func TestSettleSplit(t *testing.T) {
	t.Run("Payer Settles A Member Share", func(t *testing.T) {
		expenseRepo, s := newSettlementFixture()

		updated, err := s.SettleSplit(context.Background(), "alice", "split-bob")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !updated.IsSettled {
			t.Error("expected split to be settled")
		}
		if !expenseRepo.settledSplits["split-bob"] {
			t.Error("expected repository to record the settlement")
		}
	})

	t.Run("Share Holder Settles Their Own Share", func(t *testing.T) {
		_, s := newSettlementFixture()

		if _, err := s.SettleSplit(context.Background(), "bob", "split-bob"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("Uninvolved Member Cannot Settle", func(t *testing.T) {
		_, s := newSettlementFixture()

		if _, err := s.SettleSplit(context.Background(), "carol", "split-bob"); err == nil {
			t.Error("expected error for a member who is neither payer nor share holder")
		}
	})

	t.Run("Already Settled Split Conflicts", func(t *testing.T) {
		_, s := newSettlementFixture()

		if _, err := s.SettleSplit(context.Background(), "alice", "split-alice"); err == nil {
			t.Error("expected conflict for an already settled split")
		}
	})

	t.Run("Unknown Split", func(t *testing.T) {
		_, s := newSettlementFixture()

		if _, err := s.SettleSplit(context.Background(), "alice", "missing"); err == nil {
			t.Error("expected error for an unknown split")
		}
	})
}

func TestUnsettleSplit(t *testing.T) {
	t.Run("Payer Reopens A Settled Share", func(t *testing.T) {
		expenseRepo, s := newSettlementFixture()
		expenseRepo.splits["split-bob"].IsSettled = true

		updated, err := s.UnsettleSplit(context.Background(), "alice", "split-bob")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.IsSettled {
			t.Error("expected split to be unsettled")
		}
	})

	t.Run("Payer Own Share Stays Settled", func(t *testing.T) {
		_, s := newSettlementFixture()

		if _, err := s.UnsettleSplit(context.Background(), "alice", "split-alice"); err == nil {
			t.Error("expected error when unsettling the payer's own share")
		}
	})

	t.Run("Unsettled Split Conflicts", func(t *testing.T) {
		_, s := newSettlementFixture()

		if _, err := s.UnsettleSplit(context.Background(), "alice", "split-bob"); err == nil {
			t.Error("expected conflict for a split that is not settled")
		}
	})
}

func TestSettleUpWithMember(t *testing.T) {
	t.Run("Settles Both Directions", func(t *testing.T) {
		expenseRepo := &mockExpenseRepo{settlePairCount: 3}
		s := NewSettlementService(expenseRepo, &mockGroupRepo{}, &mockUserRepo{})

		settled, err := s.SettleUpWithMember(context.Background(), "alice", "group-1", "bob")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if settled != 3 {
			t.Errorf("expected 3 settled splits, got %d", settled)
		}
	})

	t.Run("Cannot Settle Up With Yourself", func(t *testing.T) {
		s := NewSettlementService(&mockExpenseRepo{}, &mockGroupRepo{}, &mockUserRepo{})

		if _, err := s.SettleUpWithMember(context.Background(), "alice", "group-1", "alice"); err == nil {
			t.Error("expected error when settling up with yourself")
		}
	})

	t.Run("Other User Must Be A Member", func(t *testing.T) {
		groupRepo := &mockGroupRepo{nonMembers: map[string]bool{"mallory": true}}
		s := NewSettlementService(&mockExpenseRepo{}, groupRepo, &mockUserRepo{})

		if _, err := s.SettleUpWithMember(context.Background(), "alice", "group-1", "mallory"); err == nil {
			t.Error("expected error for a non-member counterparty")
		}
	})
}

func TestGetGroupBalances(t *testing.T) {
	expenseRepo := &mockExpenseRepo{
		rows: []repository.UnsettledSplitRow{
			{PayerID: "alice", UserID: strPtr("bob"), Amount: 18.00},
		},
	}
	userRepo := &mockUserRepo{users: map[string]models.User{
		"bob": {ID: "bob", Name: "Bob"},
	}}
	s := NewSettlementService(expenseRepo, &mockGroupRepo{}, userRepo)

	balances, err := s.GetGroupBalances(context.Background(), "alice", "group-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(balances.Members) != 1 {
		t.Fatalf("expected 1 member balance, got %d", len(balances.Members))
	}
	if balances.Members[0].Name != "Bob" {
		t.Errorf("expected member name to be resolved, got %q", balances.Members[0].Name)
	}
	if balances.Members[0].Direction != models.DirectionOwesYou {
		t.Errorf("expected direction OWES_YOU, got %s", balances.Members[0].Direction)
	}
}
