package services

import (
	"math"
	"testing"

	"tripmate-backend/models"
)

func TestAllocateEqual(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		n        int
		expected []float64
	}{
		{
			name:     "Even Division",
			total:    90.00,
			n:        3,
			expected: []float64{30.00, 30.00, 30.00},
		},
		{
			name:     "Penny Remainder Goes To Earliest Shares",
			total:    100.00,
			n:        3,
			expected: []float64{33.34, 33.33, 33.33},
		},
		{
			name:     "Two Leftover Cents",
			total:    0.05,
			n:        3,
			expected: []float64{0.02, 0.02, 0.01},
		},
		{
			name:     "Single Participant",
			total:    42.37,
			n:        1,
			expected: []float64{42.37},
		},
		{
			name:     "Zero Participants",
			total:    10.00,
			n:        0,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares := allocateEqual(tt.total, tt.n)
			if len(shares) != len(tt.expected) {
				t.Fatalf("expected %d shares, got %d", len(tt.expected), len(shares))
			}
			var sum float64
			for i, share := range shares {
				if math.Abs(share-tt.expected[i]) > AmountTolerance {
					t.Errorf("share %d: expected %.2f, got %.2f", i, tt.expected[i], share)
				}
				sum += share
			}
			if tt.n > 0 && math.Abs(sum-tt.total) > AmountTolerance {
				t.Errorf("shares sum to %.4f, expected %.2f", sum, tt.total)
			}
		})
	}
}

func TestAllocateByWeight(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		weights  []float64
		expected []float64
	}{
		{
			name:     "Equal Weights",
			total:    100.00,
			weights:  []float64{1, 1, 1, 1},
			expected: []float64{25.00, 25.00, 25.00, 25.00},
		},
		{
			name:     "Zero Weight Gets Nothing",
			total:    60.00,
			weights:  []float64{1, 0, 2},
			expected: []float64{20.00, 0, 40.00},
		},
		{
			name:     "Largest Remainder Absorbs Leftover Cents",
			total:    100.00,
			weights:  []float64{1, 1, 1},
			expected: []float64{33.34, 33.33, 33.33},
		},
		{
			name:     "Fractional Weights",
			total:    100.00,
			weights:  []float64{1.0, 0.75, 0.5, 0.0},
			expected: []float64{44.45, 33.33, 22.22, 0},
		},
		{
			name:     "All Zero Weights",
			total:    50.00,
			weights:  []float64{0, 0},
			expected: []float64{0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares := allocateByWeight(tt.total, tt.weights)
			if len(shares) != len(tt.expected) {
				t.Fatalf("expected %d shares, got %d", len(tt.expected), len(shares))
			}
			var sum, weightSum float64
			for i, share := range shares {
				if math.Abs(share-tt.expected[i]) > AmountTolerance {
					t.Errorf("share %d: expected %.2f, got %.2f", i, tt.expected[i], share)
				}
				sum += share
				weightSum += tt.weights[i]
			}
			if weightSum > 0 && math.Abs(sum-tt.total) > AmountTolerance {
				t.Errorf("shares sum to %.4f, expected %.2f", sum, tt.total)
			}
		})
	}
}

func TestValidateCustomAmounts(t *testing.T) {
	tests := []struct {
		name      string
		total     float64
		amounts   []float64
		expectErr bool
	}{
		{
			name:    "Exact Sum",
			total:   100.00,
			amounts: []float64{60.00, 40.00},
		},
		{
			name:    "Float Noise Within Tolerance",
			total:   0.30,
			amounts: []float64{0.10, 0.20},
		},
		{
			name:      "Sum Too Low",
			total:     100.00,
			amounts:   []float64{60.00, 30.00},
			expectErr: true,
		},
		{
			name:      "Negative Amount",
			total:     10.00,
			amounts:   []float64{20.00, -10.00},
			expectErr: true,
		},
		{
			name:    "Zero Amount Allowed",
			total:   50.00,
			amounts: []float64{50.00, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCustomAmounts(tt.total, tt.amounts)
			if tt.expectErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAmountsFromPercentages(t *testing.T) {
	tests := []struct {
		name        string
		total       float64
		percentages []float64
		expected    []float64
		expectErr   bool
	}{
		{
			name:        "Even Percentages",
			total:       200.00,
			percentages: []float64{50, 50},
			expected:    []float64{100.00, 100.00},
		},
		{
			name:        "Uneven Percentages With Cent Rounding",
			total:       10.00,
			percentages: []float64{33.33, 33.33, 33.34},
			expected:    []float64{3.33, 3.33, 3.34},
		},
		{
			name:        "Does Not Sum To Hundred",
			total:       100.00,
			percentages: []float64{50, 40},
			expectErr:   true,
		},
		{
			name:        "Negative Percentage",
			total:       100.00,
			percentages: []float64{110, -10},
			expectErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amounts, err := amountsFromPercentages(tt.total, tt.percentages)
			if tt.expectErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for i, amount := range amounts {
				if math.Abs(amount-tt.expected[i]) > AmountTolerance {
					t.Errorf("amount %d: expected %.2f, got %.2f", i, tt.expected[i], amount)
				}
			}
		})
	}
}

func TestComputeAgeBasedShares(t *testing.T) {
	multipliers := map[models.AgeGroup]float64{
		models.AgeGroupAdult: 1.0,
		models.AgeGroupChild: 0.5,
	}
	participants := []AgeParticipant{
		{Name: "Bob", AgeGroup: models.AgeGroupAdult, ResponsibleMemberID: "bob"},
		{Name: "Bob Jr", AgeGroup: models.AgeGroupChild, ResponsibleMemberID: "bob"},
	}

	preview, err := ComputeAgeBasedShares(100.00, PricingAgeBased, multipliers, participants)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Base price 100 with multipliers {adult:1.0, child:0.5} prices the
	// adult at 100 and the child at 50; the rollup for their responsible
	// member is 150.
	if math.Abs(preview.Lines[0].Amount-100.00) > AmountTolerance {
		t.Errorf("adult amount: expected 100.00, got %.2f", preview.Lines[0].Amount)
	}
	if math.Abs(preview.Lines[1].Amount-50.00) > AmountTolerance {
		t.Errorf("child amount: expected 50.00, got %.2f", preview.Lines[1].Amount)
	}
	if math.Abs(preview.PerMember["bob"]-150.00) > AmountTolerance {
		t.Errorf("bob rollup: expected 150.00, got %.2f", preview.PerMember["bob"])
	}
	if math.Abs(preview.Total-150.00) > AmountTolerance {
		t.Errorf("derived total: expected 150.00, got %.2f", preview.Total)
	}
}

func TestComputeAgeBasedSharesDefaultMultipliers(t *testing.T) {
	participants := []AgeParticipant{
		{Name: "Alice", AgeGroup: models.AgeGroupAdult, ResponsibleMemberID: "alice"},
		{Name: "Teen", AgeGroup: models.AgeGroupTeen, ResponsibleMemberID: "alice"},
		{Name: "Baby", AgeGroup: models.AgeGroupInfant, ResponsibleMemberID: "alice"},
	}

	preview, err := ComputeAgeBasedShares(40.00, PricingAgeBased, nil, participants)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Default table: adult 1.0, teen 0.75, infant 0.
	if math.Abs(preview.Lines[0].Amount-40.00) > AmountTolerance {
		t.Errorf("adult amount: expected 40.00, got %.2f", preview.Lines[0].Amount)
	}
	if math.Abs(preview.Lines[1].Amount-30.00) > AmountTolerance {
		t.Errorf("teen amount: expected 30.00, got %.2f", preview.Lines[1].Amount)
	}
	if preview.Lines[2].Amount != 0 {
		t.Errorf("infant amount: expected 0, got %.2f", preview.Lines[2].Amount)
	}
	if math.Abs(preview.PerMember["alice"]-70.00) > AmountTolerance {
		t.Errorf("alice rollup: expected 70.00, got %.2f", preview.PerMember["alice"])
	}
}

func TestComputeAgeBasedSharesSamePrice(t *testing.T) {
	participants := []AgeParticipant{
		{Name: "Alice", AgeGroup: models.AgeGroupAdult, ResponsibleMemberID: "alice"},
		{Name: "Bob", AgeGroup: models.AgeGroupAdult, ResponsibleMemberID: "bob"},
		{Name: "Bob Jr", AgeGroup: models.AgeGroupChild, ResponsibleMemberID: "bob"},
		{Name: "Baby", AgeGroup: models.AgeGroupInfant, ResponsibleMemberID: "bob"},
	}

	preview, err := ComputeAgeBasedShares(100.00, PricingSamePrice, nil, participants)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Same-price mode ignores age groups: 100 / 4 per head.
	for i, line := range preview.Lines {
		if math.Abs(line.Amount-25.00) > AmountTolerance {
			t.Errorf("line %d: expected 25.00, got %.2f", i, line.Amount)
		}
	}
	if math.Abs(preview.PerMember["alice"]-25.00) > AmountTolerance {
		t.Errorf("alice rollup: expected 25.00, got %.2f", preview.PerMember["alice"])
	}
	if math.Abs(preview.PerMember["bob"]-75.00) > AmountTolerance {
		t.Errorf("bob rollup: expected 75.00, got %.2f", preview.PerMember["bob"])
	}
	if math.Abs(preview.Total-100.00) > AmountTolerance {
		t.Errorf("derived total: expected 100.00, got %.2f", preview.Total)
	}
}

func TestComputeAgeBasedSharesValidation(t *testing.T) {
	adult := []AgeParticipant{{Name: "A", AgeGroup: models.AgeGroupAdult, ResponsibleMemberID: "a"}}

	if _, err := ComputeAgeBasedShares(0, PricingAgeBased, nil, adult); err == nil {
		t.Error("expected error for zero base price")
	}
	if _, err := ComputeAgeBasedShares(10.00, PricingAgeBased, nil, nil); err == nil {
		t.Error("expected error for no selected people")
	}
	if _, err := ComputeAgeBasedShares(10.00, PricingMode("HAPPY_HOUR"), nil, adult); err == nil {
		t.Error("expected error for an unknown pricing mode")
	}
	if _, err := ComputeAgeBasedShares(10.00, PricingAgeBased, nil, []AgeParticipant{
		{Name: "X", AgeGroup: "ELDER", ResponsibleMemberID: "x"},
	}); err == nil {
		t.Error("expected error for an unknown age group")
	}
	if _, err := ComputeAgeBasedShares(10.00, PricingAgeBased,
		map[models.AgeGroup]float64{models.AgeGroupAdult: -1}, adult); err == nil {
		t.Error("expected error for a negative multiplier")
	}
}
