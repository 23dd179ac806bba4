package services

import (
	"math"
	"sort"

	apperrors "tripmate-backend/errors"
	"tripmate-backend/models"
)

// allocateEqual divides an amount into n shares that differ by at most one
// cent and sum exactly to the total. Works in integer cents; the leftover
// cents go to the earliest shares.
func allocateEqual(total float64, n int) []float64 {
	if n <= 0 {
		return nil
	}

	totalCents := int64(math.Round(total * RoundingFactor))
	base := totalCents / int64(n)
	remainder := totalCents % int64(n)

	shares := make([]float64, n)
	for i := range shares {
		cents := base
		if int64(i) < remainder {
			cents++
		}
		shares[i] = float64(cents) / RoundingFactor
	}
	return shares
}

// allocateByWeight splits an amount proportionally to the given weights,
// using largest-remainder allocation so cents sum exactly to the total.
// Zero-weight entries always get zero.
func allocateByWeight(total float64, weights []float64) []float64 {
	shares := make([]float64, len(weights))
	var weightSum float64
	for _, w := range weights {
		weightSum += w
	}
	if weightSum <= 0 {
		return shares
	}

	totalCents := int64(math.Round(total * RoundingFactor))
	type entry struct {
		idx   int
		cents int64
		frac  float64
	}

	entries := make([]entry, 0, len(weights))
	var allocated int64
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		raw := float64(totalCents) * w / weightSum
		cents := int64(math.Floor(raw))
		allocated += cents
		entries = append(entries, entry{idx: i, cents: cents, frac: raw - float64(cents)})
	}

	// Hand out the leftover cents to the largest fractional parts, with
	// input order as the tiebreaker so the result is deterministic.
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].frac > entries[b].frac
	})
	for i := int64(0); i < totalCents-allocated && i < int64(len(entries)); i++ {
		entries[i].cents++
	}

	for _, e := range entries {
		shares[e.idx] = float64(e.cents) / RoundingFactor
	}
	return shares
}

// validateCustomAmounts checks that explicit split amounts are positive or
// zero and sum to the expense total within tolerance.
func validateCustomAmounts(total float64, amounts []float64) error {
	var sum float64
	for _, a := range amounts {
		if a < 0 {
			return apperrors.InvalidAmount("Split amounts cannot be negative.")
		}
		sum += a
	}
	if math.Abs(sum-total) > AmountTolerance {
		return apperrors.AmountMismatch(sum, total, "split amount")
	}
	return nil
}

// amountsFromPercentages validates that percentages sum to 100 and converts
// them to cent-exact amounts.
func amountsFromPercentages(total float64, percentages []float64) ([]float64, error) {
	var sum float64
	for _, p := range percentages {
		if p < 0 {
			return nil, apperrors.InvalidAmount("Split percentages cannot be negative.")
		}
		sum += p
	}
	if math.Abs(sum-PercentageTotal) > AmountTolerance {
		return nil, apperrors.AmountMismatch(sum, PercentageTotal, "percentage")
	}
	return allocateByWeight(total, percentages), nil
}

// PricingMode selects how an age-based preview prices each person.
type PricingMode string

const (
	// PricingSamePrice divides the base price evenly per selected person.
	PricingSamePrice PricingMode = "SAME_PRICE"
	// PricingAgeBased multiplies the base price by each person's age-group
	// multiplier.
	PricingAgeBased PricingMode = "AGE_BASED"
)

// AgeParticipant is one selected person in an age-based pricing preview:
// either a group member (ResponsibleMemberID equals their own ID) or a
// dependent rolled up to the member responsible for them.
type AgeParticipant struct {
	Name                string          `json:"name"`
	AgeGroup            models.AgeGroup `json:"age_group"`
	ResponsibleMemberID string          `json:"responsible_member_id"`
}

type AgeShareLine struct {
	Name                string          `json:"name"`
	AgeGroup            models.AgeGroup `json:"age_group"`
	ResponsibleMemberID string          `json:"responsible_member_id"`
	Amount              float64         `json:"amount"`
}

type AgeSplitPreview struct {
	Lines     []AgeShareLine     `json:"lines"`
	PerMember map[string]float64 `json:"per_member"`
	Total     float64            `json:"total"`
}

// ComputeAgeBasedShares prices each selected person individually and rolls
// every dependent's amount up to their responsible member. Same-price mode
// charges basePrice/n per person; age-based mode charges basePrice times the
// person's age-group multiplier. The total is derived from the parts, not
// fixed up front. A nil multiplier table falls back to the defaults.
func ComputeAgeBasedShares(basePrice float64, mode PricingMode, multipliers map[models.AgeGroup]float64, participants []AgeParticipant) (*AgeSplitPreview, error) {
	if basePrice <= 0 {
		return nil, apperrors.InvalidAmount("Base price must be greater than zero.")
	}
	if len(participants) == 0 {
		return nil, apperrors.InvalidRequest("At least one person must be selected.")
	}
	if mode != PricingSamePrice && mode != PricingAgeBased {
		return nil, apperrors.InvalidRequest("pricing_mode must be SAME_PRICE or AGE_BASED.")
	}
	if multipliers == nil {
		multipliers = defaultAgeMultipliers
	}

	perHead := roundCents(basePrice / float64(len(participants)))

	preview := &AgeSplitPreview{
		Lines:     make([]AgeShareLine, len(participants)),
		PerMember: make(map[string]float64),
	}
	for i, p := range participants {
		amount := perHead
		if mode == PricingAgeBased {
			m, ok := multipliers[p.AgeGroup]
			if !ok {
				return nil, apperrors.InvalidRequest("Unknown age group: " + string(p.AgeGroup))
			}
			if m < 0 {
				return nil, apperrors.InvalidAmount("Age-group multipliers cannot be negative.")
			}
			amount = roundCents(basePrice * m)
		}
		preview.Lines[i] = AgeShareLine{
			Name:                p.Name,
			AgeGroup:            p.AgeGroup,
			ResponsibleMemberID: p.ResponsibleMemberID,
			Amount:              amount,
		}
		preview.PerMember[p.ResponsibleMemberID] = roundCents(preview.PerMember[p.ResponsibleMemberID] + amount)
		preview.Total = roundCents(preview.Total + amount)
	}
	return preview, nil
}
