package services

import "tripmate-backend/models"

const (
	// RoundingFactor converts amounts to cents for exact integer arithmetic.
	RoundingFactor = 100.0

	// AmountTolerance absorbs float noise when validating client-supplied sums.
	AmountTolerance = 0.001

	// BalanceThreshold is the smallest balance worth reporting; anything
	// below it is treated as settled.
	BalanceThreshold = 0.01

	// PercentageTotal is what a complete percentage split must add up to.
	PercentageTotal = 100.0

	// DefaultNotificationLimit caps a notification listing page.
	DefaultNotificationLimit = 50

	// GeneralRateLimit is requests per IP per minute across the API.
	GeneralRateLimit = 300

	// AIRateLimit is requests per IP per minute for receipt scanning,
	// which fans out to a paid model call.
	AIRateLimit = 10
)

// Default age-group multipliers for the age-based pricing preview, used when
// the caller supplies no table. Infants priced at zero still appear in the
// preview with a zero amount.
var defaultAgeMultipliers = map[models.AgeGroup]float64{
	models.AgeGroupAdult:  1.0,
	models.AgeGroupTeen:   0.75,
	models.AgeGroupChild:  0.5,
	models.AgeGroupInfant: 0.0,
}
