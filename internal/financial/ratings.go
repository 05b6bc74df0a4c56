// Package financial derives investment ratios from a research record and
// classifies each into a severity tier.
package financial

import "math"

// Tier labels
const (
	TierExcellent  = "EXCELLENT"
	TierGood       = "GOOD"
	TierConcerning = "CONCERNING"
	TierRedFlag    = "RED FLAG"
	TierHealthy    = "HEALTHY"
	TierAdequate   = "ADEQUATE"
	TierCritical   = "CRITICAL"
	TierPoor       = "POOR"
	TierAcceptable = "ACCEPTABLE"
)

// Rating is a tier plus a short human explanation
type Rating struct {
	Tier        string `json:"tier"`
	Description string `json:"description"`
}

func (r Rating) String() string {
	return r.Tier + " - " + r.Description
}

// CapitalEfficiency is total funding divided by ARR. Lower is better.
// It is undefined when arr is not positive.
func CapitalEfficiency(totalFunding, arr float64) (float64, Rating, bool) {
	if !(arr > 0) {
		return 0, Rating{}, false
	}
	ratio := totalFunding / arr
	if !finite(ratio) {
		return 0, Rating{}, false
	}
	return ratio, RateCapitalEfficiency(ratio), true
}

// RateCapitalEfficiency classifies a funding-to-ARR ratio
func RateCapitalEfficiency(ratio float64) Rating {
	switch {
	case ratio < 2:
		return Rating{TierExcellent, "Very efficient"}
	case ratio < 5:
		return Rating{TierGood, "Reasonable efficiency"}
	case ratio < 10:
		return Rating{TierConcerning, "High funding vs revenue"}
	default:
		return Rating{TierRedFlag, "Poor capital efficiency"}
	}
}

// BurnMultiple is net burn divided by net new ARR.
// It is undefined when net new ARR is not positive.
func BurnMultiple(netBurn, netNewARR float64) (float64, Rating, bool) {
	if !(netNewARR > 0) {
		return 0, Rating{}, false
	}
	multiple := netBurn / netNewARR
	if !finite(multiple) {
		return 0, Rating{}, false
	}
	return multiple, RateBurnMultiple(multiple), true
}

// RateBurnMultiple classifies a burn multiple
func RateBurnMultiple(multiple float64) Rating {
	switch {
	case multiple < 1.5:
		return Rating{TierExcellent, "Very capital efficient"}
	case multiple < 3:
		return Rating{TierGood, "Acceptable efficiency"}
	case multiple < 5:
		return Rating{TierConcerning, "High burn relative to growth"}
	default:
		return Rating{TierRedFlag, "Burning cash too fast"}
	}
}

// Runway is months of cash at the current monthly burn.
// It is undefined when monthly burn is not positive.
func Runway(cashOnHand, monthlyBurn float64) (float64, Rating, bool) {
	if !(monthlyBurn > 0) {
		return 0, Rating{}, false
	}
	months := cashOnHand / monthlyBurn
	if !finite(months) {
		return 0, Rating{}, false
	}
	return months, RateRunway(months), true
}

// RateRunway classifies months of runway
func RateRunway(months float64) Rating {
	switch {
	case months > 24:
		return Rating{TierHealthy, "Comfortable runway"}
	case months > 12:
		return Rating{TierAdequate, "Runway covers the next year"}
	case months > 6:
		return Rating{TierConcerning, "Needs funding soon"}
	default:
		return Rating{TierCritical, "Immediate funding required"}
	}
}

// LTVToCAC is customer lifetime value over acquisition cost.
// It is undefined unless both are positive.
func LTVToCAC(ltv, cac float64) (float64, Rating, bool) {
	if !(ltv > 0) || !(cac > 0) {
		return 0, Rating{}, false
	}
	ratio := ltv / cac
	if !finite(ratio) {
		return 0, Rating{}, false
	}
	return ratio, RateLTVToCAC(ratio), true
}

// RateLTVToCAC classifies unit economics
func RateLTVToCAC(ratio float64) Rating {
	switch {
	case ratio < 1:
		return Rating{TierCritical, "Losing money on customers"}
	case ratio < 3:
		return Rating{TierPoor, "Marginal economics"}
	case ratio < 5:
		return Rating{TierGood, "Healthy economics"}
	default:
		return Rating{TierExcellent, "Strong economics"}
	}
}

// RatePayback classifies CAC payback in months
func RatePayback(months float64) Rating {
	switch {
	case months > 24:
		return Rating{TierPoor, "Too long to recover CAC"}
	case months > 12:
		return Rating{TierAcceptable, "Could be better"}
	default:
		return Rating{TierGood, "Quick payback"}
	}
}

// GrowthRate is the percentage change from prior to current ARR, annualized
// when the observation span is not twelve months. It is undefined when prior
// ARR is not positive.
func GrowthRate(current, prior float64, months int) (float64, Rating, bool) {
	if !(prior > 0) {
		return 0, Rating{}, false
	}
	rate := (current - prior) / prior * 100
	if months > 0 && months != 12 {
		rate *= 12 / float64(months)
	}
	if !finite(rate) {
		return 0, Rating{}, false
	}
	return rate, RateGrowth(rate), true
}

// RateGrowth classifies an annual growth percentage
func RateGrowth(rate float64) Rating {
	switch {
	case rate < 0:
		return Rating{TierCritical, "Negative growth"}
	case rate < 20:
		return Rating{TierPoor, "Below industry standard"}
	case rate < 50:
		return Rating{TierAcceptable, "Steady growth"}
	case rate < 100:
		return Rating{TierGood, "Strong growth"}
	default:
		return Rating{TierExcellent, "Hypergrowth"}
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
