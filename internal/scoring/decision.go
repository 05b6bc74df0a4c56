// Package scoring is the fixed point-based investment scorer. Each dimension
// is scored independently and carries its own explanations; Decide combines
// them into a tiered decision.
package scoring

import "github.com/jonathan/investment-fit/internal/types"

// Tier thresholds on the total score
const (
	StrongInvestThreshold = 80
	InvestThreshold       = 65
	MaybeThreshold        = 50
	PassThreshold         = 35
)

var recommendations = map[types.DecisionTier]string{
	types.TierStrongInvest: "STRONG INVEST - Exceptional opportunity across all dimensions",
	types.TierInvest:       "INVEST - Strong fundamentals with manageable risks",
	types.TierMaybe:        "MAYBE - Promising but needs deeper diligence on key questions",
	types.TierPass:         "PASS - Too many concerns relative to upside",
	types.TierStrongPass:   "STRONG PASS - Fundamental issues that disqualify investment",
}

var nextSteps = map[types.DecisionTier][]string{
	types.TierStrongInvest: {
		"Schedule meeting with founders ASAP",
		"Request detailed financial model",
		"Conduct customer reference calls (at least 3)",
		"Perform technical diligence",
		"Review cap table and prior round terms",
		"Prepare term sheet",
	},
	types.TierInvest: {
		"Deep dive on critical questions listed above",
		"Customer reference calls",
		"Competitive analysis deep dive",
		"Financial model review",
		"Second partner review meeting",
	},
	types.TierMaybe: {
		"Get answers to all critical questions",
		"Request more detailed metrics",
		"Understand path to next milestone",
		"Assess if concerns are addressable",
		"Consider smaller check or wait for next round",
	},
	types.TierPass:       declineSteps,
	types.TierStrongPass: declineSteps,
}

var declineSteps = []string{
	"Politely decline",
	"Provide constructive feedback if appropriate",
	"Stay in touch if there's founder potential",
	"Revisit in 6-12 months if fundamentals improve",
}

// TierFor maps a total score onto a decision tier
func TierFor(total int) types.DecisionTier {
	switch {
	case total >= StrongInvestThreshold:
		return types.TierStrongInvest
	case total >= InvestThreshold:
		return types.TierInvest
	case total >= MaybeThreshold:
		return types.TierMaybe
	case total >= PassThreshold:
		return types.TierPass
	default:
		return types.TierStrongPass
	}
}

// Recommendation is the one-line verdict for a tier
func Recommendation(tier types.DecisionTier) string {
	return recommendations[tier]
}

// NextSteps returns a copy of the follow-up actions for a tier
func NextSteps(tier types.DecisionTier) []string {
	return append([]string(nil), nextSteps[tier]...)
}

// Decide scores an enriched record. Explanations are concatenated in
// dimension order: market, team, traction, financial health.
func Decide(rec types.Record) types.Decision {
	dimensions := []struct {
		key   string
		score SubScore
	}{
		{types.ScoreMarket, Market(rec)},
		{types.ScoreTeam, Team(rec)},
		{types.ScoreTraction, Traction(rec)},
		{types.ScoreFinancialHealth, FinancialHealth(rec)},
	}

	d := types.Decision{
		Breakdown:         make(map[string]int, len(dimensions)),
		ReasonsToInvest:   []string{},
		ReasonsToPass:     []string{},
		CriticalQuestions: []string{},
	}
	for _, dim := range dimensions {
		d.Breakdown[dim.key] = dim.score.Points
		d.TotalScore += dim.score.Points
		d.ReasonsToInvest = append(d.ReasonsToInvest, dim.score.ReasonsToInvest...)
		d.ReasonsToPass = append(d.ReasonsToPass, dim.score.ReasonsToPass...)
		d.CriticalQuestions = append(d.CriticalQuestions, dim.score.CriticalQuestions...)
	}

	d.Tier = TierFor(d.TotalScore)
	d.Recommendation = Recommendation(d.Tier)
	d.NextSteps = NextSteps(d.Tier)
	return d
}
