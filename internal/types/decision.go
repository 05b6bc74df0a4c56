package types

// DecisionTier is the discrete outcome of the scoring model
type DecisionTier string

// Decision tiers, weakest to strongest
const (
	TierStrongPass   DecisionTier = "STRONG_PASS"
	TierPass         DecisionTier = "PASS"
	TierMaybe        DecisionTier = "MAYBE"
	TierInvest       DecisionTier = "INVEST"
	TierStrongInvest DecisionTier = "STRONG_INVEST"
)

// Breakdown keys for the four sub-scores
const (
	ScoreMarket          = "market"
	ScoreTeam            = "team"
	ScoreTraction        = "traction"
	ScoreFinancialHealth = "financial_health"
)

// Decision is the scoring model's verdict for a company
type Decision struct {
	Tier              DecisionTier   `json:"decision"`
	Recommendation    string         `json:"recommendation"`
	TotalScore        int            `json:"total_score"`
	Breakdown         map[string]int `json:"breakdown"`
	ReasonsToInvest   []string       `json:"reasons_to_invest"`
	ReasonsToPass     []string       `json:"reasons_to_pass"`
	CriticalQuestions []string       `json:"critical_questions"`
	NextSteps         []string       `json:"next_steps"`
}
