package types

// FeedbackType classifies a feedback item
type FeedbackType string

// Feedback types
const (
	FeedbackPositive FeedbackType = "positive"
	FeedbackNegative FeedbackType = "negative"
	FeedbackNeutral  FeedbackType = "neutral"
)

// Valid reports whether t is one of the known feedback types
func (t FeedbackType) Valid() bool {
	switch t {
	case FeedbackPositive, FeedbackNegative, FeedbackNeutral:
		return true
	}
	return false
}

// FeedbackItem is one line of rule-engine output
type FeedbackItem struct {
	Text string       `json:"text"`
	Type FeedbackType `json:"type"`
}

// CountByType tallies feedback items per type
func CountByType(items []FeedbackItem) map[FeedbackType]int {
	counts := make(map[FeedbackType]int, 3)
	for _, item := range items {
		counts[item.Type]++
	}
	return counts
}
