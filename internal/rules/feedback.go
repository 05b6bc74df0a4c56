package rules

import (
	"errors"

	"go.uber.org/zap"

	"github.com/jonathan/investment-fit/internal/types"
)

// ConfigurationFeedback is the single item reported in place of rule output
// when the rule set cannot be loaded
func ConfigurationFeedback(err error) []types.FeedbackItem {
	text := "Configuration Error: " + err.Error()
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		text = "Configuration Error: could not load rules from " + cfgErr.Source + ": " + cfgErr.Message
	}
	return []types.FeedbackItem{{Text: text, Type: types.FeedbackNegative}}
}

// EvaluateFile loads the rule set at path (the embedded default when empty)
// and evaluates it. Configuration failures never escape: they become one
// negative feedback item.
func EvaluateFile(path string, rec types.Record, sector string, logger *zap.Logger) []types.FeedbackItem {
	rs, err := Load(path)
	return EvaluateWithConfig(rs, err, rec, sector, logger)
}

// EvaluateWithConfig evaluates an already loaded rule set, or reports loadErr
func EvaluateWithConfig(rs *types.RuleSet, loadErr error, rec types.Record, sector string, logger *zap.Logger) []types.FeedbackItem {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loadErr != nil {
		logger.Error("rule set unavailable, skipping rule evaluation", zap.Error(loadErr))
		return ConfigurationFeedback(loadErr)
	}
	if rs == nil {
		err := &ConfigurationError{Source: DefaultSource, Message: "no rule set"}
		logger.Error("rule set unavailable, skipping rule evaluation", zap.Error(err))
		return ConfigurationFeedback(err)
	}
	items := Evaluate(rs, rec, sector)
	counts := types.CountByType(items)
	logger.Debug("rules evaluated",
		zap.Int("rules", len(rs.All())),
		zap.Int("items", len(items)),
		zap.Int("positive", counts[types.FeedbackPositive]),
		zap.Int("negative", counts[types.FeedbackNegative]),
		zap.Int("neutral", counts[types.FeedbackNeutral]),
	)
	return items
}
