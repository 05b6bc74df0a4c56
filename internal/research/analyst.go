package research

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/investment-fit/internal/extraction"
	"github.com/jonathan/investment-fit/internal/llm"
	"github.com/jonathan/investment-fit/internal/prompts"
	"github.com/jonathan/investment-fit/internal/types"
)

// Record keys written by the Analyst
const (
	QualitativeKey = "qualitative_analysis"
	ThesisKey      = "investment_thesis"
)

// analysisTemperature leaves room for varied commentary
const analysisTemperature float32 = 0.7

// contextFields are rendered into analysis prompts, in order
var contextFields = []struct {
	label string
	path  string
}{
	{"Company Name", "name"},
	{"Description", "description"},
	{"Sector", "category.sector"},
	{"Industry", "category.industry"},
	{"Business Model", "business_model"},
	{"Tags", "tags"},
	{"Location", "geography.city"},
	{"Country", "geography.country"},
	{"Year Founded", "foundedYear"},
	{"Team Size", "metrics.employees"},
	{"ARR", "calculated.arr_numeric"},
	{"Total Funding", "calculated.total_funding_numeric"},
	{"Revenue Growth (%)", "calculated.revenue_growth_rate"},
	{"Capital Efficiency Ratio", "calculated.capital_efficiency_ratio"},
	{"Market Size", "market_size"},
	{"Competitors", "competitors"},
	{"Top Customers", "top_customers"},
	{"Founders", "founders"},
	{"Prior Startup Experience", "founders_analysis.prior_startup_experience"},
}

// Analyst produces qualitative commentary on an aggregated record
type Analyst struct {
	client llm.Client
	model  string
	logger *zap.Logger
}

// NewAnalyst creates an Analyst. model may be empty to use the advanced tier.
func NewAnalyst(client llm.Client, model string, logger *zap.Logger) *Analyst {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyst{client: client, model: model, logger: logger}
}

// Qualitative returns swot_analysis, competitive_landscape, tam_analysis and key_highlights
func (a *Analyst) Qualitative(ctx context.Context, rec types.Record) (types.Record, error) {
	return a.analyze(ctx, "qualitative", map[string]string{"Context": BuildContext(rec)})
}

// Thesis returns an investment summary, key risks and a recommendation
func (a *Analyst) Thesis(ctx context.Context, rec types.Record, decision types.Decision) (types.Record, error) {
	return a.analyze(ctx, "thesis", map[string]string{
		"Context":  BuildContext(rec),
		"Decision": string(decision.Tier),
		"Score":    fmt.Sprintf("%d", decision.TotalScore),
	})
}

func (a *Analyst) analyze(ctx context.Context, key string, data map[string]string) (types.Record, error) {
	system, err := prompts.Get(prompts.AnalysisFile, key+"-system")
	if err != nil {
		return nil, err
	}
	user, err := prompts.Render(prompts.AnalysisFile, key, data)
	if err != nil {
		return nil, err
	}

	text, err := a.client.Complete(ctx, llm.Request{
		SystemPrompt: system,
		UserPrompt:   user,
		Tier:         llm.TierAdvanced,
		Model:        a.model,
		Temperature:  analysisTemperature,
		JSON:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("%s analysis failed: %w", key, err)
	}

	res := extraction.Extract(text)
	if !res.OK() {
		return nil, fmt.Errorf("%s analysis: %w", key, res.Err)
	}
	a.logger.Debug("analysis completed",
		zap.String("analysis", key),
		zap.String("strategy", res.Strategy),
		zap.Int("fields", len(res.Data)))
	return res.Data, nil
}

// BuildContext renders the record fields the analysis prompts rely on.
// Missing fields render as types.NotAvailable.
func BuildContext(rec types.Record) string {
	var sb strings.Builder
	for _, f := range contextFields {
		value := types.NotAvailable
		if v, ok := rec.Lookup(f.path); ok && !v.IsNull() {
			value = v.String()
		}
		sb.WriteString(f.label)
		sb.WriteString(": ")
		sb.WriteString(value)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
