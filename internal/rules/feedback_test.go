package rules

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonathan/investment-fit/internal/types"
)

func fb(text string, typ types.FeedbackType) types.FeedbackItem {
	return types.FeedbackItem{Text: text, Type: typ}
}

func idealRecord() types.Record {
	rec := types.Record{
		"category":        types.Map(map[string]types.Value{"sector": types.String("SaaS")}),
		"metrics":         types.Map(map[string]types.Value{"employees": types.Number(50)}),
		"business_model":  types.String("B2B"),
		"foundedYear":     types.Number(2020),
		"founders":        types.Strings("John Doe", "Jane Doe"),
		"key_investors":   types.Strings("VC Firm A", "Angel B"),
		"funding_history": types.Strings("Seed round of $1M"),
	}
	rec.Set("calculated.company_age_years", types.Number(5))
	return rec
}

func TestDefaultRules_IdealCase(t *testing.T) {
	items := EvaluateFile("", idealRecord(), "SaaS", nil)

	assert.Equal(t, []types.FeedbackItem{
		fb("Sector Fit: Aligns with the target sector.", types.FeedbackPositive),
		fb("Stage Fit: Team size of ~50 is within the preferred Seed-to-Series-A range.", types.FeedbackPositive),
		fb("Business Model: Appears to be a B2B or enterprise model.", types.FeedbackPositive),
		fb("Company Age: Founded 5 years ago, which is a reasonable age.", types.FeedbackPositive),
		fb("Founders: Founder information is available (2 found).", types.FeedbackPositive),
		fb("Investors: Key investor information is available.", types.FeedbackPositive),
		fb("Funding: The company has a known funding history.", types.FeedbackPositive),
	}, items)
}

func TestDefaultRules_SectorMismatch(t *testing.T) {
	rec := types.Record{"category": types.Map(map[string]types.Value{"sector": types.String("Healthcare")})}

	items := EvaluateFile("", rec, "SaaS", nil)

	assert.Equal(t, []types.FeedbackItem{
		fb("Sector Mismatch: Company's sector does not align with the primary target.", types.FeedbackNegative),
	}, items)
}

func TestDefaultRules_StageEdgeCases(t *testing.T) {
	small := EvaluateFile("", employees(3), "SaaS", nil)
	assert.Contains(t, small, fb("Stage Check: Team size of ~3 is outside the typical investment range.", types.FeedbackNegative))

	large := EvaluateFile("", employees(300), "SaaS", nil)
	assert.Contains(t, large, fb("Stage Check: Team size of ~300 is outside the typical investment range.", types.FeedbackNegative))
}

func TestDefaultRules_MissingAndUnavailableData(t *testing.T) {
	rec := types.Record{
		"category":        types.Map(map[string]types.Value{}),
		"metrics":         types.Map(map[string]types.Value{"employees": types.String("N/A")}),
		"business_model":  types.String("n/a"),
		"foundedYear":     types.String("N/A"),
		"founders":        types.List(),
		"key_investors":   types.List(),
		"funding_history": types.List(),
	}

	items := EvaluateFile("", rec, "FinTech", nil)

	assert.Equal(t, []types.FeedbackItem{
		fb("Stage Check: Team size data is unavailable to estimate stage.", types.FeedbackNeutral),
		fb("Business Model: The business model is unclear or not specified.", types.FeedbackNegative),
		fb("Company Age: Founding year is not available.", types.FeedbackNeutral),
		fb("Founders: No founder information was found.", types.FeedbackNegative),
		fb("Investors: No key investor information was found. This may be expected for early-stage companies.", types.FeedbackNeutral),
		fb("Funding: No funding history was found. This may be expected for seed-stage companies.", types.FeedbackNeutral),
	}, items, "an absent sector is skipped and unavailable data gets only the unavailable items")
}

func TestDefaultRules_NormalizedUnavailable(t *testing.T) {
	rec := types.Record{
		"metrics":        types.Map(map[string]types.Value{"employees": types.String("N/A")}),
		"business_model": types.String("N/A"),
	}

	items := EvaluateFile("", rec, "SaaS", nil)

	assert.Equal(t, []types.FeedbackItem{
		fb("Stage Check: Team size data is unavailable to estimate stage.", types.FeedbackNeutral),
		fb("Business Model: The business model is unclear or not specified.", types.FeedbackNegative),
	}, items)
}

func TestDefaultRules_NoFounderRedFlagsList(t *testing.T) {
	rec := types.Record{
		"founders_analysis": types.Map(map[string]types.Value{"red_flags": types.Strings("None identified")}),
	}
	assert.Empty(t, EvaluateFile("", rec, "SaaS", nil))

	rec = types.Record{
		"founders_analysis": types.Map(map[string]types.Value{"red_flags": types.Strings("Pending litigation")}),
	}
	items := EvaluateFile("", rec, "SaaS", nil)
	require.Len(t, items, 1)
	assert.Equal(t, types.FeedbackNegative, items[0].Type)
}

func TestDefaultRules_BusinessModelInformational(t *testing.T) {
	items := EvaluateFile("", types.Record{"business_model": types.String("Direct-to-Consumer (D2C)")}, "e-commerce", nil)

	assert.Equal(t, []types.FeedbackItem{
		fb("Business Model: The model is described as 'Direct-to-Consumer (D2C)'.", types.FeedbackNeutral),
	}, items)
}

func TestDefaultRules_CompanyAgeOutsideRange(t *testing.T) {
	for _, age := range []float64{1, 15} {
		rec := types.Record{}
		rec.Set("calculated.company_age_years", types.Number(age))

		items := EvaluateFile("", rec, "SaaS", nil)

		require.Len(t, items, 1)
		assert.Equal(t, types.FeedbackNegative, items[0].Type)
		assert.Contains(t, items[0].Text, "outside the typical 2-10 year range")
	}
}

func TestDefaultRules_RedFlagsAndSignals(t *testing.T) {
	rec := types.Record{
		"founders_analysis":    types.Map(map[string]types.Value{"red_flags": types.String("Pending litigation against CEO")}),
		"profitability_status": types.String("Profitable"),
		"category":             types.Map(map[string]types.Value{"sector": types.String("Payments")}),
		"regulatory_licenses":  types.Strings("RBI Payment Aggregator"),
	}
	rec.Set("calculated.capital_efficiency_ratio", types.Number(12.5))
	rec.Set("calculated.runway_months", types.Number(4))
	rec.Set("calculated.ltv_cac_ratio", types.Number(6))
	rec.Set("calculated.net_dollar_retention", types.Number(130))

	items := EvaluateFile("", rec, "payments", nil)

	assert.Equal(t, []types.FeedbackItem{
		fb("Sector Fit: Aligns with the target sector.", types.FeedbackPositive),
		fb("Red Flag: Founder concerns reported: Pending litigation against CEO", types.FeedbackNegative),
		fb("Red Flag: Raised 12.5x more capital than ARR.", types.FeedbackNegative),
		fb("Red Flag: Only 4 months of runway remain.", types.FeedbackNegative),
		fb("Signal: Strong unit economics with 6x LTV:CAC.", types.FeedbackPositive),
		fb("Signal: Customers expand strongly (130% NDR).", types.FeedbackPositive),
		fb("Signal: The company reports being profitable.", types.FeedbackPositive),
		fb("Signal: Holds regulatory licenses required in its sector.", types.FeedbackPositive),
	}, items)
}

func TestEvaluateFile_ConfigurationFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	path := filepath.Join(t.TempDir(), "missing.json")

	items := EvaluateFile(path, idealRecord(), "SaaS", zap.New(core))

	require.Len(t, items, 1)
	assert.Equal(t, types.FeedbackNegative, items[0].Type)
	assert.Equal(t, "Configuration Error: could not load rules from "+path+": failed to read rule set", items[0].Text)
	assert.Equal(t, 1, logs.Len())
}

func TestEvaluateWithConfig(t *testing.T) {
	items := EvaluateWithConfig(nil, nil, idealRecord(), "SaaS", nil)
	require.Len(t, items, 1)
	assert.Contains(t, items[0].Text, "no rule set")

	items = EvaluateWithConfig(nil, errors.New("disk on fire"), idealRecord(), "SaaS", nil)
	assert.Equal(t, []types.FeedbackItem{fb("Configuration Error: disk on fire", types.FeedbackNegative)}, items)

	rs, err := Default()
	require.NoError(t, err)
	items = EvaluateWithConfig(rs, nil, idealRecord(), "SaaS", zap.NewNop())
	assert.Len(t, items, 7)
}
