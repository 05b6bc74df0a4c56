package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/investment-fit/internal/financial"
	"github.com/jonathan/investment-fit/internal/llm"
	"github.com/jonathan/investment-fit/internal/research"
	"github.com/jonathan/investment-fit/internal/types"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeResearcher struct {
	result *research.Result
	err    error
	query  research.Query
}

func (f *fakeResearcher) Aggregate(_ context.Context, q research.Query) (*research.Result, error) {
	f.query = q
	return f.result, f.err
}

type fakeCommentator struct {
	qualitativeErr error
	thesisErr      error
	sawDecision    types.Decision
	sawCalculated  bool
}

func (f *fakeCommentator) Qualitative(_ context.Context, rec types.Record) (types.Record, error) {
	f.sawCalculated = len(rec.Calculated()) > 0
	if f.qualitativeErr != nil {
		return nil, f.qualitativeErr
	}
	return types.Record{"key_highlights": types.Strings("Profitable unit economics")}, nil
}

func (f *fakeCommentator) Thesis(_ context.Context, _ types.Record, d types.Decision) (types.Record, error) {
	f.sawDecision = d
	if f.thesisErr != nil {
		return nil, f.thesisErr
	}
	return types.Record{"investment_recommendation": types.String("Take the meeting")}, nil
}

func researchedRecord() types.Record {
	return types.Record{
		"name":          types.String("Acme Pay"),
		"category":      types.Map(map[string]types.Value{"sector": types.String("FinTech Payments")}),
		"metrics":       types.Map(map[string]types.Value{"employees": types.Number(40)}),
		"foundedYear":   types.Number(2019),
		"arr":           types.String("$5M"),
		"total_funding": types.String("$60M"),
		"founders":      types.Strings("A. Patel"),
	}
}

func TestRun_FullReport(t *testing.T) {
	researcher := &fakeResearcher{result: &research.Result{
		Record: researchedRecord(),
		Partitions: []research.PartitionOutcome{
			{Name: research.PartitionProfile},
			{Name: research.PartitionMarket, Err: &research.PartitionError{Partition: research.PartitionMarket, Message: "completion failed"}},
		},
	}}
	commentator := &fakeCommentator{}

	var steps []string
	var runIDs []string
	analyzer := NewAnalyzer(researcher, commentator, Options{
		Now: fixedNow,
		OnProgress: func(e ProgressEvent) {
			steps = append(steps, e.Step)
			runIDs = append(runIDs, e.RunID)
		},
	})

	report, err := analyzer.Run(context.Background(), "  Acme Pay ", "fintech")
	require.NoError(t, err)

	assert.Equal(t, research.Query{Company: "Acme Pay", Sector: "fintech"}, researcher.query)
	assert.NotEqual(t, uuid.Nil, report.ID)
	assert.Equal(t, "Acme Pay", report.Company)
	assert.Equal(t, fixedNow, report.GeneratedAt)
	assert.Equal(t, []string{StepResearch, StepMetrics, StepQualitative, StepRules, StepScoring, StepThesis}, steps)
	for _, id := range runIDs {
		assert.Equal(t, report.ID.String(), id)
	}

	ratio, ok := report.Record.CalculatedNumber(financial.KeyCapitalEfficiency)
	require.True(t, ok)
	assert.Equal(t, 12.0, ratio)
	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[0], "very poor")

	assert.Contains(t, report.Feedback, types.FeedbackItem{Text: "Sector Fit: Aligns with the target sector.", Type: types.FeedbackPositive})
	assert.Contains(t, report.Feedback, types.FeedbackItem{Text: "Red Flag: Raised 12x more capital than ARR.", Type: types.FeedbackNegative})

	assert.NotEmpty(t, report.Decision.Tier)
	assert.True(t, commentator.sawCalculated, "commentary sees derived metrics")
	assert.Equal(t, report.Decision, commentator.sawDecision)
	assert.True(t, report.Record.Has(research.QualitativeKey+".key_highlights"))
	assert.Equal(t, "Take the meeting", report.Record.StringAt(research.ThesisKey+".investment_recommendation"))

	require.Len(t, report.Issues, 1)
	assert.Contains(t, report.Issues[0], "completion failed")
}

func TestRun_MissingCompany(t *testing.T) {
	researcher := &fakeResearcher{}
	analyzer := NewAnalyzer(researcher, nil, Options{})

	report, err := analyzer.Run(context.Background(), "   ", "SaaS")

	assert.ErrorIs(t, err, research.ErrMissingEntityName)
	assert.Nil(t, report)
	assert.Empty(t, researcher.query.Company, "research is never started")
}

func TestRun_ResearchError(t *testing.T) {
	analyzer := NewAnalyzer(&fakeResearcher{err: errors.New("prompt missing")}, nil, Options{})

	_, err := analyzer.Run(context.Background(), "Acme", "SaaS")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "research failed")
}

func TestRun_CommentaryFailuresAreNonFatal(t *testing.T) {
	researcher := &fakeResearcher{result: &research.Result{Record: researchedRecord()}}
	commentator := &fakeCommentator{
		qualitativeErr: errors.New("qualitative analysis failed: rate limited"),
		thesisErr:      errors.New("thesis analysis failed: timeout"),
	}

	report, err := NewAnalyzer(researcher, commentator, Options{Now: fixedNow}).Run(context.Background(), "Acme Pay", "fintech")
	require.NoError(t, err)

	assert.False(t, report.Record.Has(research.QualitativeKey))
	assert.False(t, report.Record.Has(research.ThesisKey))
	assert.Equal(t, []string{
		"qualitative analysis failed: rate limited",
		"thesis analysis failed: timeout",
	}, report.Issues)
	assert.NotEmpty(t, report.Decision.Tier, "scoring still runs")
}

func TestRun_BrokenRuleSetStillScores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("global_rules: [\n"), 0644))

	researcher := &fakeResearcher{result: &research.Result{Record: researchedRecord()}}
	report, err := NewAnalyzer(researcher, nil, Options{RulesPath: path, Now: fixedNow}).Run(context.Background(), "Acme Pay", "fintech")
	require.NoError(t, err)

	require.Len(t, report.Feedback, 1)
	assert.Equal(t, types.FeedbackNegative, report.Feedback[0].Type)
	assert.True(t, strings.HasPrefix(report.Feedback[0].Text, "Configuration Error:"))
	assert.NotZero(t, report.Decision.TotalScore)
}

func TestAssess(t *testing.T) {
	rec := researchedRecord()

	report := Assess(rec, "fintech", Options{Now: fixedNow})

	assert.Equal(t, "Acme Pay", report.Company)
	assert.Empty(t, report.Partitions)
	assert.NotEmpty(t, report.Feedback)
	assert.NotEmpty(t, report.Decision.Breakdown)
	assert.False(t, rec.Has("calculated"), "input is not mutated")
	age, ok := report.Record.CalculatedNumber(financial.KeyCompanyAge)
	require.True(t, ok)
	assert.Equal(t, 6.0, age)
}

// echoClient returns the same reply for every prompt
type echoClient struct{ reply string }

func (c echoClient) Complete(context.Context, llm.Request) (string, error) { return c.reply, nil }
func (c echoClient) GetModel(llm.ModelTier) string                         { return "echo" }
func (c echoClient) Close() error                                          { return nil }

func TestRun_WithAggregator(t *testing.T) {
	client := echoClient{reply: "Result:\n```json\n" +
		`{"name": "Acme Pay", "arr": "$5M", "total_funding": "$8M", "runway_months": 4}` + "\n```"}
	agg := research.NewAggregator(client, research.Options{})

	report, err := NewAnalyzer(agg, nil, Options{Now: fixedNow}).Run(context.Background(), "Acme Pay", "fintech")
	require.NoError(t, err)

	assert.Len(t, report.Partitions, len(research.DefaultPartitions()))
	assert.Empty(t, report.Issues)
	ratio, ok := report.Record.CalculatedNumber(financial.KeyCapitalEfficiency)
	require.True(t, ok)
	assert.Equal(t, 1.6, ratio)
	assert.Equal(t, types.NotAvailable, report.Record.StringAt("domain"), "display defaults are applied")
}
