// Package pipeline provides the high-level orchestration for a company analysis.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/investment-fit/internal/financial"
	"github.com/jonathan/investment-fit/internal/research"
	"github.com/jonathan/investment-fit/internal/rules"
	"github.com/jonathan/investment-fit/internal/scoring"
	"github.com/jonathan/investment-fit/internal/types"
)

// Step names reported through ProgressEvent
const (
	StepResearch    = "research"
	StepMetrics     = "metrics"
	StepQualitative = "qualitative"
	StepRules       = "rules"
	StepScoring     = "scoring"
	StepThesis      = "thesis"
)

// Step categories
const (
	CategoryResearch = "research"
	CategoryAnalysis = "analysis"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Researcher produces the aggregated record for a company
type Researcher interface {
	Aggregate(ctx context.Context, q research.Query) (*research.Result, error)
}

// Commentator writes the optional qualitative sections of a report
type Commentator interface {
	Qualitative(ctx context.Context, rec types.Record) (types.Record, error)
	Thesis(ctx context.Context, rec types.Record, decision types.Decision) (types.Record, error)
}

// Options holds configuration for running the pipeline
type Options struct {
	// RulesPath is a JSON or YAML rule set; empty uses the embedded default
	RulesPath          string
	GrowthPeriodMonths int
	// Now anchors derived metrics; zero means time.Now
	Now        time.Time
	OnProgress ProgressCallback
	Logger     *zap.Logger
}

// Report is everything one analysis produced
type Report struct {
	ID          uuid.UUID                   `json:"id"`
	Company     string                      `json:"company"`
	Sector      string                      `json:"sector"`
	GeneratedAt time.Time                   `json:"generated_at"`
	Record      types.Record                `json:"record"`
	Partitions  []research.PartitionOutcome `json:"partitions,omitempty"`
	Feedback    []types.FeedbackItem        `json:"feedback"`
	Decision    types.Decision              `json:"decision"`
	// Warnings are the advisory strings from the derived metrics
	Warnings []string `json:"warnings,omitempty"`
	// Issues lists non-fatal failures such as a skipped analysis call
	Issues []string `json:"issues,omitempty"`
}

// Analyzer runs research, metrics, rules, scoring and commentary in order
type Analyzer struct {
	researcher  Researcher
	commentator Commentator
	opts        Options
	logger      *zap.Logger
}

// NewAnalyzer creates an Analyzer. commentator may be nil to skip the
// qualitative and thesis calls.
func NewAnalyzer(researcher Researcher, commentator Commentator, opts Options) *Analyzer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{researcher: researcher, commentator: commentator, opts: opts, logger: logger}
}

// Run analyzes one company. A missing company name halts the run; partition,
// rule set and commentary failures degrade into the report.
func (a *Analyzer) Run(ctx context.Context, company, sector string) (*Report, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return nil, research.ErrMissingEntityName
	}

	report := newReport(company, sector, a.opts.Now)
	logger := a.logger.With(zap.String("run_id", report.ID.String()), zap.String("company", company))

	logger.Info("analysis started", zap.String("sector", sector))
	result, err := a.researcher.Aggregate(ctx, research.Query{Company: company, Sector: sector})
	if err != nil {
		return nil, fmt.Errorf("research failed: %w", err)
	}
	report.Partitions = result.Partitions
	for _, failed := range result.Failed() {
		if failed.Err != nil {
			report.Issues = append(report.Issues, failed.Err.Error())
		}
	}
	a.emit(report, StepResearch, CategoryResearch,
		fmt.Sprintf("Researched %d/%d partitions", result.Succeeded(), len(result.Partitions)), result.Partitions)

	report.Record = a.enrich(result.Record, report)

	if a.commentator != nil {
		qualitative, err := a.commentator.Qualitative(ctx, report.Record)
		if err != nil {
			logger.Warn("qualitative analysis skipped", zap.Error(err))
			report.Issues = append(report.Issues, err.Error())
		} else {
			report.Record[research.QualitativeKey] = types.Map(qualitative)
			a.emit(report, StepQualitative, CategoryAnalysis, "Generated qualitative analysis", qualitative)
		}
	}

	a.evaluate(report, logger)

	if a.commentator != nil {
		thesis, err := a.commentator.Thesis(ctx, report.Record, report.Decision)
		if err != nil {
			logger.Warn("investment thesis skipped", zap.Error(err))
			report.Issues = append(report.Issues, err.Error())
		} else {
			report.Record[research.ThesisKey] = types.Map(thesis)
			a.emit(report, StepThesis, CategoryAnalysis, "Generated investment thesis", thesis)
		}
	}

	logger.Info("analysis completed",
		zap.String("decision", string(report.Decision.Tier)),
		zap.Int("score", report.Decision.TotalScore),
		zap.Int("feedback", len(report.Feedback)),
		zap.Int("issues", len(report.Issues)))
	return report, nil
}

// Assess runs metrics, rules and scoring over an existing record without
// any research or commentary
func Assess(rec types.Record, sector string, opts Options) *Report {
	a := NewAnalyzer(nil, nil, opts)
	company := strings.TrimSpace(rec.StringAt("name"))
	report := newReport(company, sector, opts.Now)
	report.Record = a.enrich(rec, report)
	a.evaluate(report, a.logger.With(zap.String("run_id", report.ID.String())))
	return report
}

func newReport(company, sector string, now time.Time) *Report {
	if now.IsZero() {
		now = time.Now()
	}
	return &Report{
		ID:          uuid.New(),
		Company:     company,
		Sector:      sector,
		GeneratedAt: now.UTC(),
		Feedback:    []types.FeedbackItem{},
	}
}

func (a *Analyzer) enrich(rec types.Record, report *Report) types.Record {
	enriched := financial.Enrich(rec, financial.Options{
		GrowthPeriodMonths: a.opts.GrowthPeriodMonths,
		Now:                a.opts.Now,
	})
	report.Warnings = financial.Warnings(enriched)
	a.emit(report, StepMetrics, CategoryAnalysis,
		fmt.Sprintf("Derived %d metrics", len(enriched.Calculated())), enriched.Calculated())
	return enriched
}

// evaluate runs the rule engine and the scoring model. A rule set that
// fails to load yields one feedback item and scoring still runs.
func (a *Analyzer) evaluate(report *Report, logger *zap.Logger) {
	report.Feedback = rules.EvaluateFile(a.opts.RulesPath, report.Record, report.Sector, logger)
	a.emit(report, StepRules, CategoryAnalysis,
		fmt.Sprintf("Evaluated rules into %d feedback items", len(report.Feedback)), report.Feedback)

	report.Decision = scoring.Decide(report.Record)
	a.emit(report, StepScoring, CategoryAnalysis,
		fmt.Sprintf("Scored %d/100: %s", report.Decision.TotalScore, report.Decision.Tier), report.Decision)
}

// emit calls the progress callback if configured
func (a *Analyzer) emit(report *Report, step, category, message string, content any) {
	if a.opts.OnProgress == nil {
		return
	}
	a.opts.OnProgress(ProgressEvent{
		Step:     step,
		Category: category,
		Message:  message,
		RunID:    report.ID.String(),
		Content:  content,
	})
}
