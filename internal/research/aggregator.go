package research

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/investment-fit/internal/extraction"
	"github.com/jonathan/investment-fit/internal/llm"
	"github.com/jonathan/investment-fit/internal/prompts"
	"github.com/jonathan/investment-fit/internal/types"
)

// errorKey marks a reply in which the provider itself reported a failure
const errorKey = "error"

// Options configures an Aggregator
type Options struct {
	// Partitions defaults to DefaultPartitions
	Partitions []Partition
	// Timeout bounds each partition call; zero leaves it to the client
	Timeout time.Duration
	// Model overrides the tier model for every partition
	Model string
	// Finder looks up the company website when no partition found one
	Finder WebsiteFinder
	Logger *zap.Logger
}

// Aggregator researches a company across independent partitions
type Aggregator struct {
	client llm.Client
	opts   Options
	logger *zap.Logger
}

// NewAggregator creates an Aggregator that sends every partition to client
func NewAggregator(client llm.Client, opts Options) *Aggregator {
	if len(opts.Partitions) == 0 {
		opts.Partitions = DefaultPartitions()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{client: client, opts: opts, logger: logger}
}

// Aggregate runs every partition concurrently, waits for all of them to settle
// and merges the successful ones in partition order. A failed partition
// contributes nothing. Only a missing company name is an error.
func (a *Aggregator) Aggregate(ctx context.Context, q Query) (*Result, error) {
	company := strings.TrimSpace(q.Company)
	if company == "" {
		return nil, ErrMissingEntityName
	}
	q.Company = company

	system, err := prompts.Get(prompts.ResearchFile, "system")
	if err != nil {
		return nil, fmt.Errorf("failed to load research system prompt: %w", err)
	}

	outcomes := make([]PartitionOutcome, len(a.opts.Partitions))
	var g errgroup.Group
	for i, p := range a.opts.Partitions {
		g.Go(func() error {
			outcomes[i] = a.runPartition(ctx, p, system, q)
			return nil
		})
	}
	_ = g.Wait()

	merged := types.NewRecord()
	for _, o := range outcomes {
		if o.OK() {
			merged.Merge(o.data)
		}
	}

	applyDefaults(merged, company)
	a.fillWebsite(ctx, merged, company)

	a.logger.Info("research aggregated",
		zap.String("company", company),
		zap.Int("partitions", len(outcomes)),
		zap.Int("failed", countFailed(outcomes)),
		zap.Int("fields", len(merged)))

	return &Result{Record: merged, Partitions: outcomes}, nil
}

// runPartition performs one partition request. It never returns an error;
// failures are recorded on the outcome.
func (a *Aggregator) runPartition(ctx context.Context, p Partition, system string, q Query) (outcome PartitionOutcome) {
	outcome.Name = p.Name
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			outcome = PartitionOutcome{Name: p.Name, Err: &PartitionError{
				Partition: p.Name,
				Message:   fmt.Sprintf("panic: %v", r),
			}}
		}
		a.logOutcome(outcome, time.Since(start))
	}()

	user, err := prompts.Render(prompts.ResearchFile, p.PromptKey, map[string]string{
		"Company": q.Company,
		"Sector":  q.Sector,
	})
	if err != nil {
		outcome.Err = &PartitionError{Partition: p.Name, Message: "prompt unavailable", Cause: err}
		return outcome
	}

	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	text, err := a.client.Complete(ctx, llm.Request{
		SystemPrompt: system,
		UserPrompt:   user,
		Tier:         p.Tier,
		Model:        a.opts.Model,
		JSON:         true,
	})
	if err != nil {
		outcome.Err = &PartitionError{Partition: p.Name, Message: "completion failed", Cause: err}
		return outcome
	}

	res := extraction.Extract(text)
	if !res.OK() {
		outcome.Err = &PartitionError{Partition: p.Name, Message: "no structured data", Cause: res.Err}
		return outcome
	}
	if v, tagged := res.Data[errorKey]; tagged && v.Truthy() {
		outcome.Err = &PartitionError{Partition: p.Name, Message: "provider reported error: " + v.String()}
		return outcome
	}

	outcome.data = res.Data
	outcome.Strategy = res.Strategy
	outcome.Degraded = res.Degraded
	outcome.Fields = sortedKeys(res.Data)
	return outcome
}

func (a *Aggregator) logOutcome(o PartitionOutcome, elapsed time.Duration) {
	if o.Err != nil {
		a.logger.Warn("partition failed",
			zap.String("partition", o.Name),
			zap.Duration("elapsed", elapsed),
			zap.Error(o.Err))
		return
	}
	a.logger.Debug("partition completed",
		zap.String("partition", o.Name),
		zap.String("strategy", o.Strategy),
		zap.Bool("degraded", o.Degraded),
		zap.Int("fields", len(o.Fields)),
		zap.Duration("elapsed", elapsed))
}

// fillWebsite asks the Finder for a domain when research left it unavailable
func (a *Aggregator) fillWebsite(ctx context.Context, rec types.Record, company string) {
	if a.opts.Finder == nil || rec.StringAt("domain") != types.NotAvailable {
		return
	}
	site, err := a.opts.Finder.FindWebsite(ctx, company)
	if err != nil {
		a.logger.Debug("website lookup failed", zap.String("company", company), zap.Error(err))
		return
	}
	if domain := Domain(site); domain != "" {
		rec["domain"] = types.String(domain)
	}
}

func countFailed(outcomes []PartitionOutcome) int {
	n := 0
	for _, o := range outcomes {
		if !o.OK() {
			n++
		}
	}
	return n
}
