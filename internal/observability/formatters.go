// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/investment-fit/internal/financial"
	"github.com/jonathan/investment-fit/internal/research"
	"github.com/jonathan/investment-fit/internal/rules"
	"github.com/jonathan/investment-fit/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// summaryFields are the profile fields shown in the company box
var summaryFields = []struct {
	label string
	path  string
}{
	{"Company", "name"},
	{"Domain", "domain"},
	{"Sector", "category.sector"},
	{"Model", "business_model"},
	{"Founded", "foundedYear"},
	{"Team", "metrics.employees"},
	{"Country", "geography.country"},
}

// metricRows pairs a calculated metric with its tier label, in display order
var metricRows = []struct {
	label string
	value string
	tier  string
}{
	{"ARR", financial.KeyARR, ""},
	{"Total funding", financial.KeyTotalFunding, ""},
	{"Capital efficiency", financial.KeyCapitalEfficiency, financial.KeyCapitalEfficiencyTier},
	{"Burn multiple", financial.KeyBurnMultiple, financial.KeyBurnMultipleTier},
	{"Runway (months)", financial.KeyRunway, financial.KeyRunwayTier},
	{"LTV:CAC", financial.KeyLTVToCAC, financial.KeyLTVToCACTier},
	{"Payback (months)", financial.KeyPayback, financial.KeyPaybackTier},
	{"Revenue growth %", financial.KeyRevenueGrowth, financial.KeyRevenueGrowthTier},
	{"Market size", financial.KeyMarketSize, ""},
	{"Market growth %", financial.KeyMarketGrowth, ""},
	{"NDR %", financial.KeyNetDollarRetention, ""},
	{"Company age", financial.KeyCompanyAge, ""},
}

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// writeList writes up to limit bullet items followed by a remainder line
func writeList(sb *strings.Builder, marker string, items []string, limit int) {
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  %s %s\n", marker, items[i]))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
}

// PrintPartitions outputs how each research partition settled.
func (p *Printer) PrintPartitions(outcomes []research.PartitionOutcome) {
	if len(outcomes) == 0 {
		return
	}

	var sb strings.Builder
	for _, o := range outcomes {
		if o.Err != nil {
			sb.WriteString(fmt.Sprintf("✗ %-11s %s\n", o.Name, o.Err.Message))
			continue
		}
		line := fmt.Sprintf("✓ %-11s %d fields via %s", o.Name, len(o.Fields), o.Strategy)
		if o.Degraded {
			line += " (degraded)"
		}
		sb.WriteString(line + "\n")
	}

	p.printBox("RESEARCH PARTITIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCompany outputs the headline profile fields of a record.
func (p *Printer) PrintCompany(rec types.Record) {
	if len(rec) == 0 {
		return
	}

	var sb strings.Builder
	for _, f := range summaryFields {
		value := types.NotAvailable
		if v, ok := rec.Lookup(f.path); ok && !v.IsNull() {
			value = v.String()
		}
		sb.WriteString(fmt.Sprintf("%-9s %s\n", f.label+":", value))
	}

	if desc := rec.StringAt("description"); desc != "" && desc != types.NotAvailable {
		sb.WriteString("\n")
		sb.WriteString(desc)
		sb.WriteString("\n")
	}

	p.printBox("COMPANY PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMetrics outputs the derived metrics and their tiers.
func (p *Printer) PrintMetrics(rec types.Record) {
	calc := rec.Calculated()
	if len(calc) == 0 {
		return
	}

	var sb strings.Builder
	for _, row := range metricRows {
		v, ok := calc[row.value]
		if !ok {
			continue
		}
		line := fmt.Sprintf("%-19s %s", row.label, v.String())
		if tier, ok := calc[row.tier]; ok {
			line += fmt.Sprintf("  [%s]", tier.String())
		}
		sb.WriteString(line + "\n")
	}

	if warnings := financial.Warnings(rec); len(warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		writeList(&sb, "⚠", warnings, maxItemsToShow)
	}

	if sb.Len() == 0 {
		return
	}
	p.printBox("DERIVED METRICS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFeedback outputs rule-engine feedback with a per-type tally.
func (p *Printer) PrintFeedback(items []types.FeedbackItem) {
	if len(items) == 0 {
		return
	}

	counts := types.CountByType(items)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d positive, %d negative, %d neutral\n\n",
		counts[types.FeedbackPositive], counts[types.FeedbackNegative], counts[types.FeedbackNeutral]))

	for _, item := range items {
		sb.WriteString(fmt.Sprintf("%s %s\n", feedbackMarker(item.Type), item.Text))
	}

	p.printBox("RULE FEEDBACK", strings.TrimSuffix(sb.String(), "\n"))
}

func feedbackMarker(t types.FeedbackType) string {
	switch t {
	case types.FeedbackPositive:
		return "+"
	case types.FeedbackNegative:
		return "-"
	default:
		return "·"
	}
}

// PrintTrace outputs every rule with its result or skip reason.
func (p *Printer) PrintTrace(evals []rules.Evaluation) {
	if len(evals) == 0 {
		return
	}

	var sb strings.Builder
	for _, e := range evals {
		switch {
		case !e.Applied:
			sb.WriteString(fmt.Sprintf("○ %s (%s)\n", e.RuleID, e.SkipReason))
		case e.Item == nil:
			sb.WriteString(fmt.Sprintf("● %s = %t, no message\n", e.RuleID, e.Result))
		default:
			sb.WriteString(fmt.Sprintf("● %s = %t\n", e.RuleID, e.Result))
		}
	}

	p.printBox("RULE TRACE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDecision outputs the scoring verdict with its breakdown and explanations.
func (p *Printer) PrintDecision(d types.Decision) {
	if d.Tier == "" {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Decision: %s (%d/100)\n", d.Tier, d.TotalScore))
	sb.WriteString(d.Recommendation)
	sb.WriteString("\n\n")

	keys := make([]string, 0, len(d.Breakdown))
	for k := range d.Breakdown {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("  %-17s %d\n", k, d.Breakdown[k]))
	}

	if len(d.ReasonsToInvest) > 0 {
		sb.WriteString("\nReasons to invest:\n")
		writeList(&sb, "+", d.ReasonsToInvest, maxItemsToShow)
	}
	if len(d.ReasonsToPass) > 0 {
		sb.WriteString("\nReasons to pass:\n")
		writeList(&sb, "-", d.ReasonsToPass, maxItemsToShow)
	}
	if len(d.CriticalQuestions) > 0 {
		sb.WriteString("\nCritical questions:\n")
		writeList(&sb, "?", d.CriticalQuestions, 3)
	}

	p.printBox("INVESTMENT DECISION", strings.TrimSuffix(sb.String(), "\n"))
}
