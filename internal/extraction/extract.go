// Package extraction recovers structured JSON objects from noisy language-model output.
//
// Strategies run in a fixed order and the first one that yields data wins:
// fenced code blocks, the whole text, balanced top-level objects, and finally
// a regex scrape of a few well-known fields.
package extraction

import (
	"strings"

	"github.com/jonathan/investment-fit/internal/types"
)

// Strategy names recorded on a successful Result
const (
	StrategyFencedBlocks = "fenced_blocks"
	StrategyWholeText    = "whole_text"
	StrategyBraceScan    = "brace_scan"
	StrategyFieldScrape  = "field_scrape"
)

// Result is either a parsed record or an extraction failure, never both
type Result struct {
	Data     types.Record     `json:"data,omitempty"`
	Err      *ExtractionError `json:"error,omitempty"`
	Strategy string           `json:"strategy,omitempty"`
	// Degraded marks data recovered by field scraping rather than JSON parsing
	Degraded bool `json:"degraded,omitempty"`
}

// OK reports whether the result carries data
func (r Result) OK() bool {
	return r.Err == nil && r.Data != nil
}

// strategy attempts one extraction approach. It returns nil when it finds nothing.
type strategy struct {
	name     string
	degraded bool
	run      func(text string) types.Record
}

var cascade = []strategy{
	{name: StrategyFencedBlocks, run: fromFencedBlocks},
	{name: StrategyWholeText, run: fromWholeText},
	{name: StrategyBraceScan, run: fromBraceScan},
	{name: StrategyFieldScrape, degraded: true, run: fromFieldScrape},
}

// Extract runs the strategy cascade over text
func Extract(text string) Result {
	if strings.TrimSpace(text) == "" {
		return failure("input is empty")
	}

	for _, s := range cascade {
		if data := s.run(text); len(data) > 0 {
			return Result{Data: data, Strategy: s.name, Degraded: s.degraded}
		}
	}

	return failure("no JSON object or known field could be recovered")
}

func failure(cause string) Result {
	return Result{Err: &ExtractionError{Cause: cause}}
}

// mergeInto copies fields from src into dst, later keys overwriting earlier ones
func mergeInto(dst, src types.Record) types.Record {
	if dst == nil {
		dst = types.NewRecord()
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
