// Package research gathers company data from a text-completion provider.
//
// The Aggregator fans out one request per topic partition, extracts JSON from
// each reply and merges the surviving partitions into one record. The Analyst
// adds qualitative commentary on an aggregated record.
package research

import (
	"sort"

	"github.com/jonathan/investment-fit/internal/llm"
	"github.com/jonathan/investment-fit/internal/types"
)

// Partition is one independently researched topic slice
type Partition struct {
	Name string `json:"name"`
	// PromptKey names the template in research.json
	PromptKey string        `json:"prompt_key"`
	Tier      llm.ModelTier `json:"tier"`
}

// Partition names
const (
	PartitionProfile    = "profile"
	PartitionFinancials = "financials"
	PartitionMarket     = "market"
	PartitionTeam       = "team"
)

// DefaultPartitions returns the standard partitions in merge order
func DefaultPartitions() []Partition {
	return []Partition{
		{Name: PartitionProfile, PromptKey: "profile", Tier: llm.TierStandard},
		{Name: PartitionFinancials, PromptKey: "financials", Tier: llm.TierStandard},
		{Name: PartitionMarket, PromptKey: "market", Tier: llm.TierStandard},
		{Name: PartitionTeam, PromptKey: "team", Tier: llm.TierStandard},
	}
}

// Query identifies the company to research
type Query struct {
	Company string `json:"company"`
	Sector  string `json:"sector"`
}

// PartitionOutcome records how one partition settled
type PartitionOutcome struct {
	Name     string          `json:"name"`
	Err      *PartitionError `json:"error,omitempty"`
	Strategy string          `json:"strategy,omitempty"`
	Degraded bool            `json:"degraded,omitempty"`
	Fields   []string        `json:"fields,omitempty"`

	data types.Record
}

// OK reports whether the partition contributed data
func (o PartitionOutcome) OK() bool {
	return o.Err == nil && o.data != nil
}

// Result is the merged record plus per-partition outcomes in partition order
type Result struct {
	Record     types.Record       `json:"record"`
	Partitions []PartitionOutcome `json:"partitions"`
}

// Failed returns the partitions that contributed nothing
func (r *Result) Failed() []PartitionOutcome {
	var failed []PartitionOutcome
	for _, p := range r.Partitions {
		if !p.OK() {
			failed = append(failed, p)
		}
	}
	return failed
}

// Succeeded counts partitions that contributed data
func (r *Result) Succeeded() int {
	return len(r.Partitions) - len(r.Failed())
}

func sortedKeys(rec types.Record) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
