package financial

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/investment-fit/internal/types"
)

var fixedNow = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

func enrich(rec types.Record) types.Record {
	return Enrich(rec, Options{GrowthPeriodMonths: 12, Now: fixedNow})
}

func calcNumber(t *testing.T, rec types.Record, key string) float64 {
	t.Helper()
	n, ok := rec.CalculatedNumber(key)
	require.True(t, ok, "missing calculated.%s", key)
	return n
}

func calcString(rec types.Record, key string) string {
	v := rec.Calculated()[key]
	s, _ := v.AsString()
	return s
}

func TestEnrich_CapitalEfficiencyRedFlagBoundary(t *testing.T) {
	rec := enrich(types.Record{
		"total_funding": types.Number(50_000_000),
		"arr":           types.Number(5_000_000),
	})

	assert.Equal(t, 10.0, calcNumber(t, rec, KeyCapitalEfficiency))
	assert.Equal(t, TierRedFlag, calcString(rec, KeyCapitalEfficiencyTier))
	require.Len(t, Warnings(rec), 1)
	assert.Contains(t, Warnings(rec)[0], "high")
}

func TestEnrich_ParsesStrings(t *testing.T) {
	rec := enrich(types.Record{
		"total_funding": types.String("$25M"),
		"revenue":       types.String("5 million"),
	})

	assert.Equal(t, 25e6, calcNumber(t, rec, KeyTotalFunding))
	assert.Equal(t, 5e6, calcNumber(t, rec, KeyARR))
	assert.Equal(t, 5.0, calcNumber(t, rec, KeyCapitalEfficiency))
	assert.Equal(t, TierConcerning, calcString(rec, KeyCapitalEfficiencyTier), "5x is the first concerning ratio")
	assert.Empty(t, Warnings(rec), "exactly 5x is not above the warning threshold")
}

func TestEnrich_WarnsAboveFiveX(t *testing.T) {
	rec := enrich(types.Record{
		"total_funding": types.String("$30M"),
		"arr":           types.String("$5M"),
	})

	assert.Equal(t, TierConcerning, calcString(rec, KeyCapitalEfficiencyTier))
	require.Len(t, Warnings(rec), 1)
	assert.Contains(t, Warnings(rec)[0], "6x is high")
}

func TestEnrich_CandidatePriority(t *testing.T) {
	rec := enrich(types.Record{
		"arr":     types.String("Not Disclosed"),
		"revenue": types.String("$2M"),
	})

	assert.Equal(t, 2e6, calcNumber(t, rec, KeyARR))
}

func TestEnrich_DoesNotMutateInput(t *testing.T) {
	input := types.Record{
		"arr":           types.String("$10M"),
		"total_funding": types.String("$150M"),
		"metrics":       types.Map(map[string]types.Value{"employees": types.Number(40)}),
	}
	before := input.Clone()

	out := enrich(input)

	assert.Equal(t, before, input)
	assert.False(t, input.Has(types.CalculatedKey))
	assert.Equal(t, input["metrics"], out["metrics"])
	assert.Len(t, Warnings(out), 1)
	assert.Contains(t, Warnings(out)[0], "very poor")
}

func TestEnrich_ReplacesStaleCalculated(t *testing.T) {
	rec := types.Record{"arr": types.Number(1e6)}
	rec.Set("calculated.stale", types.Number(1))

	out := enrich(rec)

	_, stale := out.Calculated()["stale"]
	assert.False(t, stale)
	assert.Equal(t, 1e6, calcNumber(t, out, KeyARR))
}

func TestEnrich_UndefinedMetricsAreAbsent(t *testing.T) {
	rec := enrich(types.Record{
		"arr":           types.Number(0),
		"total_funding": types.Number(10e6),
		"monthly_burn":  types.Number(0),
		"cash_on_hand":  types.String("$3M"),
		"ltv":           types.Number(100),
	})

	calc := rec.Calculated()
	for _, key := range []string{KeyCapitalEfficiency, KeyRunway, KeyLTVToCAC, KeyBurnMultiple, KeyRevenueGrowth} {
		_, ok := calc[key]
		assert.False(t, ok, key)
	}
	assert.Equal(t, 3e6, calcNumber(t, rec, KeyCashOnHand))
}

func TestEnrich_EmptyRecord(t *testing.T) {
	rec := enrich(types.Record{})

	require.True(t, rec.Has(types.CalculatedKey))
	assert.Empty(t, rec.Calculated())
	assert.Nil(t, Warnings(rec))
}

func TestEnrich_BurnAndRunway(t *testing.T) {
	rec := enrich(types.Record{
		"arr":          types.String("$8M"),
		"prior_arr":    types.String("$4M"),
		"monthly_burn": types.String("$500K"),
		"cash_on_hand": types.String("$2.5M"),
	})

	assert.Equal(t, 4e6, calcNumber(t, rec, KeyNetNewARR))
	assert.Equal(t, 6e6, calcNumber(t, rec, KeyNetBurn))
	assert.Equal(t, 1.5, calcNumber(t, rec, KeyBurnMultiple))
	assert.Equal(t, TierGood, calcString(rec, KeyBurnMultipleTier))

	assert.Equal(t, 5.0, calcNumber(t, rec, KeyRunway))
	assert.Equal(t, TierCritical, calcString(rec, KeyRunwayTier))
	assert.Contains(t, Warnings(rec), "Only 5 months of runway - immediate funding required")

	assert.Equal(t, 100.0, calcNumber(t, rec, KeyRevenueGrowth))
	assert.Equal(t, TierExcellent, calcString(rec, KeyRevenueGrowthTier))
}

func TestEnrich_UnitEconomics(t *testing.T) {
	rec := enrich(types.Record{
		"ltv":            types.String("$12,000"),
		"cac":            types.String("$6,000"),
		"payback_months": types.String("30 months"),
	})

	assert.Equal(t, 2.0, calcNumber(t, rec, KeyLTVToCAC))
	assert.Equal(t, TierPoor, calcString(rec, KeyLTVToCACTier))
	assert.Equal(t, 30.0, calcNumber(t, rec, KeyPayback))
	assert.Equal(t, TierPoor, calcString(rec, KeyPaybackTier))
	assert.Equal(t, []string{"LTV:CAC below 3x target", "30 month payback is concerning"}, Warnings(rec))
}

func TestEnrich_ReportedGrowthFallback(t *testing.T) {
	rec := enrich(types.Record{
		"arr":            types.String("$3M"),
		"revenue_growth": types.String("85%"),
	})

	assert.Equal(t, 85.0, calcNumber(t, rec, KeyRevenueGrowth))
	assert.Equal(t, TierGood, calcString(rec, KeyRevenueGrowthTier))
}

func TestEnrich_GrowthAnnualized(t *testing.T) {
	rec := Enrich(types.Record{
		"arr":       types.Number(1.2e6),
		"prior_arr": types.Number(1e6),
	}, Options{GrowthPeriodMonths: 6, Now: fixedNow})

	assert.InDelta(t, 40.0, calcNumber(t, rec, KeyRevenueGrowth), 1e-9)
	assert.Equal(t, TierAcceptable, calcString(rec, KeyRevenueGrowthTier))
}

func TestEnrich_MarketAndTraction(t *testing.T) {
	rec := enrich(types.Record{
		"market_size":          types.String("$25B (2024)"),
		"market_growth_rate":   types.String("18% CAGR"),
		"customers":            types.Strings("Google", "Uber", "Stripe"),
		"net_dollar_retention": types.String("125%"),
		"foundedYear":          types.Number(2019),
	})

	assert.Equal(t, 25e9, calcNumber(t, rec, KeyMarketSize))
	assert.Equal(t, 18.0, calcNumber(t, rec, KeyMarketGrowth))
	assert.Equal(t, 3.0, calcNumber(t, rec, KeyCustomerCount))
	assert.Equal(t, 125.0, calcNumber(t, rec, KeyNetDollarRetention))
	assert.Equal(t, 6.0, calcNumber(t, rec, KeyCompanyAge))
}

func TestEnrich_CompanyAgeIgnoresNonsense(t *testing.T) {
	for _, year := range []types.Value{types.String("Unknown"), types.Number(3020), types.Number(12)} {
		rec := enrich(types.Record{"foundedYear": year})
		_, ok := rec.CalculatedNumber(KeyCompanyAge)
		assert.False(t, ok)
	}
}
