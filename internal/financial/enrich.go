package financial

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jonathan/investment-fit/internal/parsing"
	"github.com/jonathan/investment-fit/internal/types"
)

// Calculated metric keys
const (
	KeyARR                   = "arr_numeric"
	KeyPriorARR              = "prior_arr_numeric"
	KeyTotalFunding          = "total_funding_numeric"
	KeyCapitalEfficiency     = "capital_efficiency_ratio"
	KeyCapitalEfficiencyTier = "capital_efficiency_tier"
	KeyCapitalEfficiencyNote = "capital_efficiency_rating"
	KeyNetBurn               = "net_burn_numeric"
	KeyNetNewARR             = "net_new_arr_numeric"
	KeyBurnMultiple          = "burn_multiple"
	KeyBurnMultipleTier      = "burn_multiple_tier"
	KeyMonthlyBurn           = "monthly_burn_numeric"
	KeyCashOnHand            = "cash_on_hand_numeric"
	KeyRunway                = "runway_months"
	KeyRunwayTier            = "runway_health"
	KeyLTV                   = "ltv_numeric"
	KeyCAC                   = "cac_numeric"
	KeyLTVToCAC              = "ltv_cac_ratio"
	KeyLTVToCACTier          = "ltv_cac_tier"
	KeyPayback               = "payback_months"
	KeyPaybackTier           = "payback_tier"
	KeyRevenueGrowth         = "revenue_growth_rate"
	KeyRevenueGrowthTier     = "revenue_growth_tier"
	KeyMarketSize            = "market_size_numeric"
	KeyMarketGrowth          = "market_growth_rate"
	KeyCustomerCount         = "customer_count"
	KeyNetDollarRetention    = "net_dollar_retention"
	KeyCompanyAge            = "company_age_years"
	KeyWarnings              = "warnings"
)

// Candidate source fields, highest priority first
var (
	arrFields          = []string{"arr", "current_arr", "annual_recurring_revenue", "revenue", "current_revenue", "annual_revenue", "metrics.revenue"}
	priorARRFields     = []string{"prior_arr", "previous_arr", "prior_revenue", "revenue_last_year"}
	fundingFields      = []string{"total_funding", "total_funding_raised", "funding_total", "totalFunding", "metrics.total_funding"}
	netBurnFields      = []string{"net_burn", "annual_net_burn", "annual_burn"}
	netNewARRFields    = []string{"net_new_arr"}
	monthlyBurnFields  = []string{"monthly_burn", "monthly_burn_rate", "burn_rate"}
	cashFields         = []string{"cash_on_hand", "cash_balance", "cash"}
	ltvFields          = []string{"ltv", "lifetime_value", "customer_ltv"}
	cacFields          = []string{"cac", "customer_acquisition_cost"}
	paybackFields      = []string{"payback_months", "cac_payback_months", "payback_period"}
	growthFields       = []string{"revenue_growth", "yoy_growth", "growth_rate"}
	marketSizeFields   = []string{"market_size", "tam", "total_addressable_market"}
	marketGrowthFields = []string{"market_growth_rate", "market_cagr", "cagr"}
	customerFields     = []string{"customer_count", "number_of_customers", "customers"}
	ndrFields          = []string{"net_dollar_retention", "ndr"}
)

// Options configures Enrich
type Options struct {
	// GrowthPeriodMonths is the span between prior and current ARR
	GrowthPeriodMonths int
	// Now anchors company age; zero means time.Now
	Now time.Time
}

// DefaultOptions compares ARR year over year
func DefaultOptions() Options {
	return Options{GrowthPeriodMonths: 12}
}

// Enrich returns a copy of rec with a freshly computed calculated sub-mapping.
// Fields outside calculated are never modified. Metrics that cannot be
// computed are absent.
func Enrich(rec types.Record, opts Options) types.Record {
	if opts.GrowthPeriodMonths <= 0 {
		opts.GrowthPeriodMonths = 12
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	out := rec.Clone()
	if out == nil {
		out = types.NewRecord()
	}
	calc := map[string]types.Value{}
	var warnings []string

	set := func(key string, n float64) { calc[key] = types.Number(n) }
	label := func(key, s string) { calc[key] = types.String(s) }

	arr, hasARR := amount(rec, arrFields)
	if hasARR {
		set(KeyARR, arr)
	}
	prior, hasPrior := amount(rec, priorARRFields)
	if hasPrior {
		set(KeyPriorARR, prior)
	}
	funding, hasFunding := amount(rec, fundingFields)
	if hasFunding {
		set(KeyTotalFunding, funding)
	}

	if hasARR && hasFunding {
		if ratio, rating, ok := CapitalEfficiency(funding, arr); ok {
			set(KeyCapitalEfficiency, ratio)
			label(KeyCapitalEfficiencyTier, rating.Tier)
			label(KeyCapitalEfficiencyNote, rating.String())
			switch {
			case ratio > 10:
				warnings = append(warnings, fmt.Sprintf(
					"Capital efficiency %sx is very poor - raised $%.1fM for $%.1fM ARR",
					types.FormatNumber(round(ratio, 2)), funding/1e6, arr/1e6))
			case ratio > 5:
				warnings = append(warnings, fmt.Sprintf(
					"Capital efficiency %sx is high - funding well ahead of revenue",
					types.FormatNumber(round(ratio, 2))))
			}
		}
	}

	netBurn, hasNetBurn := amount(rec, netBurnFields)
	monthlyBurn, hasMonthly := amount(rec, monthlyBurnFields)
	if !hasNetBurn && hasMonthly {
		netBurn, hasNetBurn = monthlyBurn*12, true
	}
	if !hasMonthly && hasNetBurn {
		monthlyBurn, hasMonthly = netBurn/12, true
	}
	if hasNetBurn {
		set(KeyNetBurn, netBurn)
	}
	if hasMonthly {
		set(KeyMonthlyBurn, monthlyBurn)
	}

	netNewARR, hasNetNew := amount(rec, netNewARRFields)
	if !hasNetNew && hasARR && hasPrior {
		netNewARR, hasNetNew = arr-prior, true
	}
	if hasNetNew {
		set(KeyNetNewARR, netNewARR)
	}
	if hasNetBurn && hasNetNew {
		if multiple, rating, ok := BurnMultiple(netBurn, netNewARR); ok {
			set(KeyBurnMultiple, multiple)
			label(KeyBurnMultipleTier, rating.Tier)
			if rating.Tier == TierRedFlag {
				warnings = append(warnings, fmt.Sprintf("Burn multiple %sx - burning cash too fast", types.FormatNumber(round(multiple, 2))))
			}
		}
	}

	if cash, ok := amount(rec, cashFields); ok {
		set(KeyCashOnHand, cash)
		if hasMonthly {
			if months, rating, ok := Runway(cash, monthlyBurn); ok {
				set(KeyRunway, months)
				label(KeyRunwayTier, rating.Tier)
				if rating.Tier == TierCritical {
					warnings = append(warnings, fmt.Sprintf("Only %s months of runway - immediate funding required", types.FormatNumber(round(months, 1))))
				}
			}
		}
	}

	ltv, hasLTV := amount(rec, ltvFields)
	cac, hasCAC := amount(rec, cacFields)
	if hasLTV {
		set(KeyLTV, ltv)
	}
	if hasCAC {
		set(KeyCAC, cac)
	}
	if hasLTV && hasCAC {
		if ratio, rating, ok := LTVToCAC(ltv, cac); ok {
			set(KeyLTVToCAC, ratio)
			label(KeyLTVToCACTier, rating.Tier)
			switch rating.Tier {
			case TierCritical:
				warnings = append(warnings, "LTV < CAC means fundamentally broken economics")
			case TierPoor:
				warnings = append(warnings, "LTV:CAC below 3x target")
			}
		}
	}
	if payback, ok := count(rec, paybackFields); ok && payback > 0 {
		set(KeyPayback, payback)
		rating := RatePayback(payback)
		label(KeyPaybackTier, rating.Tier)
		if rating.Tier == TierPoor {
			warnings = append(warnings, fmt.Sprintf("%s month payback is concerning", types.FormatNumber(payback)))
		}
	}

	if hasARR && hasPrior {
		if rate, rating, ok := GrowthRate(arr, prior, opts.GrowthPeriodMonths); ok {
			set(KeyRevenueGrowth, rate)
			label(KeyRevenueGrowthTier, rating.Tier)
		}
	}
	if _, done := calc[KeyRevenueGrowth]; !done {
		if rate, ok := percent(rec, growthFields); ok {
			set(KeyRevenueGrowth, rate)
			label(KeyRevenueGrowthTier, RateGrowth(rate).Tier)
		}
	}

	if size, ok := amount(rec, marketSizeFields); ok {
		set(KeyMarketSize, size)
	}
	if rate, ok := percent(rec, marketGrowthFields); ok {
		set(KeyMarketGrowth, rate)
	}
	if n, ok := count(rec, customerFields); ok {
		set(KeyCustomerCount, n)
	}
	if ndr, ok := percent(rec, ndrFields); ok {
		set(KeyNetDollarRetention, ndr)
	}
	if age, ok := companyAge(rec, opts.Now); ok {
		set(KeyCompanyAge, age)
	}

	if len(warnings) > 0 {
		calc[KeyWarnings] = types.Strings(warnings...)
	}
	out[types.CalculatedKey] = types.Map(calc)
	return out
}

// Warnings returns the advisory strings written by Enrich
func Warnings(rec types.Record) []string {
	v, ok := rec.Calculated()[KeyWarnings]
	if !ok {
		return nil
	}
	items, _ := v.AsList()
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.String())
	}
	return out
}

// amount resolves the first candidate that normalizes to a currency amount
func amount(rec types.Record, paths []string) (float64, bool) {
	for _, path := range paths {
		v, ok := rec.Lookup(path)
		if !ok {
			continue
		}
		switch v.Kind() {
		case types.KindNumber:
			n, _ := v.AsNumber()
			if finite(n) {
				return n, true
			}
		case types.KindString:
			s, _ := v.AsString()
			if n, ok := parsing.FindAmount(s); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// percent resolves the first candidate that parses as a percentage
func percent(rec types.Record, paths []string) (float64, bool) {
	for _, path := range paths {
		v, ok := rec.Lookup(path)
		if !ok {
			continue
		}
		switch v.Kind() {
		case types.KindNumber:
			n, _ := v.AsNumber()
			if finite(n) {
				return n, true
			}
		case types.KindString:
			s, _ := v.AsString()
			if n, ok := parsing.ParsePercent(s); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// count resolves the first candidate holding a count. Lists count their items.
func count(rec types.Record, paths []string) (float64, bool) {
	for _, path := range paths {
		v, ok := rec.Lookup(path)
		if !ok {
			continue
		}
		switch v.Kind() {
		case types.KindNumber:
			n, _ := v.AsNumber()
			if finite(n) {
				return n, true
			}
		case types.KindString:
			s, _ := v.AsString()
			s = strings.TrimSuffix(strings.TrimSpace(strings.ToLower(s)), "months")
			if n, ok := parsing.FindAmount(s); ok {
				return n, true
			}
		case types.KindList:
			items, _ := v.AsList()
			if len(items) > 0 {
				return float64(len(items)), true
			}
		}
	}
	return 0, false
}

// companyAge is whole years since foundedYear
func companyAge(rec types.Record, now time.Time) (float64, bool) {
	year, ok := count(rec, []string{"foundedYear", "founded_year"})
	if !ok || year < 1800 || year > float64(now.Year()) {
		return 0, false
	}
	return float64(now.Year()) - year, true
}

func round(f float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(f*scale) / scale
}
