package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/investment-fit/internal/financial"
	"github.com/jonathan/investment-fit/internal/parsing"
	"github.com/jonathan/investment-fit/internal/types"
)

// Sub-score caps
const (
	MaxMarket          = 25
	MaxTeam            = 20
	MaxTraction        = 30
	MaxFinancialHealth = 25

	teamBaseline = 10
)

// enterpriseLogos mark a top customer as blue-chip validation
var enterpriseLogos = []string{
	"google", "microsoft", "amazon", "apple", "meta", "salesforce",
	"oracle", "ibm", "netflix", "uber", "airbnb",
}

// SubScore is one scored dimension plus the explanations it produced
type SubScore struct {
	Points            int      `json:"points"`
	ReasonsToInvest   []string `json:"reasons_to_invest,omitempty"`
	ReasonsToPass     []string `json:"reasons_to_pass,omitempty"`
	CriticalQuestions []string `json:"critical_questions,omitempty"`
}

func (s *SubScore) invest(format string, args ...any) {
	s.ReasonsToInvest = append(s.ReasonsToInvest, fmt.Sprintf(format, args...))
}

func (s *SubScore) pass(format string, args ...any) {
	s.ReasonsToPass = append(s.ReasonsToPass, fmt.Sprintf(format, args...))
}

func (s *SubScore) ask(format string, args ...any) {
	s.CriticalQuestions = append(s.CriticalQuestions, fmt.Sprintf(format, args...))
}

func (s *SubScore) clamp(limit int) {
	if s.Points < 0 {
		s.Points = 0
	}
	if s.Points > limit {
		s.Points = limit
	}
}

// Market scores market size, market growth and competitive density (0-25)
func Market(rec types.Record) SubScore {
	var s SubScore

	size, _ := rec.CalculatedNumber(financial.KeyMarketSize)
	switch {
	case size > 50e9:
		s.Points += 10
		s.invest("Very large addressable market")
	case size > 10e9:
		s.Points += 7
	case size > 1e9:
		s.Points += 4
	default:
		s.pass("Market may be too small")
	}

	growth, _ := rec.CalculatedNumber(financial.KeyMarketGrowth)
	switch {
	case growth > 20:
		s.Points += 10
		s.invest("Fast-growing market (%s%% CAGR)", num(growth))
	case growth > 10:
		s.Points += 6
	case growth < 5:
		s.pass("Slow-growing market")
	}

	competitors, known := competitorCount(rec)
	switch {
	case !known:
		s.ask("Who are the direct competitors?")
	case competitors < 3:
		s.Points += 5
		s.invest("Limited direct competition")
	case competitors > 10:
		s.ask("How will they differentiate in crowded market?")
	}

	s.clamp(MaxMarket)
	return s
}

// Team scores founder history, domain depth, team size and culture from a
// baseline of 10 (0-20)
func Team(rec types.Record) SubScore {
	s := SubScore{Points: teamBaseline}

	experience := strings.ToLower(textAt(rec, "founders_analysis.prior_startup_experience"))
	switch {
	case strings.Contains(experience, "exit") || strings.Contains(experience, "acquired"):
		s.Points += 5
		s.invest("Founders have successful exits")
	case strings.Contains(experience, "failed") || strings.Contains(experience, "shut down"):
		s.Points += 2
		s.ask("What did founders learn from previous failure?")
	case experience == "" || strings.Contains(experience, "none"):
		s.ask("First-time founders - execution risk")
	}

	if len([]rune(textAt(rec, "founders_analysis.key_competency"))) > 100 {
		s.Points += 5
	} else {
		s.Points += 2
	}

	funding, _ := rec.CalculatedNumber(financial.KeyTotalFunding)
	if employees, ok := rec.NumberAt("metrics.employees"); ok && employees > 0 && funding > 50e6 {
		switch {
		case employees < 50:
			s.Points += 5
			s.invest("Lean team despite significant funding")
		case employees > 200:
			s.pass("Large team may indicate inefficiency")
		}
	}

	redFlags := textAt(rec, "founders_analysis.red_flags")
	if redFlags != "" && !strings.Contains(strings.ToLower(redFlags), "none") {
		s.Points -= 10
		s.pass("Founder red flags: %s", strings.ToLower(redFlags))
	}

	if rating, ok := glassdoor(rec); ok {
		switch {
		case rating >= 4:
			s.Points += 5
			s.invest("Strong culture (Glassdoor: %s)", num(rating))
		case rating < 3:
			s.Points -= 5
			s.pass("Poor culture (Glassdoor: %s)", num(rating))
		}
	}

	s.clamp(MaxTeam)
	return s
}

// Traction scores revenue scale and growth, customer validation and
// retention (0-30)
func Traction(rec types.Record) SubScore {
	var s SubScore

	arr, _ := rec.CalculatedNumber(financial.KeyARR)
	growth, _ := rec.CalculatedNumber(financial.KeyRevenueGrowth)
	switch {
	case arr > 10e6 && growth > 100:
		s.Points += 15
		s.invest("Hypergrowth at scale: $%.1fM ARR, %s%% growth", arr/1e6, num(growth))
	case arr > 5e6 && growth > 50:
		s.Points += 12
		s.invest("Strong traction: $%.1fM ARR growing %s%%", arr/1e6, num(growth))
	case arr > 1e6:
		s.Points += 8
	case arr > 0:
		s.Points += 4
	default:
		s.pass("No revenue disclosed - very risky")
		s.ask("Why no revenue? When will revenue start?")
	}

	customers, _ := rec.CalculatedNumber(financial.KeyCustomerCount)
	switch {
	case hasEnterpriseCustomer(rec):
		s.Points += 10
		s.invest("Blue-chip enterprise customers provide validation")
	case customers > 100:
		s.Points += 7
	case customers > 10:
		s.Points += 4
	default:
		s.ask("How many paying customers? What's customer quality?")
	}

	ndr, _ := rec.CalculatedNumber(financial.KeyNetDollarRetention)
	switch {
	case ndr > 120:
		s.Points += 5
		s.invest("Strong expansion: %s%% NDR", num(ndr))
	case ndr > 100:
		s.Points += 3
	case ndr > 0 && ndr < 90:
		s.Points -= 5
		s.pass("Poor retention: %s%% NDR", num(ndr))
	}

	s.clamp(MaxTraction)
	return s
}

// FinancialHealth scores capital efficiency, unit economics and runway (0-25)
func FinancialHealth(rec types.Record) SubScore {
	var s SubScore

	if ratio, ok := positive(rec, financial.KeyCapitalEfficiency); ok {
		switch {
		case ratio < 2:
			s.Points += 10
			s.invest("Excellent capital efficiency: %sx", num(ratio))
		case ratio < 5:
			s.Points += 6
		case ratio < 10:
			s.Points += 2
			s.ask("Why raised %sx more than revenue?", num(ratio))
		default:
			s.Points -= 10
			s.pass("TERRIBLE capital efficiency: %sx funding-to-revenue", num(ratio))
			s.ask("Is this fundamentally broken or just very early?")
		}
	}

	if ratio, ok := positive(rec, financial.KeyLTVToCAC); ok {
		switch {
		case ratio > 5:
			s.Points += 10
			s.invest("Excellent unit economics: %sx LTV:CAC", num(ratio))
		case ratio > 3:
			s.Points += 7
		case ratio > 1:
			s.Points += 3
		default:
			s.Points -= 10
			s.pass("Broken economics: %sx LTV:CAC", num(ratio))
		}
	} else {
		s.ask("What are the unit economics (CAC, LTV, payback)?")
	}

	if months, ok := positive(rec, financial.KeyRunway); ok {
		switch {
		case months > 18:
			s.Points += 5
		case months > 12:
			s.Points += 3
		case months < 6:
			s.Points -= 5
			s.pass("Only %s months runway - desperate for capital", num(months))
		}
	} else {
		s.ask("What's the burn rate and runway?")
	}

	s.clamp(MaxFinancialHealth)
	return s
}

// positive reads a calculated metric that is present and non-zero
func positive(rec types.Record, key string) (float64, bool) {
	n, ok := rec.CalculatedNumber(key)
	return n, ok && n != 0
}

// textAt reads a string field, treating "no data" markers as empty.
// Lists are joined with commas.
func textAt(rec types.Record, path string) string {
	v, ok := rec.Lookup(path)
	if !ok {
		return ""
	}
	var parts []string
	if items, isList := v.AsList(); isList {
		for _, item := range items {
			if s, isString := item.AsString(); isString && !parsing.IsUnavailable(s) {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
	} else if s, isString := v.AsString(); isString && !parsing.IsUnavailable(s) {
		parts = append(parts, strings.TrimSpace(s))
	}
	return strings.Join(parts, ", ")
}

// competitorCount counts listed competitors. A string counts its comma-separated names.
func competitorCount(rec types.Record) (int, bool) {
	v, ok := rec.Lookup("competitors")
	if !ok {
		return 0, false
	}
	if items, isList := v.AsList(); isList {
		return len(items), true
	}
	s := textAt(rec, "competitors")
	if s == "" {
		return 0, false
	}
	return len(strings.Split(s, ",")), true
}

func glassdoor(rec types.Record) (float64, bool) {
	v, ok := rec.Lookup("glassdoor_rating")
	if !ok {
		return 0, false
	}
	if n, isNum := v.AsNumber(); isNum {
		return n, n > 0
	}
	s, _ := v.AsString()
	if i := strings.Index(s, "/"); i >= 0 {
		s = s[:i]
	}
	n, parsed := parsing.ParseNumber(s)
	return n, parsed && n > 0
}

func hasEnterpriseCustomer(rec types.Record) bool {
	v, ok := rec.Lookup("top_customers")
	if !ok {
		return false
	}
	var names []string
	if items, isList := v.AsList(); isList {
		for _, item := range items {
			names = append(names, strings.ToLower(item.String()))
		}
	} else if s, isString := v.AsString(); isString {
		names = append(names, strings.ToLower(s))
	}
	for _, name := range names {
		for _, logo := range enterpriseLogos {
			if strings.Contains(name, logo) {
				return true
			}
		}
	}
	return false
}

// num renders a metric with at most two decimals
func num(n float64) string {
	return types.FormatNumber(math.Round(n*100) / 100)
}
