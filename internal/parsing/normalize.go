// Package parsing normalizes human-written magnitudes ("$10M", "5 crore", "25%") into numbers.
package parsing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// multipliers maps magnitude suffixes to their scale. Regional Indian units are included.
var multipliers = map[string]float64{
	"crore":    1e7,
	"crores":   1e7,
	"cr":       1e7,
	"lakh":     1e5,
	"lakhs":    1e5,
	"lac":      1e5,
	"lacs":     1e5,
	"trillion": 1e12,
	"tn":       1e12,
	"billion":  1e9,
	"bn":       1e9,
	"b":        1e9,
	"million":  1e6,
	"mn":       1e6,
	"mm":       1e6,
	"m":        1e6,
	"thousand": 1e3,
	"k":        1e3,
}

// unavailableValues are sentinels that mean "no number here"
var unavailableValues = map[string]bool{
	"n/a":           true,
	"na":            true,
	"not disclosed": true,
	"not available": true,
	"undisclosed":   true,
	"unknown":       true,
	"none":          true,
	"-":             true,
}

var (
	// currencyCodes are stripped as whole words before the compact pass
	currencyCodes = regexp.MustCompile(`(?i)\b(usd|inr|eur|gbp|rs\.?)(\s|$)`)
	// strippable removes symbols, grouping commas, whitespace and approximation marks
	strippable = regexp.MustCompile(`[$€£₹¥,~\s]`)
	// magnitudePattern is a number with an optional suffix word
	magnitudePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?|\.\d+)([a-z]*)\+?$`)
	// percentPattern matches a leading signed number with an optional percent sign
	percentPattern = regexp.MustCompile(`^([+-]?\d+(?:\.\d+)?)\s*%?`)
)

// ParseAmount converts a magnitude string into base units.
// "$10M" -> 10,000,000; "2.5 billion" -> 2,500,000,000; "1 lakh" -> 100,000.
func ParseAmount(value string) (float64, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return 0, &ParseError{Input: value, Message: "empty value"}
	}
	if unavailableValues[trimmed] {
		return 0, &ParseError{Input: value, Message: "value not available"}
	}

	compact := currencyCodes.ReplaceAllString(trimmed, "$2")
	compact = strippable.ReplaceAllString(compact, "")
	compact = strings.TrimPrefix(compact, "approx.")
	compact = strings.TrimPrefix(compact, "approx")
	// abbreviations such as "Cr." keep their period
	compact = strings.TrimSuffix(compact, ".")

	match := magnitudePattern.FindStringSubmatch(compact)
	if match == nil {
		return parsePlain(value, compact)
	}

	num, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, &ParseError{Input: value, Message: "invalid number", Cause: err}
	}

	// The whole suffix must be a known unit, so "billion" never degrades to "b".
	if suffix := match[2]; suffix != "" {
		scale, ok := multipliers[suffix]
		if !ok {
			return 0, &ParseError{Input: value, Message: "unknown magnitude suffix " + strconv.Quote(suffix)}
		}
		num *= scale
	}

	if math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, &ParseError{Input: value, Message: "value is not finite"}
	}
	return num, nil
}

// parsePlain handles unit-less forms the magnitude pattern rejects, such as "5e6"
func parsePlain(value, compact string) (float64, error) {
	if compact == "" || strings.Trim(compact, "0123456789.e+-") != "" || strings.ContainsAny(compact[:1], "e+-") {
		return 0, &ParseError{Input: value, Message: "not a recognizable amount"}
	}
	num, err := strconv.ParseFloat(compact, 64)
	if err != nil {
		return 0, &ParseError{Input: value, Message: "not a recognizable amount", Cause: err}
	}
	if math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, &ParseError{Input: value, Message: "value is not finite"}
	}
	return num, nil
}

// ParseCurrency is the total form of ParseAmount: it reports false for any
// input that does not normalize to a finite non-negative number.
func ParseCurrency(value string) (float64, bool) {
	num, err := ParseAmount(value)
	if err != nil {
		return 0, false
	}
	return num, true
}

// ParseNumber parses a count such as "1,200", "~50", "50+" or "1.2k"
func ParseNumber(value string) (float64, bool) {
	return ParseCurrency(value)
}

// ParsePercent parses a percentage such as "25%", "-3.5 %" or "120% NDR".
// The result is in percent units (25 for "25%").
func ParsePercent(value string) (float64, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" || unavailableValues[trimmed] {
		return 0, false
	}
	trimmed = strings.TrimPrefix(trimmed, "~")
	match := percentPattern.FindStringSubmatch(trimmed)
	if match == nil {
		return 0, false
	}
	num, err := strconv.ParseFloat(match[1], 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, false
	}
	return num, true
}

// amountInText finds the first currency-looking amount inside longer text
var amountInText = regexp.MustCompile(`(?i)[$€£₹¥]?\s?\d[\d,]*(?:\.\d+)?\s?(crores?|cr|lakhs?|lacs?|trillion|tn|billion|bn|million|mn|mm|thousand|b|m|k)?\b`)

// FindAmount parses the first amount embedded in free text, such as
// "$25B (2024 estimate)" or "around 1.2 million users". It tries ParseCurrency
// on the whole value first.
func FindAmount(value string) (float64, bool) {
	if num, ok := ParseCurrency(value); ok {
		return num, true
	}
	match := amountInText.FindString(value)
	if match == "" {
		return 0, false
	}
	return ParseCurrency(match)
}

// IsUnavailable reports whether s is one of the "no data" sentinels such as
// "N/A" or "Not Disclosed"
func IsUnavailable(s string) bool {
	return unavailableValues[strings.ToLower(strings.TrimSpace(s))]
}
