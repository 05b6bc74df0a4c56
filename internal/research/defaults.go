package research

import (
	"strconv"
	"strings"

	"github.com/jonathan/investment-fit/internal/parsing"
	"github.com/jonathan/investment-fit/internal/types"
)

// displayFields always exist after aggregation, defaulting to types.NotAvailable
var displayFields = []string{
	"description",
	"domain",
	"geography.city",
	"geography.country",
	"category.sector",
	"category.industry",
}

// numericFields are converted from numeric strings such as "1,200" or "~50"
var numericFields = []string{"metrics.employees", "foundedYear"}

// applyDefaults fills the entity name and display sentinels, normalizes
// unavailable markers to types.NotAvailable and coerces numeric fields.
func applyDefaults(rec types.Record, company string) {
	normalizeUnavailable(rec)

	if name, ok := rec["name"].AsString(); !ok || strings.TrimSpace(name) == "" || name == types.NotAvailable {
		rec["name"] = types.String(company)
	}

	for _, path := range displayFields {
		v, ok := rec.Lookup(path)
		if !ok || v.IsNull() {
			rec.Set(path, types.String(types.NotAvailable))
			continue
		}
		if s, isString := v.AsString(); isString && strings.TrimSpace(s) == "" {
			rec.Set(path, types.String(types.NotAvailable))
		}
	}

	for _, path := range numericFields {
		coerceNumber(rec, path)
	}
}

// coerceNumber replaces a numeric string at path with a number
func coerceNumber(rec types.Record, path string) {
	v, ok := rec.Lookup(path)
	if !ok {
		return
	}
	s, isString := v.AsString()
	if !isString {
		return
	}
	if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		rec.Set(path, types.Number(n))
		return
	}
	if n, ok := parsing.ParseNumber(s); ok {
		rec.Set(path, types.Number(n))
	}
}

// normalizeUnavailable rewrites "Not Disclosed", "Unknown" and similar markers
// to types.NotAvailable, recursing into maps and lists.
func normalizeUnavailable(rec types.Record) {
	for k, v := range rec {
		rec[k] = normalizeValue(v)
	}
}

func normalizeValue(v types.Value) types.Value {
	switch v.Kind() {
	case types.KindString:
		s, _ := v.AsString()
		if parsing.IsUnavailable(s) {
			return types.String(types.NotAvailable)
		}
	case types.KindList:
		items, _ := v.AsList()
		out := make([]types.Value, 0, len(items))
		for _, item := range items {
			// drop placeholder entries so list lengths stay meaningful
			if s, ok := item.AsString(); ok && parsing.IsUnavailable(s) {
				continue
			}
			out = append(out, normalizeValue(item))
		}
		return types.List(out...)
	case types.KindMap:
		m, _ := v.AsMap()
		out := make(map[string]types.Value, len(m))
		for k, child := range m {
			out[k] = normalizeValue(child)
		}
		return types.Map(out)
	}
	return v
}
