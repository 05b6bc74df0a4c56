package extraction

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/investment-fit/internal/types"
)

// fencePattern captures the language tag and body of ``` fenced blocks
var fencePattern = regexp.MustCompile("(?s)```([A-Za-z0-9_+-]*)[ \\t]*\\r?\\n?(.*?)```")

// jsonFenceTags are fence languages whose body is meant to be JSON
var jsonFenceTags = map[string]bool{
	"":           true,
	"json":       true,
	"json5":      true,
	"jsonc":      true,
	"javascript": true,
	"js":         true,
}

// scrapedFields are recovered by regex when no JSON parses
var scrapedFields = []string{"name", "description", "foundedYear", "revenue", "total_funding"}

// numericScrapedFields are converted to numbers when the scraped text is numeric
var numericScrapedFields = map[string]bool{"foundedYear": true}

var fieldPatterns = buildFieldPatterns(scrapedFields)

func buildFieldPatterns(fields []string) map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(fields))
	for _, field := range fields {
		patterns[field] = regexp.MustCompile(fmt.Sprintf(
			`(?i)["']?\b%s["']?\s*[:=]\s*(?:"([^"\n]*)"|'([^'\n]*)'|([^,\n}\]]+))`,
			regexp.QuoteMeta(field)))
	}
	return patterns
}

// fromFencedBlocks parses every JSON-looking fenced block and merges them in order
func fromFencedBlocks(text string) types.Record {
	var merged types.Record
	for _, match := range fencePattern.FindAllStringSubmatch(text, -1) {
		tag := strings.ToLower(match[1])
		body := strings.TrimSpace(match[2])
		if !jsonFenceTags[tag] && !strings.HasPrefix(body, "{") {
			continue
		}
		for _, obj := range parseObjects(body) {
			merged = mergeInto(merged, obj)
		}
	}
	return merged
}

// fromWholeText parses the entire text as one strict JSON object
func fromWholeText(text string) types.Record {
	rec, ok := decodeObject(strings.TrimSpace(text))
	if !ok {
		return nil
	}
	return rec
}

// fromBraceScan parses every balanced top-level object, repairing where needed
func fromBraceScan(text string) types.Record {
	var merged types.Record
	for _, c := range topLevelObjects(text) {
		if rec, ok := parseObject(c); ok {
			merged = mergeInto(merged, rec)
		}
	}
	return merged
}

// fromFieldScrape pulls a handful of known fields out of free text
func fromFieldScrape(text string) types.Record {
	var rec types.Record
	for _, field := range scrapedFields {
		match := fieldPatterns[field].FindStringSubmatch(text)
		if match == nil {
			continue
		}
		raw := strings.TrimSpace(firstNonEmpty(match[1], match[2], match[3]))
		if raw == "" {
			continue
		}
		if rec == nil {
			rec = types.NewRecord()
		}
		if numericScrapedFields[field] {
			if n, err := strconv.ParseFloat(raw, 64); err == nil {
				rec[field] = types.Number(n)
				continue
			}
		}
		rec[field] = types.String(raw)
	}
	return rec
}

// parseObjects parses text as one object, or failing that as a run of top-level objects
func parseObjects(text string) []types.Record {
	if rec, ok := parseObject(text); ok {
		return []types.Record{rec}
	}
	var out []types.Record
	for _, c := range topLevelObjects(text) {
		if rec, ok := parseObject(c); ok {
			out = append(out, rec)
		}
	}
	return out
}

// parseObject decodes a JSON object, retrying once after repair
func parseObject(text string) (types.Record, bool) {
	if rec, ok := decodeObject(text); ok {
		return rec, true
	}
	repaired := repairJSON(text)
	if repaired == text {
		return nil, false
	}
	return decodeObject(repaired)
}

func decodeObject(text string) (types.Record, bool) {
	if !strings.HasPrefix(text, "{") {
		return nil, false
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, false
	}
	return types.RecordFromMap(raw), true
}

// topLevelObjects returns each span that opens a '{' at depth zero and closes back to zero.
// String literals (double or single quoted) inside an object are skipped so braces in
// text values do not move the depth counter. An object left open at end of input is
// closed synthetically.
func topLevelObjects(text string) []string {
	var (
		out      []string
		stack    []rune
		start    = -1
		quote    rune
		escaped  bool
		runes    = []rune(text)
		inString = false
	)

	for i, r := range runes {
		if len(stack) == 0 {
			if r == '{' {
				start = i
				stack = append(stack, '}')
			}
			continue
		}

		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote:
				inString = false
			}
			continue
		}

		switch r {
		case '"', '\'':
			inString = true
			quote = r
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if stack[len(stack)-1] == r {
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				out = append(out, string(runes[start:i+1]))
				start = -1
			}
		}
	}

	if start >= 0 && len(stack) > 0 {
		out = append(out, closeTruncated(string(runes[start:]), stack, inString, quote))
	}
	return out
}

// closeTruncated completes an object cut off mid-stream
func closeTruncated(fragment string, stack []rune, inString bool, quote rune) string {
	var sb strings.Builder
	sb.WriteString(fragment)
	if inString {
		sb.WriteRune(quote)
	}
	trimmed := strings.TrimRight(sb.String(), " \t\r\n")
	switch {
	case strings.HasSuffix(trimmed, ":"):
		trimmed += " null"
	case strings.HasSuffix(trimmed, ","):
		trimmed = strings.TrimSuffix(trimmed, ",")
	}
	sb.Reset()
	sb.WriteString(trimmed)
	for i := len(stack) - 1; i >= 0; i-- {
		sb.WriteRune(stack[i])
	}
	return sb.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
