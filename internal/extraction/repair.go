package extraction

import (
	"strings"
	"unicode"
)

// pythonLiterals are bare words some models emit in place of JSON literals
var pythonLiterals = map[string]string{
	"None":  "null",
	"True":  "true",
	"False": "false",
}

// repairJSON fixes common model malformations: single-quoted strings,
// bare identifier keys, trailing commas and Python literals.
func repairJSON(text string) string {
	return fixTokens(normalizeQuotes(text))
}

// normalizeQuotes rewrites single-quoted strings as double-quoted ones.
// A single quote only opens a string where a JSON value or key could start,
// so apostrophes in bare words are left alone.
func normalizeQuotes(text string) string {
	var (
		sb       strings.Builder
		inDouble bool
		inSingle bool
		escaped  bool
		last     rune
	)
	sb.Grow(len(text))

	for _, r := range text {
		switch {
		case inDouble:
			sb.WriteRune(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inDouble = false
				last = r
			}
		case inSingle:
			switch {
			case escaped:
				if r != '\'' {
					sb.WriteRune('\\')
				}
				sb.WriteRune(r)
				escaped = false
			case r == '\\':
				escaped = true
			case r == '\'':
				sb.WriteRune('"')
				inSingle = false
				last = '"'
			case r == '"':
				sb.WriteString(`\"`)
			default:
				sb.WriteRune(r)
			}
		case r == '"':
			inDouble = true
			sb.WriteRune(r)
		case r == '\'' && opensValue(last):
			inSingle = true
			sb.WriteRune('"')
		default:
			sb.WriteRune(r)
			if !unicode.IsSpace(r) {
				last = r
			}
		}
	}
	return sb.String()
}

// fixTokens quotes bare keys, drops trailing commas and maps Python literals.
// It expects double-quoted strings.
func fixTokens(text string) string {
	var (
		sb       strings.Builder
		runes    = []rune(text)
		inString bool
		escaped  bool
		last     rune
	)
	sb.Grow(len(text) + 16)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if inString {
			sb.WriteRune(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
				last = r
			}
			continue
		}

		switch {
		case r == '"':
			inString = true
			sb.WriteRune(r)
		case r == ',':
			next := nextSignificant(runes, i+1)
			if next < len(runes) && (runes[next] == '}' || runes[next] == ']') {
				continue
			}
			sb.WriteRune(r)
			last = r
		case isIdentStart(r):
			end := i
			for end < len(runes) && isIdentPart(runes[end]) {
				end++
			}
			ident := string(runes[i:end])
			next := nextSignificant(runes, end)
			switch {
			case next < len(runes) && runes[next] == ':' && (last == '{' || last == ','):
				sb.WriteString(`"` + ident + `"`)
			case pythonLiterals[ident] != "":
				sb.WriteString(pythonLiterals[ident])
			default:
				sb.WriteString(ident)
			}
			last = runes[end-1]
			i = end - 1
		default:
			sb.WriteRune(r)
			if !unicode.IsSpace(r) {
				last = r
			}
		}
	}
	return sb.String()
}

func opensValue(last rune) bool {
	switch last {
	case 0, '{', '[', ',', ':':
		return true
	}
	return false
}

func nextSignificant(runes []rune, from int) int {
	for from < len(runes) && unicode.IsSpace(runes[from]) {
		from++
	}
	return from
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
