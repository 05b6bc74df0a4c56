// Package rules loads declarative investment rule sets and evaluates them
// against enriched company records.
package rules

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/investment-fit/internal/schemas"
	"github.com/jonathan/investment-fit/internal/types"
)

//go:embed default_rules.json
var defaultRules []byte

// DefaultSource names the embedded rule set in errors and logs
const DefaultSource = "(default)"

// Format is the encoding of a rule set document
type Format string

// Supported formats
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the format from a file extension. Unknown extensions are JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Default parses the embedded rule set
func Default() (*types.RuleSet, error) {
	return Parse(defaultRules, FormatJSON, DefaultSource)
}

// DefaultDocument returns the embedded rule set document
func DefaultDocument() []byte {
	out := make([]byte, len(defaultRules))
	copy(out, defaultRules)
	return out
}

// Load reads and validates a rule set file. An empty path loads the embedded default.
func Load(path string) (*types.RuleSet, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Source: path, Message: "failed to read rule set", Cause: err}
	}
	return Parse(data, FormatForPath(path), path)
}

// Document reads a rule set file and returns it as JSON without validating it.
// An empty path returns the embedded default.
func Document(path string) ([]byte, error) {
	if path == "" {
		return DefaultDocument(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Source: path, Message: "failed to read rule set", Cause: err}
	}
	return toJSON(data, FormatForPath(path), path)
}

// Parse decodes a rule set document and validates it in three passes:
// the JSON Schema, the struct tags, then cross-rule checks
func Parse(data []byte, format Format, source string) (*types.RuleSet, error) {
	document, err := toJSON(data, format, source)
	if err != nil {
		return nil, err
	}

	if err := schemas.ValidateRuleSet(document); err != nil {
		return nil, &ConfigurationError{Source: source, Message: "schema validation failed", Cause: err}
	}

	var rs types.RuleSet
	if err := json.Unmarshal(document, &rs); err != nil {
		return nil, &ConfigurationError{Source: source, Message: "failed to decode rule set", Cause: err}
	}
	if err := rs.Validate(); err != nil {
		return nil, &ConfigurationError{Source: source, Message: "invalid rule", Cause: err}
	}
	if err := checkRules(&rs); err != nil {
		return nil, &ConfigurationError{Source: source, Message: "invalid rule", Cause: err}
	}
	return &rs, nil
}

func toJSON(data []byte, format Format, source string) ([]byte, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, &ConfigurationError{Source: source, Message: "rule set is empty"}
	}
	if format != FormatYAML {
		return data, nil
	}
	converted, err := yamlToJSON(data)
	if err != nil {
		return nil, &ConfigurationError{Source: source, Message: "failed to parse YAML", Cause: err}
	}
	return converted, nil
}

// checkRules enforces constraints that span fields or rules
func checkRules(rs *types.RuleSet) error {
	seen := make(map[string]bool)
	for _, rule := range rs.All() {
		if seen[rule.ID] {
			return fmt.Errorf("duplicate rule id %q", rule.ID)
		}
		seen[rule.ID] = true

		switch rule.Operator {
		case types.OpBetween, types.OpListLengthBetween:
			low, high, ok := numericRange(rule.Value)
			if !ok {
				return fmt.Errorf("rule %q: %s needs a [low, high] pair", rule.ID, rule.Operator)
			}
			if low > high {
				return fmt.Errorf("rule %q: range low %s exceeds high %s", rule.ID, types.FormatNumber(low), types.FormatNumber(high))
			}
		}
	}
	return nil
}

// yamlToJSON re-encodes a YAML document as JSON so both formats share one validation path
func yamlToJSON(data []byte) ([]byte, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return json.Marshal(jsonCompatible(raw))
}

func jsonCompatible(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = jsonCompatible(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = jsonCompatible(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = jsonCompatible(item)
		}
		return out
	default:
		return v
	}
}
