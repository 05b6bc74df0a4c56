package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/investment-fit/internal/rules"
	"github.com/jonathan/investment-fit/internal/schemas"
)

var validateRulesCmd = &cobra.Command{
	Use:   "validate-rules [file]",
	Short: "Validate a rule set file",
	Long: `Checks a JSON or YAML rule set against the rule set schema, the rule field constraints and
the cross-rule checks (unique IDs, ordered ranges). Without a file the built-in rules are checked.

With --schema the document is also checked against an extra JSON Schema, such as a house policy
that requires a description on every rule.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidateRules,
}

var (
	printDefaultRules bool
	extraRulesSchema  string
)

func init() {
	validateRulesCmd.Flags().BoolVar(&printDefaultRules, "print-default", false, "Print the built-in rule set and exit")
	validateRulesCmd.Flags().StringVar(&extraRulesSchema, "schema", "", "Additional JSON Schema file the rule set must satisfy")

	rootCmd.AddCommand(validateRulesCmd)
}

func runValidateRules(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if printDefaultRules {
		_, err := out.Write(rules.DefaultDocument())
		return err
	}

	var path string
	source := rules.DefaultSource
	if len(args) == 1 {
		path = args[0]
		source = path
	}

	rs, err := rules.Load(path)
	if err != nil {
		return err
	}

	if extraRulesSchema != "" {
		schema, err := os.ReadFile(extraRulesSchema)
		if err != nil {
			return fmt.Errorf("failed to read schema file: %w", err)
		}
		document, err := rules.Document(path)
		if err != nil {
			return err
		}
		if err := schemas.ValidateJSONString(string(schema), string(document)); err != nil {
			return fmt.Errorf("%s does not satisfy %s: %w", source, extraRulesSchema, err)
		}
	}

	_, _ = fmt.Fprintf(out, "✓ %s is valid\n", source)
	_, _ = fmt.Fprintf(out, "  global_rules:       %d\n", len(rs.GlobalRules))
	_, _ = fmt.Fprintf(out, "  critical_red_flags: %d\n", len(rs.CriticalRedFlags))
	_, _ = fmt.Fprintf(out, "  positive_signals:   %d\n", len(rs.PositiveSignals))
	return nil
}
