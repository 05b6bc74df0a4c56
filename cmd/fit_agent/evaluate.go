package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/investment-fit/internal/financial"
	"github.com/jonathan/investment-fit/internal/observability"
	"github.com/jonathan/investment-fit/internal/rules"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a rule set against a company record",
	Long: `Loads a company record JSON file, derives its financial metrics and evaluates the rule set, printing the feedback items.

With --explain every rule is listed with its outcome or the reason it was skipped.`,
	RunE: runEvaluate,
}

var (
	evaluateRecord       string
	evaluateRules        string
	evaluateSector       string
	evaluateGrowthPeriod int
	evaluateExplain      bool
	evaluateOut          string
)

func init() {
	evaluateCmd.Flags().StringVar(&evaluateRecord, "record", "", "Company record JSON file (- for stdin)")
	evaluateCmd.Flags().StringVarP(&evaluateRules, "rules", "r", "", "Rule set file, JSON or YAML (defaults to the built-in rules)")
	evaluateCmd.Flags().StringVarP(&evaluateSector, "sector", "s", "", "Target sector substituted into sector rules")
	evaluateCmd.Flags().IntVar(&evaluateGrowthPeriod, "growth-period", 12, "Months between prior and current ARR")
	evaluateCmd.Flags().BoolVar(&evaluateExplain, "explain", false, "Print every rule with its result or skip reason")
	evaluateCmd.Flags().StringVarP(&evaluateOut, "out", "o", "", "Write the feedback JSON to this file instead of stdout")

	evaluateCmd.MarkFlagRequired("record")

	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	rec, err := readRecord(evaluateRecord, cmd.InOrStdin())
	if err != nil {
		return err
	}
	enriched := financial.Enrich(rec, financial.Options{GrowthPeriodMonths: evaluateGrowthPeriod})

	rs, loadErr := rules.Load(evaluateRules)
	if evaluateExplain && loadErr == nil {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintTrace(rules.NewEngine(rs, evaluateSector).Trace(enriched))
	}

	items := rules.EvaluateWithConfig(rs, loadErr, enriched, evaluateSector, logger.Named("rules"))
	return writeJSON(cmd.OutOrStdout(), evaluateOut, items)
}
