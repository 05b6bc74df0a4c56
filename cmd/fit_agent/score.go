package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/investment-fit/internal/financial"
	"github.com/jonathan/investment-fit/internal/observability"
	"github.com/jonathan/investment-fit/internal/pipeline"
	"github.com/jonathan/investment-fit/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a company record into an investment decision",
	Long:  "Loads a company record JSON file, derives its financial metrics and runs the fixed scoring model.",
	RunE:  runScore,
}

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Produce an offline report from a company record",
	Long:  "Derives metrics, evaluates rules and scores an existing record without calling any provider.",
	RunE:  runAssess,
}

var (
	scoreRecord       string
	scoreGrowthPeriod int
	scoreOut          string

	assessRecord       string
	assessRules        string
	assessSector       string
	assessGrowthPeriod int
	assessOut          string
)

func init() {
	scoreCmd.Flags().StringVar(&scoreRecord, "record", "", "Company record JSON file (- for stdin)")
	scoreCmd.Flags().IntVar(&scoreGrowthPeriod, "growth-period", 12, "Months between prior and current ARR")
	scoreCmd.Flags().StringVarP(&scoreOut, "out", "o", "", "Write the decision JSON to this file instead of stdout")
	scoreCmd.MarkFlagRequired("record")

	assessCmd.Flags().StringVar(&assessRecord, "record", "", "Company record JSON file (- for stdin)")
	assessCmd.Flags().StringVarP(&assessRules, "rules", "r", "", "Rule set file, JSON or YAML (defaults to the built-in rules)")
	assessCmd.Flags().StringVarP(&assessSector, "sector", "s", "", "Target sector substituted into sector rules")
	assessCmd.Flags().IntVar(&assessGrowthPeriod, "growth-period", 12, "Months between prior and current ARR")
	assessCmd.Flags().StringVarP(&assessOut, "out", "o", "", "Write the report JSON to this file instead of stdout")
	assessCmd.MarkFlagRequired("record")

	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(assessCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	rec, err := readRecord(scoreRecord, cmd.InOrStdin())
	if err != nil {
		return err
	}

	decision := scoring.Decide(financial.Enrich(rec, financial.Options{GrowthPeriodMonths: scoreGrowthPeriod}))
	if verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintDecision(decision)
	}
	return writeJSON(cmd.OutOrStdout(), scoreOut, decision)
}

func runAssess(cmd *cobra.Command, _ []string) error {
	rec, err := readRecord(assessRecord, cmd.InOrStdin())
	if err != nil {
		return err
	}

	report := pipeline.Assess(rec, assessSector, pipeline.Options{
		RulesPath:          assessRules,
		GrowthPeriodMonths: assessGrowthPeriod,
		Logger:             logger.Named("pipeline"),
	})
	if verbose {
		printReport(observability.NewPrinter(cmd.ErrOrStderr()), report)
	}
	return writeJSON(cmd.OutOrStdout(), assessOut, report)
}
