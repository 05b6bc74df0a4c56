package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/investment-fit/internal/config"
	"github.com/jonathan/investment-fit/internal/llm"
	"github.com/jonathan/investment-fit/internal/observability"
	"github.com/jonathan/investment-fit/internal/pipeline"
	"github.com/jonathan/investment-fit/internal/research"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <company>",
	Short: "Research a company and produce a full investment report",
	Long: `Runs the whole analysis: partitioned research -> derived metrics -> qualitative analysis -> rule evaluation -> scoring -> investment thesis.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeConfigPath       string
	analyzeCompany          string
	analyzeSector           string
	analyzeRules            string
	analyzeResearchProvider string
	analyzeAnalysisProvider string
	analyzeResearchModel    string
	analyzeAnalysisModel    string
	analyzeAPIKey           string
	analyzeTimeout          int
	analyzeGrowthPeriod     int
	analyzeSkipQualitative  bool
	analyzeOut              string
)

func init() {
	// Config file flag (processed first)
	analyzeCmd.Flags().StringVar(&analyzeConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	analyzeCmd.Flags().StringVarP(&analyzeCompany, "company", "c", "", "Company name (alternative to the positional argument)")
	analyzeCmd.Flags().StringVarP(&analyzeSector, "sector", "s", "", "Target sector the company is evaluated against")
	analyzeCmd.Flags().StringVarP(&analyzeRules, "rules", "r", "", "Rule set file, JSON or YAML (defaults to the built-in rules)")
	analyzeCmd.Flags().StringVar(&analyzeResearchProvider, "research-provider", "", "Provider for partition research: perplexity, groq or gemini")
	analyzeCmd.Flags().StringVar(&analyzeAnalysisProvider, "analysis-provider", "", "Provider for qualitative analysis: perplexity, groq or gemini")
	analyzeCmd.Flags().StringVar(&analyzeResearchModel, "research-model", "", "Model override for research")
	analyzeCmd.Flags().StringVar(&analyzeAnalysisModel, "analysis-model", "", "Model override for analysis")
	analyzeCmd.Flags().IntVar(&analyzeTimeout, "timeout", 0, "Per-partition timeout in seconds")
	analyzeCmd.Flags().IntVar(&analyzeGrowthPeriod, "growth-period", 0, "Months between prior and current ARR")
	analyzeCmd.Flags().BoolVar(&analyzeSkipQualitative, "skip-qualitative", false, "Skip the qualitative analysis and thesis calls")
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "Write the report JSON to this file instead of stdout")

	// API key can be passed as a flag, or read from the provider's env var
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "API key for both providers (optional, defaults to the provider env vars)")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Step 1: Load config file if provided
	var cfg config.Config
	if analyzeConfigPath != "" {
		loadedCfg, err := config.LoadConfig(analyzeConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}
		cfg = *loadedCfg
		logger.Debug("loaded config", zap.String("path", analyzeConfigPath))
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	flags := cmd.Flags()
	if flags.Changed("sector") {
		cfg.Sector = analyzeSector
	}
	if flags.Changed("rules") {
		cfg.RulesPath = analyzeRules
	}
	if flags.Changed("research-provider") {
		cfg.ResearchProvider = analyzeResearchProvider
	}
	if flags.Changed("analysis-provider") {
		cfg.AnalysisProvider = analyzeAnalysisProvider
	}
	if flags.Changed("research-model") {
		cfg.ResearchModel = analyzeResearchModel
	}
	if flags.Changed("analysis-model") {
		cfg.AnalysisModel = analyzeAnalysisModel
	}
	if flags.Changed("timeout") {
		cfg.PartitionTimeoutSeconds = analyzeTimeout
	}
	if flags.Changed("growth-period") {
		cfg.GrowthPeriodMonths = analyzeGrowthPeriod
	}
	if flags.Changed("skip-qualitative") {
		cfg.SkipQualitative = analyzeSkipQualitative
	}
	if verbose {
		cfg.Verbose = true
	}

	// Step 3: Apply defaults for unset values, then validate the result
	cfg = cfg.MergeWithDefaults(config.Config{})
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Step 4: Validate required fields
	company := analyzeCompany
	if len(args) == 1 {
		company = args[0]
	}
	if strings.TrimSpace(company) == "" {
		return fmt.Errorf("a company name must be provided as an argument or with --company")
	}

	// Step 5: Build provider clients
	researchClient, err := newClient(cmd, llm.Provider(cfg.ResearchProvider))
	if err != nil {
		return fmt.Errorf("research provider: %w", err)
	}
	defer researchClient.Close()

	aggOpts := research.Options{
		Timeout: cfg.PartitionTimeout(),
		Model:   cfg.ResearchModel,
		Logger:  logger.Named("research"),
	}
	if apiKey, cx, ok := cfg.SearchCredentials(); ok {
		finder, err := research.NewSearchFinder(ctx, apiKey, cx)
		if err != nil {
			logger.Warn("website lookup disabled", zap.Error(err))
		} else {
			aggOpts.Finder = finder
		}
	}
	aggregator := research.NewAggregator(researchClient, aggOpts)

	var commentator pipeline.Commentator
	if !cfg.SkipQualitative {
		analysisClient, err := newClient(cmd, llm.Provider(cfg.AnalysisProvider))
		if err != nil {
			return fmt.Errorf("analysis provider: %w", err)
		}
		defer analysisClient.Close()
		commentator = research.NewAnalyst(analysisClient, cfg.AnalysisModel, logger.Named("analyst"))
	}

	// Step 6: Run the pipeline
	analyzer := pipeline.NewAnalyzer(aggregator, commentator, pipeline.Options{
		RulesPath:          cfg.RulesPath,
		GrowthPeriodMonths: cfg.GrowthPeriodMonths,
		Logger:             logger.Named("pipeline"),
		OnProgress: func(e pipeline.ProgressEvent) {
			logger.Debug("progress", zap.String("step", e.Step), zap.String("message", e.Message))
		},
	})

	report, err := analyzer.Run(ctx, company, cfg.Sector)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		printReport(observability.NewPrinter(cmd.ErrOrStderr()), report)
	}
	return writeJSON(cmd.OutOrStdout(), analyzeOut, report)
}

// newClient resolves the API key for a provider and creates its client
func newClient(cmd *cobra.Command, provider llm.Provider) (llm.Client, error) {
	llmCfg, err := llm.ConfigFor(provider)
	if err != nil {
		return nil, err
	}
	apiKey, err := config.APIKey(provider, analyzeAPIKey)
	if err != nil {
		return nil, fmt.Errorf("%w (or pass --api-key)", err)
	}
	return llm.NewClient(cmd.Context(), llmCfg, apiKey)
}

// printReport writes the verbose summary boxes for a report
func printReport(printer *observability.Printer, report *pipeline.Report) {
	printer.PrintPartitions(report.Partitions)
	printer.PrintCompany(report.Record)
	printer.PrintMetrics(report.Record)
	printer.PrintFeedback(report.Feedback)
	printer.PrintDecision(report.Decision)
}
