package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/investment-fit/internal/prompts"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts [file key]",
	Short: "List or print the built-in prompt templates",
	Long:  "Without arguments every prompt file and its keys are listed. With a file and key the template is printed.",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("expected no arguments or a file and a key, got %d", len(args))
		}
		return nil
	},
	RunE: runPrompts,
}

func init() {
	rootCmd.AddCommand(promptsCmd)
}

func runPrompts(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 2 {
		template, err := prompts.Get(args[0], args[1])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, template)
		return err
	}

	for _, file := range []string{prompts.ResearchFile, prompts.AnalysisFile} {
		keys, err := prompts.List(file)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, file)
		for _, key := range keys {
			_, _ = fmt.Fprintf(out, "  %s\n", key)
		}
	}
	return nil
}
