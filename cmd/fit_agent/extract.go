package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/investment-fit/internal/extraction"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Recover structured JSON from raw model output",
	Long:  "Reads model output from a file (or stdin) and prints the recovered record, the strategy that produced it and whether it is degraded.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExtract,
}

var extractOut string

func init() {
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "Write the result JSON to this file instead of stdout")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	}

	data, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	res := extraction.Extract(string(data))
	if !res.OK() {
		if res.Err != nil {
			return res.Err
		}
		return fmt.Errorf("no structured data found")
	}
	logger.Debug("extracted record",
		zap.String("strategy", res.Strategy),
		zap.Bool("degraded", res.Degraded),
		zap.Int("fields", len(res.Data)))

	if err := writeJSON(cmd.OutOrStdout(), extractOut, res); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
