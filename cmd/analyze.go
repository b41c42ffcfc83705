// =============================================================================
// Wide-to-Long Normalizer - Analyze Command
// =============================================================================
//
// COMMAND USAGE:
//   normalizer analyze <file> [--out spec.json]
//
// Reads the two header rows of a wide file and prints the resulting column
// spec as JSON, or saves it with --out for later transform/load runs.
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/CSV-wide-to-long/internal/analyzer"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/converter"
)

var analyzeOut string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Derive the column spec from the header rows of a wide file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "Write the spec to this file instead of stdout")
}

func runAnalyze(cmd *cobra.Command, path string) error {
	rows, err := converter.ReadSource(path, mainConfig.CSV)
	if err != nil {
		return fmt.Errorf("read failed: %w", err)
	}

	spec, err := analyzer.Analyze(rows, analyzer.OptionsFromSettings(mainConfig.CSV))
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}
	logger.Debug("analyzed header", zap.String("file", path), zap.Int("value_columns", len(spec.ValueColumns)))

	if analyzeOut != "" {
		if err := analyzer.SaveSpec(analyzeOut, spec); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Spec with %d value columns written to %s\n", len(spec.ValueColumns), analyzeOut)
		return nil
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(spec)
}
