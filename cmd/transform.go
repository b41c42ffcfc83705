// =============================================================================
// Wide-to-Long Normalizer - Transform Command
// =============================================================================
//
// COMMAND USAGE:
//   normalizer transform <file> [--spec spec.json] [--out path] [--format csv|json|xlsx|xml] [--xsd schema.xsd]
//
// Converts a wide file into long-format records. Without --out the records
// are printed to stdout (csv, json or xml).
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/CSV-wide-to-long/internal/config"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/converter"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/export"
)

var (
	transformSpec   string
	transformOut    string
	transformFormat string
	transformXSD    string
)

var transformCmd = &cobra.Command{
	Use:   "transform <file>",
	Short: "Convert a wide file into long-format records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransform(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(transformCmd)

	transformCmd.Flags().StringVar(&transformSpec, "spec", "", "Use a saved spec instead of analyzing the header")
	transformCmd.Flags().StringVarP(&transformOut, "out", "o", "", "Write the records to this file instead of stdout")
	transformCmd.Flags().StringVarP(&transformFormat, "format", "f", "", "Output format: csv, json, xlsx or xml (default from config)")
	transformCmd.Flags().StringVar(&transformXSD, "xsd", "", "With --format xml, also write the document schema to this file")
}

func runTransform(cmd *cobra.Command, path string) error {
	format := transformFormat
	if format == "" {
		format = mainConfig.OutputFormat
	}
	switch format {
	case config.FormatCSV, config.FormatJSON, config.FormatXML:
	case config.FormatXLSX:
		if transformOut == "" {
			return fmt.Errorf("format xlsx requires --out")
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if transformXSD != "" && format != config.FormatXML {
		return fmt.Errorf("--xsd requires format xml")
	}

	xmlOpts := export.XMLOptions(mainConfig.XML)

	result := converter.New(path, converter.Options{
		Settings:     mainConfig.CSV,
		SpecInput:    transformSpec,
		OutputPath:   transformOut,
		OutputFormat: format,
		Export:       export.Options{XML: &xmlOpts},
		XSDPath:      transformXSD,
	}, logger).Run(context.Background())
	if result.Error != nil {
		return result.Error
	}

	if transformOut != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d records to %s\n", len(result.Records), result.OutputFile)
		return nil
	}
	if format == config.FormatXML {
		return export.WriteXML(cmd.OutOrStdout(), result.Records, result.Monthly, xmlOpts)
	}
	return export.WriteRecords(cmd.OutOrStdout(), format, result.Records)
}
