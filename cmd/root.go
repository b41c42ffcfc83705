// =============================================================================
// Wide-to-Long Normalizer - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (normalizer)
//   ├── analyzeCmd   (normalizer analyze)
//   ├── transformCmd (normalizer transform)
//   ├── loadCmd      (normalizer load)
//   ├── queryCmd     (normalizer query)
//   ├── processCmd   (normalizer process)
//   └── versionCmd   (normalizer version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads config.yaml (or --config) plus NORMALIZER_* environment overrides
//   2. Builds the zap logger (--verbose forces debug level)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/CSV-wide-to-long/internal/config"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// mainConfig is loaded in PersistentPreRunE.
var mainConfig *config.MainConfig

// logger is built in PersistentPreRunE and synced in PersistentPostRun.
var logger = zap.NewNop()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "normalizer",
	Short: "Wide-to-Long Normalizer - Turn wide cumulative factory CSVs into queryable long data",
	Long: `The normalizer reads wide CSV (or XLSX) exports where each row is a factory
and each column is a cumulative year-to-date figure for one month ("1 kum",
"2 kum", ...) and converts them into long-format records.

Key Features:
  - Header analysis into a reusable column spec
  - European number parsing ("1.250.000,5")
  - Monthly values derived from cumulative figures
  - Transactional loading into a SQLite store
  - Guarded read-only SELECT queries

Example Usage:
  normalizer analyze werke.csv --out werke.spec.json
  normalizer load werke.csv --db data/werke.db
  normalizer query --db data/werke.db "SELECT * FROM monthly_values"
  normalizer process`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadMainConfig(cfgFile)
		if err != nil {
			return err
		}
		mainConfig = cfg

		l, err := logging.New(logging.Options{
			Level:   cfg.LogLevel,
			Verbose: verbose,
			File:    cfg.LogFile,
		})
		if err != nil {
			return err
		}
		logger = l
		return nil
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultConfigFile,
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
