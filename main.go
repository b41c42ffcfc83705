// =============================================================================
// Wide-to-Long Normalizer - Main Entry Point
// =============================================================================
//
// This is the main entry point for the normalizer CLI. It delegates command
// execution to the cmd package.
//
// USAGE:
//   normalizer analyze <file>     - Derive the column spec from the header rows
//   normalizer transform <file>   - Write the long-format records of a file
//   normalizer load <file>        - Transform a file into a SQLite store
//   normalizer query "SELECT ..." - Run a read-only query against a store
//   normalizer process            - Normalize every file of the input directory
//   normalizer version            - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Parsing, analysis, transformation, store and query guard
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/CSV-wide-to-long/cmd"
)

func main() {
	cmd.Execute()
}
