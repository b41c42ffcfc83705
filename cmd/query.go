// =============================================================================
// Wide-to-Long Normalizer - Query Command
// =============================================================================
//
// COMMAND USAGE:
//   normalizer query --db path "SELECT ..."
//   normalizer query --db path --schema
//
// FLAGS:
//   --db      : The SQLite store (opened read-only, must exist)
//   --schema  : List tables and columns instead of running a query
//   --json    : Print the result as JSON
//
// OUTPUT (table mode):
//   factory	month	ytd_value
//   -------------------------
//   WerkA	1	1250000
//
//   1 row(s) returned
//
// Only a single SELECT statement is accepted; anything else is rejected
// before the store is opened.
//
// =============================================================================

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/CSV-wide-to-long/internal/guard"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/store"
)

var (
	queryDB     string
	querySchema bool
	queryJSON   bool
)

var queryCmd = &cobra.Command{
	Use:   "query [SELECT statement]",
	Short: "Run a read-only SELECT against a SQLite store",
	Args: func(cmd *cobra.Command, args []string) error {
		if querySchema {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if querySchema {
			return runSchema(cmd)
		}
		return runQuery(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVar(&queryDB, "db", "", "SQLite store to query")
	queryCmd.Flags().BoolVar(&querySchema, "schema", false, "List tables and columns")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "Print the result as JSON")
	_ = queryCmd.MarkFlagRequired("db")
}

func runQuery(cmd *cobra.Command, query string) error {
	// Reject before opening so a forbidden statement never touches the file.
	if err := guard.Check(query); err != nil {
		return err
	}

	s, err := store.OpenReadOnly(queryDB)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.Query(context.Background(), query)
	if err != nil {
		return err
	}
	logger.Debug("query executed", zap.String("db", queryDB), zap.Int("rows", len(result.Rows)))

	if queryJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	writeTable(cmd.OutOrStdout(), result)
	return nil
}

func runSchema(cmd *cobra.Command) error {
	s, err := store.OpenReadOnly(queryDB)
	if err != nil {
		return err
	}
	defer s.Close()

	tables, err := s.Schema(context.Background())
	if err != nil {
		return err
	}

	if queryJSON {
		return writeJSON(cmd.OutOrStdout(), tables)
	}
	writeSchema(cmd.OutOrStdout(), tables)
	return nil
}

// =============================================================================
// OUTPUT FORMATTING
// =============================================================================

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeTable prints a query result as tab-separated columns with a header,
// NULL for nulls and a row count footer.
func writeTable(w io.Writer, result *store.QueryResult) {
	if len(result.Rows) == 0 {
		fmt.Fprintln(w, "No results found")
		return
	}

	header := strings.Join(result.Columns, "\t")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)))

	cells := make([]string, len(result.Columns))
	for _, row := range result.Rows {
		for i, v := range row {
			cells[i] = formatValue(v)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}

	fmt.Fprintf(w, "\n%d row(s) returned\n", len(result.Rows))
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// writeSchema prints every table with its columns and constraints.
func writeSchema(w io.Writer, tables []store.Table) {
	fmt.Fprintln(w, "Database Schema:")
	fmt.Fprintln(w, "================")

	for _, t := range tables {
		fmt.Fprintf(w, "\nTable: %s\n", t.Name)
		for _, c := range t.Columns {
			var constraints []string
			if c.PrimaryKey {
				constraints = append(constraints, "PRIMARY KEY")
			}
			if c.NotNull {
				constraints = append(constraints, "NOT NULL")
			}
			suffix := ""
			if len(constraints) > 0 {
				suffix = " " + strings.Join(constraints, ", ")
			}
			fmt.Fprintf(w, "  %s: %s%s\n", c.Name, c.Type, suffix)
		}
	}
}
