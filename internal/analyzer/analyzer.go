// =============================================================================
// Wide-to-Long Normalizer - Structure Analyzer
// =============================================================================
//
// This module inspects the two header rows of a wide file and produces the
// TransformSpec that maps every value column to a (month, year) target.
//
// HEADER SHAPE:
//   Row 1: Factory ; 1 kum ; 2 kum ; 3 kum    <- factory label + "<month> kum"
//   Row 2:         ; 2025  ; 2025  ; 2025     <- year per value column
//
// RULES:
//   - Column 0 is the factory column; its first-row label is kept.
//   - Month is the leading integer of the label and must be 1-12.
//   - Year is the second-row cell and must be a plausible calendar year.
//   - Columns whose label and year are both blank are ignored (trailing ";").
//   - No two value columns may map to the same (month, year).
//
// =============================================================================

package analyzer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ginjaninja78/CSV-wide-to-long/internal/config"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/csvparser"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/types"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/validation"
)

// FactoryColumnIndex is the position of the factory column in every row.
const FactoryColumnIndex = 0

// leadingMonth extracts the leading integer of a month label.
var leadingMonth = regexp.MustCompile(`^(\d+)`)

// =============================================================================
// ANALYZER OPTIONS
// =============================================================================

// Options configure the analyzer.
type Options struct {
	// Delimiter is recorded in the produced spec.
	Delimiter string

	// MinYear and MaxYear bound plausible header years.
	MinYear int
	MaxYear int
}

// DefaultOptions returns ";" and the 1900-2100 year range.
func DefaultOptions() Options {
	return Options{Delimiter: ";", MinYear: 1900, MaxYear: 2100}
}

// OptionsFromSettings builds Options from the CSV configuration.
func OptionsFromSettings(settings config.CSVSettings) Options {
	return Options{
		Delimiter: settings.Delimiter,
		MinYear:   settings.MinYear,
		MaxYear:   settings.MaxYear,
	}
}

// =============================================================================
// ANALYSIS FUNCTIONS
// =============================================================================

// AnalyzeText parses semicolon-delimited CSV text and analyzes its header.
func AnalyzeText(text string) (*types.TransformSpec, error) {
	settings := config.DefaultConfig().CSV
	rows, err := csvparser.ReadString(text, settings)
	if err != nil {
		return nil, err
	}
	return Analyze(rows, DefaultOptions())
}

// Analyze builds a TransformSpec from the header rows of a wide file.
//
// PARAMETERS:
//   - rows: All rows of the file; only the first two are inspected.
//   - opts: Delimiter and year bounds.
//
// RETURNS:
//   - The TransformSpec with value columns in source order.
//   - MalformedHeader if there are fewer than two rows or no value columns.
//   - ColumnParseError naming the column and raw value of a bad month or year.
//   - DuplicateColumnSpec if two columns map to the same (month, year).
func Analyze(rows [][]string, opts Options) (*types.TransformSpec, error) {
	if len(rows) < csvparser.HeaderRows {
		return nil, types.NewError(types.KindMalformedHeader,
			fmt.Sprintf("expected %d header rows, found %d", csvparser.HeaderRows, len(rows)))
	}

	labels, years := rows[0], rows[1]
	if len(labels) == 0 {
		return nil, types.NewError(types.KindMalformedHeader, "first header row is empty").WithRow(1)
	}

	spec := &types.TransformSpec{
		Delimiter:          opts.Delimiter,
		FactoryColumn:      strings.TrimSpace(labels[FactoryColumnIndex]),
		FactoryColumnIndex: FactoryColumnIndex,
		ValueColumns:       []types.ValueColumn{},
	}

	for i := FactoryColumnIndex + 1; i < len(labels); i++ {
		label := strings.TrimSpace(labels[i])
		yearCell := ""
		if i < len(years) {
			yearCell = strings.TrimSpace(years[i])
		}

		// Trailing separators produce columns with nothing in them.
		if label == "" && yearCell == "" {
			continue
		}

		month, err := parseMonth(label, i)
		if err != nil {
			return nil, err
		}
		year, err := parseYear(yearCell, i, opts)
		if err != nil {
			return nil, err
		}

		spec.ValueColumns = append(spec.ValueColumns, types.ValueColumn{
			ColumnIndex:    i,
			Month:          month,
			Year:           year,
			OriginalHeader: labels[i],
		})
	}

	if len(spec.ValueColumns) == 0 {
		return nil, types.NewError(types.KindMalformedHeader, "header has no value columns").WithRow(1)
	}

	if err := validation.ValidateSpec(spec, validation.Options{MinYear: opts.MinYear, MaxYear: opts.MaxYear}); err != nil {
		return nil, err
	}

	return spec, nil
}

// parseMonth extracts and range-checks the month of a label like "3 kum".
func parseMonth(label string, column int) (int, error) {
	m := leadingMonth.FindStringSubmatch(label)
	if m == nil {
		return 0, types.NewError(types.KindColumnParse, "month label has no leading number").
			WithRow(1).WithColumn(column).WithValue(label)
	}
	month, err := strconv.Atoi(m[1])
	if err != nil || month < 1 || month > 12 {
		return 0, types.NewError(types.KindColumnParse, "month outside 1-12").
			WithRow(1).WithColumn(column).WithValue(label)
	}
	return month, nil
}

// parseYear parses and range-checks the year cell of a value column.
func parseYear(cell string, column int, opts Options) (int, error) {
	year, err := strconv.Atoi(cell)
	if err != nil {
		return 0, types.NewError(types.KindColumnParse, "year is not an integer").
			WithRow(2).WithColumn(column).WithValue(cell)
	}
	if year < opts.MinYear || year > opts.MaxYear || len(cell) != 4 {
		return 0, types.NewError(types.KindColumnParse,
			fmt.Sprintf("year outside %d-%d", opts.MinYear, opts.MaxYear)).
			WithRow(2).WithColumn(column).WithValue(cell)
	}
	return year, nil
}
