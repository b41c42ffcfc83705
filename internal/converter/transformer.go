// =============================================================================
// Wide-to-Long Normalizer - Transformation Engine
// =============================================================================
//
// This module turns the data rows of a wide file into long-format records
// using the TransformSpec produced by the analyzer.
//
// TRANSFORMATION RULES:
//   - Every data row must name a factory (blank -> EmptyFactoryName)
//   - Every value column is parsed with the Number Parser
//   - A missing reading (empty cell, no-data marker, short row) emits nothing
//   - An unparsable reading aborts the whole transform
//   - Records are emitted in row order, then spec column order
//
// ROW NUMBERS:
//   Errors report 1-based source rows. The first data row is row 3 because
//   two header rows precede it.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ginjaninja78/CSV-wide-to-long/internal/csvparser"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/numparse"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/types"
)

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer converts wide data rows into NormalizedRecords.
type Transformer struct {
	spec   *types.TransformSpec
	parser *numparse.Parser
}

// NewTransformer creates a Transformer for a spec.
// A nil parser uses the default no-data markers.
func NewTransformer(spec *types.TransformSpec, parser *numparse.Parser) *Transformer {
	if parser == nil {
		parser = numparse.New()
	}
	return &Transformer{
		spec:   spec,
		parser: parser,
	}
}

// =============================================================================
// TRANSFORMATION FUNCTIONS
// =============================================================================

// Transform converts data rows (the rows after the two headers).
//
// PARAMETERS:
//   - dataRows: The data rows of the source file.
//
// RETURNS:
//   - The records in row order, then column order.
//   - EmptyFactoryName if a non-blank row has no factory.
//   - NumberFormatError (with row and column) for an unparsable cell.
//   - DuplicateRecord if a (factory, year, month) appears twice.
//
// No records are returned together with an error.
func (t *Transformer) Transform(dataRows [][]string) ([]types.NormalizedRecord, error) {
	records := make([]types.NormalizedRecord, 0, len(dataRows)*len(t.spec.ValueColumns))
	seen := make(map[types.RecordKey]int, cap(records))

	for i, row := range dataRows {
		sourceRow := i + csvparser.HeaderRows + 1

		if csvparser.IsRowEmpty(row) {
			continue
		}

		factory := strings.TrimSpace(cell(row, t.spec.FactoryColumnIndex))
		if factory == "" {
			return nil, types.NewError(types.KindEmptyFactoryName, "factory name is blank").
				WithRow(sourceRow).WithColumn(t.spec.FactoryColumnIndex)
		}

		for _, col := range t.spec.ValueColumns {
			raw := cell(row, col.ColumnIndex)

			num, err := t.parser.Parse(raw)
			if err != nil {
				return nil, locate(err, sourceRow, col.ColumnIndex)
			}
			if !num.Valid {
				continue
			}

			rec := types.NormalizedRecord{
				Factory:  factory,
				Year:     col.Year,
				Month:    col.Month,
				YTDValue: num.Float64(),
			}

			if firstRow, dup := seen[rec.Key()]; dup {
				return nil, types.NewError(types.KindDuplicateRecord,
					fmt.Sprintf("factory %q already has a value for %d/%d in row %d", factory, col.Month, col.Year, firstRow)).
					WithRow(sourceRow).WithColumn(col.ColumnIndex).WithValue(raw)
			}
			seen[rec.Key()] = sourceRow

			records = append(records, rec)
		}
	}

	return records, nil
}

// cell returns the cell at index, or "" when the row is too short.
func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return row[index]
}

// locate adds source position to a parser error.
func locate(err error, row, column int) error {
	var typed *types.Error
	if errors.As(err, &typed) {
		return typed.WithRow(row).WithColumn(column)
	}
	return types.NewError(types.KindNumberFormat, "cell could not be parsed").
		WithRow(row).WithColumn(column).Wrap(err)
}
