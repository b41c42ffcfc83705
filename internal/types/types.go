// =============================================================================
// Wide-to-Long Normalizer - Shared Types
// =============================================================================
//
// This package contains the data model shared by every stage of the pipeline
// and keeps the stage packages free of import cycles. Types defined here are
// used by:
//   - analyzer    (produces TransformSpec)
//   - converter   (consumes TransformSpec, produces records)
//   - store       (persists records)
//   - export      (writes records to files)
//
// The JSON tags define the serialized TransformSpec form. It is stable so that
// analysis and transformation can run in different processes.
//
// =============================================================================

package types

// =============================================================================
// TRANSFORM SPEC
// =============================================================================

// TransformSpec maps the columns of a wide CSV to (month, year) targets.
// It is produced once per input by the analyzer and is read-only afterwards.
type TransformSpec struct {
	// Delimiter is the field separator of the source file.
	Delimiter string `json:"delimiter" validate:"required,len=1"`

	// FactoryColumn is the first-row label of the factory column.
	FactoryColumn string `json:"factory_column,omitempty"`

	// FactoryColumnIndex is the zero-based index of the factory column.
	FactoryColumnIndex int `json:"factory_column_index" validate:"gte=0"`

	// ValueColumns lists the value columns in source order.
	ValueColumns []ValueColumn `json:"value_columns" validate:"required,min=1,dive"`
}

// ValueColumn describes one cumulative value column of the wide header.
type ValueColumn struct {
	// ColumnIndex is the zero-based index of the column in each row.
	ColumnIndex int `json:"column_index" validate:"gte=0"`

	// Month is the month the cumulative figure runs up to (1-12).
	Month int `json:"month" validate:"gte=1,lte=12"`

	// Year is the calendar year of the column.
	Year int `json:"year" validate:"gte=1000,lte=9999"`

	// OriginalHeader is the raw first-row label, e.g. "3 kum".
	OriginalHeader string `json:"original_header"`
}

// Period is the (month, year) target of a value column.
type Period struct {
	Month int
	Year  int
}

// Period returns the (month, year) pair the column maps to.
func (c ValueColumn) Period() Period {
	return Period{Month: c.Month, Year: c.Year}
}

// =============================================================================
// RECORDS
// =============================================================================

// NormalizedRecord is one (factory, period, value) tuple of the long format.
type NormalizedRecord struct {
	Factory  string  `json:"factory"`
	Year     int     `json:"year"`
	Month    int     `json:"month"`
	YTDValue float64 `json:"ytd_value"`
}

// RecordKey identifies a record within one transform run.
type RecordKey struct {
	Factory string
	Year    int
	Month   int
}

// Key returns the identity of the record within a run.
func (r NormalizedRecord) Key() RecordKey {
	return RecordKey{Factory: r.Factory, Year: r.Year, Month: r.Month}
}

// MonthlyValue is a NormalizedRecord plus the derived month-over-month delta.
type MonthlyValue struct {
	NormalizedRecord

	// MonthValue is the non-cumulative figure for the month.
	MonthValue float64 `json:"month_value"`
}
