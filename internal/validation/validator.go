// =============================================================================
// Wide-to-Long Normalizer - Spec Validation Module
// =============================================================================
//
// This module validates TransformSpec values before a transformation uses
// them. Specs may come from the analyzer or from a JSON file written by an
// earlier run, so the checks run on both paths.
//
// VALIDATION LAYERS:
//   1. Field rules declared as struct tags (required, ranges, dive)
//   2. Cross-column invariants:
//      - value column indexes are unique
//      - no value column reuses the factory column
//      - no two value columns map to the same (month, year)
//      - years lie within the configured plausible range
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/ginjaninja78/CSV-wide-to-long/internal/types"
)

// =============================================================================
// VALIDATION OPTIONS
// =============================================================================

// Options bound the plausible header years.
type Options struct {
	MinYear int
	MaxYear int
}

// DefaultOptions returns the default year range 1900-2100.
func DefaultOptions() Options {
	return Options{MinYear: 1900, MaxYear: 2100}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// structValidator returns the shared validator. Error field names use the
// JSON tag so messages match the serialized spec.
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// =============================================================================
// VALIDATION FUNCTIONS
// =============================================================================

// ValidateSpec checks a TransformSpec.
//
// RETURNS:
//   - nil if the spec is usable.
//   - A DuplicateColumnSpec error if two columns map to the same period.
//   - An InvalidSpec error for every other violation.
func ValidateSpec(spec *types.TransformSpec, opts Options) error {
	if spec == nil {
		return types.NewError(types.KindInvalidSpec, "spec is nil")
	}

	if err := structValidator().Struct(spec); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return types.NewError(types.KindInvalidSpec, formatFieldErrors(fieldErrs))
		}
		return types.NewError(types.KindInvalidSpec, "spec validation failed").Wrap(err)
	}

	seenIndex := make(map[int]struct{}, len(spec.ValueColumns))
	seenPeriod := make(map[types.Period]int, len(spec.ValueColumns))

	for _, col := range spec.ValueColumns {
		if col.ColumnIndex == spec.FactoryColumnIndex {
			return types.NewError(types.KindInvalidSpec, "value column overlaps the factory column").
				WithColumn(col.ColumnIndex)
		}
		if _, dup := seenIndex[col.ColumnIndex]; dup {
			return types.NewError(types.KindInvalidSpec, "column index listed twice").
				WithColumn(col.ColumnIndex)
		}
		seenIndex[col.ColumnIndex] = struct{}{}

		if col.Year < opts.MinYear || col.Year > opts.MaxYear {
			return types.NewError(types.KindInvalidSpec,
				fmt.Sprintf("year %d outside %d-%d", col.Year, opts.MinYear, opts.MaxYear)).
				WithColumn(col.ColumnIndex)
		}

		if first, dup := seenPeriod[col.Period()]; dup {
			return types.NewError(types.KindDuplicateColumnSpec,
				fmt.Sprintf("month %d/%d already mapped by column %d", col.Month, col.Year, first)).
				WithColumn(col.ColumnIndex).
				WithValue(col.OriginalHeader)
		}
		seenPeriod[col.Period()] = col.ColumnIndex
	}

	return nil
}

// formatFieldErrors joins validator field errors into one message.
func formatFieldErrors(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Namespace()))
		case "min":
			parts = append(parts, fmt.Sprintf("%s needs at least %s entries", fe.Namespace(), fe.Param()))
		case "len":
			parts = append(parts, fmt.Sprintf("%s must have length %s", fe.Namespace(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
		}
	}
	return strings.Join(parts, "; ")
}
