package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/CSV-wide-to-long/internal/types"
)

func validSpec() *types.TransformSpec {
	return &types.TransformSpec{
		Delimiter:          ";",
		FactoryColumn:      "Factory",
		FactoryColumnIndex: 0,
		ValueColumns: []types.ValueColumn{
			{ColumnIndex: 1, Month: 1, Year: 2025, OriginalHeader: "1 kum"},
			{ColumnIndex: 2, Month: 2, Year: 2025, OriginalHeader: "2 kum"},
			{ColumnIndex: 3, Month: 1, Year: 2024, OriginalHeader: "1 kum"},
		},
	}
}

func TestValidateSpec_Valid(t *testing.T) {
	assert.NoError(t, ValidateSpec(validSpec(), DefaultOptions()))
}

func TestValidateSpec_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.TransformSpec)
		kind   *types.Error
	}{
		{"nil columns", func(s *types.TransformSpec) { s.ValueColumns = nil }, types.ErrInvalidSpec},
		{"empty columns", func(s *types.TransformSpec) { s.ValueColumns = []types.ValueColumn{} }, types.ErrInvalidSpec},
		{"missing delimiter", func(s *types.TransformSpec) { s.Delimiter = "" }, types.ErrInvalidSpec},
		{"long delimiter", func(s *types.TransformSpec) { s.Delimiter = ";;" }, types.ErrInvalidSpec},
		{"month zero", func(s *types.TransformSpec) { s.ValueColumns[0].Month = 0 }, types.ErrInvalidSpec},
		{"month thirteen", func(s *types.TransformSpec) { s.ValueColumns[1].Month = 13 }, types.ErrInvalidSpec},
		{"three digit year", func(s *types.TransformSpec) { s.ValueColumns[0].Year = 999 }, types.ErrInvalidSpec},
		{"year outside range", func(s *types.TransformSpec) { s.ValueColumns[0].Year = 1850 }, types.ErrInvalidSpec},
		{"negative index", func(s *types.TransformSpec) { s.ValueColumns[0].ColumnIndex = -1 }, types.ErrInvalidSpec},
		{"overlaps factory", func(s *types.TransformSpec) { s.ValueColumns[0].ColumnIndex = 0 }, types.ErrInvalidSpec},
		{"repeated index", func(s *types.TransformSpec) { s.ValueColumns[1].ColumnIndex = 1 }, types.ErrInvalidSpec},
		{"duplicate period", func(s *types.TransformSpec) { s.ValueColumns[2].Year = 2025 }, types.ErrDuplicateColumnSpec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validSpec()
			tt.mutate(spec)

			err := ValidateSpec(spec, DefaultOptions())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
		})
	}
}

func TestValidateSpec_DuplicateNamesColumn(t *testing.T) {
	spec := validSpec()
	spec.ValueColumns[2].Year = 2025

	err := ValidateSpec(spec, DefaultOptions())

	var typed *types.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, 3, typed.Column)
	assert.Contains(t, typed.Message, "column 1")
}

func TestValidateSpec_Nil(t *testing.T) {
	assert.True(t, errors.Is(ValidateSpec(nil, DefaultOptions()), types.ErrInvalidSpec))
}
