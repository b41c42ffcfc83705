package converter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ginjaninja78/CSV-wide-to-long/internal/analyzer"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/config"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/export"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/store"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/types"
)

const wideCSV = "Factory;1 kum;2 kum;3 kum\n;2025;2025;2025\nWerkA;1.250.000;2.500.000;3.750.000\n"

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun_EndToEnd(t *testing.T) {
	input := writeInput(t, "werke.csv", wideCSV)
	out := t.TempDir()

	opts := Options{
		Settings:     config.DefaultConfig().CSV,
		SpecOutput:   filepath.Join(out, "werke.spec.json"),
		OutputPath:   filepath.Join(out, "werke_normalized.csv"),
		OutputFormat: config.FormatCSV,
		StorePath:    filepath.Join(out, "data", "werke.db"),
	}

	result := New(input, opts, zap.NewNop()).Run(context.Background())
	require.NoError(t, result.Error)
	require.True(t, result.Success)
	assert.NotEmpty(t, result.RunID)

	require.Len(t, result.Spec.ValueColumns, 3)
	assert.Equal(t, []types.NormalizedRecord{
		{Factory: "WerkA", Year: 2025, Month: 1, YTDValue: 1250000},
		{Factory: "WerkA", Year: 2025, Month: 2, YTDValue: 2500000},
		{Factory: "WerkA", Year: 2025, Month: 3, YTDValue: 3750000},
	}, result.Records)
	assert.Equal(t, []float64{1250000, 1250000, 1250000}, monthValues(result.Monthly))
	assert.Empty(t, result.Gaps)

	assert.Equal(t, store.LoadResult{FactoryRows: 3, MonthlyRows: 3}, result.Loaded)
	assert.Equal(t, 3, result.Stats.RowsRead)
	assert.Equal(t, 3, result.Stats.RecordsCreated)

	assert.FileExists(t, result.SpecFile)
	data, err := os.ReadFile(result.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "WerkA,2025,2,2500000")

	s, err := store.OpenReadOnly(result.StorePath)
	require.NoError(t, err)
	defer s.Close()
	qr, err := s.Query(context.Background(), "SELECT month_value FROM monthly_values ORDER BY month")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{1250000.0}, {1250000.0}, {1250000.0}}, qr.Rows)
}

func TestRun_UsesSavedSpec(t *testing.T) {
	specPath := filepath.Join(t.TempDir(), "spec.json")
	spec, err := analyzer.AnalyzeText(wideCSV)
	require.NoError(t, err)
	require.NoError(t, analyzer.SaveSpec(specPath, spec))

	// The header of this file is broken; the saved spec is used instead.
	input := writeInput(t, "werke.csv", "x;y;z;w\n;;;\nWerkA;1;2;3\n")

	result := New(input, Options{Settings: config.DefaultConfig().CSV, SpecInput: specPath}, nil).Run(context.Background())
	require.NoError(t, result.Error)
	assert.Len(t, result.Records, 3)
}

func TestRun_SavedSpecDelimiterOverridesConfig(t *testing.T) {
	opts := analyzer.DefaultOptions()
	opts.Delimiter = ","
	spec, err := analyzer.Analyze([][]string{
		{"Factory", "1 kum", "2 kum"},
		{"", "2025", "2025"},
	}, opts)
	require.NoError(t, err)

	specPath := filepath.Join(t.TempDir(), "comma.spec.json")
	require.NoError(t, analyzer.SaveSpec(specPath, spec))

	input := writeInput(t, "comma.csv", "Factory,1 kum,2 kum\n,2025,2025\nWerkA,\"1.250,5\",\"2.500,5\"\n")

	// The configured delimiter stays ";".
	result := New(input, Options{Settings: config.DefaultConfig().CSV, SpecInput: specPath}, nil).Run(context.Background())
	require.NoError(t, result.Error)
	require.Len(t, result.Records, 2)
	assert.Equal(t, types.NormalizedRecord{Factory: "WerkA", Year: 2025, Month: 2, YTDValue: 2500.5}, result.Records[1])
	assert.Equal(t, 1250.0, result.Monthly[1].MonthValue)
}

func TestRun_XMLOutputWithSchema(t *testing.T) {
	input := writeInput(t, "werke.csv", wideCSV)
	dir := t.TempDir()
	xmlOpts := export.XMLOptions(config.XMLSettings{IndexAttribute: "idx"})

	result := New(input, Options{
		Settings:     config.DefaultConfig().CSV,
		OutputPath:   filepath.Join(dir, "werke.xml"),
		OutputFormat: config.FormatXML,
		Export:       export.Options{XML: &xmlOpts},
		XSDPath:      filepath.Join(dir, "werke.xsd"),
	}, nil).Run(context.Background())
	require.NoError(t, result.Error)
	assert.Equal(t, filepath.Join(dir, "werke.xsd"), result.SchemaFile)

	doc, err := os.ReadFile(result.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(doc), `<record idx="3" year="2025" month="3">`)
	assert.Contains(t, string(doc), "<month_value>1250000</month_value>")

	xsd, err := os.ReadFile(result.SchemaFile)
	require.NoError(t, err)
	assert.Contains(t, string(xsd), `<xs:attribute name="idx"`)
}

func TestRun_GapsReported(t *testing.T) {
	input := writeInput(t, "gaps.csv", "Factory;1 kum;2 kum;3 kum\n;2025;2025;2025\nWerkA;100;;400\n")

	result := New(input, Options{Settings: config.DefaultConfig().CSV}, nil).Run(context.Background())
	require.NoError(t, result.Error)
	assert.Equal(t, []Gap{{Factory: "WerkA", Year: 2025, FromMonth: 1, ToMonth: 3}}, result.Gaps)
	assert.Equal(t, []float64{100, 300}, monthValues(result.Monthly))
}

func TestRun_TransformFailureSkipsSideEffects(t *testing.T) {
	input := writeInput(t, "broken.csv", "Factory;1 kum\n;2025\nWerkA;12a3\n")
	out := t.TempDir()

	opts := Options{
		Settings:   config.DefaultConfig().CSV,
		OutputPath: filepath.Join(out, "broken.csv"),
		StorePath:  filepath.Join(out, "broken.db"),
	}

	result := New(input, opts, nil).Run(context.Background())
	require.Error(t, result.Error)
	assert.False(t, result.Success)
	assert.True(t, errors.Is(result.Error, types.ErrNumberFormat))
	assert.Contains(t, result.Error.Error(), "transform failed")
	assert.Equal(t, "NumberFormatError", ErrorKind(result.Error))

	assert.NoFileExists(t, opts.OutputPath)
	assert.NoFileExists(t, opts.StorePath)
}

func TestRun_MalformedHeader(t *testing.T) {
	input := writeInput(t, "short.csv", "Factory;1 kum\n")

	result := New(input, Options{Settings: config.DefaultConfig().CSV}, nil).Run(context.Background())
	assert.True(t, errors.Is(result.Error, types.ErrMalformedHeader))
	assert.Equal(t, "MalformedHeader", ErrorKind(result.Error))
}

func TestRun_Workbook(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Factory", "1 kum", "2 kum"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{nil, 2025, 2025}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"WerkA", 1250.5, "2.500,5"}))
	input := filepath.Join(t.TempDir(), "werke.xlsx")
	require.NoError(t, f.SaveAs(input))
	require.NoError(t, f.Close())

	result := New(input, Options{Settings: config.DefaultConfig().CSV}, nil).Run(context.Background())
	require.NoError(t, result.Error)
	assert.Equal(t, []float64{1250.5, 1250}, monthValues(result.Monthly))
}

func TestErrorKind_Untyped(t *testing.T) {
	assert.Equal(t, "Error", ErrorKind(errors.New("disk full")))
}
