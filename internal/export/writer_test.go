package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/CSV-wide-to-long/internal/config"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/types"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/xmlwriter"
)

var testRecords = []types.NormalizedRecord{
	{Factory: "WerkA", Year: 2025, Month: 1, YTDValue: 1250000},
	{Factory: "Werk, Süd", Year: 2025, Month: 2, YTDValue: 1250.5},
}

func TestWriteRecords_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, config.FormatCSV, testRecords))

	assert.Equal(t,
		"factory,year,month,ytd_value\n"+
			"WerkA,2025,1,1250000\n"+
			"\"Werk, Süd\",2025,2,1250.5\n",
		buf.String())
}

func TestWriteRecords_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, config.FormatJSON, testRecords))

	var decoded []types.NormalizedRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, testRecords, decoded)
	assert.Contains(t, buf.String(), `"ytd_value": 1250000`)
}

func TestWriteRecords_EmptyJSONIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, config.FormatJSON, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteRecords_UnknownFormat(t *testing.T) {
	assert.Error(t, WriteRecords(&bytes.Buffer{}, "parquet", testRecords))
}

func TestWriteFile_Workbook(t *testing.T) {
	monthly := []types.MonthlyValue{
		{NormalizedRecord: testRecords[0], MonthValue: 1250000},
	}
	path := filepath.Join(t.TempDir(), "out", "wide.xlsx")
	require.NoError(t, WriteFile(path, config.FormatXLSX, testRecords, monthly, Options{}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetFactoryData, SheetMonthlyValues}, f.GetSheetList())

	rows, err := f.GetRows(SheetFactoryData)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"factory", "year", "month", "ytd_value"}, rows[0])
	assert.Equal(t, "WerkA", rows[1][0])

	rows, err = f.GetRows(SheetMonthlyValues)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "month_value", rows[0][4])
}

func TestWriteFile_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wide.csv")
	require.NoError(t, WriteFile(path, config.FormatCSV, testRecords, nil, Options{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "WerkA,2025,1,1250000")
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".csv", Extension(config.FormatCSV))
	assert.Equal(t, ".json", Extension(config.FormatJSON))
	assert.Equal(t, ".xlsx", Extension(config.FormatXLSX))
	assert.Equal(t, ".xml", Extension(config.FormatXML))
}

func TestWriteFile_XMLIncludesMonthlyValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "wide.xml")
	monthly := []types.MonthlyValue{{NormalizedRecord: testRecords[0], MonthValue: 1250000}}
	require.NoError(t, WriteFile(path, config.FormatXML, testRecords, monthly, Options{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<month_value>1250000</month_value>")
	assert.Contains(t, string(data), `<factory name="Werk, Süd">`)
}

func TestWriteFile_XMLWithConfiguredOptions(t *testing.T) {
	xmlOpts := XMLOptions(config.XMLSettings{
		Indent:              "\t",
		OmitDeclaration:     true,
		PerFactoryNumbering: true,
		IndexAttribute:      "idx",
		RootAttributes:      map[string]string{"xmlns": "urn:factories"},
	})
	path := filepath.Join(t.TempDir(), "wide.xml")
	require.NoError(t, WriteFile(path, config.FormatXML, testRecords, nil, Options{XML: &xmlOpts}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	s := string(data)
	assert.True(t, strings.HasPrefix(s, `<normalized xmlns="urn:factories">`))
	assert.Contains(t, s, "\n\t<factory")
	assert.Equal(t, 2, strings.Count(s, `idx="1"`))
	assert.NotContains(t, s, "<?xml")
}

func TestXMLOptions_Defaults(t *testing.T) {
	opts := XMLOptions(config.XMLSettings{})
	assert.Equal(t, xmlwriter.DefaultGenerateOptions(), opts)
}

func TestWriteXSD(t *testing.T) {
	opts := XMLOptions(config.XMLSettings{IndexAttribute: "idx"})
	path := filepath.Join(t.TempDir(), "schema", "wide.xsd")
	require.NoError(t, WriteXSD(path, opts))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<xs:attribute name="idx"`)
}
