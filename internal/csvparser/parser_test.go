package csvparser

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/CSV-wide-to-long/internal/config"
)

func defaultSettings() config.CSVSettings {
	return config.DefaultConfig().CSV
}

func TestReadString_SemicolonRows(t *testing.T) {
	text := "Factory;1 kum;2 kum\n;2025;2025\nWerkA;1.250.000;2.500.000\nWerkB;;-\n"

	rows, err := ReadString(text, defaultSettings())
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"Factory", "1 kum", "2 kum"},
		{"", "2025", "2025"},
		{"WerkA", "1.250.000", "2.500.000"},
		{"WerkB", "", "-"},
	}, rows)

	data := DataRows(rows)
	require.Len(t, data, 2)
	assert.Equal(t, "WerkA", data[0][0])
}

func TestRead_StripsBOMAndAllowsRaggedRows(t *testing.T) {
	text := "\uFEFFFactory;1 kum;2 kum;\n;2025;2025\nWerkA;\"1.250,5\"\n"

	rows, err := ReadString(text, defaultSettings())
	require.NoError(t, err)

	assert.Equal(t, "Factory", rows[0][0])
	assert.Len(t, rows[0], 4)
	assert.Equal(t, []string{"WerkA", "1.250,5"}, rows[2])
}

func TestReadFile_Windows1252(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("Werk;1 kum\n;2024\nWerk M")
	buf.WriteByte(0xFC) // ü in Windows-1252
	buf.WriteString("nchen;12\n")

	path := filepath.Join(t.TempDir(), "legacy.csv")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	settings := defaultSettings()
	settings.Encoding = "Windows-1252"

	rows, err := ReadFile(path, settings)
	require.NoError(t, err)
	assert.Equal(t, "Werk München", rows[2][0])
}

func TestRead_CustomDelimiter(t *testing.T) {
	settings := defaultSettings()
	settings.Delimiter = "|"

	rows, err := ReadString("Factory|1 kum\n|2025\n", settings)
	require.NoError(t, err)
	assert.Equal(t, []string{"Factory", "1 kum"}, rows[0])
}

func TestRead_UnsupportedEncoding(t *testing.T) {
	settings := defaultSettings()
	settings.Encoding = "EBCDIC"

	_, err := ReadString("a;b\n", settings)
	assert.Error(t, err)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"), defaultSettings())
	assert.Error(t, err)
}

func TestDataRows_HeaderOnly(t *testing.T) {
	assert.Empty(t, DataRows([][]string{{"a"}, {"b"}}))
	assert.Empty(t, DataRows(nil))
}

func TestIsRowEmpty(t *testing.T) {
	assert.True(t, IsRowEmpty([]string{"", "  ", ""}))
	assert.True(t, IsRowEmpty(nil))
	assert.False(t, IsRowEmpty([]string{"", "x"}))
}
