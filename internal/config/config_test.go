package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMainConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "{}\n")

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "./input", cfg.InputDir)
	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, FormatCSV, cfg.OutputFormat)
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.Equal(t, ";", cfg.CSV.Delimiter)
	assert.Equal(t, ';', cfg.CSV.DelimiterRune())
	assert.Equal(t, "UTF-8", cfg.CSV.Encoding)
	assert.Equal(t, []string{"-", "–", "—"}, cfg.CSV.NoDataMarkers)
	assert.Equal(t, 1900, cfg.CSV.MinYear)
	assert.Equal(t, 2100, cfg.CSV.MaxYear)
	assert.False(t, cfg.ArchiveOnSuccess)
}

func TestLoadMainConfig_FileValues(t *testing.T) {
	path := writeConfig(t, `
input_dir: /srv/in
data_dir: /srv/db
output_format: json
max_concurrency: 2
csv:
  encoding: Windows-1252
  no_data_markers: ["-", "n/a"]
  min_year: 2000
  max_year: 2030
`)

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/in", cfg.InputDir)
	assert.Equal(t, "/srv/db", cfg.DataDir)
	assert.Equal(t, FormatJSON, cfg.OutputFormat)
	assert.Equal(t, 2, cfg.MaxConcurrency)
	assert.Equal(t, "Windows-1252", cfg.CSV.Encoding)
	assert.Equal(t, []string{"-", "n/a"}, cfg.CSV.NoDataMarkers)
	assert.Equal(t, 2000, cfg.CSV.MinYear)
	assert.Equal(t, 2030, cfg.CSV.MaxYear)
}

func TestLoadMainConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "log_level: info\ncsv:\n  delimiter: \";\"\n")

	t.Setenv("NORMALIZER_LOG_LEVEL", "debug")
	t.Setenv("NORMALIZER_CSV_ENCODING", "ISO-8859-1")
	t.Setenv("NORMALIZER_ARCHIVE_ON_SUCCESS", "true")

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "ISO-8859-1", cfg.CSV.Encoding)
	assert.Equal(t, ";", cfg.CSV.Delimiter)
	assert.True(t, cfg.ArchiveOnSuccess)
}

func TestLoadMainConfig_XMLSettings(t *testing.T) {
	path := writeConfig(t, "output_format: xml\nxml:\n  per_factory_numbering: true\n  index_attribute: idx\n  root_attributes:\n    xmlns: urn:factories\n")

	t.Setenv("NORMALIZER_XML_WRITE_XSD", "true")

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, FormatXML, cfg.OutputFormat)
	assert.True(t, cfg.XML.PerFactoryNumbering)
	assert.True(t, cfg.XML.WriteXSD)
	assert.False(t, cfg.XML.OmitDeclaration)
	assert.Equal(t, "idx", cfg.XML.IndexAttribute)
	assert.Equal(t, "  ", cfg.XML.Indent)
	assert.Equal(t, map[string]string{"xmlns": "urn:factories"}, cfg.XML.RootAttributes)
}

func TestLoadMainConfig_MissingFile(t *testing.T) {
	_, err := LoadMainConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadMainConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown output format", "output_format: parquet\n"},
		{"unknown log level", "log_level: chatty\n"},
		{"multi character delimiter", "csv:\n  delimiter: \";;\"\n"},
		{"unsupported encoding", "csv:\n  encoding: EBCDIC\n"},
		{"inverted year bounds", "csv:\n  min_year: 2050\n  max_year: 2000\n"},
		{"malformed yaml", "csv: [\n"},
		{"bad xml index attribute", "xml:\n  index_attribute: \"1 n\"\n"},
		{"bad xml root attribute", "xml:\n  root_attributes:\n    \"a b\": x\n"},
		{"xml indent not whitespace", "xml:\n  indent: \"--\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadMainConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestNormalizeEncoding(t *testing.T) {
	assert.Equal(t, "utf-8", NormalizeEncoding(""))
	assert.Equal(t, "iso-8859-1", NormalizeEncoding("Latin1"))
	assert.Equal(t, "windows-1252", NormalizeEncoding("CP1252"))
	assert.Equal(t, "iso-8859-15", NormalizeEncoding("ISO-8859-15"))
	assert.True(t, IsSupportedEncoding("utf8"))
	assert.False(t, IsSupportedEncoding("shift_jis"))
}
