// =============================================================================
// Wide-to-Long Normalizer - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration.
//
// SOURCES (later sources override earlier ones):
//   1. Built-in defaults
//   2. Main config file (config.yaml)
//   3. Environment variables with the NORMALIZER_ prefix
//      e.g. NORMALIZER_LOG_LEVEL=debug, NORMALIZER_CSV_ENCODING=Windows-1252
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// xmlName matches the attribute names accepted in the xml settings.
var xmlName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.:-]*$`)

// DefaultConfigFile is the config path used when --config is not given.
const DefaultConfigFile = "config.yaml"

// EnvPrefix is the prefix of all environment overrides.
const EnvPrefix = "NORMALIZER"

// Output formats for normalized records.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
	FormatXML  = "xml"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned by the process command.
	// Default: "./input"
	InputDir string `yaml:"input_dir" envconfig:"INPUT_DIR"`

	// OutputDir receives spec files and normalized output.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`

	// DataDir holds the SQLite stores, one per input file.
	// Default: "./data"
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR"`

	// InputArchiveDir receives input files after successful processing
	// when ArchiveOnSuccess is set.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir" envconfig:"INPUT_ARCHIVE_DIR"`

	// ArchiveOnSuccess moves processed input files to InputArchiveDir.
	// Default: false
	ArchiveOnSuccess bool `yaml:"archive_on_success" envconfig:"ARCHIVE_ON_SUCCESS"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is an optional log file in addition to stderr.
	LogFile string `yaml:"log_file" envconfig:"LOG_FILE"`

	// LogLevel controls verbosity: "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputFormat is the normalized output format: "csv", "json", "xlsx" or "xml".
	// Default: "csv"
	OutputFormat string `yaml:"output_format" envconfig:"OUTPUT_FORMAT"`

	// OutputNameFormat names normalized output files.
	// Placeholders:
	//   {name}      - Input file name without extension
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	// Default: "{name}_normalized"
	OutputNameFormat string `yaml:"output_name_format" envconfig:"OUTPUT_NAME_FORMAT"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency bounds the number of files processed at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency" envconfig:"MAX_CONCURRENCY"`

	// CSV contains the input parsing settings.
	CSV CSVSettings `yaml:"csv" envconfig:"CSV"`

	// XML contains the settings of the xml output format.
	XML XMLSettings `yaml:"xml" envconfig:"XML"`
}

// =============================================================================
// XML SETTINGS STRUCTURE
// =============================================================================

// XMLSettings shape the documents of the xml output format.
type XMLSettings struct {
	// Indent is the indentation unit.
	// Default: "  " (two spaces)
	Indent string `yaml:"indent" envconfig:"INDENT"`

	// OmitDeclaration drops the <?xml ...?> declaration.
	// Default: false
	OmitDeclaration bool `yaml:"omit_declaration" envconfig:"OMIT_DECLARATION"`

	// PerFactoryNumbering restarts record numbering at 1 for each factory
	// instead of numbering across the whole document.
	// Default: false
	PerFactoryNumbering bool `yaml:"per_factory_numbering" envconfig:"PER_FACTORY_NUMBERING"`

	// IndexAttribute names the record index attribute.
	// Default: "n"
	IndexAttribute string `yaml:"index_attribute" envconfig:"INDEX_ATTRIBUTE"`

	// RootAttributes are written on the root element, e.g. an xmlns.
	// Environment form: NORMALIZER_XML_ROOT_ATTRIBUTES=source:werke,version:2
	RootAttributes map[string]string `yaml:"root_attributes" envconfig:"ROOT_ATTRIBUTES"`

	// WriteXSD makes the process command write a matching <name>.xsd next
	// to every xml output.
	// Default: false
	WriteXSD bool `yaml:"write_xsd" envconfig:"WRITE_XSD"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for reading wide input files.
type CSVSettings struct {
	// Delimiter is the single character separating fields.
	// Default: ";"
	Delimiter string `yaml:"delimiter" envconfig:"DELIMITER"`

	// Encoding is the character encoding of the input.
	// Supported: "UTF-8", "ISO-8859-1", "ISO-8859-15", "Windows-1252"
	// Default: "UTF-8"
	Encoding string `yaml:"encoding" envconfig:"ENCODING"`

	// NoDataMarkers are cell values meaning "no reading".
	// Default: ["-", "–", "—"]
	NoDataMarkers []string `yaml:"no_data_markers" envconfig:"NO_DATA_MARKERS"`

	// MinYear and MaxYear bound plausible header years.
	// Default: 1900 / 2100
	MinYear int `yaml:"min_year" envconfig:"MIN_YEAR"`
	MaxYear int `yaml:"max_year" envconfig:"MAX_YEAR"`

	// Sheet selects the worksheet of .xlsx inputs. Empty means the first sheet.
	Sheet string `yaml:"sheet" envconfig:"SHEET"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *MainConfig {
	cfg := &MainConfig{}
	applyMainConfigDefaults(cfg)
	return cfg
}

// LoadMainConfig loads the main configuration.
//
// PARAMETERS:
//   - configPath: The path to the YAML file. A missing file at
//     DefaultConfigFile is not an error; defaults are used instead.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read or parsed, or the result is invalid.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	var config MainConfig

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && configPath == DefaultConfigFile:
		// No config file; stay on defaults.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Environment overrides. Unset variables leave the file values intact.
	if err := envconfig.Process(EnvPrefix, &config); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.DataDir == "" {
		config.DataDir = "./data"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.OutputFormat == "" {
		config.OutputFormat = FormatCSV
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{name}_normalized"
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}

	// CSV settings defaults.
	if config.CSV.Delimiter == "" {
		config.CSV.Delimiter = ";"
	}
	if config.CSV.Encoding == "" {
		config.CSV.Encoding = "UTF-8"
	}
	if len(config.CSV.NoDataMarkers) == 0 {
		config.CSV.NoDataMarkers = []string{"-", "–", "—"}
	}
	if config.CSV.MinYear == 0 {
		config.CSV.MinYear = 1900
	}
	if config.CSV.MaxYear == 0 {
		config.CSV.MaxYear = 2100
	}

	// XML settings defaults.
	if config.XML.Indent == "" {
		config.XML.Indent = "  "
	}
	if config.XML.IndexAttribute == "" {
		config.XML.IndexAttribute = "n"
	}
}

// Validate checks the configuration for inconsistent settings.
func (c *MainConfig) Validate() error {
	switch c.OutputFormat {
	case FormatCSV, FormatJSON, FormatXLSX, FormatXML:
	default:
		return fmt.Errorf("unknown output_format %q", c.OutputFormat)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}

	if err := c.CSV.Validate(); err != nil {
		return err
	}
	return c.XML.Validate()
}

// Validate checks the XML settings. Attribute names must be XML names.
func (s XMLSettings) Validate() error {
	if !xmlName.MatchString(s.IndexAttribute) {
		return fmt.Errorf("invalid xml index_attribute %q", s.IndexAttribute)
	}
	for name := range s.RootAttributes {
		if !xmlName.MatchString(name) {
			return fmt.Errorf("invalid xml root attribute name %q", name)
		}
	}
	if strings.Trim(s.Indent, " \t") != "" {
		return fmt.Errorf("xml indent must be spaces or tabs, got %q", s.Indent)
	}
	return nil
}

// Validate checks the CSV settings.
func (s CSVSettings) Validate() error {
	if utf8.RuneCountInString(s.Delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", s.Delimiter)
	}
	if !IsSupportedEncoding(s.Encoding) {
		return fmt.Errorf("unsupported encoding %q", s.Encoding)
	}
	if s.MinYear > s.MaxYear {
		return fmt.Errorf("min_year %d is after max_year %d", s.MinYear, s.MaxYear)
	}
	return nil
}

// DelimiterRune returns the delimiter as a rune.
func (s CSVSettings) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(s.Delimiter)
	return r
}

// IsSupportedEncoding reports whether name is one of the input encodings the
// CSV reader can decode.
func IsSupportedEncoding(name string) bool {
	switch NormalizeEncoding(name) {
	case "utf-8", "iso-8859-1", "iso-8859-15", "windows-1252":
		return true
	}
	return false
}

// NormalizeEncoding lowercases an encoding name and folds common aliases.
func NormalizeEncoding(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "", "utf8", "utf-8":
		return "utf-8"
	case "latin1", "latin-1", "iso8859-1", "iso-8859-1":
		return "iso-8859-1"
	case "latin9", "latin-9", "iso8859-15", "iso-8859-15":
		return "iso-8859-15"
	case "cp1252", "windows1252", "windows-1252":
		return "windows-1252"
	}
	return n
}
