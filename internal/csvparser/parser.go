// =============================================================================
// Wide-to-Long Normalizer - CSV Reader Module
// =============================================================================
//
// This module reads wide CSV exports into a raw row grid. It does not
// interpret the header; that is the analyzer's job.
//
// FEATURES:
//   - Configurable single-character delimiter (default ";")
//   - Legacy 8-bit encodings decoded to UTF-8 (ISO-8859-1/15, Windows-1252)
//   - UTF-8 byte order mark removed from the first cell
//   - Variable field counts per row and lazy quotes
//
// FILE SHAPE:
//   Row 1: Factory;1 kum;2 kum;3 kum       <- month labels
//   Row 2: ;2025;2025;2025                 <- years
//   Row 3+: WerkA;1.250.000;2.500.000;...  <- data rows
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/CSV-wide-to-long/internal/config"
)

// HeaderRows is the number of header rows of a wide file.
const HeaderRows = 2

const utf8BOM = "\uFEFF"

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ReadFile reads a CSV file and returns all rows, headers included.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The CSV reading settings.
//
// RETURNS:
//   - All rows as string slices.
//   - An error if the file cannot be opened, decoded or parsed.
func ReadFile(filePath string, settings config.CSVSettings) ([][]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Read(file, settings)
}

// ReadString reads CSV text held in memory.
func ReadString(text string, settings config.CSVSettings) ([][]string, error) {
	return Read(strings.NewReader(text), settings)
}

// Read reads all rows from r using the given settings.
func Read(r io.Reader, settings config.CSVSettings) ([][]string, error) {
	decoded, err := decode(r, settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(bufio.NewReader(decoded))
	configureReader(csvReader, settings)

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}

	return rows, nil
}

// DataRows returns the rows after the two header rows.
func DataRows(rows [][]string) [][]string {
	if len(rows) <= HeaderRows {
		return [][]string{}
	}
	return rows[HeaderRows:]
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	reader.Comma = ';'
	if settings.Delimiter != "" {
		reader.Comma = settings.DelimiterRune()
	}

	// Exports are not strict about trailing separators or quoting.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

// decode wraps r with a decoder for the named encoding.
func decode(r io.Reader, name string) (io.Reader, error) {
	enc, err := lookupEncoding(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return r, nil
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// lookupEncoding maps an encoding name to an x/text encoding.
// UTF-8 returns nil: no decoding needed.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch config.NormalizeEncoding(name) {
	case "utf-8":
		return nil, nil
	case "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "iso-8859-15":
		return charmap.ISO8859_15, nil
	case "windows-1252":
		return charmap.Windows1252, nil
	}
	return nil, fmt.Errorf("unsupported encoding: %s", name)
}

// IsRowEmpty checks if a row contains only empty values.
func IsRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
