// =============================================================================
// Wide-to-Long Normalizer - Number Parser
// =============================================================================
//
// This module converts European-formatted numeric cell text into numbers.
//
// ACCEPTED SHAPES:
//   1.126.286     -> 1126286      ("." groups thousands)
//   1.250,5       -> 1250.5       ("," starts the fraction)
//   -12,75        -> -12.75
//   4711          -> 4711
//
// NO VALUE:
//   ""  (after trimming), "-" and the other configured no-data markers.
//   A missing reading is reported as NoValue, never as zero.
//
// Everything else fails with a NumberFormatError carrying the raw text.
//
// =============================================================================

package numparse

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/CSV-wide-to-long/internal/types"
)

// DefaultNoDataMarkers are the cell values treated as "no reading".
var DefaultNoDataMarkers = []string{"-", "–", "—"}

// europeanPattern matches digit groups separated by "." with an optional
// "," fraction and an optional leading "-". Plain digit runs without
// separators are accepted too.
var europeanPattern = regexp.MustCompile(`^-?(?:\d{1,3}(?:\.\d{3})+|\d+)(?:,\d+)?$`)

// =============================================================================
// RESULT TYPE
// =============================================================================

// Number is the outcome of parsing a cell: a value, or NoValue.
type Number struct {
	// Value is the parsed number. Only meaningful when Valid is true.
	Value decimal.Decimal

	// Valid is false for an empty cell or a no-data marker.
	Valid bool
}

// NoValue is the result for an empty cell.
var NoValue = Number{}

// Float64 returns the value as a float64. NoValue yields 0; check Valid first.
func (n Number) Float64() float64 {
	return n.Value.InexactFloat64()
}

// =============================================================================
// PARSER
// =============================================================================

// Parser parses European numeric cells. The zero value is not usable; use New.
type Parser struct {
	markers map[string]struct{}
}

// New creates a Parser that treats the given markers as "no value".
// With no markers, DefaultNoDataMarkers are used.
func New(markers ...string) *Parser {
	if len(markers) == 0 {
		markers = DefaultNoDataMarkers
	}
	p := &Parser{markers: make(map[string]struct{}, len(markers))}
	for _, m := range markers {
		m = strings.TrimSpace(m)
		if m != "" {
			p.markers[m] = struct{}{}
		}
	}
	return p
}

var defaultParser = New()

// Parse parses raw with the default no-data markers.
func Parse(raw string) (Number, error) {
	return defaultParser.Parse(raw)
}

// Parse converts a raw cell into a Number.
//
// PARAMETERS:
//   - raw: The cell text as read from the file.
//
// RETURNS:
//   - NoValue for an empty cell or a no-data marker.
//   - The parsed Number otherwise.
//   - A NumberFormatError when the text is not a European number.
func (p *Parser) Parse(raw string) (Number, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return NoValue, nil
	}
	if _, ok := p.markers[s]; ok {
		return NoValue, nil
	}

	if !europeanPattern.MatchString(s) {
		return NoValue, types.NewError(types.KindNumberFormat, "not a European formatted number").WithValue(raw)
	}

	// Drop thousands separators, then turn the decimal comma into a point.
	normalized := strings.ReplaceAll(s, ".", "")
	normalized = strings.Replace(normalized, ",", ".", 1)

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return NoValue, types.NewError(types.KindNumberFormat, "not a European formatted number").WithValue(raw).Wrap(err)
	}
	return Number{Value: d, Valid: true}, nil
}
