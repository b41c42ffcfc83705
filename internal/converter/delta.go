// =============================================================================
// Wide-to-Long Normalizer - Monthly Delta Calculator
// =============================================================================
//
// Source figures are cumulative (year-to-date). This module derives the
// per-month figure as the difference between successive readings of the same
// factory and year.
//
// CALCULATION:
//   - Group records by (factory, year)
//   - Order each group by month (stable)
//   - First month in the group: month_value = ytd_value
//   - Later months: month_value = ytd_value - ytd_value of the previous month
//     present in the data, across gaps if months are missing
//
// The result has one MonthlyValue per input record, at the same position.
//
// =============================================================================

package converter

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/CSV-wide-to-long/internal/types"
)

type groupKey struct {
	factory string
	year    int
}

// CalculateMonthly derives month values from year-to-date records.
//
// PARAMETERS:
//   - records: All records of one transform.
//
// RETURNS:
//   - One MonthlyValue per record; result[i] describes records[i].
func CalculateMonthly(records []types.NormalizedRecord) []types.MonthlyValue {
	result := make([]types.MonthlyValue, len(records))

	for _, indexes := range groupIndexes(records) {
		var previous decimal.Decimal
		for n, idx := range indexes {
			rec := records[idx]
			current := decimal.NewFromFloat(rec.YTDValue)

			month := current
			if n > 0 {
				month = current.Sub(previous)
			}
			previous = current

			result[idx] = types.MonthlyValue{
				NormalizedRecord: rec,
				MonthValue:       month.InexactFloat64(),
			}
		}
	}

	return result
}

// groupIndexes returns record positions per (factory, year), each sorted by
// month. Groups are listed in order of first appearance.
func groupIndexes(records []types.NormalizedRecord) [][]int {
	positions := make(map[groupKey]int)
	var groups [][]int

	for i, rec := range records {
		key := groupKey{factory: rec.Factory, year: rec.Year}
		g, ok := positions[key]
		if !ok {
			g = len(groups)
			positions[key] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}

	for _, indexes := range groups {
		sort.SliceStable(indexes, func(a, b int) bool {
			return records[indexes[a]].Month < records[indexes[b]].Month
		})
	}
	return groups
}

// =============================================================================
// GAP DETECTION
// =============================================================================

// Gap describes missing months between two readings of one factory and year.
type Gap struct {
	Factory   string
	Year      int
	FromMonth int
	ToMonth   int
}

// FindGaps lists every pair of successive readings whose months are not
// adjacent. A group starting after January is not reported.
func FindGaps(records []types.NormalizedRecord) []Gap {
	var gaps []Gap
	for _, indexes := range groupIndexes(records) {
		for n := 1; n < len(indexes); n++ {
			prev, cur := records[indexes[n-1]], records[indexes[n]]
			if cur.Month-prev.Month > 1 {
				gaps = append(gaps, Gap{
					Factory:   cur.Factory,
					Year:      cur.Year,
					FromMonth: prev.Month,
					ToMonth:   cur.Month,
				})
			}
		}
	}
	return gaps
}
