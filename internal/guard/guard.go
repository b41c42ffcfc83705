// =============================================================================
// Wide-to-Long Normalizer - Query Guard
// =============================================================================
//
// This module decides whether caller-supplied SQL may run against a store.
// Only a single SELECT statement is admitted. The check is purely textual and
// runs before any connection is used.
//
// RULES (any violation -> ForbiddenStatement):
//   1. The first word must be SELECT (any case).
//   2. No ";" may be followed by anything but whitespace.
//   3. No denylisted keyword may appear as a whole word anywhere, including
//      inside string literals and comments.
//
// Execution still happens on a read-only connection, so the guard is not the
// only barrier against writes.
//
// =============================================================================

package guard

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ginjaninja78/CSV-wide-to-long/internal/types"
)

// Denylist holds the keywords rejected anywhere in a query.
var Denylist = []string{
	"INSERT",
	"UPDATE",
	"DELETE",
	"DROP",
	"ALTER",
	"ATTACH",
	"PRAGMA",
	"CREATE",
	"REPLACE",
}

var (
	firstWord   = regexp.MustCompile(`^\s*(\w+)`)
	stacked     = regexp.MustCompile(`;\s*\S`)
	denyPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(Denylist, "|") + `)\b`)
)

// Check validates query text.
//
// RETURNS:
//   - nil if the query may be executed.
//   - A ForbiddenStatement error carrying the query text otherwise.
func Check(query string) error {
	m := firstWord.FindStringSubmatch(query)
	if m == nil {
		return forbidden(query, "query is empty or does not start with a keyword")
	}
	if !strings.EqualFold(m[1], "SELECT") {
		return forbidden(query, fmt.Sprintf("only SELECT statements are allowed, got %s", strings.ToUpper(m[1])))
	}

	if stacked.MatchString(query) {
		return forbidden(query, "multiple statements are not allowed")
	}

	if kw := denyPattern.FindString(query); kw != "" {
		return forbidden(query, fmt.Sprintf("keyword %s is not allowed", strings.ToUpper(kw)))
	}

	return nil
}

func forbidden(query, msg string) error {
	return types.NewError(types.KindForbiddenStatement, msg).WithQuery(query)
}
