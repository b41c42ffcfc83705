package guard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/CSV-wide-to-long/internal/types"
)

func TestCheck_Accepts(t *testing.T) {
	queries := []string{
		"SELECT * FROM factory_data WHERE year=2025",
		"  select factory, sum(month_value) from monthly_values group by factory",
		"SELECT 1;",
		"SELECT 1;  \n",
		"\n\tSelect updated_at, created FROM t",
		"SELECT*FROM factory_data",
	}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			assert.NoError(t, Check(q))
		})
	}
}

func TestCheck_Rejects(t *testing.T) {
	queries := []string{
		"",
		"   ",
		"DROP TABLE factory_data",
		"SELECT 1; DROP TABLE x",
		"SELECT 1;SELECT 2",
		"WITH x AS (SELECT 1) SELECT * FROM x",
		"-- comment\nSELECT 1",
		"SELECT * FROM factory_data WHERE factory = 'delete me'",
		"SELECT replace(factory, 'a', 'b') FROM factory_data",
		"select * from t where x in (select 1) /* pragma */",
		"INSERT INTO factory_data VALUES ('a', 2025, 1, 1)",
		"SELECTED FROM t",
		"sElEcT 1 ; attach database 'x' as y",
	}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			err := Check(q)
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrForbiddenStatement))

			var typed *types.Error
			require.True(t, errors.As(err, &typed))
			assert.Equal(t, q, typed.Query)
		})
	}
}

func TestCheck_MessageNamesKeyword(t *testing.T) {
	err := Check("SELECT * FROM t WHERE note = 'update'")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keyword UPDATE")
}
