package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/CSV-wide-to-long/internal/types"
)

func sampleRecords() ([]types.NormalizedRecord, []types.MonthlyValue) {
	records := []types.NormalizedRecord{
		{Factory: "WerkA", Year: 2025, Month: 1, YTDValue: 1250000},
		{Factory: "WerkA", Year: 2025, Month: 2, YTDValue: 2500000},
		{Factory: "WerkA", Year: 2025, Month: 3, YTDValue: 3750000},
	}
	monthly := []types.MonthlyValue{
		{NormalizedRecord: records[0], MonthValue: 1250000},
		{NormalizedRecord: records[1], MonthValue: 1250000},
		{NormalizedRecord: records[2], MonthValue: 1250000},
	}
	return records, monthly
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "factory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func countRows(t *testing.T, s *Store, table string) int {
	t.Helper()
	var n int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestLoad_WritesBothTables(t *testing.T) {
	s := openTestStore(t)
	records, monthly := sampleRecords()

	result, err := s.Load(context.Background(), records, monthly)
	require.NoError(t, err)
	assert.Equal(t, LoadResult{FactoryRows: 3, MonthlyRows: 3}, result)

	assert.Equal(t, 3, countRows(t, s, "factory_data"))
	assert.Equal(t, 3, countRows(t, s, "monthly_values"))

	var sum float64
	require.NoError(t, s.DB().QueryRow("SELECT SUM(month_value) FROM monthly_values").Scan(&sum))
	assert.Equal(t, 3750000.0, sum)
}

func TestLoad_AppendsOnReload(t *testing.T) {
	s := openTestStore(t)
	records, monthly := sampleRecords()

	_, err := s.Load(context.Background(), records, monthly)
	require.NoError(t, err)
	_, err = s.Load(context.Background(), records, monthly)
	require.NoError(t, err)

	assert.Equal(t, 6, countRows(t, s, "factory_data"))
	assert.Equal(t, 6, countRows(t, s, "monthly_values"))
}

func TestLoad_EmptyCreatesTables(t *testing.T) {
	s := openTestStore(t)

	result, err := s.Load(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, LoadResult{}, result)
	assert.Equal(t, 0, countRows(t, s, "factory_data"))
}

func TestLoad_RollsBackOnFailure(t *testing.T) {
	s := openTestStore(t)

	// A stricter pre-existing table makes the second insert batch fail.
	_, err := s.DB().Exec(`CREATE TABLE monthly_values (
		factory TEXT, year INTEGER, month INTEGER, ytd_value REAL,
		month_value REAL CHECK (month_value >= 0))`)
	require.NoError(t, err)

	records, monthly := sampleRecords()
	monthly[2].MonthValue = -1

	_, err = s.Load(context.Background(), records, monthly)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrDatabaseWrite))

	var typed *types.Error
	require.True(t, errors.As(err, &typed))
	assert.NotNil(t, typed.Unwrap())

	// factory_data was created inside the failed transaction, so it is gone.
	tables, err := s.Schema(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "monthly_values", tables[0].Name)
	assert.Equal(t, 0, countRows(t, s, "monthly_values"))
}

func TestLoad_ReadOnlyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factory.db")
	w, err := Open(path)
	require.NoError(t, err)
	_, err = w.Load(context.Background(), nil, nil)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := OpenReadOnly(path)
	require.NoError(t, err)
	defer r.Close()

	records, monthly := sampleRecords()
	_, err = r.Load(context.Background(), records, monthly)
	assert.True(t, errors.Is(err, types.ErrDatabaseWrite))
}

func TestOpenReadOnly_MissingFile(t *testing.T) {
	_, err := OpenReadOnly(filepath.Join(t.TempDir(), "absent.db"))
	assert.Error(t, err)
}

func TestSchema_ListsTables(t *testing.T) {
	s := openTestStore(t)
	records, monthly := sampleRecords()
	_, err := s.Load(context.Background(), records, monthly)
	require.NoError(t, err)

	tables, err := s.Schema(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 2)

	assert.Equal(t, "factory_data", tables[0].Name)
	assert.Equal(t, []Column{
		{Name: "factory", Type: "TEXT", NotNull: true},
		{Name: "year", Type: "INTEGER", NotNull: true},
		{Name: "month", Type: "INTEGER", NotNull: true},
		{Name: "ytd_value", Type: "REAL", NotNull: true},
	}, tables[0].Columns)

	assert.Equal(t, "monthly_values", tables[1].Name)
	assert.Len(t, tables[1].Columns, 5)
}
