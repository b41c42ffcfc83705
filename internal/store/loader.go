package store

import (
	"context"
	"database/sql"

	"github.com/ginjaninja78/CSV-wide-to-long/internal/types"
)

// LoadResult reports how many rows one Load wrote per table.
type LoadResult struct {
	FactoryRows int `json:"factory_data"`
	MonthlyRows int `json:"monthly_values"`
}

// Load creates the tables if needed and inserts both record sets in one
// transaction. Either every row of the call is committed or none is.
//
// Rows are appended. Loading the same records twice doubles the row counts;
// callers that want a fresh store recreate the file.
//
// RETURNS:
//   - The rows written per table.
//   - A DatabaseWriteError wrapping the SQLite error on failure.
func (s *Store) Load(ctx context.Context, records []types.NormalizedRecord, monthly []types.MonthlyValue) (LoadResult, error) {
	var result LoadResult

	if s.readOnly {
		return result, types.NewError(types.KindDatabaseWrite, "store is read-only")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, writeError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return result, writeError("failed to create tables", err)
	}

	factoryRows, err := insertFactoryData(ctx, tx, records)
	if err != nil {
		return result, err
	}

	monthlyRows, err := insertMonthlyValues(ctx, tx, monthly)
	if err != nil {
		return result, err
	}

	if err := tx.Commit(); err != nil {
		return result, writeError("failed to commit transaction", err)
	}

	result.FactoryRows = factoryRows
	result.MonthlyRows = monthlyRows
	return result, nil
}

func insertFactoryData(ctx context.Context, tx *sql.Tx, records []types.NormalizedRecord) (int, error) {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO factory_data (factory, year, month, ytd_value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, writeError("failed to prepare factory_data insert", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Factory, r.Year, r.Month, r.YTDValue); err != nil {
			return 0, writeError("failed to insert into factory_data", err)
		}
	}
	return len(records), nil
}

func insertMonthlyValues(ctx context.Context, tx *sql.Tx, monthly []types.MonthlyValue) (int, error) {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO monthly_values (factory, year, month, ytd_value, month_value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, writeError("failed to prepare monthly_values insert", err)
	}
	defer stmt.Close()

	for _, m := range monthly {
		if _, err := stmt.ExecContext(ctx, m.Factory, m.Year, m.Month, m.YTDValue, m.MonthValue); err != nil {
			return 0, writeError("failed to insert into monthly_values", err)
		}
	}
	return len(monthly), nil
}

func writeError(msg string, err error) error {
	return types.NewError(types.KindDatabaseWrite, msg).Wrap(err)
}
