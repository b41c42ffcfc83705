package store

import (
	"context"
	"database/sql"
	"database/sql/driver"

	"github.com/ginjaninja78/CSV-wide-to-long/internal/guard"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/types"
)

// queryOnlyOff restores a writable connection after a query.
var queryOnlyOff = "PRAGMA query_only = OFF"

// QueryResult holds the columns and rows of a guarded SELECT.
// Values are int64, float64, string or nil.
type QueryResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Query runs caller-supplied SQL after the Query Guard admits it.
//
// The statement runs on one pinned connection. On a writable store the
// connection is switched to query_only for the duration of the call and
// discarded if it cannot be switched back.
//
// RETURNS:
//   - The column names and rows.
//   - ForbiddenStatement if the guard rejects the text. The store is not used.
//   - QueryExecutionError for SQLite failures such as unknown columns.
func (s *Store) Query(ctx context.Context, query string) (*QueryResult, error) {
	if err := guard.Check(query); err != nil {
		return nil, err
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, execError(query, "failed to acquire connection", err)
	}
	defer conn.Close()

	if !s.readOnly {
		if _, err := conn.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
			return nil, execError(query, "failed to enable query_only", err)
		}
		defer restoreWritable(conn)
	}

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, execError(query, "query failed", err)
	}
	defer rows.Close()

	return collect(query, rows)
}

// restoreWritable switches a connection back from query_only. When that
// fails the connection is discarded so the pool never hands a query-only
// handle to a later Load; replacements get their pragmas from the DSN.
func restoreWritable(conn *sql.Conn) {
	if _, err := conn.ExecContext(context.Background(), queryOnlyOff); err != nil {
		_ = conn.Raw(func(any) error { return driver.ErrBadConn })
	}
}

func collect(query string, rows *sql.Rows) (*QueryResult, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, execError(query, "failed to read columns", err)
	}

	result := &QueryResult{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, execError(query, "failed to scan row", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, execError(query, "query failed", err)
	}
	return result, nil
}

func execError(query, msg string, err error) error {
	return types.NewError(types.KindQueryExecution, msg).WithQuery(query).Wrap(err)
}
