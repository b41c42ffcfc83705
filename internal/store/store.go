// =============================================================================
// Wide-to-Long Normalizer - SQLite Store
// =============================================================================
//
// This module owns the SQLite handle that normalized data is loaded into and
// queried from. A Store is an explicitly passed, scoped handle: callers open
// it for an operation and close it afterwards. Independent stores may be used
// concurrently; the same store file is not coordinated beyond SQLite locking.
//
// HANDLE MODES:
//   - Open:         read-write, creates the file and parent directories
//   - OpenReadOnly: mode=ro plus query_only, the file must already exist
//
// TABLES (see schema.sql):
//   factory_data(factory, year, month, ytd_value)
//   monthly_values(factory, year, month, ytd_value, month_value)
//
// =============================================================================

package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// driverName is the database/sql name registered by modernc.org/sqlite.
const driverName = "sqlite"

// busyTimeoutMillis bounds how long a writer waits for a file lock.
const busyTimeoutMillis = 5000

// busyTimeoutPragma is the DSN parameter applied to every new connection.
func busyTimeoutPragma() string {
	return fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeoutMillis)
}

// Store is a SQLite database holding normalized factory data.
type Store struct {
	db       *sql.DB
	path     string
	readOnly bool
}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// Open opens or creates a writable store at path.
//
// PARAMETERS:
//   - path: The database file. Parent directories are created.
//
// RETURNS:
//   - The Store. Tables are created on the first Load.
//   - An error if the file cannot be opened.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open(driverName, path+"?"+busyTimeoutPragma())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer. Pragmas come from the DSN so a replaced
	// connection gets them too.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// OpenReadOnly opens an existing store for queries only.
func OpenReadOnly(path string) (*Store, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("failed to open database: %s is a directory", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	dsn := "file:" + filepath.ToSlash(abs) + "?mode=ro&" + busyTimeoutPragma() + "&_pragma=query_only(1)"
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db, path: path, readOnly: true}, nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Close closes the database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ReadOnly reports whether the store was opened with OpenReadOnly.
func (s *Store) ReadOnly() bool {
	return s.readOnly
}

// =============================================================================
// SCHEMA LISTING
// =============================================================================

// Column is one column of a store table.
type Column struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	NotNull    bool   `json:"not_null"`
	PrimaryKey bool   `json:"primary_key"`
}

// Table describes one store table.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Schema lists the user tables of the store and their columns, ordered by
// table name.
func (s *Store) Schema(ctx context.Context) ([]Table, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	rows.Close()

	tables := make([]Table, 0, len(names))
	for _, name := range names {
		cols, err := s.columns(ctx, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, Table{Name: name, Columns: cols})
	}
	return tables, nil
}

func (s *Store) columns(ctx context.Context, table string) ([]Column, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, type, "notnull", pk FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var c Column
		var notNull, pk int
		if err := rows.Scan(&c.Name, &c.Type, &notNull, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		c.NotNull = notNull != 0
		c.PrimaryKey = pk != 0
		cols = append(cols, c)
	}
	return cols, rows.Err()
}
