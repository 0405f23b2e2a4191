package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tordrt/tablenorm/internal/table"
)

// SQLiteClient manages the connection to SQLite
type SQLiteClient struct {
	store *sqlStore
}

// NewSQLiteClient creates a new SQLite client. The database file is created
// when it does not exist.
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteClient{store: &sqlStore{
		db:      db,
		dialect: sqliteDialect,
		convert: func(v any, _ string) any { return v },
	}}, nil
}

// Close closes the database connection
func (c *SQLiteClient) Close(_ context.Context) error {
	return c.store.db.Close()
}

// GetDB returns the underlying database connection
func (c *SQLiteClient) GetDB() *sql.DB {
	return c.store.db
}

// ListTables returns all user tables
func (c *SQLiteClient) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`
	return c.store.queryNames(ctx, query)
}

// LoadTable reads a table
func (c *SQLiteClient) LoadTable(ctx context.Context, name string, limit int) (*table.Table, error) {
	tables, err := c.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	if !containsTable(tables, name) {
		return nil, notFound(name, tables)
	}
	return c.store.load(ctx, name, limit)
}

// DropTable drops a table if it exists
func (c *SQLiteClient) DropTable(ctx context.Context, name string) error {
	return c.store.drop(ctx, name)
}

// WriteTable creates a table and fills it
func (c *SQLiteClient) WriteTable(ctx context.Context, def TableDef, t *table.Table) (int64, error) {
	return c.store.write(ctx, def, t)
}
