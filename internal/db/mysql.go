package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/tordrt/tablenorm/internal/table"
)

// MySQLClient manages the connection to MySQL
type MySQLClient struct {
	store  *sqlStore
	dbName string
}

// NewMySQLClient creates a new MySQL client from a driver DSN such as
// user:pass@tcp(host:3306)/database
func NewMySQLClient(ctx context.Context, dsn string) (*MySQLClient, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if cfg.DBName == "" {
		return nil, fmt.Errorf("connection string must name a database")
	}
	cfg.ParseTime = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db := sql.OpenDB(connector)

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &MySQLClient{
		store:  &sqlStore{db: db, dialect: mysqlDialect, convert: convertMySQLValue},
		dbName: cfg.DBName,
	}, nil
}

// Close closes the database connection
func (c *MySQLClient) Close(_ context.Context) error {
	return c.store.db.Close()
}

// GetDB returns the underlying database connection
func (c *MySQLClient) GetDB() *sql.DB {
	return c.store.db
}

// DatabaseName returns the database named by the connection string
func (c *MySQLClient) DatabaseName() string {
	return c.dbName
}

// ListTables returns the base tables of the connected database
func (c *MySQLClient) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`
	return c.store.queryNames(ctx, query, c.dbName)
}

// LoadTable reads a table
func (c *MySQLClient) LoadTable(ctx context.Context, name string, limit int) (*table.Table, error) {
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
func (c *MySQLClient) DropTable(ctx context.Context, name string) error {
	return c.store.drop(ctx, name)
}

// WriteTable creates a table and fills it
func (c *MySQLClient) WriteTable(ctx context.Context, def TableDef, t *table.Table) (int64, error) {
	return c.store.write(ctx, def, t)
}

// convertMySQLValue parses numbers that the text protocol returns as strings
func convertMySQLValue(v any, dbType string) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	switch strings.TrimPrefix(dbType, "UNSIGNED ") {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "BIGINT", "YEAR":
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case "FLOAT", "DOUBLE", "DECIMAL":
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return v
}
