package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tordrt/tablenorm/internal/table"
)

// PostgresClient manages the connection to PostgreSQL
type PostgresClient struct {
	conn   *pgx.Conn
	schema string
}

// NewPostgresClient creates a new PostgreSQL client. An empty schemaName
// selects "public".
func NewPostgresClient(ctx context.Context, connString, schemaName string) (*PostgresClient, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if schemaName == "" {
		schemaName = "public"
	}
	return &PostgresClient{conn: conn, schema: schemaName}, nil
}

// Close closes the database connection
func (c *PostgresClient) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// GetConnection returns the underlying connection
func (c *PostgresClient) GetConnection() *pgx.Conn {
	return c.conn
}

// ListTables returns the base tables of the client's schema
func (c *PostgresClient) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := c.conn.Query(ctx, query, c.schema)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (c *PostgresClient) ident(name string) string {
	return pgx.Identifier{c.schema, name}.Sanitize()
}

// LoadTable reads a table
func (c *PostgresClient) LoadTable(ctx context.Context, name string, limit int) (*table.Table, error) {
	tables, err := c.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	if !containsTable(tables, name) {
		return nil, notFound(name, tables)
	}

	query := "SELECT * FROM " + c.ident(name)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := c.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", name, err)
	}
	defer rows.Close()

	var columns []string
	for _, fd := range rows.FieldDescriptions() {
		columns = append(columns, fd.Name)
	}
	t, err := table.New(columns...)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		for i, v := range values {
			values[i] = convertPostgresValue(v)
		}
		if err := t.AppendRow(values...); err != nil {
			return nil, err
		}
	}

	return t, rows.Err()
}

// DropTable drops a table if it exists, together with dependent constraints
func (c *PostgresClient) DropTable(ctx context.Context, name string) error {
	if _, err := c.conn.Exec(ctx, "DROP TABLE IF EXISTS "+c.ident(name)+" CASCADE"); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", name, err)
	}
	return nil
}

// WriteTable creates a table and copies the rows into it
func (c *PostgresClient) WriteTable(ctx context.Context, def TableDef, t *table.Table) (int64, error) {
	tx, err := c.conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "SET LOCAL search_path TO "+pgx.Identifier{c.schema}.Sanitize()); err != nil {
		return 0, fmt.Errorf("failed to set search path: %w", err)
	}
	if _, err := tx.Exec(ctx, postgresDialect.createTableSQL(def)); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", def.Name, err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{c.schema, def.Name}, t.Columns(), pgx.CopyFromRows(t.Rows()))
	if err != nil {
		return 0, fmt.Errorf("failed to copy rows into %s: %w", def.Name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return n, nil
}

// convertPostgresValue turns numeric values into float64 so they compare and
// format like other numbers
func convertPostgresValue(v any) any {
	switch x := v.(type) {
	case pgtype.Numeric:
		f, err := x.Float64Value()
		if err == nil && f.Valid {
			return f.Float64
		}
	case []byte:
		return string(x)
	}
	return v
}
