package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tordrt/tablenorm/internal/table"
)

// sqlStore implements loading and writing on top of database/sql for the
// drivers that register with it
type sqlStore struct {
	db      *sql.DB
	dialect dialect
	convert func(v any, dbType string) any
}

func (s *sqlStore) queryNames(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

func (s *sqlStore) load(ctx context.Context, name string, limit int) (*table.Table, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.selectSQL(name, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}

	t, err := table.New(columns...)
	if err != nil {
		return nil, err
	}

	values := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make([]any, len(values))
		for i, v := range values {
			row[i] = s.convert(normalizeValue(v), types[i].DatabaseTypeName())
		}
		if err := t.AppendRow(row...); err != nil {
			return nil, err
		}
	}

	return t, rows.Err()
}

func (s *sqlStore) drop(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+s.dialect.quoteIdent(name)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", name, err)
	}
	return nil
}

func (s *sqlStore) write(ctx context.Context, def TableDef, t *table.Table) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.dialect.createTableSQL(def)); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", def.Name, err)
	}

	stmt, err := tx.PrepareContext(ctx, s.dialect.insertSQL(def.Name, t.Columns()))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	var n int64
	for _, row := range t.Rows() {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return n, fmt.Errorf("failed to insert row %d into %s: %w", n, def.Name, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return n, nil
}
