package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/tordrt/tablenorm/internal/schema"
	"github.com/tordrt/tablenorm/internal/table"
)

// Store loads source tables from a database and writes normalized tables back
type Store interface {
	// ListTables returns the base tables of the connected database, sorted by name
	ListTables(ctx context.Context) ([]string, error)
	// LoadTable reads every column of a table. A positive limit caps the row count.
	LoadTable(ctx context.Context, name string, limit int) (*table.Table, error)
	// DropTable removes a table if it exists
	DropTable(ctx context.Context, name string) error
	// WriteTable creates def and inserts the rows of t, returning the row count
	WriteTable(ctx context.Context, def TableDef, t *table.Table) (int64, error)
	Close(ctx context.Context) error
}

// TableDef describes a table to create
type TableDef struct {
	Name        string
	Columns     []ColumnDef
	PrimaryKey  []string
	ForeignKeys []ForeignKey
}

// ColumnDef describes one column of a TableDef
type ColumnDef struct {
	Name    string
	Kind    table.Kind
	NotNull bool
}

// ForeignKey references a single-column primary key
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// Definition derives the DDL of st. A primary key is declared only when none
// of its columns hold NULL. Foreign keys are declared only towards tables with
// a declared single-column primary key.
func Definition(st schema.Table, s *schema.Schema) TableDef {
	def := TableDef{Name: st.Name}
	for _, col := range st.Columns {
		def.Columns = append(def.Columns, ColumnDef{
			Name:    col.Name,
			Kind:    kindFromName(col.Type),
			NotNull: !col.Nullable,
		})
	}
	if declaresPrimaryKey(st) {
		def.PrimaryKey = st.PrimaryKey
	}

	for _, rel := range st.Relations {
		target := s.Table(rel.TargetTable)
		if target == nil || !declaresPrimaryKey(*target) || len(target.PrimaryKey) != 1 {
			continue
		}
		if target.PrimaryKey[0] != rel.TargetColumn {
			continue
		}
		def.ForeignKeys = append(def.ForeignKeys, ForeignKey{
			Column:    rel.SourceColumn,
			RefTable:  rel.TargetTable,
			RefColumn: rel.TargetColumn,
		})
	}
	return def
}

func declaresPrimaryKey(st schema.Table) bool {
	if len(st.PrimaryKey) == 0 {
		return false
	}
	for _, name := range st.PrimaryKey {
		col := st.Column(name)
		if col == nil || col.Nullable {
			return false
		}
	}
	return true
}

func kindFromName(name string) table.Kind {
	for k := table.KindNull; k <= table.KindString; k++ {
		if k.String() == name {
			return k
		}
	}
	return table.KindString
}

// dialect holds the SQL differences between the supported databases
type dialect struct {
	quote       byte
	types       map[table.Kind]string
	placeholder func(i int) string
}

func (d dialect) quoteIdent(name string) string {
	q := string(d.quote)
	return q + strings.ReplaceAll(name, q, q+q) + q
}

func (d dialect) quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = d.quoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}

func (d dialect) createTableSQL(def TableDef) string {
	var lines []string
	for _, col := range def.Columns {
		line := fmt.Sprintf("  %s %s", d.quoteIdent(col.Name), d.types[col.Kind])
		if col.NotNull {
			line += " NOT NULL"
		}
		lines = append(lines, line)
	}
	if len(def.PrimaryKey) > 0 {
		lines = append(lines, fmt.Sprintf("  PRIMARY KEY (%s)", d.quoteList(def.PrimaryKey)))
	}
	for _, fk := range def.ForeignKeys {
		lines = append(lines, fmt.Sprintf("  FOREIGN KEY (%s) REFERENCES %s (%s)",
			d.quoteIdent(fk.Column), d.quoteIdent(fk.RefTable), d.quoteIdent(fk.RefColumn)))
	}
	return fmt.Sprintf("CREATE TABLE %s (\n%s\n)", d.quoteIdent(def.Name), strings.Join(lines, ",\n"))
}

func (d dialect) insertSQL(name string, columns []string) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = d.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.quoteIdent(name), d.quoteList(columns), strings.Join(placeholders, ", "))
}

func (d dialect) selectSQL(name string, limit int) string {
	query := "SELECT * FROM " + d.quoteIdent(name)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return query
}

func questionMark(int) string { return "?" }

var (
	postgresDialect = dialect{
		quote: '"',
		types: map[table.Kind]string{
			table.KindNull:   "TEXT",
			table.KindInt:    "BIGINT",
			table.KindFloat:  "DOUBLE PRECISION",
			table.KindBool:   "BOOLEAN",
			table.KindTime:   "TIMESTAMPTZ",
			table.KindString: "TEXT",
		},
		placeholder: func(i int) string { return fmt.Sprintf("$%d", i) },
	}

	sqliteDialect = dialect{
		quote: '"',
		types: map[table.Kind]string{
			table.KindNull:   "TEXT",
			table.KindInt:    "INTEGER",
			table.KindFloat:  "REAL",
			table.KindBool:   "BOOLEAN",
			table.KindTime:   "TIMESTAMP",
			table.KindString: "TEXT",
		},
		placeholder: questionMark,
	}

	// MySQL cannot index unbounded TEXT, so strings use VARCHAR
	mysqlDialect = dialect{
		quote: '`',
		types: map[table.Kind]string{
			table.KindNull:   "VARCHAR(255)",
			table.KindInt:    "BIGINT",
			table.KindFloat:  "DOUBLE",
			table.KindBool:   "BOOLEAN",
			table.KindTime:   "DATETIME(6)",
			table.KindString: "VARCHAR(255)",
		},
		placeholder: questionMark,
	}
)

// normalizeValue turns driver byte slices into strings so that text columns
// compare equal regardless of how the driver returned them
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func notFound(name string, tables []string) error {
	return fmt.Errorf("table %q not found (available: %s)", name, strings.Join(tables, ", "))
}

func containsTable(tables []string, name string) bool {
	for _, t := range tables {
		if t == name {
			return true
		}
	}
	return false
}
