package schema

import "github.com/tordrt/tablenorm/internal/table"

// ColumnNames returns the ordered column names of every table, index-aligned
// with tables.
func ColumnNames(tables []*table.Table) [][]string {
	names := make([][]string, len(tables))
	for i, t := range tables {
		names[i] = t.Columns()
	}
	return names
}
