// Package table provides the in-memory tabular value that the dependency
// analysis and decomposition operate on: an ordered set of uniquely named,
// row-aligned columns together with the projection, deduplication and
// distinct-count primitives those algorithms need.
package table

import (
	"fmt"
	"slices"
	"strings"
)

// Table is an ordered set of uniquely named columns of equal length. Rows
// are aligned by position and keep insertion order.
type Table struct {
	columns []string
	index   map[string]int
	data    [][]any
	rows    int
}

// New creates an empty table with the given columns.
func New(columns ...string) (*Table, error) {
	t := &Table{index: make(map[string]int, len(columns))}
	for _, name := range columns {
		if err := t.addName(name); err != nil {
			return nil, err
		}
		t.data = append(t.data, nil)
	}
	return t, nil
}

// FromRows creates a table from row-major data. Every row must have one
// value per column.
func FromRows(columns []string, rows [][]any) (*Table, error) {
	t, err := New(columns...)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := t.AppendRow(row...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Table) addName(name string) error {
	if name == "" {
		return fmt.Errorf("column name must not be empty")
	}
	if _, exists := t.index[name]; exists {
		return fmt.Errorf("duplicate column name %q", name)
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, name)
	return nil
}

// AppendRow adds one row.
func (t *Table) AppendRow(values ...any) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.columns))
	}
	for i, v := range values {
		t.data[i] = append(t.data[i], v)
	}
	t.rows++
	return nil
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return t.rows
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// IsEmpty reports whether the table has no rows or no columns.
func (t *Table) IsEmpty() bool {
	return t.rows == 0 || len(t.columns) == 0
}

// Has reports whether the table has a column with the given name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

func (t *Table) position(name string) (int, error) {
	i, ok := t.index[name]
	if !ok {
		return 0, &ColumnError{Column: name}
	}
	return i, nil
}

// Column returns the values of a column. The slice is shared with the
// table and must not be modified.
func (t *Table) Column(name string) ([]any, error) {
	i, err := t.position(name)
	if err != nil {
		return nil, err
	}
	return t.data[i], nil
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.columns))
	for c := range t.columns {
		row[c] = t.data[c][i]
	}
	return row
}

// Rows returns a row-major copy of the table data.
func (t *Table) Rows() [][]any {
	rows := make([][]any, t.rows)
	for i := range rows {
		rows[i] = t.Row(i)
	}
	return rows
}

// AddColumn appends a column. The values are copied.
func (t *Table) AddColumn(name string, values []any) error {
	if len(t.columns) > 0 && len(values) != t.rows {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), t.rows)
	}
	if err := t.addName(name); err != nil {
		return err
	}
	t.data = append(t.data, slices.Clone(values))
	t.rows = len(values)
	return nil
}

// Drop removes columns in place. Every name must exist.
func (t *Table) Drop(names ...string) error {
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		if _, err := t.position(name); err != nil {
			return err
		}
		drop[name] = true
	}
	if len(drop) == 0 {
		return nil
	}

	columns := make([]string, 0, len(t.columns)-len(drop))
	data := make([][]any, 0, len(t.columns)-len(drop))
	index := make(map[string]int, len(t.columns)-len(drop))
	for i, name := range t.columns {
		if drop[name] {
			continue
		}
		index[name] = len(columns)
		columns = append(columns, name)
		data = append(data, t.data[i])
	}
	t.columns, t.data, t.index = columns, data, index
	if len(t.columns) == 0 {
		t.rows = 0
	}
	return nil
}

// Rename changes column names in place. Names missing from the mapping are
// kept; the result must still have unique names.
func (t *Table) Rename(mapping map[string]string) error {
	columns := slices.Clone(t.columns)
	for from, to := range mapping {
		i, err := t.position(from)
		if err != nil {
			return err
		}
		columns[i] = to
	}
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if name == "" {
			return fmt.Errorf("column name must not be empty")
		}
		if _, exists := index[name]; exists {
			return fmt.Errorf("duplicate column name %q after rename", name)
		}
		index[name] = i
	}
	t.columns, t.index = columns, index
	return nil
}

// Clone returns a deep copy of the table structure. Cell values themselves
// are shared.
func (t *Table) Clone() *Table {
	c := &Table{
		columns: slices.Clone(t.columns),
		index:   make(map[string]int, len(t.index)),
		data:    make([][]any, len(t.data)),
		rows:    t.rows,
	}
	for k, v := range t.index {
		c.index[k] = v
	}
	for i, col := range t.data {
		c.data[i] = slices.Clone(col)
	}
	return c
}

// Project returns a new table with the named columns, in the given order.
// Rows stay aligned and duplicates are retained.
func (t *Table) Project(names ...string) (*Table, error) {
	p := &Table{index: make(map[string]int, len(names))}
	for _, name := range names {
		i, err := t.position(name)
		if err != nil {
			return nil, err
		}
		if err := p.addName(name); err != nil {
			return nil, err
		}
		p.data = append(p.data, slices.Clone(t.data[i]))
	}
	if len(names) > 0 {
		p.rows = t.rows
	}
	return p, nil
}

// Distinct returns a copy of the table with duplicate rows removed. The
// first occurrence of every row is kept and row order is preserved.
func (t *Table) Distinct() (*Table, error) {
	keys, err := t.rowKeys(t.columns)
	if err != nil {
		return nil, err
	}
	d := &Table{
		columns: slices.Clone(t.columns),
		index:   make(map[string]int, len(t.index)),
		data:    make([][]any, len(t.columns)),
	}
	for k, v := range t.index {
		d.index[k] = v
	}
	seen := make(map[string]struct{}, len(keys))
	for r, key := range keys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		for c := range t.columns {
			d.data[c] = append(d.data[c], t.data[c][r])
		}
		d.rows++
	}
	return d, nil
}

// DistinctCount returns the number of distinct value tuples over the named
// columns.
func (t *Table) DistinctCount(names ...string) (int, error) {
	keys, err := t.rowKeys(names)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		seen[key] = struct{}{}
	}
	return len(seen), nil
}

// rowKeys returns, for every row, the equality key of its tuple over names.
func (t *Table) rowKeys(names []string) ([]string, error) {
	positions := make([]int, len(names))
	for i, name := range names {
		p, err := t.position(name)
		if err != nil {
			return nil, err
		}
		positions[i] = p
	}

	keys := make([]string, t.rows)
	var b strings.Builder
	for r := 0; r < t.rows; r++ {
		b.Reset()
		for _, p := range positions {
			v := t.data[p][r]
			if !writeKey(&b, v) {
				return nil, &ValueError{Column: t.columns[p], Row: r, Value: v}
			}
		}
		keys[r] = b.String()
	}
	return keys, nil
}

// Lookup returns, for the given key columns, a map from the equality key of
// each distinct key tuple to the index of its first row.
func (t *Table) Lookup(names ...string) (map[string]int, error) {
	keys, err := t.rowKeys(names)
	if err != nil {
		return nil, err
	}
	m := make(map[string]int, len(keys))
	for r, key := range keys {
		if _, ok := m[key]; !ok {
			m[key] = r
		}
	}
	return m, nil
}

// TupleKey returns the equality key of values, encoded the same way Lookup
// encodes rows.
func TupleKey(values ...any) (string, error) {
	var b strings.Builder
	for _, v := range values {
		if !writeKey(&b, v) {
			return "", fmt.Errorf("%w: %v (%T)", ErrIncomparableValue, v, v)
		}
	}
	return b.String(), nil
}
