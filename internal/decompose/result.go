package decompose

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tordrt/tablenorm/internal/schema"
	"github.com/tordrt/tablenorm/internal/table"
)

// Result holds the output of a decomposition. Tables, Schema and
// PrimaryKeys are index-aligned; Tables[0] is the residual table.
type Result struct {
	Tables      []*table.Table
	Schema      [][]string
	PrimaryKeys [][]string
	Registry    *KeyRegistry
	Subtables   []Subtable
	Rounds      []Round

	baseNames [][]string
	cfg       Config
}

// BaseColumns returns the column names of table i without key markers.
func (r *Result) BaseColumns(i int) []string {
	return slices.Clone(r.baseNames[i])
}

// Annotated returns the name column base carries in table i.
func (r *Result) Annotated(i int, base string) (string, bool) {
	pos := slices.Index(r.baseNames[i], base)
	if pos < 0 {
		return "", false
	}
	return r.Schema[i][pos], true
}

// TableNames names every output table: the residual after the source, each
// subtable after its key columns. Duplicates get a numeric suffix.
func (r *Result) TableNames(source string) []string {
	if source == "" {
		source = "residual"
	}
	names := make([]string, len(r.Tables))
	used := make(map[string]bool)
	for i := range r.Tables {
		name := source
		if i > 0 {
			name = strings.Join(r.PrimaryKeys[i], "_")
		}
		candidate := name
		for n := 2; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s_%d", name, n)
		}
		used[candidate] = true
		names[i] = candidate
	}
	return names
}

// Describe builds the schema model of the result, naming tables with
// TableNames(source).
func (r *Result) Describe(source string) *schema.Schema {
	names := r.TableNames(source)
	s := &schema.Schema{Tables: make([]schema.Table, len(r.Tables))}

	for i, tbl := range r.Tables {
		st := schema.Table{
			Name:     names[i],
			Rows:     tbl.NumRows(),
			Residual: i == 0,
		}
		if i > 0 {
			for _, k := range r.PrimaryKeys[i] {
				if name, ok := r.Annotated(i, k); ok {
					st.PrimaryKey = append(st.PrimaryKey, name)
				}
			}
		}

		for pos, name := range r.Schema[i] {
			base := r.baseNames[i][pos]
			values, _ := tbl.Column(name)
			col := schema.Column{
				Name:     name,
				BaseName: base,
				Type:     table.InferKind(values).String(),
				Nullable: slices.Contains(values, nil),
			}
			if n, err := tbl.DistinctCount(name); err == nil && tbl.NumRows() > 0 {
				col.IsUnique = n == tbl.NumRows()
			}

			owner, ok := r.Registry.PrimaryTable(base)
			switch {
			case !ok:
			case owner == i:
				col.Role = schema.RolePrimary
			default:
				col.Role = schema.RoleForeign
				target, _ := r.Annotated(owner, base)
				st.Relations = append(st.Relations, schema.Relation{
					TargetTable:  names[owner],
					TargetColumn: target,
					SourceColumn: name,
					Cardinality:  "N:1",
				})
			}
			st.Columns = append(st.Columns, col)
		}
		s.Tables[i] = st
	}
	return s
}
