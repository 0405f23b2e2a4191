package schema

// Schema represents the normalized table set produced by a decomposition
type Schema struct {
	Tables []Table
}

// Table represents one output table
type Table struct {
	Name       string
	Columns    []Column
	Relations  []Relation
	PrimaryKey []string
	Rows       int
	Residual   bool // the table left over after every extraction
}

// KeyRole marks a column as a primary or foreign key of its table
type KeyRole string

const (
	RoleNone    KeyRole = ""
	RolePrimary KeyRole = "PK"
	RoleForeign KeyRole = "FK"
)

// Column represents a table column
type Column struct {
	Name     string // annotated name, including any key marker
	BaseName string // logical column name shared across tables
	Type     string
	Nullable bool
	IsUnique bool
	Role     KeyRole
}

// Relation represents a foreign key relationship
type Relation struct {
	TargetTable  string
	TargetColumn string
	SourceColumn string
	Cardinality  string // 1:1, 1:N, N:1
}

// Table returns the table with the given name, or nil
func (s *Schema) Table(name string) *Table {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}

// Column returns the column with the given annotated or base name, or nil
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name || t.Columns[i].BaseName == name {
			return &t.Columns[i]
		}
	}
	return nil
}
