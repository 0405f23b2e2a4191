package db

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tordrt/tablenorm/internal/sample"
	"github.com/tordrt/tablenorm/internal/table"
)

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pets.db")

	client, err := NewSQLiteClient(ctx, path)
	if err != nil {
		t.Fatalf("NewSQLiteClient() error = %v", err)
	}
	defer func() { _ = client.Close(ctx) }()

	pets := sample.Pets()
	def := TableDef{Name: "pets"}
	for _, c := range pets.Columns() {
		values, _ := pets.Column(c)
		def.Columns = append(def.Columns, ColumnDef{Name: c, Kind: table.InferKind(values), NotNull: true})
	}
	def.PrimaryKey = []string{"id"}

	n, err := client.WriteTable(ctx, def, pets)
	if err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}
	if n != 12 {
		t.Errorf("WriteTable() wrote %d rows, want 12", n)
	}

	tables, err := client.ListTables(ctx)
	if err != nil {
		t.Fatalf("ListTables() error = %v", err)
	}
	if len(tables) != 1 || tables[0] != "pets" {
		t.Errorf("ListTables() = %v, want [pets]", tables)
	}

	loaded, err := client.LoadTable(ctx, "pets", 0)
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	if got := strings.Join(loaded.Columns(), ","); got != strings.Join(sample.PetColumns, ",") {
		t.Errorf("LoadTable() columns = %s", got)
	}
	if loaded.NumRows() != 12 {
		t.Fatalf("LoadTable() rows = %d, want 12", loaded.NumRows())
	}

	for r := 0; r < pets.NumRows(); r++ {
		want, _ := table.TupleKey(pets.Row(r)...)
		got, err := table.TupleKey(loaded.Row(r)...)
		if err != nil {
			t.Fatalf("row %d: %v", r, err)
		}
		if got != want {
			t.Errorf("row %d = %v, want %v", r, loaded.Row(r), pets.Row(r))
		}
	}

	limited, err := client.LoadTable(ctx, "pets", 5)
	if err != nil {
		t.Fatalf("LoadTable(limit) error = %v", err)
	}
	if limited.NumRows() != 5 {
		t.Errorf("LoadTable(limit) rows = %d, want 5", limited.NumRows())
	}
}

func TestSQLiteLoadMissingTable(t *testing.T) {
	ctx := context.Background()
	client, err := NewSQLiteClient(ctx, filepath.Join(t.TempDir(), "empty.db"))
	if err != nil {
		t.Fatalf("NewSQLiteClient() error = %v", err)
	}
	defer func() { _ = client.Close(ctx) }()

	_, err = client.LoadTable(ctx, "pets", 0)
	if err == nil || !strings.Contains(err.Error(), `table "pets" not found`) {
		t.Errorf("LoadTable() error = %v, want not found", err)
	}
}

func TestSQLiteDropAndForeignKeys(t *testing.T) {
	ctx := context.Background()
	client, err := NewSQLiteClient(ctx, filepath.Join(t.TempDir(), "fk.db"))
	if err != nil {
		t.Fatalf("NewSQLiteClient() error = %v", err)
	}
	defer func() { _ = client.Close(ctx) }()

	parent, _ := table.FromRows([]string{"state†", "state-code"}, [][]any{{"CO", 0}, {"PA", 1}})
	child, _ := table.FromRows([]string{"city†", "state‡"}, [][]any{{"denver", "CO"}, {"york", "PA"}})

	parentDef := TableDef{
		Name:       "state",
		Columns:    []ColumnDef{{Name: "state†", Kind: table.KindString, NotNull: true}, {Name: "state-code", Kind: table.KindInt}},
		PrimaryKey: []string{"state†"},
	}
	childDef := TableDef{
		Name:        "city",
		Columns:     []ColumnDef{{Name: "city†", Kind: table.KindString, NotNull: true}, {Name: "state‡", Kind: table.KindString}},
		PrimaryKey:  []string{"city†"},
		ForeignKeys: []ForeignKey{{Column: "state‡", RefTable: "state", RefColumn: "state†"}},
	}

	for _, step := range []struct {
		def TableDef
		t   *table.Table
	}{{parentDef, parent}, {childDef, child}} {
		if _, err := client.WriteTable(ctx, step.def, step.t); err != nil {
			t.Fatalf("WriteTable(%s) error = %v", step.def.Name, err)
		}
	}

	if _, err := client.WriteTable(ctx, childDef, child); err == nil {
		t.Error("WriteTable() on an existing table should fail")
	}

	for _, name := range []string{"city", "state", "missing"} {
		if err := client.DropTable(ctx, name); err != nil {
			t.Errorf("DropTable(%s) error = %v", name, err)
		}
	}
	tables, err := client.ListTables(ctx)
	if err != nil {
		t.Fatalf("ListTables() error = %v", err)
	}
	if len(tables) != 0 {
		t.Errorf("ListTables() = %v, want none", tables)
	}
}
