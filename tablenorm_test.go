package tablenorm

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tordrt/tablenorm/internal/csvio"
)

func writeSampleCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pets.csv")
	if err := csvio.WriteFile(path, SampleTable()); err != nil {
		t.Fatalf("failed to write sample: %v", err)
	}
	return path
}

func TestParseSourceURL(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		wantKind     string
		wantLocation string
		wantErr      bool
	}{
		{name: "postgres", url: "postgres://u:p@localhost/db", wantKind: "postgres", wantLocation: "postgres://u:p@localhost/db"},
		{name: "postgresql", url: "postgresql://localhost/db", wantKind: "postgres", wantLocation: "postgresql://localhost/db"},
		{name: "mysql", url: "mysql://u:p@tcp(localhost:3306)/db", wantKind: "mysql", wantLocation: "u:p@tcp(localhost:3306)/db"},
		{name: "sqlite", url: "sqlite://data/pets.db", wantKind: "sqlite", wantLocation: "data/pets.db"},
		{name: "csv scheme", url: "csv://data/pets.txt", wantKind: "csv", wantLocation: "data/pets.txt"},
		{name: "csv path", url: "data/Pets.CSV", wantKind: "csv", wantLocation: "data/Pets.CSV"},
		{name: "empty", url: "", wantErr: true},
		{name: "unknown scheme", url: "oracle://db", wantErr: true},
		{name: "unknown file", url: "pets.xlsx", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, location, err := parseSourceURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if kind != tt.wantKind || location != tt.wantLocation {
				t.Errorf("parseSourceURL() = (%q, %q), want (%q, %q)", kind, location, tt.wantKind, tt.wantLocation)
			}
		})
	}
}

func TestSourceName(t *testing.T) {
	tests := []struct {
		url  string
		opts *Options
		want string
	}{
		{url: "data/pets.csv", want: "pets"},
		{url: "csv://adoptions.tsv.csv", want: "adoptions.tsv"},
		{url: "sqlite://x.db", opts: &Options{Table: "adoptions"}, want: "adoptions"},
		{url: "sqlite://x.db", opts: &Options{Table: "adoptions", Name: "flat"}, want: "flat"},
		{url: "sqlite://x.db", want: "residual"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := SourceName(tt.url, tt.opts); got != tt.want {
				t.Errorf("SourceName(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestNormalizeAndFormat_CSV(t *testing.T) {
	path := writeSampleCSV(t)

	var buf bytes.Buffer
	err := NormalizeAndFormat(context.Background(), path, nil, &OutputOptions{Writer: &buf})
	if err != nil {
		t.Fatalf("NormalizeAndFormat() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"RESIDUAL TABLE pets [12 rows]",
		"TABLE state (PK: state†) [3 rows]",
		"TABLE city (PK: city†) [5 rows]",
		"TABLE animal (PK: animal†) [5 rows]",
		"state‡ → state.state† (N:1)",
		"city‡ → city.city† (N:1)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\ngot:\n%s", want, out)
		}
	}
}

func TestFormatSchema_OutputDir(t *testing.T) {
	res, err := Decompose(SampleTable(), nil)
	if err != nil {
		t.Fatalf("Decompose() error = %v", err)
	}

	dir := filepath.Join(t.TempDir(), "schema")
	if err := FormatSchema(res.Describe("pets"), &OutputOptions{OutputDir: dir, Format: "markdown"}); err != nil {
		t.Fatalf("FormatSchema() error = %v", err)
	}
	for _, name := range []string{"_overview.md", "pets.md", "state.md", "city.md", "animal.md"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}

	if err := FormatSchema(res.Describe("pets"), &OutputOptions{Writer: &bytes.Buffer{}, Format: "yaml"}); err == nil {
		t.Error("FormatSchema() with unknown format expected error")
	}
}

func TestLoadTable_Errors(t *testing.T) {
	ctx := context.Background()

	if _, err := LoadTable(ctx, "sqlite://"+filepath.Join(t.TempDir(), "x.db"), nil); err == nil {
		t.Error("LoadTable() without a table name expected error")
	}
	if _, err := LoadTable(ctx, filepath.Join(t.TempDir(), "missing.csv"), nil); err == nil {
		t.Error("LoadTable() of a missing file expected error")
	}
}

func TestWriteDataFiles(t *testing.T) {
	res, err := Decompose(SampleTable(), &Options{MaxDepth: 2})
	if err != nil {
		t.Fatalf("Decompose() error = %v", err)
	}
	s := res.Describe("pets")

	dir := filepath.Join(t.TempDir(), "data")
	if err := WriteDataFiles(dir, res, s); err != nil {
		t.Fatalf("WriteDataFiles() error = %v", err)
	}

	for i, st := range s.Tables {
		loaded, err := LoadTable(context.Background(), filepath.Join(dir, st.Name+".csv"), nil)
		if err != nil {
			t.Fatalf("LoadTable(%s) error = %v", st.Name, err)
		}
		if loaded.NumRows() != res.Tables[i].NumRows() {
			t.Errorf("%s rows = %d, want %d", st.Name, loaded.NumRows(), res.Tables[i].NumRows())
		}
		if strings.Join(loaded.Columns(), ",") != strings.Join(res.Schema[i], ",") {
			t.Errorf("%s columns = %v, want %v", st.Name, loaded.Columns(), res.Schema[i])
		}
	}
}

func TestExportTables_SQLite(t *testing.T) {
	ctx := context.Background()
	target := "sqlite://" + filepath.Join(t.TempDir(), "normalized.db")

	res, err := Decompose(SampleTable(), nil)
	if err != nil {
		t.Fatalf("Decompose() error = %v", err)
	}
	s := res.Describe("pets")

	if err := ExportTables(ctx, target, res, s, false); err != nil {
		t.Fatalf("ExportTables() error = %v", err)
	}
	if err := ExportTables(ctx, target, res, s, false); err == nil {
		t.Error("second ExportTables() without replace expected error")
	}
	if err := ExportTables(ctx, target, res, s, true); err != nil {
		t.Fatalf("ExportTables(replace) error = %v", err)
	}

	city, err := LoadTable(ctx, target, &Options{Table: "city"})
	if err != nil {
		t.Fatalf("LoadTable(city) error = %v", err)
	}
	if city.NumRows() != 5 {
		t.Errorf("city rows = %d, want 5", city.NumRows())
	}
	if got := strings.Join(city.Columns(), ","); got != "city†,city-code,state‡" {
		t.Errorf("city columns = %s", got)
	}

	if err := ExportTables(ctx, "pets.csv", res, s, false); err == nil {
		t.Error("ExportTables() to csv expected error")
	}
}

func TestAnalyze(t *testing.T) {
	rel, err := Analyze(SampleTable(), &Options{IgnoreColumns: []string{"date"}})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if strings.Join(rel.Independent, ",") != "city,animal,name,fee" {
		t.Errorf("Independent = %v", rel.Independent)
	}
}
