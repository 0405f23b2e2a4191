package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tordrt/tablenorm/internal/dependency"
)

const (
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// RelationshipFormatter renders the dependency categories of a table
type RelationshipFormatter struct {
	writer io.Writer
	format string
}

// NewRelationshipFormatter creates a relationship formatter for text, json
// or dot output
func NewRelationshipFormatter(w io.Writer, format string) (*RelationshipFormatter, error) {
	switch format {
	case "":
		format = FormatText
	case FormatText, FormatJSON, FormatDOT:
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: text, json, dot)", format)
	}
	return &RelationshipFormatter{writer: w, format: format}, nil
}

// Format writes rel
func (f *RelationshipFormatter) Format(rel *dependency.Relationships) error {
	switch f.format {
	case FormatJSON:
		return f.writeJSON(rel)
	case FormatDOT:
		f.writeDOT(rel)
		return nil
	}

	writeList := func(label string, cols []string) {
		if len(cols) > 0 {
			_, _ = fmt.Fprintf(f.writer, "%s: %s\n", label, strings.Join(cols, ", "))
		}
	}
	writeList("CONSTANT", rel.Constant)
	writeList("UNIQUE", rel.Unique)
	writeList("INDEPENDENT", rel.Independent)

	if len(rel.Identifies) > 0 {
		_, _ = fmt.Fprintln(f.writer, "IDENTIFIES:")
		for _, p := range rel.Identifies {
			_, _ = fmt.Fprintf(f.writer, "  %s → %s\n", p.Determinant, p.Dependent)
		}
	}
	if len(rel.Bijective) > 0 {
		_, _ = fmt.Fprintln(f.writer, "BIJECTIVE:")
		for _, g := range rel.Bijective {
			_, _ = fmt.Fprintf(f.writer, "  %s\n", strings.Join(g, " ↔ "))
		}
	}
	return nil
}

// FormatColumn writes the relationship of col to every other column
func (f *RelationshipFormatter) FormatColumn(col string, rels []dependency.ColumnRelationship) error {
	switch f.format {
	case FormatJSON:
		enc := json.NewEncoder(f.writer)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Column        string                          `json:"column"`
			Relationships []dependency.ColumnRelationship `json:"relationships"`
		}{Column: col, Relationships: rels})
	case FormatDOT:
		_, _ = fmt.Fprintln(f.writer, "digraph relationships {")
		for _, r := range rels {
			switch r.Relationship {
			case dependency.Identifies:
				_, _ = fmt.Fprintf(f.writer, "  %s -> %s;\n", dotID(col), dotID(r.Column))
			case dependency.Injective:
				_, _ = fmt.Fprintf(f.writer, "  %s -> %s;\n", dotID(r.Column), dotID(col))
			default:
				_, _ = fmt.Fprintf(f.writer, "  %s;\n", dotID(r.Column))
			}
		}
		_, _ = fmt.Fprintln(f.writer, "}")
		return nil
	}

	for _, r := range rels {
		_, _ = fmt.Fprintf(f.writer, "%s %s %s\n", col, r.Relationship, r.Column)
	}
	return nil
}

func (f *RelationshipFormatter) writeJSON(rel *dependency.Relationships) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rel); err != nil {
		return fmt.Errorf("failed to encode relationships: %w", err)
	}
	return nil
}

// writeDOT draws one node per categorized column, one edge per Identifies
// pair and a bidirectional chain through every bijective group.
func (f *RelationshipFormatter) writeDOT(rel *dependency.Relationships) {
	_, _ = fmt.Fprintln(f.writer, "digraph relationships {")
	_, _ = fmt.Fprintln(f.writer, "  rankdir=LR;")
	for _, c := range rel.Independent {
		_, _ = fmt.Fprintf(f.writer, "  %s;\n", dotID(c))
	}
	for _, c := range rel.Constant {
		_, _ = fmt.Fprintf(f.writer, "  %s [style=dashed];\n", dotID(c))
	}
	for _, c := range rel.Unique {
		_, _ = fmt.Fprintf(f.writer, "  %s [shape=box];\n", dotID(c))
	}
	for _, p := range rel.Identifies {
		_, _ = fmt.Fprintf(f.writer, "  %s -> %s;\n", dotID(p.Determinant), dotID(p.Dependent))
	}
	for _, g := range rel.Bijective {
		for i := 1; i < len(g); i++ {
			_, _ = fmt.Fprintf(f.writer, "  %s -> %s [dir=both];\n", dotID(g[i-1]), dotID(g[i]))
		}
	}
	_, _ = fmt.Fprintln(f.writer, "}")
}

func dotID(s string) string {
	return strconv.Quote(s)
}
