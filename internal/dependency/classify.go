// Package dependency discovers functional dependencies between the columns
// of a table from the values it holds.
//
// Classify compares two columns. Analyzer partitions every column of a table
// into the Constant, Unique, Independent, Identifies and Bijective
// categories that the decomposer consumes and that a graph renderer can
// draw.
package dependency

import (
	"fmt"

	"github.com/tordrt/tablenorm/internal/table"
)

// Relationship is the pairwise relationship of an ordered column pair (X, Y).
type Relationship string

const (
	// Independent means no dependency can be proven from the sample, either
	// because every (X, Y) pair is distinct or because the mapping is
	// many-to-many.
	Independent Relationship = "Independent"
	// Identifies means X functionally determines Y.
	Identifies Relationship = "Identifies"
	// Injective means Y functionally determines X, seen from (X, Y).
	Injective Relationship = "Injective"
	// Bijective means X and Y determine each other. Classify never returns
	// it; the analyzer derives it from both directions.
	Bijective Relationship = "Bijective"
)

// Classify returns the relationship of column x to column y in t.
func Classify(t *table.Table, x, y string) (Relationship, error) {
	if x == y {
		return "", fmt.Errorf("cannot classify column %q against itself: %w", x, table.ErrInvalidColumnReference)
	}
	for _, c := range []string{x, y} {
		if !t.Has(c) {
			return "", &table.ColumnError{Column: c}
		}
	}

	pairs, err := t.DistinctCount(x, y)
	if err != nil {
		return "", err
	}
	if pairs == t.NumRows() {
		return Independent, nil
	}

	ux, err := t.DistinctCount(x)
	if err != nil {
		return "", err
	}
	if pairs == ux {
		return Identifies, nil
	}

	uy, err := t.DistinctCount(y)
	if err != nil {
		return "", err
	}
	if pairs == uy {
		return Injective, nil
	}
	return Independent, nil
}

// ColumnRelationship is the relationship of a fixed column to Column.
type ColumnRelationship struct {
	Column       string       `json:"column"`
	Relationship Relationship `json:"relationship"`
}

// ColumnRelationships classifies col against every other column of t, in
// column order.
func ColumnRelationships(t *table.Table, col string) ([]ColumnRelationship, error) {
	if !t.Has(col) {
		return nil, &table.ColumnError{Column: col}
	}
	var out []ColumnRelationship
	for _, other := range t.Columns() {
		if other == col {
			continue
		}
		rel, err := Classify(t, col, other)
		if err != nil {
			return nil, err
		}
		out = append(out, ColumnRelationship{Column: other, Relationship: rel})
	}
	return out, nil
}

// UniquePairs returns the distinct (x, y) value pairs of t, in first
// occurrence order.
func UniquePairs(t *table.Table, x, y string) (*table.Table, error) {
	p, err := t.Project(x, y)
	if err != nil {
		return nil, err
	}
	return p.Distinct()
}
