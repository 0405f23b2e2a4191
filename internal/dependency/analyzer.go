package dependency

import (
	"fmt"

	"github.com/tordrt/tablenorm/internal/table"
)

// Pair is a functional dependency Determinant -> Dependent.
type Pair struct {
	Determinant string `json:"determinant"`
	Dependent   string `json:"dependent"`
}

// Relationships partitions the columns of a table. It is also the data a
// relationship graph renderer draws: one node per Independent, Constant and
// Unique column, one edge per Identifies pair and edges inside each
// Bijective group.
type Relationships struct {
	Independent []string   `json:"independent"`
	Constant    []string   `json:"constant"`
	Unique      []string   `json:"unique"`
	Identifies  []Pair     `json:"identifies"`
	Bijective   [][]string `json:"bijective"`
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithIgnored excludes columns from the analysis. Ignored columns appear in
// none of the returned sets.
func WithIgnored(columns ...string) Option {
	return func(a *Analyzer) {
		for _, c := range columns {
			a.ignored[c] = true
		}
	}
}

// Analyzer partitions table columns into dependency categories.
type Analyzer struct {
	ignored map[string]bool
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{ignored: make(map[string]bool)}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs the analysis with default options.
func Analyze(t *table.Table) (*Relationships, error) {
	return NewAnalyzer().Analyze(t)
}

// Analyze partitions the columns of t.
//
// Columns with one distinct value are Constant and columns with all values
// distinct are Unique; neither takes part in the pair search. Every other
// pair is compared in column order. Mutually determining columns are merged
// into a Bijective group whose first column is the representative, and one
// way dependencies are recorded as Identifies pairs expressed in terms of
// representatives. Columns that end up dependent on another column, or that
// are non-representative group members, leave Independent.
func (a *Analyzer) Analyze(t *table.Table) (*Relationships, error) {
	if t.IsEmpty() {
		return nil, fmt.Errorf("failed to analyze table: %w", table.ErrEmptyTable)
	}

	rel := &Relationships{}
	rows := t.NumRows()

	var remaining []string
	for _, c := range t.Columns() {
		if a.ignored[c] {
			continue
		}
		n, err := t.DistinctCount(c)
		if err != nil {
			return nil, fmt.Errorf("failed to count values of %q: %w", c, err)
		}
		switch {
		case n == rows:
			rel.Unique = append(rel.Unique, c)
		case n == 1:
			rel.Constant = append(rel.Constant, c)
		default:
			remaining = append(remaining, c)
		}
	}

	groups := newDisjointSet(remaining)
	var found []Pair
	for i, x := range remaining {
		if groups.nonRepresentative(x) {
			continue
		}
		for _, y := range remaining[i+1:] {
			if groups.nonRepresentative(y) {
				continue
			}
			r, err := Classify(t, x, y)
			if err != nil {
				return nil, fmt.Errorf("failed to classify %q against %q: %w", x, y, err)
			}
			switch r {
			case Identifies:
				back, err := Classify(t, y, x)
				if err != nil {
					return nil, fmt.Errorf("failed to classify %q against %q: %w", y, x, err)
				}
				if back == Identifies {
					groups.union(x, y)
				} else {
					found = append(found, Pair{Determinant: x, Dependent: y})
				}
			case Injective:
				found = append(found, Pair{Determinant: y, Dependent: x})
			}
		}
	}

	left := make(map[string]bool)
	seen := make(map[Pair]bool)
	for _, p := range found {
		p = Pair{Determinant: groups.find(p.Determinant), Dependent: groups.find(p.Dependent)}
		if p.Determinant == p.Dependent || seen[p] {
			continue
		}
		seen[p] = true
		rel.Identifies = append(rel.Identifies, p)
		left[p.Dependent] = true
	}

	rel.Bijective = groups.groups()
	for _, g := range rel.Bijective {
		for _, c := range g[1:] {
			left[c] = true
		}
	}

	for _, c := range remaining {
		if !left[c] {
			rel.Independent = append(rel.Independent, c)
		}
	}
	return rel, nil
}

// GroupOf returns the Bijective group that contains column c.
func (r *Relationships) GroupOf(c string) ([]string, bool) {
	for _, g := range r.Bijective {
		for _, m := range g {
			if m == c {
				return g, true
			}
		}
	}
	return nil, false
}
