// Package composite synthesizes columns that stand for the joint value of
// several source columns, so that multi-column determinants can be tested
// with the same pairwise classifier as single columns.
package composite

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tordrt/tablenorm/internal/table"
)

// DefaultJoiner separates component names and values. It is chosen to be
// unlikely to occur in real data.
const DefaultJoiner = "▲"

// Builder adds composite columns to tables and remembers the components of
// every column it created.
type Builder struct {
	joiner     string
	components map[string][]string
	names      []string
}

// NewBuilder creates a builder. An empty joiner selects DefaultJoiner.
func NewBuilder(joiner string) *Builder {
	if joiner == "" {
		joiner = DefaultJoiner
	}
	return &Builder{joiner: joiner, components: make(map[string][]string)}
}

// Joiner returns the separator in use.
func (b *Builder) Joiner() string {
	return b.joiner
}

// Build adds a composite of columns to t and returns its name. The name is
// the column names joined by the joiner, extended by further joiners until
// it is unique in t. Each value is the stringified component values joined
// the same way.
func (b *Builder) Build(t *table.Table, columns []string) (string, error) {
	if len(columns) == 0 {
		return "", fmt.Errorf("composite column needs at least one component")
	}

	sources := make([][]any, len(columns))
	for i, c := range columns {
		values, err := t.Column(c)
		if err != nil {
			return "", err
		}
		sources[i] = values
	}

	values := make([]any, t.NumRows())
	parts := make([]string, len(columns))
	for r := range values {
		for i, src := range sources {
			s, ok := table.Format(src[r])
			if !ok {
				return "", &table.ValueError{Column: columns[i], Row: r, Value: src[r]}
			}
			parts[i] = s
		}
		values[r] = strings.Join(parts, b.joiner)
	}

	name := strings.Join(columns, b.joiner)
	for t.Has(name) {
		name += b.joiner
	}
	if err := t.AddColumn(name, values); err != nil {
		return "", fmt.Errorf("failed to add composite column %q: %w", name, err)
	}

	b.components[name] = slices.Clone(columns)
	b.names = append(b.names, name)
	return name, nil
}

// Components returns the ordered source columns of a composite column.
func (b *Builder) Components(name string) ([]string, bool) {
	c, ok := b.components[name]
	return c, ok
}

// IsComposite reports whether name was created by this builder.
func (b *Builder) IsComposite(name string) bool {
	_, ok := b.components[name]
	return ok
}

// Names returns the composite columns created since the last Reset, in
// creation order.
func (b *Builder) Names() []string {
	return slices.Clone(b.names)
}

// Reset forgets every composite column.
func (b *Builder) Reset() {
	b.components = make(map[string][]string)
	b.names = nil
}

// Combinations returns every k-sized combination of items, preserving item
// order inside each combination and emitting combinations in lexicographic
// index order.
func Combinations(items []string, k int) [][]string {
	if k <= 0 || k > len(items) {
		return nil
	}
	var out [][]string
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		combo := make([]string, k)
		for i, j := range idx {
			combo[i] = items[j]
		}
		out = append(out, combo)

		i := k - 1
		for i >= 0 && idx[i] == len(items)-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
