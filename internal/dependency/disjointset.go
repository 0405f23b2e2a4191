package dependency

import "slices"

// disjointSet groups mutually determining columns. The root of every set is
// the member that comes first in column order, so the representative of a
// bijective group is always its first-seen column.
type disjointSet struct {
	order  map[string]int
	parent map[string]string
}

func newDisjointSet(columns []string) *disjointSet {
	order := make(map[string]int, len(columns))
	for i, c := range columns {
		order[c] = i
	}
	return &disjointSet{order: order, parent: make(map[string]string)}
}

func (d *disjointSet) find(c string) string {
	p, ok := d.parent[c]
	if !ok {
		return c
	}
	if p == c {
		return c
	}
	root := d.find(p)
	d.parent[c] = root
	return root
}

func (d *disjointSet) union(a, b string) {
	ra, rb := d.find(a), d.find(b)
	d.parent[ra] = ra
	d.parent[rb] = rb
	if ra == rb {
		return
	}
	if d.order[rb] < d.order[ra] {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
}

// grouped reports whether c belongs to a set of two or more columns.
func (d *disjointSet) grouped(c string) bool {
	_, ok := d.parent[c]
	return ok
}

// nonRepresentative reports whether c is grouped under another column.
func (d *disjointSet) nonRepresentative(c string) bool {
	return d.grouped(c) && d.find(c) != c
}

// groups returns every set, ordered by representative, members in column
// order.
func (d *disjointSet) groups() [][]string {
	byRoot := make(map[string][]string)
	for c := range d.parent {
		r := d.find(c)
		byRoot[r] = append(byRoot[r], c)
	}
	out := make([][]string, 0, len(byRoot))
	for _, members := range byRoot {
		slices.SortFunc(members, func(a, b string) int { return d.order[a] - d.order[b] })
		out = append(out, members)
	}
	slices.SortFunc(out, func(a, b []string) int { return d.order[a[0]] - d.order[b[0]] })
	return out
}
