// Package decompose splits a denormalized table into subtables keyed by the
// functional dependencies found in its data.
package decompose

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/tordrt/tablenorm/internal/composite"
	"github.com/tordrt/tablenorm/internal/dependency"
	"github.com/tordrt/tablenorm/internal/metrics"
	"github.com/tordrt/tablenorm/internal/schema"
	"github.com/tordrt/tablenorm/internal/table"
)

// Subtable describes one extracted table.
type Subtable struct {
	Index       int      // position in Result.Tables
	Depth       int      // round that extracted it
	Determinant string   // determinant column, possibly a composite
	Keys        []string // underlying key columns, unannotated
	Dependents  []string // columns moved out of the working table
}

// Round summarizes one decomposition pass.
type Round struct {
	Depth         int
	Composites    []string
	Relationships *dependency.Relationships
	Extracted     []int
	Removed       []string
}

// Decomposer runs decompositions with a fixed configuration. It holds no
// per-call state and is safe for concurrent use.
type Decomposer struct {
	cfg Config
	log *slog.Logger
}

// New creates a decomposer.
func New(cfg Config) *Decomposer {
	cfg = cfg.withDefaults()
	return &Decomposer{cfg: cfg, log: cfg.Logger}
}

// decomposition is the state threaded through the rounds of one call.
type decomposition struct {
	working     *table.Table
	tables      []*table.Table
	primaryKeys [][]string
	registry    *KeyRegistry
	frozen      map[string]bool
	subtables   []Subtable
	rounds      []Round
	baseNames   [][]string
}

// Decompose splits t. The input table is not modified.
func (d *Decomposer) Decompose(t *table.Table) (*Result, error) {
	start := time.Now()
	res, err := d.decompose(t)
	metrics.DecomposeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DecomposeRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.DecomposeRunsTotal.WithLabelValues("success").Inc()
	return res, nil
}

func (d *Decomposer) decompose(t *table.Table) (*Result, error) {
	if err := d.cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid decomposition config: %w", err)
	}
	if t.IsEmpty() {
		return nil, fmt.Errorf("failed to decompose table: %w", table.ErrEmptyTable)
	}
	for _, c := range d.cfg.IgnoreColumns {
		if !t.Has(c) {
			return nil, fmt.Errorf("failed to ignore column: %w", &table.ColumnError{Column: c})
		}
	}

	working := t.Clone()
	c := &decomposition{
		working:     working,
		tables:      []*table.Table{working},
		primaryKeys: [][]string{nil},
		registry:    newKeyRegistry(),
		frozen:      make(map[string]bool),
	}

	for depth := 1; depth <= d.cfg.MaxDepth; depth++ {
		if err := d.round(c, depth); err != nil {
			return nil, fmt.Errorf("failed to run decomposition round %d: %w", depth, err)
		}
	}

	if err := d.annotate(c); err != nil {
		return nil, fmt.Errorf("failed to annotate keys: %w", err)
	}

	d.log.Debug("decomposition finished",
		"tables", len(c.tables),
		"keys", c.registry.Keys(),
		"residual_columns", c.working.NumColumns())

	return &Result{
		Tables:      c.tables,
		Schema:      schema.ColumnNames(c.tables),
		PrimaryKeys: c.primaryKeys,
		Registry:    c.registry,
		Subtables:   c.subtables,
		Rounds:      c.rounds,
		baseNames:   c.baseNames,
		cfg:         d.cfg,
	}, nil
}

// entry collects the dependents extracted under one determinant.
type entry struct {
	determinant string
	keys        []string
	dependents  []string
}

func (d *Decomposer) round(c *decomposition, depth int) error {
	metrics.RoundsTotal.Inc()
	builder := composite.NewBuilder(d.cfg.Joiner)

	excluded := slices.Clone(d.cfg.IgnoreColumns)
	for col := range c.frozen {
		excluded = append(excluded, col)
	}

	if depth > 1 {
		var candidates []string
		for _, col := range c.working.Columns() {
			if !c.frozen[col] && !slices.Contains(d.cfg.IgnoreColumns, col) {
				candidates = append(candidates, col)
			}
		}
		for _, combo := range composite.Combinations(candidates, depth) {
			if _, err := builder.Build(c.working, combo); err != nil {
				return fmt.Errorf("failed to build composite of %v: %w", combo, err)
			}
		}
		metrics.CompositeColumnsTotal.Add(float64(len(builder.Names())))
	}

	rel, err := dependency.NewAnalyzer(dependency.WithIgnored(excluded...)).Analyze(c.working)
	if err != nil {
		return err
	}

	if depth == 1 {
		for _, col := range slices.Concat(rel.Constant, rel.Unique) {
			c.frozen[col] = true
		}
	}

	groups, pairs := prune(rel, builder)
	entries := assign(groups, pairs, builder)

	r := Round{Depth: depth, Composites: builder.Names(), Relationships: rel}
	for _, e := range entries {
		idx := len(c.tables)
		for _, k := range e.keys {
			c.registry.register(k, idx)
		}
		projected, err := c.working.Project(slices.Concat(e.keys, e.dependents)...)
		if err != nil {
			return err
		}
		sub, err := projected.Distinct()
		if err != nil {
			return err
		}
		c.tables = append(c.tables, sub)
		c.primaryKeys = append(c.primaryKeys, slices.Clone(e.keys))
		c.subtables = append(c.subtables, Subtable{
			Index:       idx,
			Depth:       depth,
			Determinant: e.determinant,
			Keys:        slices.Clone(e.keys),
			Dependents:  slices.Clone(e.dependents),
		})
		r.Extracted = append(r.Extracted, idx)
		r.Removed = append(r.Removed, e.dependents...)
	}
	metrics.TablesExtractedTotal.Add(float64(len(entries)))

	if err := c.working.Drop(slices.Concat(r.Removed, builder.Names())...); err != nil {
		return err
	}
	c.rounds = append(c.rounds, r)

	d.log.Debug("decomposition round",
		"depth", depth,
		"composites", len(r.Composites),
		"extracted", len(r.Extracted),
		"removed", r.Removed)
	return nil
}

// prune drops dependencies that a composite restates. A composite may not be
// a dependent, and a composite determinant may not determine one of its own
// components. Bijective groups lose their composite members; the first
// composite of a group still determines the remaining raw members.
func prune(rel *dependency.Relationships, b *composite.Builder) ([][]string, []dependency.Pair) {
	var groups [][]string
	var pairs []dependency.Pair

	for _, g := range rel.Bijective {
		var raw, composites []string
		for _, m := range g {
			if b.IsComposite(m) {
				composites = append(composites, m)
			} else {
				raw = append(raw, m)
			}
		}
		if len(composites) == 0 {
			groups = append(groups, g)
			continue
		}
		if len(raw) >= 2 {
			groups = append(groups, raw)
		}
		for _, m := range raw {
			pairs = append(pairs, dependency.Pair{Determinant: composites[0], Dependent: m})
		}
	}
	pairs = append(pairs, rel.Identifies...)

	kept := pairs[:0]
	for _, p := range pairs {
		if b.IsComposite(p.Dependent) {
			continue
		}
		if components, ok := b.Components(p.Determinant); ok && slices.Contains(components, p.Dependent) {
			continue
		}
		kept = append(kept, p)
	}
	return groups, kept
}

// assign maps dependents to determinants, first match wins. A determinant
// whose key columns were already extracted this round is skipped so that the
// residual table can still reach every subtable.
func assign(groups [][]string, pairs []dependency.Pair, b *composite.Builder) []*entry {
	var entries []*entry
	byDeterminant := make(map[string]*entry)
	assigned := make(map[string]bool)

	add := func(det, dep string) {
		keys := []string{det}
		if components, ok := b.Components(det); ok {
			keys = components
		}
		if assigned[dep] || slices.Contains(keys, dep) {
			return
		}
		for _, k := range keys {
			if assigned[k] {
				return
			}
		}
		e, ok := byDeterminant[det]
		if !ok {
			e = &entry{determinant: det, keys: keys}
			byDeterminant[det] = e
			entries = append(entries, e)
		}
		e.dependents = append(e.dependents, dep)
		assigned[dep] = true
	}

	for _, g := range groups {
		for _, m := range g[1:] {
			add(g[0], m)
		}
	}
	for _, p := range pairs {
		add(p.Determinant, p.Dependent)
	}
	return entries
}

// annotate appends key markers to every key column and records foreign key
// usage. The marker is repeated while the name is taken. Column base names are
// kept for later lookups.
func (d *Decomposer) annotate(c *decomposition) error {
	c.primaryKeys[0] = c.registry.Keys()
	c.baseNames = make([][]string, len(c.tables))

	// a marked name never reuses a source column name
	taken := make(map[string]bool)
	for _, tbl := range c.tables {
		for _, col := range tbl.Columns() {
			taken[col] = true
		}
	}

	for i, tbl := range c.tables {
		columns := tbl.Columns()
		c.baseNames[i] = columns
		mapping := make(map[string]string)
		used := make(map[string]bool)
		for _, col := range columns {
			owner, ok := c.registry.PrimaryTable(col)
			if !ok {
				continue
			}
			marker := d.cfg.PrimaryKeyMarker
			if owner != i {
				marker = d.cfg.ForeignKeyMarker
				c.registry.addForeign(col, i)
			}
			name := col + marker
			for taken[name] || used[name] {
				name += marker
			}
			used[name] = true
			mapping[col] = name
		}
		if err := tbl.Rename(mapping); err != nil {
			return fmt.Errorf("failed to annotate table %d: %w", i, err)
		}
	}
	return nil
}
