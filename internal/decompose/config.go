package decompose

import (
	"fmt"
	"log/slog"

	"github.com/tordrt/tablenorm/internal/composite"
)

// Default key markers appended to key column names after decomposition.
const (
	DefaultPrimaryKeyMarker = "†"
	DefaultForeignKeyMarker = "‡"
)

// Config controls a decomposition.
type Config struct {
	// MaxDepth is the largest composite determinant arity tried. 1 disables
	// composite synthesis. Zero selects 1.
	MaxDepth int

	// Joiner separates composite column names and values.
	Joiner string

	PrimaryKeyMarker string
	ForeignKeyMarker string

	// IgnoreColumns take no part in analysis or composite synthesis. They
	// stay in the residual table.
	IgnoreColumns []string

	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.MaxDepth == 0 {
		c.MaxDepth = 1
	}
	if c.Joiner == "" {
		c.Joiner = composite.DefaultJoiner
	}
	if c.PrimaryKeyMarker == "" {
		c.PrimaryKeyMarker = DefaultPrimaryKeyMarker
	}
	if c.ForeignKeyMarker == "" {
		c.ForeignKeyMarker = DefaultForeignKeyMarker
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}

func (c Config) validate() error {
	if c.MaxDepth < 1 {
		return fmt.Errorf("max depth must be positive, got %d", c.MaxDepth)
	}
	if c.PrimaryKeyMarker == c.ForeignKeyMarker {
		return fmt.Errorf("primary and foreign key markers must differ, both are %q", c.PrimaryKeyMarker)
	}
	return nil
}
