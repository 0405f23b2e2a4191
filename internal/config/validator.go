package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "decompose.max_depth")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidOutputFormats returns the list of valid schema output formats
func ValidOutputFormats() []string {
	return []string{"text", "markdown"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError
	errors = append(errors, c.validateSource()...)
	errors = append(errors, c.validateDecompose()...)
	errors = append(errors, c.validateOutput()...)
	return errors
}

func (c *Config) validateSource() []ValidationError {
	var errors []ValidationError
	if c.Source.Limit < 0 {
		errors = append(errors, ValidationError{
			Field:   "source.limit",
			Value:   c.Source.Limit,
			Message: "must be zero (no limit) or positive",
		})
	}
	return errors
}

func (c *Config) validateDecompose() []ValidationError {
	var errors []ValidationError
	d := c.Decompose

	if d.MaxDepth < 1 {
		errors = append(errors, ValidationError{
			Field:   "decompose.max_depth",
			Value:   d.MaxDepth,
			Message: "must be at least 1",
		})
	}
	if d.Joiner == "" {
		errors = append(errors, ValidationError{
			Field:   "decompose.joiner",
			Value:   d.Joiner,
			Message: "must not be empty",
		})
	}
	if d.PrimaryKeyMarker == "" {
		errors = append(errors, ValidationError{
			Field:   "decompose.primary_key_marker",
			Value:   d.PrimaryKeyMarker,
			Message: "must not be empty",
		})
	}
	if d.ForeignKeyMarker == "" {
		errors = append(errors, ValidationError{
			Field:   "decompose.foreign_key_marker",
			Value:   d.ForeignKeyMarker,
			Message: "must not be empty",
		})
	}
	if d.PrimaryKeyMarker != "" && d.PrimaryKeyMarker == d.ForeignKeyMarker {
		errors = append(errors, ValidationError{
			Field:   "decompose.foreign_key_marker",
			Value:   d.ForeignKeyMarker,
			Message: "must differ from the primary key marker",
		})
	}
	return errors
}

func (c *Config) validateOutput() []ValidationError {
	var errors []ValidationError
	if !slices.Contains(ValidOutputFormats(), c.Output.Format) {
		errors = append(errors, ValidationError{
			Field:   "output.format",
			Value:   c.Output.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidOutputFormats(), ", ")),
		})
	}
	if c.Output.File != "" && c.Output.Dir != "" {
		errors = append(errors, ValidationError{
			Field:   "output.dir",
			Value:   c.Output.Dir,
			Message: "cannot be combined with output.file",
		})
	}
	return errors
}
