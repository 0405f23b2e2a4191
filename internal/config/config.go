package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete tablenorm configuration
type Config struct {
	Source    SourceConfig    `mapstructure:"source"`
	Decompose DecomposeConfig `mapstructure:"decompose"`
	Output    OutputConfig    `mapstructure:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// SourceConfig selects the table to normalize
type SourceConfig struct {
	// URL is a postgres://, mysql://, sqlite:// or csv:// URL, or a path to a .csv file
	URL string `mapstructure:"url"`
	// Table names the source table for database URLs
	Table string `mapstructure:"table"`
	// Schema is the PostgreSQL schema holding Table (default: public)
	Schema string `mapstructure:"schema"`
	// Limit caps the number of rows read; 0 reads every row
	Limit int `mapstructure:"limit"`
}

// DecomposeConfig controls dependency detection and decomposition
type DecomposeConfig struct {
	// MaxDepth is the largest composite determinant arity tried (default: 1)
	MaxDepth int `mapstructure:"max_depth"`
	// Joiner separates composite column names and values (default: ▲)
	Joiner string `mapstructure:"joiner"`
	// PrimaryKeyMarker is appended to primary key columns (default: †)
	PrimaryKeyMarker string `mapstructure:"primary_key_marker"`
	// ForeignKeyMarker is appended to foreign key columns (default: ‡)
	ForeignKeyMarker string `mapstructure:"foreign_key_marker"`
	// IgnoreColumns are left out of the analysis and stay in the residual table
	IgnoreColumns []string `mapstructure:"ignore_columns"`
}

// OutputConfig controls where results go
type OutputConfig struct {
	// Format is "text" or "markdown"
	Format string `mapstructure:"format"`
	// File receives single-file schema output; empty writes to stdout
	File string `mapstructure:"file"`
	// Dir receives one schema file per table plus an overview
	Dir string `mapstructure:"dir"`
	// DataDir receives one CSV file per output table
	DataDir string `mapstructure:"data_dir"`
	// ExportURL is a database URL that receives the output tables
	ExportURL string `mapstructure:"export_url"`
	// Replace drops existing tables of the same names before export
	Replace bool `mapstructure:"replace"`
	// Name names the residual table (default: the source table or file name)
	Name string `mapstructure:"name"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Verbose bool `mapstructure:"verbose"`
}

// MetricsConfig controls metric export
type MetricsConfig struct {
	// File receives the metrics in Prometheus text format after each run
	File string `mapstructure:"file"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Decompose: DecomposeConfig{
			MaxDepth:         1,
			Joiner:           "▲",
			PrimaryKeyMarker: "†",
			ForeignKeyMarker: "‡",
			IgnoreColumns:    []string{},
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("source.url", defaults.Source.URL)
	viper.SetDefault("source.table", defaults.Source.Table)
	viper.SetDefault("source.schema", defaults.Source.Schema)
	viper.SetDefault("source.limit", defaults.Source.Limit)

	viper.SetDefault("decompose.max_depth", defaults.Decompose.MaxDepth)
	viper.SetDefault("decompose.joiner", defaults.Decompose.Joiner)
	viper.SetDefault("decompose.primary_key_marker", defaults.Decompose.PrimaryKeyMarker)
	viper.SetDefault("decompose.foreign_key_marker", defaults.Decompose.ForeignKeyMarker)
	viper.SetDefault("decompose.ignore_columns", defaults.Decompose.IgnoreColumns)

	viper.SetDefault("output.format", defaults.Output.Format)
	viper.SetDefault("output.file", defaults.Output.File)
	viper.SetDefault("output.dir", defaults.Output.Dir)
	viper.SetDefault("output.data_dir", defaults.Output.DataDir)
	viper.SetDefault("output.export_url", defaults.Output.ExportURL)
	viper.SetDefault("output.replace", defaults.Output.Replace)
	viper.SetDefault("output.name", defaults.Output.Name)

	viper.SetDefault("logging.verbose", defaults.Logging.Verbose)
	viper.SetDefault("metrics.file", defaults.Metrics.File)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tablenorm")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tablenorm"
	}
	return filepath.Join(home, ".config", "tablenorm")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
