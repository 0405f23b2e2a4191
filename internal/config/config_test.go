package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Decompose.MaxDepth != 1 {
		t.Errorf("Decompose.MaxDepth = %d, want 1", cfg.Decompose.MaxDepth)
	}
	if cfg.Decompose.Joiner != "▲" {
		t.Errorf("Decompose.Joiner = %q, want %q", cfg.Decompose.Joiner, "▲")
	}
	if cfg.Decompose.PrimaryKeyMarker != "†" || cfg.Decompose.ForeignKeyMarker != "‡" {
		t.Errorf("markers = %q/%q, want †/‡", cfg.Decompose.PrimaryKeyMarker, cfg.Decompose.ForeignKeyMarker)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %q, want text", cfg.Output.Format)
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Default().Validate() = %v, want no errors", errs)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(*Config)
		wantFields []string
	}{
		{
			name:       "zero depth",
			modify:     func(c *Config) { c.Decompose.MaxDepth = 0 },
			wantFields: []string{"decompose.max_depth"},
		},
		{
			name:       "empty joiner",
			modify:     func(c *Config) { c.Decompose.Joiner = "" },
			wantFields: []string{"decompose.joiner"},
		},
		{
			name: "equal markers",
			modify: func(c *Config) {
				c.Decompose.PrimaryKeyMarker = "*"
				c.Decompose.ForeignKeyMarker = "*"
			},
			wantFields: []string{"decompose.foreign_key_marker"},
		},
		{
			name:       "unknown format",
			modify:     func(c *Config) { c.Output.Format = "html" },
			wantFields: []string{"output.format"},
		},
		{
			name: "file and dir",
			modify: func(c *Config) {
				c.Output.File = "schema.txt"
				c.Output.Dir = "schema"
			},
			wantFields: []string{"output.dir"},
		},
		{
			name: "several problems",
			modify: func(c *Config) {
				c.Source.Limit = -1
				c.Decompose.MaxDepth = -2
			},
			wantFields: []string{"source.limit", "decompose.max_depth"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			errs := cfg.Validate()
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("Validate() = %v, want fields %v", errs, tt.wantFields)
			}
			for i, field := range tt.wantFields {
				if errs[i].Field != field {
					t.Errorf("errs[%d].Field = %q, want %q", i, errs[i].Field, field)
				}
			}
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	one := ValidationErrors{{Field: "a", Value: 1, Message: "bad"}}
	if got := one.Error(); got != "a: bad (got: 1)" {
		t.Errorf("Error() = %q", got)
	}

	two := ValidationErrors{{Field: "a", Value: 1, Message: "bad"}, {Field: "b", Value: "", Message: "empty"}}
	if got := two.Error(); !strings.HasPrefix(got, "2 validation errors:\n") || !strings.Contains(got, "  2. b: empty") {
		t.Errorf("Error() = %q", got)
	}
}

func TestLoad(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "decompose:\n  max_depth: 2\n  ignore_columns: [id, date]\noutput:\n  format: markdown\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Decompose.MaxDepth != 2 {
		t.Errorf("Decompose.MaxDepth = %d, want 2", cfg.Decompose.MaxDepth)
	}
	if strings.Join(cfg.Decompose.IgnoreColumns, ",") != "id,date" {
		t.Errorf("Decompose.IgnoreColumns = %v", cfg.Decompose.IgnoreColumns)
	}
	if cfg.Output.Format != "markdown" {
		t.Errorf("Output.Format = %q, want markdown", cfg.Output.Format)
	}
	if cfg.Decompose.Joiner != "▲" {
		t.Errorf("Decompose.Joiner = %q, want default", cfg.Decompose.Joiner)
	}
}

func TestLoad_Invalid(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
	viper.Set("decompose.max_depth", 0)

	_, err := Load()
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Load() error = %v, want ValidationErrors", err)
	}
}

func TestConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := ConfigFile(), "/custom/config/tablenorm/config.yaml"; got != want {
		t.Errorf("ConfigFile() = %q, want %q", got, want)
	}
}
