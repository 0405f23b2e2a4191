package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tordrt/tablenorm"
	"github.com/tordrt/tablenorm/internal/config"
	"github.com/tordrt/tablenorm/internal/csvio"
	"github.com/tordrt/tablenorm/internal/dependency"
	"github.com/tordrt/tablenorm/internal/formatter"
	"github.com/tordrt/tablenorm/internal/logger"
	"github.com/tordrt/tablenorm/internal/metrics"
	"github.com/tordrt/tablenorm/internal/schema"
)

var (
	analyzeFormat string
	analyzeColumn string
	sampleOutput  string
)

var rootCmd = &cobra.Command{
	Use:   "tablenorm [source]",
	Short: "Infer a normalized schema from a single table",
	Long: `tablenorm reads one denormalized table from a CSV file, PostgreSQL, MySQL or SQLite,
detects functional dependencies between its columns and splits it into a residual table
plus subtables linked by primary and foreign keys.`,
	Args:         cobra.MaximumNArgs(1),
	RunE:         run,
	SilenceUsage: true,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [source]",
	Short: "Print the dependency relationships between columns",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAnalyze,
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write the pet adoption sample table as CSV",
	Args:  cobra.NoArgs,
	RunE:  runSample,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", "", "config file (default is $HOME/.config/tablenorm/config.yaml)")
	pf.StringP("source", "i", "", "Source: a .csv path or a csv://, postgres://, mysql:// or sqlite:// URL")
	pf.StringP("table", "t", "", "Source table name (required for database sources)")
	pf.String("schema", "", "PostgreSQL schema holding the source table (default: public)")
	pf.Int("limit", 0, "Read at most this many rows (0 reads every row)")
	pf.StringSlice("ignore", nil, "Columns left out of the analysis (comma-separated)")
	pf.String("metrics-file", "", "Write Prometheus metrics to this file after the run")
	pf.BoolP("verbose", "v", false, "Enable debug logging")

	f := rootCmd.Flags()
	f.IntP("depth", "D", 1, "Largest number of columns combined into one determinant")
	f.String("joiner", "", "Separator for composite column names and values (default: ▲)")
	f.String("pk-marker", "", "Marker appended to primary key columns (default: †)")
	f.String("fk-marker", "", "Marker appended to foreign key columns (default: ‡)")
	f.StringP("format", "f", "text", "Output format: text or markdown")
	f.StringP("output", "o", "", "Output file (default: stdout)")
	f.StringP("output-dir", "d", "", "Output directory for multi-file output")
	f.String("data-dir", "", "Write every output table as CSV into this directory")
	f.String("export-url", "", "Create and fill the output tables in this database")
	f.Bool("replace", false, "Drop existing tables before exporting")
	f.String("name", "", "Name of the residual table (default: source table or file name)")

	bindFlag("config", pf.Lookup("config"))
	bindFlag("source.url", pf.Lookup("source"))
	bindFlag("source.table", pf.Lookup("table"))
	bindFlag("source.schema", pf.Lookup("schema"))
	bindFlag("source.limit", pf.Lookup("limit"))
	bindFlag("decompose.ignore_columns", pf.Lookup("ignore"))
	bindFlag("metrics.file", pf.Lookup("metrics-file"))
	bindFlag("logging.verbose", pf.Lookup("verbose"))
	bindFlag("decompose.max_depth", f.Lookup("depth"))
	bindFlag("decompose.joiner", f.Lookup("joiner"))
	bindFlag("decompose.primary_key_marker", f.Lookup("pk-marker"))
	bindFlag("decompose.foreign_key_marker", f.Lookup("fk-marker"))
	bindFlag("output.format", f.Lookup("format"))
	bindFlag("output.file", f.Lookup("output"))
	bindFlag("output.dir", f.Lookup("output-dir"))
	bindFlag("output.data_dir", f.Lookup("data-dir"))
	bindFlag("output.export_url", f.Lookup("export-url"))
	bindFlag("output.replace", f.Lookup("replace"))
	bindFlag("output.name", f.Lookup("name"))

	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "text", "Output format: text, json or dot")
	analyzeCmd.Flags().StringVar(&analyzeColumn, "column", "", "Only show the relationships of this column")

	sampleCmd.Flags().StringVarP(&sampleOutput, "output", "o", "", "Output file (default: stdout)")

	rootCmd.AddCommand(analyzeCmd, sampleCmd)
}

func bindFlag(key string, flag *pflag.Flag) {
	_ = viper.BindPFlag(key, flag)
}

func initConfig() {
	config.SetDefaults()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("TABLENORM")
	// TABLENORM_DECOMPOSE_MAX_DEPTH for decompose.max_depth
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = viper.ReadInConfig()
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(os.Stderr, cfg.Logging.Verbose)
	defer writeMetrics(cfg, log)

	source, err := sourceURL(cfg, args)
	if err != nil {
		return err
	}
	opts := optionsFromConfig(cfg, log)

	t, err := tablenorm.LoadTable(ctx, source, opts)
	if err != nil {
		return err
	}
	res, err := tablenorm.Decompose(t, opts)
	if err != nil {
		return err
	}
	s := res.Describe(tablenorm.SourceName(source, opts))
	log.Info("normalized table", "tables", len(s.Tables), "rounds", len(res.Rounds))

	if err := writeSchema(cfg, s, log); err != nil {
		return err
	}

	if cfg.Output.DataDir != "" {
		if err := tablenorm.WriteDataFiles(cfg.Output.DataDir, res, s); err != nil {
			return err
		}
		log.Info("wrote data files", "dir", cfg.Output.DataDir)
	}

	if cfg.Output.ExportURL != "" {
		if err := tablenorm.ExportTables(ctx, cfg.Output.ExportURL, res, s, cfg.Output.Replace); err != nil {
			return err
		}
		log.Info("exported tables", "tables", len(s.Tables), "replace", cfg.Output.Replace)
	}

	return nil
}

func writeSchema(cfg *config.Config, s *schema.Schema, log *slog.Logger) error {
	if cfg.Output.Dir != "" {
		if err := tablenorm.FormatSchema(s, &tablenorm.OutputOptions{OutputDir: cfg.Output.Dir, Format: cfg.Output.Format}); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		fmt.Printf("Schema written to %s/ (%d tables)\n", cfg.Output.Dir, len(s.Tables))
		return nil
	}

	var writer io.Writer = os.Stdout
	if cfg.Output.File != "" {
		f, err := os.Create(cfg.Output.File)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Warn("failed to close output file", "error", err)
			}
		}()
		writer = f
	}

	if err := tablenorm.FormatSchema(s, &tablenorm.OutputOptions{Writer: writer, Format: cfg.Output.Format}); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(os.Stderr, cfg.Logging.Verbose)
	defer writeMetrics(cfg, log)

	source, err := sourceURL(cfg, args)
	if err != nil {
		return err
	}
	opts := optionsFromConfig(cfg, log)

	t, err := tablenorm.LoadTable(ctx, source, opts)
	if err != nil {
		return err
	}

	f, err := formatter.NewRelationshipFormatter(cmd.OutOrStdout(), analyzeFormat)
	if err != nil {
		return err
	}

	if analyzeColumn != "" {
		rels, err := dependency.ColumnRelationships(t, analyzeColumn)
		if err != nil {
			return err
		}
		return f.FormatColumn(analyzeColumn, rels)
	}

	rel, err := tablenorm.Analyze(t, opts)
	if err != nil {
		return err
	}
	return f.Format(rel)
}

func runSample(cmd *cobra.Command, _ []string) error {
	if sampleOutput == "" {
		return csvio.Write(cmd.OutOrStdout(), tablenorm.SampleTable())
	}
	return csvio.WriteFile(sampleOutput, tablenorm.SampleTable())
}

// sourceURL prefers the positional argument over the configured source.
func sourceURL(cfg *config.Config, args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if cfg.Source.URL != "" {
		return cfg.Source.URL, nil
	}
	return "", fmt.Errorf("a source must be given as an argument or with --source")
}

func optionsFromConfig(cfg *config.Config, log *slog.Logger) *tablenorm.Options {
	return &tablenorm.Options{
		Table:            cfg.Source.Table,
		Schema:           cfg.Source.Schema,
		Limit:            cfg.Source.Limit,
		MaxDepth:         cfg.Decompose.MaxDepth,
		Joiner:           cfg.Decompose.Joiner,
		PrimaryKeyMarker: cfg.Decompose.PrimaryKeyMarker,
		ForeignKeyMarker: cfg.Decompose.ForeignKeyMarker,
		IgnoreColumns:    parseColumnList(cfg.Decompose.IgnoreColumns),
		Name:             cfg.Output.Name,
		Logger:           log,
	}
}

// parseColumnList trims names and splits entries that still hold commas,
// which happens when the list comes from an environment variable.
func parseColumnList(entries []string) []string {
	var columns []string
	for _, e := range entries {
		for _, c := range strings.Split(e, ",") {
			if c = strings.TrimSpace(c); c != "" {
				columns = append(columns, c)
			}
		}
	}
	return columns
}

func writeMetrics(cfg *config.Config, log *slog.Logger) {
	if cfg.Metrics.File == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.Metrics.File); err != nil {
		log.Warn("failed to write metrics", "file", cfg.Metrics.File, "error", err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
