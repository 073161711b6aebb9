// Package linkcmd implements the booklink subcommands on top of the matching engine.
package linkcmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/booklink/internal/config"
)

// NewMatchCmd creates the match command
func NewMatchCmd() *cobra.Command {
	var opts matchOptions
	var verbose bool

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Link the records of two catalog exports",
		Long: `Link every record of the left table to at most one record of the right table.

Two strategies are available:
  weighted  block on title/author prefixes and accept pairs whose weighted
            field similarity reaches the acceptance threshold (default)
  linkage   accept pairs sharing an ISBN variant, or with a similar title,
            a similar author and a year within tolerance

Inputs may be .csv, .jsonl, .parquet or .xlsx. The output format follows the
extension of --output (.csv, .jsonl or .xlsx).`,
		Example: `  # Weighted matching with the default thresholds
  booklink match --left data/table_a.csv --right data/table_b.csv --output data/table_c.csv

  # ISBN/title linkage with 8 workers, recording the run
  booklink match --left a.csv --right b.jsonl --output c.xlsx --strategy linkage --workers 8 --history-db runs.db

  # Settings from a config file, summary saved as YAML
  booklink match --left a.csv --right b.csv --output c.csv --config booklink.yaml --summary-yaml runs/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(verbose)

			cfg, err := loadConfig(cmd, opts.ConfigPath)
			if err != nil {
				return err
			}
			return executeMatch(cmd.Context(), cmd.OutOrStdout(), cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Left, "left", "", "Path to the left table (required)")
	cmd.Flags().StringVar(&opts.Right, "right", "", "Path to the right table (required)")
	cmd.Flags().StringVar(&opts.Output, "output", "", "Path to the output table (required)")
	cmd.Flags().StringVar(&opts.SummaryDir, "summary-yaml", "", "Directory to write a YAML run record to")
	cmd.Flags().IntVar(&opts.Samples, "samples", 0, "Number of sample matches to print")
	addConfigFlags(cmd, &opts.ConfigPath)
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	_ = cmd.MarkFlagRequired("left")
	_ = cmd.MarkFlagRequired("right")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd() *cobra.Command {
	var left, right, configPath string
	var samples int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Report the overlap between two catalogs",
		Long: `Run the linkage strategy over two tables and report dataset sizes, the number
of linked books, the overlap percentage and a table of sample matches.

No output table is written.`,
		Example: `  # Overlap between OpenLibrary and Google Books exports
  booklink analyze --left data/table_a.csv --right data/table_b.csv

  # Show ten sample matches
  booklink analyze --left a.csv --right b.csv --samples 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(verbose)

			cfg, err := loadConfig(cmd, configPath)
			if err != nil {
				return err
			}
			cfg.Strategy = config.StrategyLinkage
			return executeAnalyze(cmd.Context(), cmd.OutOrStdout(), cfg, left, right, samples)
		},
	}

	cmd.Flags().StringVar(&left, "left", "", "Path to the left table (required)")
	cmd.Flags().StringVar(&right, "right", "", "Path to the right table (required)")
	cmd.Flags().IntVar(&samples, "samples", 5, "Number of sample matches to print")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML or TOML config file")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	_ = cmd.MarkFlagRequired("left")
	_ = cmd.MarkFlagRequired("right")

	return cmd
}

// NewISBNCmd creates the isbn command
func NewISBNCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "isbn ISBN...",
		Short: "Show the canonical variants of ISBNs",
		Long: `Clean each ISBN, convert it between the 10 and 13 digit forms and list the
variant keys used for ISBN matching.`,
		Example: `  booklink isbn 978-0-7432-7356-5 0140449132`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeISBN(cmd.OutOrStdout(), args)
		},
	}
}

// NewHistoryCmd creates the history command
func NewHistoryCmd() *cobra.Command {
	var dbPath, runID string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded match runs",
		Long: `List the runs recorded with --history-db, most recent first, or the accepted
pairs of a single run.

The database defaults to BOOKLINK_HISTORY_DB.`,
		Example: `  # Ten most recent runs
  booklink history --db runs.db

  # Pairs of one run
  booklink history --db runs.db --run 0b7c2b0e-4f3c-4a55-9d0e-9f3f5d1c2a77`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				cfg, err := config.Load("")
				if err != nil {
					return err
				}
				dbPath = cfg.HistoryDB
			}
			if dbPath == "" {
				return fmt.Errorf("--db is required when %s is not set", config.EnvHistoryDB)
			}
			return executeHistory(cmd.Context(), cmd.OutOrStdout(), dbPath, runID, limit)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the history database")
	cmd.Flags().StringVar(&runID, "run", "", "Show the matches of this run")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of runs to list (0 for all)")

	return cmd
}

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var tablePath, column string
	var limit int

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect the records of a table",
		Long: `Print the records of a table as the matcher sees them: the detected key column,
the named book fields and the normalized title and author forms.

With --column, print the non-empty values of that column separated by commas
instead (useful for checking the languages or years a catalog covers).`,
		Example: `  # First 5 records
  booklink inspect --table data/table_a.csv --limit 5

  # Every language in the table
  booklink inspect --table data/table_a.csv --column Language --limit 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeInspect(cmd.OutOrStdout(), tablePath, column, limit)
		},
	}

	cmd.Flags().StringVar(&tablePath, "table", "", "Path to a .csv, .jsonl, .parquet or .xlsx table (required)")
	cmd.Flags().StringVar(&column, "column", "", "Print only the non-empty values of this column")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of records to inspect (0 for all)")

	_ = cmd.MarkFlagRequired("table")

	return cmd
}

func addConfigFlags(cmd *cobra.Command, configPath *string) {
	cmd.Flags().StringVar(configPath, "config", "", "Path to a YAML or TOML config file")
	cmd.Flags().String("strategy", "", "Matching strategy: weighted or linkage")
	cmd.Flags().String("metric", "", "Similarity metric: ratcliff-obershelp or jaro-winkler")
	cmd.Flags().Int("workers", 0, "Concurrent scoring workers")
	cmd.Flags().String("history-db", "", "SQLite database to record the run in")
}

// loadConfig layers flags over environment, config file and defaults
func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Lookup("strategy") == nil {
		return cfg, nil
	}
	if flags.Changed("strategy") {
		v, _ := flags.GetString("strategy")
		cfg.Strategy = strings.ToLower(v)
	}
	if flags.Changed("metric") {
		v, _ := flags.GetString("metric")
		cfg.Metric = strings.ToLower(v)
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("history-db") {
		cfg.HistoryDB, _ = flags.GetString("history-db")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
