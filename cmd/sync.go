package cmd

import (
	"context"
	"fmt"

	"archive-sync/core/config"
	"archive-sync/core/database"
	"archive-sync/core/logger"
	"archive-sync/feature/character"
	"archive-sync/feature/character/source"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the sync command
	syncBatchSize    int
	syncDryRun       bool
	syncEnsureSchema bool
	syncSources      string
)

// syncCmd runs the full pipeline: fetch, merge, resolve, upsert.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch, reconcile and upsert character data into the target store",
	Long: `Sync fetches character data from all configured sources, merges it into
canonical records, resolves reference labels to foreign keys and upserts the
result in batches.

Partial failure is the expected common case: a failed source, an unresolved
label or a rejected batch degrades the run, it does not abort it. The run
only aborts when no source produced any usable record.

Examples:
  # Full sync with configured defaults
  archive-sync sync

  # Resolve and report without writing
  archive-sync sync --dry-run

  # Create/upgrade the target schema first
  archive-sync sync --ensure-schema

  # Restrict and reorder sources (first is primary)
  archive-sync sync --sources schaledb,torikushii`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().IntVar(&syncBatchSize, "batch-size", 0, "Records per upsert batch (overrides config)")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Fetch and resolve but perform no store writes")
	syncCmd.Flags().BoolVar(&syncEnsureSchema, "ensure-schema", false, "Migrate characters and reference tables before syncing")
	syncCmd.Flags().StringVar(&syncSources, "sources", "", "Comma-separated source list in priority order (overrides config)")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if syncBatchSize > 0 {
		cfg.Character.BatchSize = syncBatchSize
	}
	if syncSources != "" {
		cfg.Character.Sources = syncSources
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	l.Info("Starting character sync",
		zap.Strings("sources", cfg.Character.SourceList()),
		zap.Int("batch_size", cfg.Character.BatchSize))

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sources, err := buildSources(cfg.Character)
	if err != nil {
		return err
	}

	svc := character.NewService(cfg.Character, l, db, sources...)
	report, err := svc.Run(ctx, character.RunOptions{
		DryRun:       syncDryRun,
		EnsureSchema: syncEnsureSchema,
	})
	if err != nil {
		return err
	}

	printRunReport(l, report)
	return nil
}

// buildSources instantiates the configured sources in priority order.
func buildSources(cfg character.Config) ([]source.Source, error) {
	var sources []source.Source
	for _, name := range cfg.SourceList() {
		switch name {
		case source.SourceSchaleDB:
			sources = append(sources, source.NewSchaleDB(cfg.SchaleDBURL, cfg.CDNBaseURL))
		case source.SourceTorikushii:
			sources = append(sources, source.NewTorikushii(cfg.TorikushiiURL, cfg.CDNBaseURL))
		default:
			return nil, fmt.Errorf("unknown source %q", name)
		}
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}
	return sources, nil
}

// printRunReport logs the end-of-run summary, failures first so they are
// visible even when the record counts look healthy.
func printRunReport(l *zap.Logger, report *character.RunReport) {
	for _, fetch := range report.Fetches {
		if fetch.Error != "" {
			l.Warn("Source failed",
				zap.String("source", fetch.Source),
				zap.String("error", fetch.Error))
		}
	}

	for _, failure := range report.Summary.Failures {
		l.Warn("Record failed",
			zap.Int64("id", failure.ID),
			zap.String("name", failure.Name),
			zap.String("cause", failure.Cause))
	}

	l.Info("Run summary",
		zap.String("state", string(report.State)),
		zap.Int("merged", report.Merged),
		zap.Int("attempted", report.Summary.Attempted),
		zap.Int("succeeded", report.Summary.Succeeded),
		zap.Int("failed", report.Summary.Failed),
		zap.Int("lookup_misses", len(report.LookupMisses)))
}
