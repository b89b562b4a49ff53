package cmd

import (
	"context"
	"fmt"

	"archive-sync/core/config"
	"archive-sync/core/logger"
	"archive-sync/core/storage"
	"archive-sync/feature/character"
	"archive-sync/feature/character/artifact"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fetchPublish bool
	fetchSources string
)

// fetchCmd fetches and reconciles without touching the target store.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch and reconcile character data, writing only local artifacts",
	Long: `Fetch downloads character data from all configured sources, merges it into
canonical records and writes the normalized data tree plus the CDN manifest.
The target store is never contacted.

Examples:
  # Write data/characters/characters.json and data/cdn_manifest.json
  archive-sync fetch

  # Also publish both artifacts to object storage
  archive-sync fetch --publish`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchPublish, "publish", false, "Publish artifacts to object storage after writing")
	fetchCmd.Flags().StringVar(&fetchSources, "sources", "", "Comma-separated source list in priority order (overrides config)")

	RootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if fetchSources != "" {
		cfg.Character.Sources = fetchSources
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	sources, err := buildSources(cfg.Character)
	if err != nil {
		return err
	}

	// No store connection: the service stops after writing artifacts.
	svc := character.NewService(cfg.Character, l, nil, sources...)
	report, err := svc.Run(ctx, character.RunOptions{})
	if err != nil {
		return err
	}

	l.Info("Fetch complete",
		zap.Int("merged", report.Merged),
		zap.String("output_dir", cfg.Character.OutputDir))

	if !fetchPublish {
		return nil
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}

	writer := newArtifactWriter(cfg, l)
	if err := writer.Publish(ctx, client, cfg.Storage.Bucket, cfg.Character.PublishPrefix); err != nil {
		return fmt.Errorf("failed to publish artifacts: %w", err)
	}

	l.Info("Artifacts published", zap.String("bucket", cfg.Storage.Bucket))
	return nil
}

func newArtifactWriter(cfg *config.Config, l *zap.Logger) *artifact.Writer {
	return artifact.NewWriter(
		cfg.Character.OutputDir,
		cfg.Character.CDNBaseURL,
		cfg.Character.ManifestVersion,
		l,
	)
}
