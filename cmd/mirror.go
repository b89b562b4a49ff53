package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"archive-sync/core/config"
	"archive-sync/core/logger"
	"archive-sync/core/storage"
	"archive-sync/feature/assets"
	"archive-sync/feature/character/artifact"
	"archive-sync/feature/character/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// mirrorCmd copies character images from public upstreams into storage.
var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Mirror character images into object storage",
	Long: `Mirror reads the generated character data tree and downloads the icon,
portrait and collection image for every character into object storage,
skipping objects that already exist.

Run 'archive-sync fetch' or 'archive-sync sync' first to generate the data
tree.`,
	RunE: runMirror,
}

func init() {
	RootCmd.AddCommand(mirrorCmd)
}

func runMirror(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	chars, err := loadDataTree(cfg.Character.OutputDir)
	if err != nil {
		return err
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}

	mirror := assets.NewMirror(client, cfg.Storage.Bucket, l)
	report, runErr := mirror.Run(ctx, chars)

	// An interrupted run still reports what it stored.
	for _, failure := range report.Failures {
		l.Warn("Image failed", zap.String("image", failure))
	}
	l.Info("Mirror summary",
		zap.Int("attempted", report.Attempted),
		zap.Int("stored", report.Stored),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return runErr
}

// loadDataTree reads the characters artifact written by a previous run.
func loadDataTree(outputDir string) ([]models.Character, error) {
	path := filepath.Join(outputDir, filepath.FromSlash(artifact.CharactersPath))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data tree %s (run fetch first): %w", path, err)
	}

	var chars []models.Character
	if err := json.Unmarshal(data, &chars); err != nil {
		return nil, fmt.Errorf("parse data tree %s: %w", path, err)
	}
	return chars, nil
}
