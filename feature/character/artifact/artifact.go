// Package artifact writes the pipeline's hand-off documents: the normalized
// character tree and the CDN manifest consumed by downstream asset tooling.
package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"archive-sync/core/storage"
	"archive-sync/feature/character/models"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Manifest describes where derived asset URLs live on the CDN.
type Manifest struct {
	BaseURL     string            `json:"base_url"`
	Version     string            `json:"version"`
	Directories map[string]string `json:"directories"`
	URLFormat   map[string]string `json:"url_format"`
}

// BuildManifest assembles the manifest for the given CDN base and version.
func BuildManifest(cdnBase, version string) Manifest {
	return Manifest{
		BaseURL: cdnBase,
		Version: version,
		Directories: map[string]string{
			"character_icons":      "/images/characters/icons/",
			"character_portraits":  "/images/characters/portraits/",
			"character_collection": "/images/characters/collection/",
			"weapons":              "/images/weapons/",
			"equipment":            "/images/equipment/",
		},
		URLFormat: map[string]string{
			"character_icon":     "{base_url}/images/characters/icons/{id}.webp",
			"character_portrait": "{base_url}/images/characters/portraits/{id}.webp",
			"weapon":             "{base_url}/images/weapons/{id}.webp",
		},
	}
}

// Relative artifact paths, shared by the local tree and the published objects.
const (
	CharactersPath = "characters/characters.json"
	ManifestPath   = "cdn_manifest.json"
)

// Writer persists artifacts under a local output directory and optionally
// publishes them to object storage.
type Writer struct {
	outputDir string
	cdnBase   string
	version   string
	log       *zap.Logger
}

// NewWriter creates an artifact writer rooted at outputDir.
func NewWriter(outputDir, cdnBase, version string, log *zap.Logger) *Writer {
	return &Writer{outputDir: outputDir, cdnBase: cdnBase, version: version, log: log}
}

// WriteDataTree writes the normalized character records as the canonical
// hand-off document and returns the file path.
func (w *Writer) WriteDataTree(chars []models.Character) (string, error) {
	path := filepath.Join(w.outputDir, filepath.FromSlash(CharactersPath))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}

	data, err := json.MarshalIndent(chars, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal characters: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	w.log.Info("wrote character data tree",
		zap.String("path", path),
		zap.Int("characters", len(chars)))
	return path, nil
}

// WriteManifest writes cdn_manifest.json and returns the file path.
func (w *Writer) WriteManifest() (string, error) {
	path := filepath.Join(w.outputDir, ManifestPath)
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	data, err := json.MarshalIndent(BuildManifest(w.cdnBase, w.version), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	w.log.Info("wrote cdn manifest", zap.String("path", path))
	return path, nil
}

// Publish uploads the locally written artifacts to object storage under the
// given prefix. The local tree must have been written first.
func (w *Writer) Publish(ctx context.Context, client storage.Client, bucket, prefix string) error {
	if err := storage.EnsureBucket(ctx, client, bucket, ""); err != nil {
		return err
	}

	for _, rel := range []string{CharactersPath, ManifestPath} {
		local := filepath.Join(w.outputDir, filepath.FromSlash(rel))
		data, err := os.ReadFile(local)
		if err != nil {
			return fmt.Errorf("read artifact %s: %w", local, err)
		}

		object := rel
		if prefix != "" {
			object = prefix + "/" + rel
		}

		_, err = client.PutObject(ctx, bucket, object,
			bytes.NewReader(data), int64(len(data)),
			minio.PutObjectOptions{ContentType: "application/json"})
		if err != nil {
			return fmt.Errorf("publish %s: %w", object, err)
		}

		w.log.Info("published artifact",
			zap.String("bucket", bucket),
			zap.String("object", object))
	}

	return nil
}
