// Package assets mirrors character images from public upstreams into object
// storage, so the CDN layer serves from a bucket we control instead of
// hotlinking the sources.
package assets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"archive-sync/core/storage"
	"archive-sync/feature/character/models"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ObjectPrefix is the bucket prefix for mirrored character images.
const ObjectPrefix = "images/characters"

// requestPacing spaces upstream downloads to stay polite.
const requestPacing = 200 * time.Millisecond

// Report summarizes one mirror run.
type Report struct {
	Attempted int      `json:"attempted"`
	Stored    int      `json:"stored"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
	Failures  []string `json:"failures,omitempty"`
}

// Mirror downloads character images and stores them in the bucket.
type Mirror struct {
	client    storage.Client
	http      *http.Client
	log       *zap.Logger
	bucket    string
	upstreams []string
}

// Default upstream URL templates, tried in order. %s is the image category,
// %d the character id.
func defaultUpstreams() []string {
	return []string{
		"https://schaledb.com/images/student/%s/%d.webp",
		"https://raw.githubusercontent.com/lonqie/SchaleDB/main/images/student/%s/%d.webp",
	}
}

// NewMirror creates a mirror writing into the given bucket. Pass upstream
// URL templates to override the defaults (used by tests).
func NewMirror(client storage.Client, bucket string, log *zap.Logger, upstreams ...string) *Mirror {
	if len(upstreams) == 0 {
		upstreams = defaultUpstreams()
	}
	return &Mirror{
		client:    client,
		http:      &http.Client{Timeout: 30 * time.Second},
		log:       log,
		bucket:    bucket,
		upstreams: upstreams,
	}
}

// objectDirs maps canonical image categories to bucket directory names,
// matching the CDN tree layout.
var objectDirs = map[string]string{
	models.ImageIcon:       "icons",
	models.ImagePortrait:   "portraits",
	models.ImageCollection: "collection",
}

// Run mirrors every image category for every character, skipping objects
// already present. Objects are listed once up front; no per-object HEAD
// calls.
func (m *Mirror) Run(ctx context.Context, chars []models.Character) (Report, error) {
	var report Report

	if err := storage.EnsureBucket(ctx, m.client, m.bucket, ""); err != nil {
		return report, err
	}

	existing := m.listExisting(ctx)
	m.log.Info("mirroring character images",
		zap.Int("characters", len(chars)),
		zap.Int("existing_objects", len(existing)))

	for _, c := range chars {
		for _, category := range models.ImageCategories() {
			key := fmt.Sprintf("%s/%s/%d.webp", ObjectPrefix, objectDirs[category], c.ID)

			if _, ok := existing[key]; ok {
				report.Skipped++
				continue
			}

			report.Attempted++
			if err := m.mirrorOne(ctx, key, category, c.ID); err != nil {
				report.Failed++
				report.Failures = append(report.Failures,
					fmt.Sprintf("%d/%s: %v", c.ID, category, err))
				m.log.Warn("image mirror failed",
					zap.Int("character", c.ID),
					zap.String("category", category),
					zap.Error(err))
				continue
			}
			report.Stored++

			select {
			case <-time.After(requestPacing):
			case <-ctx.Done():
				return report, ctx.Err()
			}
		}
	}

	m.log.Info("image mirror complete",
		zap.Int("stored", report.Stored),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, nil
}

func (m *Mirror) listExisting(ctx context.Context) map[string]struct{} {
	existing := make(map[string]struct{})
	objects := m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    ObjectPrefix + "/",
		Recursive: true,
	})
	for obj := range objects {
		if obj.Err != nil {
			// Listing failure just disables skip detection for this run.
			m.log.Warn("storage listing error", zap.Error(obj.Err))
			continue
		}
		existing[obj.Key] = struct{}{}
	}
	return existing
}

// mirrorOne tries each upstream in order and stores the first hit.
func (m *Mirror) mirrorOne(ctx context.Context, key, category string, id int) error {
	var lastErr error

	for _, tmpl := range m.upstreams {
		url := fmt.Sprintf(tmpl, category, id)

		data, err := m.download(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}

		_, err = m.client.PutObject(ctx, m.bucket, key,
			bytes.NewReader(data), int64(len(data)),
			minio.PutObjectOptions{ContentType: "image/webp"})
		if err != nil {
			return fmt.Errorf("store %s: %w", key, err)
		}
		return nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no upstream configured")
	}
	return fmt.Errorf("all upstreams failed: %w", lastErr)
}

func (m *Mirror) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "archive-sync/1.0")

	resp, err := m.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned %d for %s", resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}
