package artifact_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"archive-sync/core/storage/mocks"
	"archive-sync/feature/character/artifact"
	"archive-sync/feature/character/models"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

const cdnBase = "https://cdn.example.com/archive@main"

func TestWriteDataTree(t *testing.T) {
	dir := t.TempDir()
	w := artifact.NewWriter(dir, cdnBase, "1.0.0", zap.NewNop())

	chars := []models.Character{
		{ID: 10000, Name: "Aru"},
		{ID: 10015, Name: "Mutsuki"},
	}

	path, err := w.WriteDataTree(chars)
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "characters", "characters.json"), path)

	data, err := os.ReadFile(path)
	assert.NoError(t, err)

	var got []models.Character
	assert.NoError(t, json.Unmarshal(data, &got))
	assert.Len(t, got, 2)
	assert.Equal(t, "Aru", got[0].Name)
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	w := artifact.NewWriter(dir, cdnBase, "1.0.0", zap.NewNop())

	path, err := w.WriteManifest()
	assert.NoError(t, err)

	data, err := os.ReadFile(path)
	assert.NoError(t, err)

	var m artifact.Manifest
	assert.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, cdnBase, m.BaseURL)
	assert.Equal(t, "1.0.0", m.Version)
	assert.Equal(t, "/images/characters/icons/", m.Directories["character_icons"])
	assert.Contains(t, m.URLFormat["character_icon"], "{base_url}")
	assert.Contains(t, m.URLFormat["character_icon"], "{id}")
}

func TestPublish(t *testing.T) {
	dir := t.TempDir()
	w := artifact.NewWriter(dir, cdnBase, "1.0.0", zap.NewNop())

	_, err := w.WriteDataTree([]models.Character{{ID: 10000, Name: "Aru"}})
	assert.NoError(t, err)
	_, err = w.WriteManifest()
	assert.NoError(t, err)

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "archive").Return(true, nil)
	client.On("PutObject", mock.Anything, "archive", "v1/"+artifact.CharactersPath,
		mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)
	client.On("PutObject", mock.Anything, "archive", "v1/"+artifact.ManifestPath,
		mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)

	err = w.Publish(context.Background(), client, "archive", "v1")
	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestPublishMissingTree(t *testing.T) {
	w := artifact.NewWriter(t.TempDir(), cdnBase, "1.0.0", zap.NewNop())

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "archive").Return(true, nil)

	err := w.Publish(context.Background(), client, "archive", "")
	assert.Error(t, err)
	client.AssertNotCalled(t, "PutObject")
}
