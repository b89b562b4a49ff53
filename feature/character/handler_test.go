package character_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"archive-sync/feature/character"
	"archive-sync/feature/character/artifact"
	"archive-sync/feature/character/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func setupApp(t *testing.T, dataDir string) *fiber.App {
	app := fiber.New()
	feat := character.NewFeature(dataDir, zap.NewNop())
	assert.Equal(t, "character", feat.Name())
	assert.True(t, feat.IsEnabled())
	assert.NoError(t, feat.Load(app))
	return app
}

func TestGetCharacters(t *testing.T) {
	dir := t.TempDir()
	w := artifact.NewWriter(dir, "https://cdn.example.com", "1.0.0", zap.NewNop())
	_, err := w.WriteDataTree([]models.Character{{ID: 10000, Name: "Aru"}})
	assert.NoError(t, err)

	app := setupApp(t, dir)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/characters", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, fiber.MIMEApplicationJSON, resp.Header.Get(fiber.HeaderContentType))

	body, _ := io.ReadAll(resp.Body)
	var chars []models.Character
	assert.NoError(t, json.Unmarshal(body, &chars))
	assert.Len(t, chars, 1)
	assert.Equal(t, "Aru", chars[0].Name)
}

func TestGetManifest(t *testing.T) {
	dir := t.TempDir()
	w := artifact.NewWriter(dir, "https://cdn.example.com", "2.0.0", zap.NewNop())
	_, err := w.WriteManifest()
	assert.NoError(t, err)

	app := setupApp(t, dir)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/manifest", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var m artifact.Manifest
	assert.NoError(t, json.Unmarshal(body, &m))
	assert.Equal(t, "2.0.0", m.Version)
}

func TestGetCharactersNotGenerated(t *testing.T) {
	app := setupApp(t, t.TempDir())

	resp, err := app.Test(httptest.NewRequest("GET", "/api/characters", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
