package character

import (
	"os"
	"path/filepath"

	"archive-sync/core/logger"
	"archive-sync/feature/character/artifact"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves the generated data tree and manifest over HTTP.
type Handler struct {
	dataDir string
	log     *zap.Logger
}

// NewHandler creates a handler rooted at the artifact output directory.
func NewHandler(dataDir string, log *zap.Logger) *Handler {
	return &Handler{dataDir: dataDir, log: log}
}

// RegisterRoutes registers the character data routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	api := app.Group("/api")
	api.Get("/characters", h.getCharacters)
	api.Get("/manifest", h.getManifest)
}

// getCharacters returns the normalized character tree as written by the last
// pipeline run. The file is re-read per request so a fresh sync shows up
// without a restart.
func (h *Handler) getCharacters(c *fiber.Ctx) error {
	return h.sendArtifact(c, artifact.CharactersPath)
}

func (h *Handler) getManifest(c *fiber.Ctx) error {
	return h.sendArtifact(c, artifact.ManifestPath)
}

func (h *Handler) sendArtifact(c *fiber.Ctx, rel string) error {
	path := filepath.Join(h.dataDir, filepath.FromSlash(rel))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "artifact not generated yet",
			})
		}
		logger.WithRayID(h.log, c).Error("failed to read artifact",
			zap.String("path", path), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to read artifact",
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(data)
}
