package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"motifapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, datasets service.DatasetService, discoveries service.DiscoveryService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/datasets", ListDatasets(datasets))
	app.Post("/datasets", UploadDataset(datasets))
	app.Get("/datasets/:id", GetDataset(datasets))
	app.Delete("/datasets/:id", DeleteDataset(datasets))
	app.Get("/datasets/:id/download", DownloadDataset(datasets))
	app.Post("/datasets/:id/discoveries", CreateDiscovery(discoveries))
	app.Get("/datasets/:id/discoveries", ListDiscoveries(discoveries))

	app.Get("/discoveries/:id", GetDiscovery(discoveries))
	app.Get("/discoveries/:id/result", GetDiscoveryResult(discoveries))
}
