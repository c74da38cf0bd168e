package main

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes wires the CRUD surface over every collection.
func RegisterRoutes(app *fiber.App, h *handler) {
	app.Get("/openapi.json", h.openapi)

	api := app.Group("/api")
	api.Get("/", h.collections)
	api.Get("/:collection", h.list)
	api.Post("/:collection", h.create)
	api.Get("/:collection/:id", h.getOne)
	api.Put("/:collection/:id", h.replace)
	api.Patch("/:collection/:id", h.update)
	api.Delete("/:collection/:id", h.remove)
}

// logEndpoints prints the routes available for the loaded collections.
func logEndpoints(l *slog.Logger, collections []string) {
	if len(collections) == 0 {
		l.Info("no collections loaded; POST /api/{collection} creates one")
		return
	}
	for _, name := range collections {
		l.Info("available endpoints",
			"collection", name,
			"list", "GET /api/"+name,
			"item", "GET|PUT|PATCH|DELETE /api/"+name+"/{id}",
		)
	}
}
