package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/classmatch/api/handlers"
)

func ActionRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")
	api.Post("/actions", h.Dispatch)
}
