package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/classmatch/api/apperrors"
	"github.com/classmatch/api/services"
)

var validate = validator.New()

// Handler carries the service instances behind the action dispatch
// endpoint.
type Handler struct {
	users      *services.Users
	matcher    *services.Matcher
	roster     *services.Roster
	classTypes *services.ClassTypes
}

func New(users *services.Users, matcher *services.Matcher, roster *services.Roster, classTypes *services.ClassTypes) *Handler {
	return &Handler{users: users, matcher: matcher, roster: roster, classTypes: classTypes}
}

func respond(c *fiber.Ctx, status int, action string, payload fiber.Map) error {
	body := fiber.Map{"success": true, "action": action}
	for k, v := range payload {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

// fail maps the error taxonomy onto the response vocabulary: business
// failures (validation, not-found, conflict, unknown action) are 400s,
// dependency failures are 500s. The client message never carries the
// underlying cause.
func fail(c *fiber.Ctx, action string, err error) error {
	status := fiber.StatusBadRequest
	if apperrors.KindOf(err) == apperrors.Dependency {
		status = fiber.StatusInternalServerError
		log.Printf("🔥 Action %s failed: %v", action, err)
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"action":  action,
		"message": apperrors.PublicMessage(err),
	})
}

func parseRequest(c *fiber.Ctx, action string, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.New(apperrors.Validation, "cannot parse JSON body")
	}
	if err := validate.Struct(req); err != nil {
		return apperrors.Newf(apperrors.Validation, "invalid %s payload: %v", action, err)
	}
	return nil
}
