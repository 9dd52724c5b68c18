package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type RegisterUserRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *Handler) registerUser(c *fiber.Ctx) error {
	const action = "registerUser"
	var req RegisterUserRequest
	if err := parseRequest(c, action, &req); err != nil {
		return fail(c, action, err)
	}

	user, err := h.users.Register(c.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		return fail(c, action, err)
	}
	return respond(c, fiber.StatusCreated, action, fiber.Map{"userId": user.ID})
}

type GetUserProfileRequest struct {
	UserID string `json:"userId" validate:"required"`
}

func (h *Handler) getUserProfile(c *fiber.Ctx) error {
	const action = "getUserProfile"
	var req GetUserProfileRequest
	if err := parseRequest(c, action, &req); err != nil {
		return fail(c, action, err)
	}

	user, err := h.users.GetProfile(c.Context(), req.UserID)
	if err != nil {
		return fail(c, action, err)
	}
	// Built field by field so the password hash never leaves the service.
	return respond(c, fiber.StatusOK, action, fiber.Map{
		"user": fiber.Map{
			"id":        user.ID,
			"fullName":  user.FullName,
			"email":     user.Email,
			"createdAt": user.CreatedAt,
		},
	})
}
