package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/classmatch/api/services"
)

type CreateClassTypeRequest struct {
	Name        string   `json:"name" validate:"required"`
	Categories  []string `json:"categories"`
	Description string   `json:"description"`
}

func (h *Handler) createClassType(c *fiber.Ctx) error {
	const action = "createClassType"
	var req CreateClassTypeRequest
	if err := parseRequest(c, action, &req); err != nil {
		return fail(c, action, err)
	}

	ct, err := h.classTypes.Create(c.Context(), req.Name, req.Categories, req.Description)
	if err != nil {
		return fail(c, action, err)
	}
	return respond(c, fiber.StatusCreated, action, fiber.Map{"classTypeId": ct.ID})
}

type UpdateClassTypeRequest struct {
	ClassTypeID string    `json:"classTypeId" validate:"required"`
	Name        *string   `json:"name"`
	Categories  *[]string `json:"categories"`
	Description *string   `json:"description"`
	IsActive    *bool     `json:"isActive"`
}

func (h *Handler) updateClassType(c *fiber.Ctx) error {
	const action = "updateClassType"
	var req UpdateClassTypeRequest
	if err := parseRequest(c, action, &req); err != nil {
		return fail(c, action, err)
	}

	patch := services.ClassTypePatch{
		Name:        req.Name,
		Categories:  req.Categories,
		Description: req.Description,
		IsActive:    req.IsActive,
	}
	ct, err := h.classTypes.Update(c.Context(), req.ClassTypeID, patch)
	if err != nil {
		return fail(c, action, err)
	}
	return respond(c, fiber.StatusOK, action, fiber.Map{"classType": ct})
}

type GetClassTypeRequest struct {
	ClassTypeID string `json:"classTypeId" validate:"required"`
}

func (h *Handler) getClassType(c *fiber.Ctx) error {
	const action = "getClassType"
	var req GetClassTypeRequest
	if err := parseRequest(c, action, &req); err != nil {
		return fail(c, action, err)
	}

	ct, err := h.classTypes.Get(c.Context(), req.ClassTypeID)
	if err != nil {
		return fail(c, action, err)
	}
	return respond(c, fiber.StatusOK, action, fiber.Map{"classType": ct})
}

type ListClassTypesRequest struct {
	OnlyActive bool `json:"onlyActive"`
}

func (h *Handler) listClassTypes(c *fiber.Ctx) error {
	const action = "listClassTypes"
	var req ListClassTypesRequest
	if err := parseRequest(c, action, &req); err != nil {
		return fail(c, action, err)
	}

	types, err := h.classTypes.List(c.Context(), req.OnlyActive)
	if err != nil {
		return fail(c, action, err)
	}
	return respond(c, fiber.StatusOK, action, fiber.Map{"classTypes": types})
}

type DeleteClassTypeRequest struct {
	ClassTypeID string `json:"classTypeId" validate:"required"`
}

func (h *Handler) deleteClassType(c *fiber.Ctx) error {
	const action = "deleteClassType"
	var req DeleteClassTypeRequest
	if err := parseRequest(c, action, &req); err != nil {
		return fail(c, action, err)
	}

	if err := h.classTypes.Delete(c.Context(), req.ClassTypeID); err != nil {
		return fail(c, action, err)
	}
	return respond(c, fiber.StatusOK, action, fiber.Map{"message": "Class type deleted"})
}
