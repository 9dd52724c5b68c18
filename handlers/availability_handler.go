package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/classmatch/api/apperrors"
	"github.com/classmatch/api/models"
)

type SubmitAvailabilityRequest struct {
	UserID          string   `json:"userId" validate:"required"`
	ClassType       string   `json:"classType" validate:"required"`
	Availabilities  []string `json:"availabilities" validate:"required,min=1,dive,required"`
	CheckForMatches bool     `json:"checkForMatches"`
}

func (h *Handler) submitAvailability(c *fiber.Ctx) error {
	const action = "submitAvailability"
	var req SubmitAvailabilityRequest
	if err := parseRequest(c, action, &req); err != nil {
		return fail(c, action, err)
	}

	slots := make([]models.SlotKey, 0, len(req.Availabilities))
	for _, raw := range req.Availabilities {
		slot, err := models.ParseSlotKey(raw)
		if err != nil {
			return fail(c, action, apperrors.Newf(apperrors.Validation, "%v", err))
		}
		slots = append(slots, slot)
	}

	availability, err := h.matcher.SubmitAvailability(c.Context(), req.UserID, req.ClassType, slots)
	if err != nil {
		return fail(c, action, err)
	}

	if req.CheckForMatches {
		err := h.matcher.CheckForMatches(c.Context(), req.UserID, availability.ID, req.ClassType, slots)
		if err != nil {
			return fail(c, action, err)
		}
	}
	return respond(c, fiber.StatusCreated, action, fiber.Map{"availabilityId": availability.ID})
}

type FindMatchesRequest struct {
	ClassType     string `json:"classType" validate:"required"`
	Day           string `json:"day" validate:"required"`
	Time          string `json:"time" validate:"required"`
	ExcludeUserID string `json:"excludeUserId"`
}

func (h *Handler) findMatches(c *fiber.Ctx) error {
	const action = "findMatches"
	var req FindMatchesRequest
	if err := parseRequest(c, action, &req); err != nil {
		return fail(c, action, err)
	}

	slot := models.SlotKey{Day: req.Day, Time: req.Time}
	matches, err := h.matcher.FindMatches(c.Context(), req.ClassType, slot, req.ExcludeUserID)
	if err != nil {
		return fail(c, action, err)
	}
	return respond(c, fiber.StatusOK, action, fiber.Map{"matches": matches})
}

type GetUserAvailabilityRequest struct {
	UserID string `json:"userId" validate:"required"`
}

func (h *Handler) getUserAvailability(c *fiber.Ctx) error {
	const action = "getUserAvailability"
	var req GetUserAvailabilityRequest
	if err := parseRequest(c, action, &req); err != nil {
		return fail(c, action, err)
	}

	availabilities, err := h.matcher.GetUserAvailability(c.Context(), req.UserID)
	if err != nil {
		return fail(c, action, err)
	}
	return respond(c, fiber.StatusOK, action, fiber.Map{"availabilities": availabilities})
}
