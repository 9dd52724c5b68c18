package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/classmatch/api/apperrors"
	"github.com/classmatch/api/models"
	"github.com/classmatch/api/services"
)

type InitialMemberRequest struct {
	UserID string `json:"userId" validate:"required"`
	Name   string `json:"name" validate:"required"`
}

type CreateClassRequest struct {
	// classTypeId is canonical; classType is accepted as an alias for
	// callers of the availability actions.
	ClassTypeID    string                 `json:"classTypeId"`
	ClassType      string                 `json:"classType"`
	Day            string                 `json:"day" validate:"required"`
	Time           string                 `json:"time" validate:"required"`
	TotalSpots     int                    `json:"totalSpots" validate:"omitempty,min=1"`
	InitialMembers []InitialMemberRequest `json:"initialMembers" validate:"omitempty,dive"`
}

func (h *Handler) createClass(c *fiber.Ctx) error {
	const action = "createClass"
	var req CreateClassRequest
	if err := parseRequest(c, action, &req); err != nil {
		return fail(c, action, err)
	}
	classTypeID := req.ClassTypeID
	if classTypeID == "" {
		classTypeID = req.ClassType
	}
	if classTypeID == "" {
		return fail(c, action, apperrors.New(apperrors.Validation, "classTypeId is required"))
	}

	members := make([]models.Member, 0, len(req.InitialMembers))
	for _, m := range req.InitialMembers {
		members = append(members, models.Member{UserID: m.UserID, Name: m.Name})
	}

	class, err := h.roster.CreateClass(c.Context(), classTypeID, req.Day, req.Time, members, req.TotalSpots)
	if err != nil {
		return fail(c, action, err)
	}
	return respond(c, fiber.StatusCreated, action, fiber.Map{"classId": class.ID})
}

type GetClassRequest struct {
	ClassID string `json:"classId" validate:"required"`
}

func (h *Handler) getClass(c *fiber.Ctx) error {
	const action = "getClass"
	var req GetClassRequest
	if err := parseRequest(c, action, &req); err != nil {
		return fail(c, action, err)
	}

	class, err := h.roster.GetClass(c.Context(), req.ClassID)
	if err != nil {
		return fail(c, action, err)
	}
	return respond(c, fiber.StatusOK, action, fiber.Map{"class": class})
}

type ListClassesRequest struct {
	ClassTypeID string `json:"classTypeId"`
}

func (h *Handler) listClasses(c *fiber.Ctx) error {
	const action = "listClasses"
	var req ListClassesRequest
	if err := parseRequest(c, action, &req); err != nil {
		return fail(c, action, err)
	}

	classes, err := h.roster.ListClasses(c.Context(), req.ClassTypeID)
	if err != nil {
		return fail(c, action, err)
	}
	return respond(c, fiber.StatusOK, action, fiber.Map{"classes": classes})
}

type JoinClassRequest struct {
	ClassID string `json:"classId" validate:"required"`
	UserID  string `json:"userId" validate:"required"`
	Name    string `json:"name" validate:"required"`
}

func (h *Handler) joinClass(c *fiber.Ctx) error {
	const action = "joinClass"
	var req JoinClassRequest
	if err := parseRequest(c, action, &req); err != nil {
		return fail(c, action, err)
	}

	class, err := h.roster.JoinClass(c.Context(), req.ClassID, req.UserID, req.Name)
	if err != nil {
		return fail(c, action, err)
	}
	return respond(c, fiber.StatusOK, action, fiber.Map{
		"message":   "Successfully joined the class",
		"spotsLeft": class.SpotsLeft,
	})
}

type LeaveClassRequest struct {
	ClassID string `json:"classId" validate:"required"`
	UserID  string `json:"userId" validate:"required"`
}

func (h *Handler) leaveClass(c *fiber.Ctx) error {
	const action = "leaveClass"
	var req LeaveClassRequest
	if err := parseRequest(c, action, &req); err != nil {
		return fail(c, action, err)
	}

	class, err := h.roster.LeaveClass(c.Context(), req.ClassID, req.UserID)
	if err != nil {
		return fail(c, action, err)
	}
	return respond(c, fiber.StatusOK, action, fiber.Map{
		"message":   "Successfully left the class",
		"spotsLeft": class.SpotsLeft,
	})
}

type UpdateClassRequest struct {
	ClassID     string  `json:"classId" validate:"required"`
	Day         *string `json:"day"`
	Time        *string `json:"time"`
	ClassTypeID *string `json:"classTypeId"`
	TotalSpots  *int    `json:"totalSpots"`
}

func (h *Handler) updateClass(c *fiber.Ctx) error {
	const action = "updateClass"
	var req UpdateClassRequest
	if err := parseRequest(c, action, &req); err != nil {
		return fail(c, action, err)
	}

	patch := services.ClassPatch{
		Day:         req.Day,
		Time:        req.Time,
		ClassTypeID: req.ClassTypeID,
		TotalSpots:  req.TotalSpots,
	}
	class, err := h.roster.UpdateClass(c.Context(), req.ClassID, patch)
	if err != nil {
		return fail(c, action, err)
	}
	return respond(c, fiber.StatusOK, action, fiber.Map{"class": class})
}

type CancelClassRequest struct {
	ClassID string `json:"classId" validate:"required"`
	Reason  string `json:"reason"`
}

func (h *Handler) cancelClass(c *fiber.Ctx) error {
	const action = "cancelClass"
	var req CancelClassRequest
	if err := parseRequest(c, action, &req); err != nil {
		return fail(c, action, err)
	}

	class, err := h.roster.CancelClass(c.Context(), req.ClassID, req.Reason)
	if err != nil {
		return fail(c, action, err)
	}
	return respond(c, fiber.StatusOK, action, fiber.Map{"class": class})
}

type ReactivateClassRequest struct {
	ClassID string `json:"classId" validate:"required"`
}

func (h *Handler) reactivateClass(c *fiber.Ctx) error {
	const action = "reactivateClass"
	var req ReactivateClassRequest
	if err := parseRequest(c, action, &req); err != nil {
		return fail(c, action, err)
	}

	class, err := h.roster.ReactivateClass(c.Context(), req.ClassID)
	if err != nil {
		return fail(c, action, err)
	}
	return respond(c, fiber.StatusOK, action, fiber.Map{"class": class})
}

type DeleteClassRequest struct {
	ClassID string `json:"classId" validate:"required"`
}

func (h *Handler) deleteClass(c *fiber.Ctx) error {
	const action = "deleteClass"
	var req DeleteClassRequest
	if err := parseRequest(c, action, &req); err != nil {
		return fail(c, action, err)
	}

	if err := h.roster.DeleteClass(c.Context(), req.ClassID); err != nil {
		return fail(c, action, err)
	}
	return respond(c, fiber.StatusOK, action, fiber.Map{"message": "Class deleted"})
}
