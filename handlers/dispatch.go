package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/classmatch/api/apperrors"
)

type actionEnvelope struct {
	Action string `json:"action"`
}

// Dispatch is the single action entry point: the body carries
// {"action": name, ...payload} and the response echoes the action with a
// success flag.
func (h *Handler) Dispatch(c *fiber.Ctx) error {
	var env actionEnvelope
	if err := c.BodyParser(&env); err != nil {
		return fail(c, "", apperrors.New(apperrors.Validation, "cannot parse JSON body"))
	}
	if env.Action == "" {
		return fail(c, "", apperrors.New(apperrors.Validation, "action is required"))
	}

	switch env.Action {
	case "registerUser":
		return h.registerUser(c)
	case "getUserProfile":
		return h.getUserProfile(c)

	case "submitAvailability":
		return h.submitAvailability(c)
	case "findMatches":
		return h.findMatches(c)
	case "getUserAvailability":
		return h.getUserAvailability(c)

	case "createClass":
		return h.createClass(c)
	case "getClass":
		return h.getClass(c)
	case "listClasses":
		return h.listClasses(c)
	case "joinClass":
		return h.joinClass(c)
	case "leaveClass":
		return h.leaveClass(c)
	case "updateClass":
		return h.updateClass(c)
	case "cancelClass":
		return h.cancelClass(c)
	case "reactivateClass":
		return h.reactivateClass(c)
	case "deleteClass":
		return h.deleteClass(c)

	case "createClassType":
		return h.createClassType(c)
	case "updateClassType":
		return h.updateClassType(c)
	case "getClassType":
		return h.getClassType(c)
	case "listClassTypes":
		return h.listClassTypes(c)
	case "deleteClassType":
		return h.deleteClassType(c)

	default:
		return fail(c, env.Action, apperrors.Newf(apperrors.UnknownAction, "unknown action %q", env.Action))
	}
}
