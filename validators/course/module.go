package courseValidator

import (
	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// ModuleRequest is the module create payload. There is no position field:
// new modules always append at the end, and ordering changes only go through
// the reorder endpoint.
type ModuleRequest struct {
	Title       string `json:"title" validate:"required,min=3"`
	Description string `json:"description"`
}

// ModuleUpdateRequest is the module update payload; empty fields are left
// unchanged. A position field in the body is simply not bound.
type ModuleUpdateRequest struct {
	Title       string `json:"title" validate:"omitempty,min=3"`
	Description string `json:"description"`
}

// ReorderRequest carries a full permutation of the parent's child ids, in the
// desired order.
type ReorderRequest struct {
	OrderedIDs []uint `json:"ordered_ids" validate:"required,min=1,dive,gt=0"`
}

// CreateModule validates module creation under a course
func CreateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		reqData := new(ModuleRequest)
		if !checkBody(c, reqData) {
			return nil
		}
		c.Locals("courseID", courseID)
		c.Locals("validatedModule", reqData)
		return c.Next()
	}
}

// UpdateModule validates module update request
func UpdateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		moduleID, ok := parseIDParam(c, "module_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Module ID!", nil)
		}
		reqData := new(ModuleUpdateRequest)
		if !checkBody(c, reqData) {
			return nil
		}
		c.Locals("moduleID", moduleID)
		c.Locals("validatedModuleUpdate", reqData)
		return c.Next()
	}
}

// ModuleID validates routes carrying only a module id parameter
func ModuleID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		moduleID, ok := parseIDParam(c, "module_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Module ID!", nil)
		}
		c.Locals("moduleID", moduleID)
		return c.Next()
	}
}

// ReorderModules validates the course module reorder payload
func ReorderModules() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseIDParam(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		reqData := new(ReorderRequest)
		if !checkBody(c, reqData) {
			return nil
		}
		c.Locals("courseID", courseID)
		c.Locals("validatedReorder", reqData)
		return c.Next()
	}
}
