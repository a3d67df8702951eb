package controllers

import (
	"lms/middleware"
	courseService "lms/services/course"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// AdminCreateModule creates a new module at the end of a course
func AdminCreateModule(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	reqData, ok := c.Locals("validatedModule").(*validators.ModuleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	module, err := structureSvc().CreateModule(courseID, courseService.ModuleInput{
		Title:       reqData.Title,
		Description: reqData.Description,
	})
	if err != nil {
		return serviceError(c, err, "Course not found!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

// AdminUpdateModule updates an existing module. Position is not settable
// here; reordering goes through the reorder endpoint.
func AdminUpdateModule(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(uint)

	reqData, ok := c.Locals("validatedModuleUpdate").(*validators.ModuleUpdateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	module, err := structureSvc().UpdateModule(moduleID, courseService.ModuleInput{
		Title:       reqData.Title,
		Description: reqData.Description,
	})
	if err != nil {
		return serviceError(c, err, "Module not found!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", module)
}

// AdminDeleteModule deletes a module with its lessons and compacts the
// course's module sequence
func AdminDeleteModule(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(uint)

	if err := structureSvc().DeleteModule(moduleID); err != nil {
		return serviceError(c, err, "Module not found!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully!", nil)
}

// AdminListModules lists a course's modules in order
func AdminListModules(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	modules, err := structureSvc().ListModules(courseID)
	if err != nil {
		return serviceError(c, err, "Course not found!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules fetched successfully!", modules)
}

// AdminReorderModules applies a full permutation of the course's module ids
func AdminReorderModules(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	reqData, ok := c.Locals("validatedReorder").(*validators.ReorderRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	modules, err := structureSvc().ReorderModules(courseID, reqData.OrderedIDs)
	if err != nil {
		return serviceError(c, err, "Course not found!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules reordered successfully!", modules)
}
