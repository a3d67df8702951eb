package controllers

import (
	"lms/middleware"
	courseService "lms/services/course"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// AdminCreateLesson creates a new lesson at the end of a module
func AdminCreateLesson(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(uint)

	reqData, ok := c.Locals("validatedLesson").(*validators.LessonRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	lesson, err := structureSvc().CreateLesson(moduleID, courseService.LessonInput{
		Title:       reqData.Title,
		Description: reqData.Description,
		MediaURL:    reqData.MediaURL,
		Duration:    reqData.Duration,
		Resources:   reqData.Resources,
	})
	if err != nil {
		return serviceError(c, err, "Module not found!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

// AdminUpdateLesson updates an existing lesson. Position is not settable
// here; reordering goes through the reorder endpoint.
func AdminUpdateLesson(c *fiber.Ctx) error {
	lessonID := c.Locals("lessonID").(uint)

	reqData, ok := c.Locals("validatedLessonUpdate").(*validators.LessonUpdateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	lesson, err := structureSvc().UpdateLesson(lessonID, courseService.LessonInput{
		Title:       reqData.Title,
		Description: reqData.Description,
		MediaURL:    reqData.MediaURL,
		Duration:    reqData.Duration,
		Resources:   reqData.Resources,
	})
	if err != nil {
		return serviceError(c, err, "Lesson not found!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", lesson)
}

// AdminDeleteLesson deletes a lesson and compacts its module's sequence
func AdminDeleteLesson(c *fiber.Ctx) error {
	lessonID := c.Locals("lessonID").(uint)

	if err := structureSvc().DeleteLesson(lessonID); err != nil {
		return serviceError(c, err, "Lesson not found!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}

// AdminListLessons lists a module's lessons in order
func AdminListLessons(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(uint)

	lessons, err := structureSvc().ListLessons(moduleID)
	if err != nil {
		return serviceError(c, err, "Module not found!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons fetched successfully!", lessons)
}

// AdminReorderLessons applies a full permutation of the module's lesson ids
func AdminReorderLessons(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(uint)

	reqData, ok := c.Locals("validatedReorder").(*validators.ReorderRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	lessons, err := structureSvc().ReorderLessons(moduleID, reqData.OrderedIDs)
	if err != nil {
		return serviceError(c, err, "Module not found!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons reordered successfully!", lessons)
}
