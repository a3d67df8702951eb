package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

// MarkLessonComplete records a lesson completion for the current user and
// recomputes enrollment progress
func MarkLessonComplete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)
	lessonID := c.Locals("lessonID").(uint)

	// Check if user is enrolled in the course
	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	updated, justCompleted, err := progressSvc().MarkLessonComplete(enrollment.ID, lessonID)
	if err != nil {
		return serviceError(c, err, "Lesson not found!")
	}

	if justCompleted {
		// Notify asynchronously; the completion itself is already persisted.
		var user models.User
		var course courseModels.Course
		database.Database.Db.Where("id = ?", userID).First(&user)
		database.Database.Db.Where("id = ?", courseID).First(&course)
		go utils.NotifyCourseCompleted(user, course, *updated)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson marked as completed successfully!", updated)
}

// GetUserProgress returns the current user's progress for a course
func GetUserProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	// Recompute so restructures since the last write are reflected.
	updated, err := progressSvc().RecomputeProgress(enrollment.ID)
	if err != nil {
		return serviceError(c, err, "Enrollment not found!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"enrollment":    updated,
		"completed_ids": updated.CompletedLessonIDs,
	})
}
