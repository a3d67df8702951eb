package controllers

import (
	"errors"

	"lms/database"
	"lms/middleware"
	courseService "lms/services/course"
	"lms/store"

	"github.com/gofiber/fiber/v2"
)

func structureSvc() *courseService.StructureService {
	return courseService.NewStructureService(database.Database.Db)
}

func progressSvc() *courseService.ProgressService {
	return courseService.NewProgressService(database.Database.Db)
}

// serviceError translates engine errors into the standard JSON envelope.
func serviceError(c *fiber.Ctx, err error, notFoundMsg string) error {
	var fieldErrs store.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		return middleware.ValidationErrorResponse(c, fieldErrs)
	case errors.Is(err, store.ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, notFoundMsg, nil)
	case errors.Is(err, store.ErrInvalidPermutation):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Ordered ids must match the current children exactly!", nil)
	case errors.Is(err, store.ErrConflictRetryable):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Concurrent update detected, please retry!", nil)
	default:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
	}
}
