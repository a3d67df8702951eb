package courseValidator

import (
	"lms/middleware"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
)

// LessonRequest is the lesson create payload. MediaURL may be empty for a
// resource-only lesson. No position field, same as modules.
type LessonRequest struct {
	Title       string                  `json:"title" validate:"required,min=3"`
	Description string                  `json:"description"`
	MediaURL    string                  `json:"media_url" validate:"omitempty,url"`
	Duration    int64                   `json:"duration" validate:"gte=0"`
	Resources   []courseModels.Resource `json:"resources" validate:"omitempty,dive"`
}

// LessonUpdateRequest is the lesson update payload; empty fields are left
// unchanged, a null resources list keeps the current one.
type LessonUpdateRequest struct {
	Title       string                  `json:"title" validate:"omitempty,min=3"`
	Description string                  `json:"description"`
	MediaURL    string                  `json:"media_url" validate:"omitempty,url"`
	Duration    int64                   `json:"duration" validate:"gte=0"`
	Resources   []courseModels.Resource `json:"resources" validate:"omitempty,dive"`
}

// CreateLesson validates lesson creation under a module
func CreateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		moduleID, ok := parseIDParam(c, "module_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Module ID!", nil)
		}
		reqData := new(LessonRequest)
		if !checkBody(c, reqData) {
			return nil
		}
		if errs := validateResources(reqData.Resources); len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}
		c.Locals("moduleID", moduleID)
		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}

// UpdateLesson validates lesson update request
func UpdateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lessonID, ok := parseIDParam(c, "lesson_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}
		reqData := new(LessonUpdateRequest)
		if !checkBody(c, reqData) {
			return nil
		}
		if errs := validateResources(reqData.Resources); len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}
		c.Locals("lessonID", lessonID)
		c.Locals("validatedLessonUpdate", reqData)
		return c.Next()
	}
}

// LessonID validates routes carrying only a lesson id parameter
func LessonID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lessonID, ok := parseIDParam(c, "lesson_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}
		c.Locals("lessonID", lessonID)
		return c.Next()
	}
}

// ReorderLessons validates the module lesson reorder payload
func ReorderLessons() fiber.Handler {
	return func(c *fiber.Ctx) error {
		moduleID, ok := parseIDParam(c, "module_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Module ID!", nil)
		}
		reqData := new(ReorderRequest)
		if !checkBody(c, reqData) {
			return nil
		}
		c.Locals("moduleID", moduleID)
		c.Locals("validatedReorder", reqData)
		return c.Next()
	}
}

// validateResources checks each attachment by hand: the kind set is a domain
// rule, not a struct tag.
func validateResources(resources []courseModels.Resource) map[string]string {
	errors := make(map[string]string)
	for _, r := range resources {
		if r.Title == "" {
			errors["resources"] = "Every resource needs a title!"
			break
		}
		if r.URL == "" {
			errors["resources"] = "Every resource needs a URL!"
			break
		}
		if r.Kind != "PDF" && r.Kind != "LINK" && r.Kind != "FILE" {
			errors["resources"] = "Resource kind must be PDF, LINK or FILE!"
			break
		}
	}
	return errors
}
