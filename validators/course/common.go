package courseValidator

import (
	"strconv"
	"strings"

	"lms/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// parseIDParam extracts a positive integer route parameter.
func parseIDParam(c *fiber.Ctx, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Params(name))
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// fieldErrors flattens validator errors into the field->message map used by
// ValidationErrorResponse.
func fieldErrors(err error) map[string]string {
	errors := make(map[string]string)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errors["body"] = "Invalid request body!"
		return errors
	}
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			errors[field] = "This field is required!"
		case "min":
			errors[field] = "Must be at least " + fe.Param() + " characters long!"
		case "url":
			errors[field] = "Must be a valid URL!"
		case "oneof":
			errors[field] = "Must be one of: " + fe.Param() + "!"
		case "gt", "gte":
			errors[field] = "Must be a positive number!"
		default:
			errors[field] = "Invalid value!"
		}
	}
	return errors
}

// checkBody parses and validates the JSON body into out, responding itself on
// failure. Returns false when the request was already answered.
func checkBody(c *fiber.Ctx, out interface{}) bool {
	if err := c.BodyParser(out); err != nil {
		_ = middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		return false
	}
	if err := validate.Struct(out); err != nil {
		_ = middleware.ValidationErrorResponse(c, fieldErrors(err))
		return false
	}
	return true
}
