package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up all admin course management routes
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/course", middleware.JWTMiddleware, middleware.RequireRole("ADMIN"))

	// Course CRUD
	adminGroup.Post("/create", validators.CreateCourseAdmin(), controllers.AdminCreateCourse)
	adminGroup.Get("/list", controllers.AdminGetAllCourses)
	adminGroup.Put("/:id", validators.UpdateCourseAdmin(), controllers.AdminUpdateCourse)
	adminGroup.Delete("/:id", validators.CourseID(), controllers.AdminDeleteCourse)
	adminGroup.Post("/:id/publish", validators.CourseID(), controllers.AdminPublishCourse)

	// Module management
	adminGroup.Post("/:id/module", validators.CreateModule(), controllers.AdminCreateModule)
	adminGroup.Get("/:id/modules", validators.CourseID(), controllers.AdminListModules)
	adminGroup.Put("/:id/modules/reorder", validators.ReorderModules(), controllers.AdminReorderModules)

	moduleGroup := app.Group("/admin/module", middleware.JWTMiddleware, middleware.RequireRole("ADMIN"))
	moduleGroup.Put("/:module_id", validators.UpdateModule(), controllers.AdminUpdateModule)
	moduleGroup.Delete("/:module_id", validators.ModuleID(), controllers.AdminDeleteModule)

	// Lesson management
	moduleGroup.Post("/:module_id/lesson", validators.CreateLesson(), controllers.AdminCreateLesson)
	moduleGroup.Get("/:module_id/lessons", validators.ModuleID(), controllers.AdminListLessons)
	moduleGroup.Put("/:module_id/lessons/reorder", validators.ReorderLessons(), controllers.AdminReorderLessons)

	lessonGroup := app.Group("/admin/lesson", middleware.JWTMiddleware, middleware.RequireRole("ADMIN"))
	lessonGroup.Put("/:lesson_id", validators.UpdateLesson(), controllers.AdminUpdateLesson)
	lessonGroup.Delete("/:lesson_id", validators.LessonID(), controllers.AdminDeleteLesson)
}
