// handlers/course_routes.go
package handlers

import (
	"wealthplay-service/middleware"
	"wealthplay-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupCourseRoutes(app *fiber.App, content *services.ContentService, rewards *services.RewardService, achievements *services.AchievementService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Get("/courses", func(c *fiber.Ctx) error {
		courses, err := content.ListCourses(userID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"courses": courses})
	})

	secured.Get("/modules/:moduleID", func(c *fiber.Ctx) error {
		module, err := content.GetModule(c.Params("moduleID"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(module)
	})

	secured.Post("/modules/:moduleID/start", func(c *fiber.Ctx) error {
		progress, err := content.StartModule(userID(c), c.Params("moduleID"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(progress)
	})

	secured.Post("/modules/:moduleID/complete", func(c *fiber.Ctx) error {
		awarded, err := content.CompleteModule(userID(c), c.Params("moduleID"))
		if err != nil {
			return fail(c, err)
		}
		if _, err := achievements.Evaluate(userID(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"module_id":  c.Params("moduleID"),
			"status":     "completed",
			"xp_awarded": awarded,
		})
	})

	secured.Post("/modules/:moduleID/mcqs/:mcqID/submit", func(c *fiber.Ctx) error {
		var body struct {
			SelectedChoice string `json:"selected_choice"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
		result, err := rewards.SubmitMCQ(userID(c), c.Params("moduleID"), c.Params("mcqID"), body.SelectedChoice)
		if err != nil {
			return fail(c, err)
		}
		if _, err := achievements.Evaluate(userID(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(result)
	})

	// Admin content import.
	admin := secured.Group("/admin", middleware.RequireRole("admin"))

	admin.Post("/content/courses", func(c *fiber.Ctx) error {
		var payload services.CourseImport
		if err := c.BodyParser(&payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
		count, err := content.ImportCourse(&payload)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"course_id":        payload.CourseID,
			"modules_imported": count,
		})
	})

	admin.Post("/content/scenarios", func(c *fiber.Ctx) error {
		var payload []services.ScenarioImport
		if err := c.BodyParser(&payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
		count, err := content.ImportScenarios(payload)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"scenarios_created": count})
	})
}
