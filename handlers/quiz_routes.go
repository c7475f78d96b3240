// handlers/quiz_routes.go
package handlers

import (
	"wealthplay-service/middleware"
	"wealthplay-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupQuizRoutes(app *fiber.App, quizRuns *services.QuizRunService, achievements *services.AchievementService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Post("/quiz/start", func(c *fiber.Ctx) error {
		run, err := quizRuns.Start(userID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"run_id":          run.ID,
			"total_questions": len(run.ScenarioList()),
		})
	})

	secured.Get("/quiz/:runID/question", func(c *fiber.Ctx) error {
		question, err := quizRuns.Question(userID(c), c.Params("runID"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(question)
	})

	secured.Post("/quiz/:runID/submit", func(c *fiber.Ctx) error {
		var body struct {
			OptionID string `json:"option_id"`
			Score    *int   `json:"score"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
		outcome, err := quizRuns.Submit(userID(c), c.Params("runID"), body.OptionID, body.Score)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(outcome)
	})

	secured.Post("/quiz/:runID/next", func(c *fiber.Ctx) error {
		completed, err := quizRuns.Advance(userID(c), c.Params("runID"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"completed": completed})
	})

	secured.Get("/quiz/:runID/result", func(c *fiber.Ctx) error {
		result, err := quizRuns.Result(userID(c), c.Params("runID"))
		if err != nil {
			return fail(c, err)
		}
		if _, err := achievements.Evaluate(userID(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(result)
	})
}
