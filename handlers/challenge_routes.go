// handlers/challenge_routes.go
package handlers

import (
	"strconv"

	"wealthplay-service/middleware"
	"wealthplay-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupChallengeRoutes(app *fiber.App, challenge *services.ChallengeService, leaderboard *services.LeaderboardService, oracle *services.OracleService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Get("/stocks", func(c *fiber.Ctx) error {
		quotes, err := oracle.Quotes()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"stocks": quotes})
	})

	secured.Get("/stocks/:symbol", func(c *fiber.Ctx) error {
		quote, err := oracle.Quote(c.Params("symbol"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(quote)
	})

	secured.Get("/challenge/questions", func(c *fiber.Ctx) error {
		questions, err := challenge.Questions()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"questions": questions})
	})

	secured.Post("/challenge/questions/:questionID/predict", func(c *fiber.Ctx) error {
		var body struct {
			Prediction string `json:"prediction"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
		result, err := challenge.SubmitQuestionPrediction(userID(c), c.Params("questionID"), body.Prediction)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(result)
	})

	secured.Post("/challenge/stocks/:symbol/predict", func(c *fiber.Ctx) error {
		var body struct {
			Prediction string `json:"prediction"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
		result, err := challenge.SubmitFreePrediction(userID(c), c.Params("symbol"), body.Prediction)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(result)
	})

	secured.Get("/challenge/history", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		history, err := challenge.History(userID(c), limit)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"predictions": history})
	})

	secured.Get("/leaderboard", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		rows, err := leaderboard.Top(c.Query("type", services.LeaderboardTotal), limit)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"type":    c.Query("type", services.LeaderboardTotal),
			"entries": rows,
		})
	})

	secured.Get("/leaderboard/me", func(c *fiber.Ctx) error {
		entry, err := leaderboard.Rebuild(userID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(entry)
	})
}
