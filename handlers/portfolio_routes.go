// handlers/portfolio_routes.go
package handlers

import (
	"wealthplay-service/middleware"
	"wealthplay-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPortfolioRoutes(app *fiber.App, portfolios *services.PortfolioService, achievements *services.AchievementService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Get("/portfolio", func(c *fiber.Ctx) error {
		view, err := portfolios.View(userID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(view)
	})

	trade := func(c *fiber.Ctx, execute func(user, symbol string, qty float64) (*services.TradeResult, error)) error {
		var body struct {
			Symbol   string  `json:"symbol"`
			Quantity float64 `json:"quantity"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
		result, err := execute(userID(c), body.Symbol, body.Quantity)
		if err != nil {
			return fail(c, err)
		}
		if _, err := achievements.Evaluate(userID(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(result)
	}

	secured.Post("/portfolio/buy", func(c *fiber.Ctx) error {
		return trade(c, portfolios.Buy)
	})

	secured.Post("/portfolio/sell", func(c *fiber.Ctx) error {
		return trade(c, portfolios.Sell)
	})
}
