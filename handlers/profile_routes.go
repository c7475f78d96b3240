// handlers/profile_routes.go
package handlers

import (
	"wealthplay-service/middleware"
	"wealthplay-service/models"
	"wealthplay-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProfileRoutes(app *fiber.App, profiles *services.ProfileService, achievements *services.AchievementService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	// Profile with level progress toward the next threshold.
	secured.Get("/user/profile", func(c *fiber.Ctx) error {
		profile, err := profiles.EnsureProfile(userID(c))
		if err != nil {
			return fail(c, err)
		}

		nextThreshold := 0
		switch profile.Level {
		case models.LevelBeginner:
			nextThreshold = models.IntermediateXPThreshold
		case models.LevelIntermediate:
			nextThreshold = models.AdvancedXPThreshold
		}

		return c.JSON(fiber.Map{
			"id":                    profile.ID,
			"user_id":               profile.ExternalUserID,
			"xp":                    profile.XP,
			"level":                 profile.Level,
			"next_level_xp":         nextThreshold,
			"confidence_score":      profile.ConfidenceScore,
			"streak":                profile.Streak,
			"last_activity_date":    profile.LastActivityDate,
			"financial_goal":        profile.FinancialGoal,
			"risk_tolerance":        profile.RiskTolerance,
			"investment_experience": profile.InvestmentExperience,
			"timeline":              profile.Timeline,
			"initial_investment":    profile.InitialInvestment,
		})
	})

	secured.Put("/user/onboarding", func(c *fiber.Ctx) error {
		var body models.UserProfile
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
		profile, err := profiles.UpdateOnboarding(userID(c), body)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(profile)
	})

	secured.Get("/user/achievements", func(c *fiber.Ctx) error {
		// Re-evaluate first so streak and XP milestones show up without a
		// separate trigger.
		if _, err := achievements.Evaluate(userID(c)); err != nil {
			return fail(c, err)
		}
		views, err := achievements.List(userID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"achievements": views})
	})

	secured.Post("/user/achievements/check", func(c *fiber.Ctx) error {
		unlocked, err := achievements.Evaluate(userID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"newly_unlocked": unlocked,
			"count":          len(unlocked),
		})
	})

	secured.Get("/user/achievements/pending", func(c *fiber.Ctx) error {
		pending, err := achievements.PendingNotifications(userID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"achievements": pending})
	})
}
