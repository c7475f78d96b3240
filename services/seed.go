package services

import (
	"log"

	"wealthplay-service/models"

	"gorm.io/gorm"
)

// SeedDemoContent loads a starter scenario bank and stock question bank
// when the tables are empty, so a fresh deployment is playable before any
// admin import runs.
func SeedDemoContent(db *gorm.DB, content *ContentService) error {
	var scenarioCount int64
	if err := db.Model(&models.Scenario{}).Count(&scenarioCount).Error; err != nil {
		return models.Internal(err, "failed to count scenarios")
	}
	if scenarioCount == 0 {
		if _, err := content.ImportScenarios(defaultScenarios()); err != nil {
			return err
		}
		log.Printf("Seeded %d starter scenarios", len(defaultScenarios()))
	}

	var questionCount int64
	if err := db.Model(&models.StockQuestion{}).Count(&questionCount).Error; err != nil {
		return models.Internal(err, "failed to count stock questions")
	}
	if questionCount == 0 {
		for _, q := range defaultStockQuestions() {
			if err := db.Create(&q).Error; err != nil {
				return models.Internal(err, "failed to seed stock question %s", q.StockSymbol)
			}
		}
		log.Printf("Seeded %d starter stock questions", len(defaultStockQuestions()))
	}
	return nil
}

func defaultScenarios() []ScenarioImport {
	return []ScenarioImport{
		{
			Title:       "Unexpected Bonus",
			Description: "You receive a $5,000 bonus at work. What do you do with it?",
			Options: []OptionImport{
				{
					Text: "Invest it in a diversified index fund", DecisionType: models.DecisionInvest,
					ConfidenceDelta: 2, RiskScoreDelta: 1, FutureGrowthRate: 0.07, Score: 20,
					WhyItMatters:   "Long-term investing compounds bonuses into real wealth.",
					MentorFeedback: "Great instinct. Time in the market beats timing the market.",
				},
				{
					Text: "Put it in your emergency fund", DecisionType: models.DecisionSave,
					BalanceImpact: 5000, ConfidenceDelta: 1, RiskScoreDelta: -1, FutureGrowthRate: 0.02, Score: 15,
					WhyItMatters:   "An emergency cushion keeps a surprise expense from becoming debt.",
					MentorFeedback: "Solid choice if your cushion is thin.",
				},
				{
					Text: "Upgrade your phone and wardrobe", DecisionType: models.DecisionSpend,
					BalanceImpact: -5000, Score: 5,
					WhyItMatters:   "Lifestyle inflation quietly eats windfalls.",
					MentorFeedback: "Treating yourself is fine, but a whole bonus is a lot to burn.",
				},
				{
					Text: "Put it all on a trending meme stock", DecisionType: models.DecisionInvest,
					ConfidenceDelta: -1, RiskScoreDelta: 3, FutureGrowthRate: -0.2, Score: 0,
					WhyItMatters:   "Concentrated bets on hype are gambling, not investing.",
					MentorFeedback: "That is speculation. Size risky bets so a wipeout doesn't hurt.",
				},
			},
		},
		{
			Title:       "Market Dip",
			Description: "The market drops 15% in a month and your portfolio is down. What's your move?",
			Options: []OptionImport{
				{
					Text: "Keep contributing on your regular schedule", DecisionType: models.DecisionInvest,
					ConfidenceDelta: 2, FutureGrowthRate: 0.08, Score: 20,
					WhyItMatters:   "Dollar-cost averaging buys more shares when prices fall.",
					MentorFeedback: "Exactly. Downturns are when disciplined investors quietly win.",
				},
				{
					Text: "Stop contributions until things calm down", DecisionType: models.DecisionSave,
					FutureGrowthRate: 0.03, Score: 10,
					WhyItMatters:   "Waiting out dips usually means buying back higher.",
					MentorFeedback: "Understandable, but you may miss the recovery.",
				},
				{
					Text: "Sell everything to stop the losses", DecisionType: models.DecisionSpend,
					ConfidenceDelta: -2, RiskScoreDelta: 1, FutureGrowthRate: -0.05, Score: 0,
					WhyItMatters:   "Selling a dip turns a paper loss into a real one.",
					MentorFeedback: "Panic selling locks in losses. Zoom out before acting.",
				},
			},
		},
		{
			Title:       "First Credit Card",
			Description: "You just got your first credit card with a $3,000 limit. How do you use it?",
			Options: []OptionImport{
				{
					Text: "Small recurring purchases, paid in full monthly", DecisionType: models.DecisionSave,
					ConfidenceDelta: 2, RiskScoreDelta: -1, FutureGrowthRate: 0.01, Score: 20,
					WhyItMatters:   "On-time full payments build credit history without interest.",
					MentorFeedback: "Perfect. Your credit score will thank you.",
				},
				{
					Text: "Carry a small balance to 'build credit'", DecisionType: models.DecisionSpend,
					BalanceImpact: -200, RiskScoreDelta: 1, Score: 5,
					WhyItMatters:   "Carrying a balance costs interest and builds nothing extra.",
					MentorFeedback: "A common myth. Utilization matters, interest doesn't help.",
				},
				{
					Text: "Max it out on a vacation", DecisionType: models.DecisionSpend,
					BalanceImpact: -3000, ConfidenceDelta: -1, RiskScoreDelta: 3, FutureGrowthRate: -0.1, Score: 0,
					WhyItMatters:   "High utilization plus interest is how debt spirals start.",
					MentorFeedback: "That vacation could cost double after interest.",
				},
			},
		},
	}
}

func defaultStockQuestions() []models.StockQuestion {
	chart := func(basePrice float64) []models.PricePoint {
		return generateHistory(basePrice, historyDays)
	}
	return []models.StockQuestion{
		{
			ID:                "11111111-1111-4111-8111-111111111101",
			StockName:         "TechNova Systems",
			StockSymbol:       "TNVA",
			Question:          "TechNova just beat earnings and its 20-day average crossed above the 50-day. Where does the price go next month?",
			ChartData:         chart(120),
			ExpectedDirection: models.DirectionUp,
			ExpectedKeywords:  []string{"earnings", "momentum", "growth", "breakout"},
			Explanation:       "A golden cross after an earnings beat typically signals continued upward momentum.",
			BaseScore:         10,
			MaxScore:          20,
			Difficulty:        "easy",
			IsActive:          true,
		},
		{
			ID:                "11111111-1111-4111-8111-111111111102",
			StockName:         "Meridian Retail Group",
			StockSymbol:       "MRG",
			Question:          "Meridian missed guidance twice and inventories are piling up ahead of a weak holiday season. What happens to the stock?",
			ChartData:         chart(45),
			ExpectedDirection: models.DirectionDown,
			ExpectedKeywords:  []string{"guidance", "inventory", "demand", "margin"},
			Explanation:       "Repeated guidance misses with rising inventory usually precede markdowns and falling margins.",
			BaseScore:         10,
			MaxScore:          20,
			Difficulty:        "medium",
			IsActive:          true,
		},
		{
			ID:                "11111111-1111-4111-8111-111111111103",
			StockName:         "Atlas Utilities",
			StockSymbol:       "ATLU",
			Question:          "Atlas is a regulated utility trading in a tight range while rates hold steady. What's your call for the next quarter?",
			ChartData:         chart(78),
			ExpectedDirection: models.DirectionNeutral,
			ExpectedKeywords:  []string{"dividend", "stable", "rates", "defensive"},
			Explanation:       "Regulated utilities in a flat rate environment tend to trade sideways and pay their dividend.",
			BaseScore:         10,
			MaxScore:          20,
			Difficulty:        "hard",
			IsActive:          true,
		},
	}
}
