package models

// ChallengeLeaderboard aggregates one user's challenge scores. Everything
// except BestStreak is rebuilt from source attempts on read; BestStreak
// only ever ratchets up.
type ChallengeLeaderboard struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"`

	TotalScore    int `json:"total_score" gorm:"default:0"`    // stock + scenario
	StockScore    int `json:"stock_score" gorm:"default:0"`    // from stock prediction challenges
	ScenarioScore int `json:"scenario_score" gorm:"default:0"` // from scenario quizzes

	TotalPredictions   int `json:"total_predictions" gorm:"default:0"`
	CorrectPredictions int `json:"correct_predictions" gorm:"default:0"`
	ScenarioAttempts   int `json:"scenario_attempts" gorm:"default:0"`

	CurrentStreak int `json:"current_streak" gorm:"default:0"`
	BestStreak    int `json:"best_streak" gorm:"default:0"`

	Timestamps
}
