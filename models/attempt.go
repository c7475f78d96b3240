package models

import "time"

// MCQAttempt records a user's answer to one MCQ. One row per (user, mcq);
// re-submission overwrites the choice but XPAwarded is set at most once.
type MCQAttempt struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string    `gorm:"uniqueIndex:idx_user_mcq;not null" json:"external_user_id"`
	MCQRowID       string    `gorm:"uniqueIndex:idx_user_mcq;not null" json:"mcq_row_id"`
	SelectedChoice string    `gorm:"type:varchar(1)" json:"selected_choice"`
	IsCorrect      bool      `json:"is_correct" gorm:"default:false"`
	XPAwarded      int       `json:"xp_awarded" gorm:"default:0"`
	AttemptedAt    time.Time `json:"attempted_at" gorm:"autoUpdateTime"`
}

// ScenarioAttempt records a user's answer to one scenario within one quiz
// run. ScoreEarned is the classified score; XPAwarded stays 0 until the
// run's one-time result scoring converts it.
type ScenarioAttempt struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string    `gorm:"uniqueIndex:idx_user_scenario_run;not null" json:"external_user_id"`
	ScenarioID     string    `gorm:"uniqueIndex:idx_user_scenario_run;not null" json:"scenario_id"`
	QuizRunID      string    `gorm:"uniqueIndex:idx_user_scenario_run;index;not null" json:"quiz_run_id"`
	ChosenOptionID string    `json:"chosen_option_id"`
	ScoreEarned    int       `json:"score_earned" gorm:"default:0"`
	IsCorrect      bool      `json:"is_correct" gorm:"default:false"`
	XPAwarded      int       `json:"xp_awarded" gorm:"default:0"`
	AttemptDate    time.Time `json:"attempt_date" gorm:"autoUpdateTime"`
}

// Prediction directions (user side).
const (
	DirectionUp      = "up"
	DirectionDown    = "down"
	DirectionNeutral = "neutral"
)

// Oracle/trend directions.
const (
	TrendBullish = "bullish"
	TrendBearish = "bearish"
	TrendNeutral = "neutral"
)

// StockPrediction records one stock prediction challenge submission.
type StockPrediction struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"index;not null" json:"external_user_id"`
	StockSymbol    string `gorm:"index;not null" json:"stock_symbol"`

	Prediction          string `gorm:"type:text" json:"prediction"`
	PredictionDirection string `gorm:"type:varchar(10);default:'neutral'" json:"prediction_direction"` // up, down, neutral
	AIAnalysis          string `gorm:"type:text" json:"ai_analysis"`
	AIDirection         string `gorm:"type:varchar(20);default:'neutral'" json:"ai_direction"` // bullish, bearish, neutral

	IsCorrect bool   `json:"is_correct" gorm:"default:false"`
	Score     int    `json:"score" gorm:"default:0"`
	Feedback  string `gorm:"type:text" json:"feedback"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}
