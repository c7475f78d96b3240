package models

import "time"

// Scenario is one financial decision simulation.
type Scenario struct {
	ID              string  `gorm:"primaryKey;type:uuid" json:"id"`
	Title           string  `gorm:"not null" json:"title"`
	Description     string  `gorm:"type:text" json:"description"`
	StartingBalance float64 `json:"starting_balance" gorm:"default:50000"`

	Options []DecisionOption `gorm:"foreignKey:ScenarioID" json:"options,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Decision types for scenario options.
const (
	DecisionInvest = "INVEST"
	DecisionSave   = "SAVE"
	DecisionSpend  = "SPEND"
)

// DecisionOption is one choice within a scenario. Score is the preset point
// value (0-20) used by the reward engine's classification.
type DecisionOption struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	ScenarioID   string `gorm:"index;not null" json:"scenario_id"`
	Text         string `gorm:"not null" json:"text"`
	DecisionType string `gorm:"type:varchar(10)" json:"decision_type"`

	BalanceImpact    float64 `json:"balance_impact"`
	ConfidenceDelta  int     `json:"confidence_delta" gorm:"default:0"`
	RiskScoreDelta   int     `json:"risk_score_delta" gorm:"default:0"`
	FutureGrowthRate float64 `json:"future_growth_rate" gorm:"default:0"`

	Score int `json:"score" gorm:"default:0"` // points awarded for this choice (0-20)

	WhyItMatters   string `gorm:"type:text" json:"why_it_matters"`
	MentorFeedback string `json:"mentor_feedback"`
}
