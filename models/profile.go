package models

import (
	"time"

	"gorm.io/gorm"
)

// Level tiers derived from total XP — never stored independently of XP.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"

	IntermediateXPThreshold = 750
	AdvancedXPThreshold     = 1200
)

// LevelForXP maps cumulative XP to a level tier.
func LevelForXP(xp int) string {
	switch {
	case xp >= AdvancedXPThreshold:
		return LevelAdvanced
	case xp >= IntermediateXPThreshold:
		return LevelIntermediate
	default:
		return LevelBeginner
	}
}

// UserProfile tracks per-user progression and onboarding answers
// (denormalized for performance). One row per external user.
type UserProfile struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to profile service

	// Core progression
	XP              int     `json:"xp" gorm:"default:0"`
	Level           string  `json:"level" gorm:"type:varchar(20);default:'beginner'"`
	ConfidenceScore float64 `json:"confidence_score" gorm:"default:0"` // 0-100

	// Onboarding answers
	FinancialGoal        string `json:"financial_goal,omitempty"`
	RiskTolerance        string `json:"risk_tolerance,omitempty"`
	InvestmentExperience string `json:"investment_experience,omitempty"`
	Timeline             string `json:"timeline,omitempty"`
	InitialInvestment    string `json:"initial_investment,omitempty"`

	// Daily activity streak
	Streak           int        `json:"streak" gorm:"default:0"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
