package models

import "time"

// Achievement is a static catalog entry. ID is a stable code like "xp_100".
type Achievement struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IconName    string    `gorm:"default:'trophy'" json:"icon_name"`
	Category    string    `gorm:"default:'general'" json:"category"`
	XPReward    int       `json:"xp_reward" gorm:"default:0"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// UserAchievement marks an unlock. Existence with a valid UnlockedAt IS the
// unlock — there is no separate processed flag.
type UserAchievement struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string    `gorm:"uniqueIndex:idx_user_achievement;not null" json:"external_user_id"`
	AchievementID  string    `gorm:"uniqueIndex:idx_user_achievement;not null" json:"achievement_id"`
	UnlockedAt     time.Time `json:"unlocked_at" gorm:"autoCreateTime"`
	Notified       bool      `json:"notified" gorm:"default:false"`
}

// AchievementCatalog is the fixed achievement set, seeded at startup.
var AchievementCatalog = []Achievement{
	{ID: "first_trade", Name: "First Trade", Description: "Make your first trade in the demo portfolio", IconName: "trending-up", Category: "portfolio", XPReward: 50},
	{ID: "diversified", Name: "Diversified Portfolio", Description: "Hold 5 or more different stocks", IconName: "pie-chart", Category: "portfolio", XPReward: 150},
	{ID: "portfolio_pro", Name: "Portfolio Pro", Description: "Reach 10% returns on your portfolio", IconName: "bar-chart", Category: "portfolio", XPReward: 200},
	{ID: "portfolio_master", Name: "Portfolio Master", Description: "Reach 25% returns on your portfolio", IconName: "crown", Category: "portfolio", XPReward: 500},
	{ID: "streak_5", Name: "5 Day Streak", Description: "Stay active for 5 days in a row", IconName: "flame", Category: "streak", XPReward: 100},
	{ID: "streak_10", Name: "10 Day Streak", Description: "Stay active for 10 days in a row", IconName: "flame", Category: "streak", XPReward: 250},
	{ID: "streak_30", Name: "30 Day Streak", Description: "Stay active for 30 days in a row", IconName: "flame", Category: "streak", XPReward: 1000},
	{ID: "scenario_master", Name: "Scenario Master", Description: "Earn 1000 points across scenario quizzes", IconName: "target", Category: "scenario", XPReward: 300},
	{ID: "scenario_perfect", Name: "Perfect Quiz", Description: "Finish a scenario quiz with a perfect score", IconName: "star", Category: "scenario", XPReward: 150},
	{ID: "stock_predictor", Name: "Stock Predictor", Description: "Get 10 stock predictions right", IconName: "activity", Category: "prediction", XPReward: 200},
	{ID: "stock_master", Name: "Stock Master", Description: "Get 50 stock predictions right", IconName: "award", Category: "prediction", XPReward: 750},
	{ID: "xp_100", Name: "Getting Started", Description: "Earn 100 XP", IconName: "zap", Category: "milestone", XPReward: 0},
	{ID: "xp_500", Name: "Committed Learner", Description: "Earn 500 XP", IconName: "zap", Category: "milestone", XPReward: 0},
	{ID: "xp_1000", Name: "Dedicated Investor", Description: "Earn 1000 XP", IconName: "zap", Category: "milestone", XPReward: 0},
	{ID: "xp_2500", Name: "Finance Scholar", Description: "Earn 2500 XP", IconName: "zap", Category: "milestone", XPReward: 0},
}
