package models

// Holding is one position in the demo portfolio. Typed on purpose — the
// holdings column is validated shape, not free-form JSON.
type Holding struct {
	Quantity float64 `json:"quantity"`
	AvgPrice float64 `json:"avg_price"`
}

// Holdings maps stock symbol to position.
type Holdings map[string]Holding

// DemoPortfolioStartingBalance is credited to every new demo portfolio.
const DemoPortfolioStartingBalance = 50000.00

// DemoPortfolio is the per-user practice trading account.
type DemoPortfolio struct {
	ID             string   `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string   `gorm:"uniqueIndex;not null" json:"external_user_id"`
	Balance        float64  `json:"balance" gorm:"default:50000"`
	Holdings       Holdings `gorm:"serializer:json" json:"holdings"`
	TotalValue     float64  `json:"total_value" gorm:"default:50000"`

	Timestamps
}
