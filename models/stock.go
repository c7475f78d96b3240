package models

import "time"

// PricePoint is one entry of a price history series. MA20/MA50 are moving
// averages, zero when the window isn't filled yet.
type PricePoint struct {
	Date   string  `json:"date"`
	Price  float64 `json:"price"`
	Volume int64   `json:"volume,omitempty"`
	MA20   float64 `json:"ma20,omitempty"`
	MA50   float64 `json:"ma50,omitempty"`
}

// StockQuestion is a prediction question from the question bank: a chart
// plus an expected direction and keyword set used for scoring.
type StockQuestion struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	StockName   string `gorm:"not null" json:"stock_name"`
	StockSymbol string `gorm:"uniqueIndex;not null" json:"stock_symbol"`

	Question  string       `gorm:"type:text;not null" json:"question"`
	ChartData []PricePoint `gorm:"serializer:json" json:"chart_data"`

	ExpectedDirection string   `gorm:"type:varchar(10);default:'neutral'" json:"expected_direction"` // up, down, neutral
	ExpectedKeywords  []string `gorm:"serializer:json" json:"expected_keywords"`
	Explanation       string   `gorm:"type:text" json:"explanation"`

	BaseScore  int    `json:"base_score" gorm:"default:10"`
	MaxScore   int    `json:"max_score" gorm:"default:20"`
	Difficulty string `gorm:"type:varchar(20);default:'medium'" json:"difficulty"`

	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// StockSnapshot caches per-symbol quote data, price history and the trend
// oracle's output. Refreshed when older than the freshness window.
type StockSnapshot struct {
	Symbol string `gorm:"primaryKey" json:"symbol"`
	Name   string `json:"name"`

	CurrentPrice  float64 `json:"current_price" gorm:"default:0"`
	ChangePercent float64 `json:"change_percent" gorm:"default:0"`
	Sector        string  `gorm:"default:'Unknown'" json:"sector"`
	Category      string  `gorm:"default:'Unknown'" json:"category"`
	Currency      string  `gorm:"type:varchar(3);default:'USD'" json:"currency"`

	PriceHistory []PricePoint `gorm:"serializer:json" json:"price_history"`

	Direction  string  `gorm:"type:varchar(20);default:'neutral'" json:"direction"` // bullish, bearish, neutral
	Confidence float64 `json:"confidence" gorm:"default:0.5"`
	Volatility float64 `json:"volatility" gorm:"default:0"`
	Regime     string  `gorm:"default:'Unknown'" json:"regime"`

	LastUpdated time.Time `json:"last_updated" gorm:"autoUpdateTime;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}
