package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"wealthplay-service/models"

	"gorm.io/gorm"
)

// QuoteFreshness is how long a cached snapshot stays good before the next
// read regenerates it.
const QuoteFreshness = 10 * time.Minute

const historyDays = 60

// TrendPredictor analyzes a price history and calls a direction.
type TrendPredictor interface {
	Predict(history []models.PricePoint) (direction string, confidence float64, analysis string)
}

// stockInfo is a catalog entry for the simulated market.
type stockInfo struct {
	Symbol    string
	Name      string
	Sector    string
	Category  string
	BasePrice float64
}

// stockCatalog is the simulated universe. Base prices anchor the synthetic
// walks so symbols stay recognizably priced.
var stockCatalog = []stockInfo{
	{"AAPL", "Apple Inc.", "Technology", "Large Cap", 190},
	{"MSFT", "Microsoft Corporation", "Technology", "Large Cap", 420},
	{"GOOGL", "Alphabet Inc.", "Technology", "Large Cap", 165},
	{"AMZN", "Amazon.com Inc.", "Consumer Cyclical", "Large Cap", 180},
	{"TSLA", "Tesla Inc.", "Automotive", "Large Cap", 250},
	{"NVDA", "NVIDIA Corporation", "Technology", "Large Cap", 880},
	{"META", "Meta Platforms Inc.", "Technology", "Large Cap", 500},
	{"JPM", "JPMorgan Chase & Co.", "Financial Services", "Large Cap", 200},
	{"V", "Visa Inc.", "Financial Services", "Large Cap", 280},
	{"JNJ", "Johnson & Johnson", "Healthcare", "Large Cap", 155},
	{"WMT", "Walmart Inc.", "Consumer Defensive", "Large Cap", 68},
	{"KO", "The Coca-Cola Company", "Consumer Defensive", "Large Cap", 62},
}

// OracleService serves stock quotes and trend calls. Quotes come from a
// DB-backed snapshot cache; a miss or a stale row regenerates the synthetic
// history and re-runs the predictor.
type OracleService struct {
	DB        *gorm.DB
	Predictor TrendPredictor
	Freshness time.Duration
}

func NewOracleService(db *gorm.DB, predictor TrendPredictor) *OracleService {
	return &OracleService{DB: db, Predictor: predictor, Freshness: QuoteFreshness}
}

func catalogEntry(symbol string) (stockInfo, bool) {
	for _, s := range stockCatalog {
		if s.Symbol == symbol {
			return s, true
		}
	}
	return stockInfo{}, false
}

// Symbols lists the simulated universe.
func (s *OracleService) Symbols() []string {
	out := make([]string, 0, len(stockCatalog))
	for _, e := range stockCatalog {
		out = append(out, e.Symbol)
	}
	return out
}

// Quote returns the snapshot for a symbol, regenerating it when missing or
// older than the freshness window.
func (s *OracleService) Quote(symbol string) (*models.StockSnapshot, error) {
	info, ok := catalogEntry(symbol)
	if !ok {
		return nil, models.NotFound("unknown symbol %s", symbol)
	}

	var snap models.StockSnapshot
	err := s.DB.Where("symbol = ?", symbol).First(&snap).Error
	if err == nil && time.Since(snap.LastUpdated) < s.Freshness {
		return &snap, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.Internal(err, "failed to load snapshot")
	}

	return s.refresh(info)
}

// Quotes returns a snapshot per catalog symbol.
func (s *OracleService) Quotes() ([]models.StockSnapshot, error) {
	out := make([]models.StockSnapshot, 0, len(stockCatalog))
	for _, e := range stockCatalog {
		snap, err := s.Quote(e.Symbol)
		if err != nil {
			return nil, err
		}
		out = append(out, *snap)
	}
	return out, nil
}

// RefreshAll regenerates every catalog snapshot regardless of age. The
// scheduler runs this so interactive reads rarely pay for generation.
func (s *OracleService) RefreshAll() error {
	for _, e := range stockCatalog {
		if _, err := s.refresh(e); err != nil {
			return err
		}
	}
	log.Printf("Quote refresh: %d symbols updated", len(stockCatalog))
	return nil
}

func (s *OracleService) refresh(info stockInfo) (*models.StockSnapshot, error) {
	history := generateHistory(info.BasePrice, historyDays)
	direction, confidence, _ := s.Predictor.Predict(history)

	latest := history[len(history)-1]
	prev := history[len(history)-2]
	changePct := 0.0
	if prev.Price > 0 {
		changePct = (latest.Price - prev.Price) / prev.Price * 100
	}

	vol := annualizedVolatility(history)
	snap := models.StockSnapshot{
		Symbol:        info.Symbol,
		Name:          info.Name,
		CurrentPrice:  latest.Price,
		ChangePercent: changePct,
		Sector:        info.Sector,
		Category:      info.Category,
		Currency:      "USD",
		PriceHistory:  history,
		Direction:     direction,
		Confidence:    confidence,
		Volatility:    vol,
		Regime:        regimeFor(vol),
	}
	if err := s.DB.Save(&snap).Error; err != nil {
		return nil, models.Internal(err, "failed to save snapshot")
	}
	return &snap, nil
}

// generateHistory produces a daily random walk with moving averages filled
// in once their windows close.
func generateHistory(basePrice float64, days int) []models.PricePoint {
	history := make([]models.PricePoint, 0, days)
	price := basePrice * (0.9 + rand.Float64()*0.2)
	drift := (rand.Float64() - 0.5) * 0.004
	start := time.Now().AddDate(0, 0, -days)

	for i := 0; i < days; i++ {
		price *= 1 + drift + (rand.Float64()-0.5)*0.03
		if price < 1 {
			price = 1
		}
		history = append(history, models.PricePoint{
			Date:   start.AddDate(0, 0, i).Format("2006-01-02"),
			Price:  round2(price),
			Volume: 1_000_000 + rand.Int63n(9_000_000),
		})
	}

	for i := range history {
		if i >= 19 {
			history[i].MA20 = round2(windowAverage(history, i, 20))
		}
		if i >= 49 {
			history[i].MA50 = round2(windowAverage(history, i, 50))
		}
	}
	return history
}

func windowAverage(history []models.PricePoint, end, window int) float64 {
	sum := 0.0
	for i := end - window + 1; i <= end; i++ {
		sum += history[i].Price
	}
	return sum / float64(window)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// annualizedVolatility is the stddev of daily returns scaled to a year.
func annualizedVolatility(history []models.PricePoint) float64 {
	if len(history) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		if history[i-1].Price > 0 {
			returns = append(returns, history[i].Price/history[i-1].Price-1)
		}
	}
	if len(returns) == 0 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))
	return math.Sqrt(variance) * math.Sqrt(252)
}

func regimeFor(vol float64) string {
	switch {
	case vol >= 0.45:
		return "High Volatility"
	case vol >= 0.25:
		return "Moderate"
	default:
		return "Calm"
	}
}

// HeuristicPredictor is the default trend oracle: a moving-average
// crossover call with a short-window momentum fallback when the long
// average isn't available.
type HeuristicPredictor struct{}

func (HeuristicPredictor) Predict(history []models.PricePoint) (string, float64, string) {
	if len(history) == 0 {
		return models.TrendNeutral, 0.5, "No price history available."
	}
	latest := history[len(history)-1]

	if latest.MA20 > 0 && latest.MA50 > 0 {
		spread := (latest.MA20 - latest.MA50) / latest.MA50
		confidence := 0.5 + math.Min(math.Abs(spread)*10, 0.45)
		switch {
		case spread > 0.01:
			return models.TrendBullish, confidence, fmt.Sprintf(
				"20-day average (%.2f) is above the 50-day (%.2f); short-term momentum favors buyers.", latest.MA20, latest.MA50)
		case spread < -0.01:
			return models.TrendBearish, confidence, fmt.Sprintf(
				"20-day average (%.2f) is below the 50-day (%.2f); short-term momentum favors sellers.", latest.MA20, latest.MA50)
		}
		return models.TrendNeutral, 0.5, "The moving averages are intertwined; no clear trend."
	}

	lookback := 5
	if len(history) <= lookback {
		lookback = len(history) - 1
	}
	if lookback < 1 {
		return models.TrendNeutral, 0.5, "Not enough history for a trend call."
	}
	base := history[len(history)-1-lookback].Price
	if base <= 0 {
		return models.TrendNeutral, 0.5, "Not enough history for a trend call."
	}
	change := (latest.Price - base) / base
	switch {
	case change > 0.02:
		return models.TrendBullish, 0.6, fmt.Sprintf("Price rose %.1f%% over the last %d days.", change*100, lookback)
	case change < -0.02:
		return models.TrendBearish, 0.6, fmt.Sprintf("Price fell %.1f%% over the last %d days.", -change*100, lookback)
	}
	return models.TrendNeutral, 0.5, "Price has moved sideways recently."
}
