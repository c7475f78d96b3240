package services

import (
	"math"
	"testing"

	"wealthplay-service/models"
)

// fixedQuotes is a priceSource with deterministic prices.
type fixedQuotes map[string]float64

func (f fixedQuotes) Quote(symbol string) (*models.StockSnapshot, error) {
	price, ok := f[symbol]
	if !ok {
		return nil, models.NotFound("unknown symbol %s", symbol)
	}
	return &models.StockSnapshot{Symbol: symbol, CurrentPrice: price}, nil
}

func TestBuyMergesAtWeightedAverage(t *testing.T) {
	db := newTestDB(t)
	quotes := fixedQuotes{"AAPL": 100}
	portfolios := NewPortfolioService(db, quotes)

	if _, err := portfolios.Buy("user-1", "AAPL", 10); err != nil {
		t.Fatalf("Buy failed: %v", err)
	}

	quotes["AAPL"] = 200
	result, err := portfolios.Buy("user-1", "AAPL", 10)
	if err != nil {
		t.Fatalf("Buy failed: %v", err)
	}

	p, err := portfolios.EnsurePortfolio("user-1")
	if err != nil {
		t.Fatalf("EnsurePortfolio failed: %v", err)
	}
	pos := p.Holdings["AAPL"]
	if pos.Quantity != 20 {
		t.Fatalf("expected 20 shares, got %f", pos.Quantity)
	}
	if math.Abs(pos.AvgPrice-150) > 1e-9 {
		t.Fatalf("expected avg price 150, got %f", pos.AvgPrice)
	}
	if math.Abs(result.Balance-(50000-1000-2000)) > 1e-9 {
		t.Fatalf("unexpected balance %f", result.Balance)
	}
	// 47000 cash + 20 shares at 200.
	if math.Abs(result.TotalValue-51000) > 1e-9 {
		t.Fatalf("unexpected total value %f", result.TotalValue)
	}
}

func TestBuyRejectsOverdraft(t *testing.T) {
	db := newTestDB(t)
	portfolios := NewPortfolioService(db, fixedQuotes{"NVDA": 1000})

	_, err := portfolios.Buy("user-1", "NVDA", 100) // 100k > 50k
	if models.KindOf(err) != models.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	if _, err := portfolios.Buy("user-1", "NVDA", 0); models.KindOf(err) != models.KindInvalidInput {
		t.Fatalf("expected invalid_input for zero quantity, got %v", err)
	}
	if _, err := portfolios.Buy("user-1", "XXXX", 1); models.KindOf(err) != models.KindNotFound {
		t.Fatalf("expected not_found for unknown symbol, got %v", err)
	}
}

func TestSellClosesPosition(t *testing.T) {
	db := newTestDB(t)
	quotes := fixedQuotes{"AAPL": 100}
	portfolios := NewPortfolioService(db, quotes)

	if _, err := portfolios.Buy("user-1", "AAPL", 10); err != nil {
		t.Fatalf("Buy failed: %v", err)
	}

	quotes["AAPL"] = 120
	result, err := portfolios.Sell("user-1", "AAPL", 10)
	if err != nil {
		t.Fatalf("Sell failed: %v", err)
	}
	if math.Abs(result.Balance-(50000-1000+1200)) > 1e-9 {
		t.Fatalf("unexpected balance %f", result.Balance)
	}

	p, _ := portfolios.EnsurePortfolio("user-1")
	if _, ok := p.Holdings["AAPL"]; ok {
		t.Fatal("fully sold position should disappear")
	}

	// No shares left to sell.
	if _, err := portfolios.Sell("user-1", "AAPL", 1); models.KindOf(err) != models.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestViewReportsGainLoss(t *testing.T) {
	db := newTestDB(t)
	quotes := fixedQuotes{"AAPL": 100}
	portfolios := NewPortfolioService(db, quotes)

	if _, err := portfolios.Buy("user-1", "AAPL", 100); err != nil {
		t.Fatalf("Buy failed: %v", err)
	}

	quotes["AAPL"] = 110
	view, err := portfolios.View("user-1")
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if len(view.Positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(view.Positions))
	}
	pos := view.Positions[0]
	if math.Abs(pos.GainLoss-1000) > 1e-9 {
		t.Fatalf("expected 1000 gain, got %f", pos.GainLoss)
	}
	if math.Abs(pos.GainLossPct-10) > 1e-9 {
		t.Fatalf("expected 10%% gain, got %f", pos.GainLossPct)
	}
	// 40000 cash + 11000 position = 51000, +2% on the account.
	if math.Abs(view.TotalValue-51000) > 1e-9 {
		t.Fatalf("unexpected total value %f", view.TotalValue)
	}
	if math.Abs(view.ReturnPct-2) > 1e-9 {
		t.Fatalf("expected 2%% return, got %f", view.ReturnPct)
	}
}
