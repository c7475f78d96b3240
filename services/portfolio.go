package services

import (
	"errors"
	"log"

	"wealthplay-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// priceSource is what the portfolio needs from the quote layer.
type priceSource interface {
	Quote(symbol string) (*models.StockSnapshot, error)
}

// PortfolioService runs the demo trading account: a virtual cash balance
// plus holdings priced off the quote cache. All trades settle instantly at
// the current snapshot price.
type PortfolioService struct {
	DB     *gorm.DB
	Quotes priceSource
}

func NewPortfolioService(db *gorm.DB, quotes priceSource) *PortfolioService {
	return &PortfolioService{DB: db, Quotes: quotes}
}

// EnsurePortfolio returns the user's portfolio, creating a funded one
// lazily.
func (s *PortfolioService) EnsurePortfolio(externalUserID string) (*models.DemoPortfolio, error) {
	return s.ensureTx(s.DB, externalUserID)
}

func (s *PortfolioService) ensureTx(tx *gorm.DB, externalUserID string) (*models.DemoPortfolio, error) {
	if externalUserID == "" {
		return nil, models.InvalidInput("user id required")
	}
	var p models.DemoPortfolio
	err := tx.Where("external_user_id = ?", externalUserID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		p = models.DemoPortfolio{
			ID:             uuid.NewString(),
			ExternalUserID: externalUserID,
			Balance:        models.DemoPortfolioStartingBalance,
			Holdings:       models.Holdings{},
			TotalValue:     models.DemoPortfolioStartingBalance,
		}
		if err := tx.Create(&p).Error; err != nil {
			return nil, models.Internal(err, "failed to create portfolio")
		}
		return &p, nil
	}
	if err != nil {
		return nil, models.Internal(err, "failed to load portfolio")
	}
	if p.Holdings == nil {
		p.Holdings = models.Holdings{}
	}
	return &p, nil
}

// TradeResult reports one settled trade.
type TradeResult struct {
	Symbol     string  `json:"symbol"`
	Quantity   float64 `json:"quantity"`
	Price      float64 `json:"price"`
	Cost       float64 `json:"cost"`
	Balance    float64 `json:"balance"`
	TotalValue float64 `json:"total_value"`
}

// Buy purchases quantity of a symbol at the current quote, merging into an
// existing position at the weighted average price.
func (s *PortfolioService) Buy(externalUserID, symbol string, quantity float64) (*TradeResult, error) {
	if quantity <= 0 {
		return nil, models.InvalidInput("quantity must be positive")
	}
	quote, err := s.Quotes.Quote(symbol)
	if err != nil {
		return nil, err
	}
	if quote.CurrentPrice <= 0 {
		return nil, models.Conflict("no usable price for %s", symbol)
	}

	var result *TradeResult
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		p, err := s.ensureTx(forUpdate(tx), externalUserID)
		if err != nil {
			return err
		}

		cost := quantity * quote.CurrentPrice
		if cost > p.Balance {
			return models.Conflict("insufficient balance: need %.2f, have %.2f", cost, p.Balance)
		}

		pos := p.Holdings[quote.Symbol]
		totalQty := pos.Quantity + quantity
		pos.AvgPrice = (pos.AvgPrice*pos.Quantity + cost) / totalQty
		pos.Quantity = totalQty
		p.Holdings[quote.Symbol] = pos
		p.Balance -= cost

		if err := s.revalue(tx, p); err != nil {
			return err
		}
		result = &TradeResult{
			Symbol:     quote.Symbol,
			Quantity:   quantity,
			Price:      quote.CurrentPrice,
			Cost:       cost,
			Balance:    p.Balance,
			TotalValue: p.TotalValue,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Trade: %s bought %.4f %s @ %.2f", externalUserID, quantity, result.Symbol, result.Price)
	return result, nil
}

// Sell liquidates quantity of a position at the current quote. The position
// row disappears once fully sold; the average price is untouched by partial
// sells.
func (s *PortfolioService) Sell(externalUserID, symbol string, quantity float64) (*TradeResult, error) {
	if quantity <= 0 {
		return nil, models.InvalidInput("quantity must be positive")
	}
	quote, err := s.Quotes.Quote(symbol)
	if err != nil {
		return nil, err
	}
	if quote.CurrentPrice <= 0 {
		return nil, models.Conflict("no usable price for %s", symbol)
	}

	var result *TradeResult
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		p, err := s.ensureTx(forUpdate(tx), externalUserID)
		if err != nil {
			return err
		}

		pos, ok := p.Holdings[quote.Symbol]
		if !ok || pos.Quantity < quantity {
			return models.Conflict("insufficient shares of %s: have %.4f, selling %.4f", quote.Symbol, pos.Quantity, quantity)
		}

		proceeds := quantity * quote.CurrentPrice
		pos.Quantity -= quantity
		if pos.Quantity <= 1e-9 {
			delete(p.Holdings, quote.Symbol)
		} else {
			p.Holdings[quote.Symbol] = pos
		}
		p.Balance += proceeds

		if err := s.revalue(tx, p); err != nil {
			return err
		}
		result = &TradeResult{
			Symbol:     quote.Symbol,
			Quantity:   quantity,
			Price:      quote.CurrentPrice,
			Cost:       proceeds,
			Balance:    p.Balance,
			TotalValue: p.TotalValue,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Trade: %s sold %.4f %s @ %.2f", externalUserID, quantity, result.Symbol, result.Price)
	return result, nil
}

// revalue recomputes TotalValue from cash plus marked positions and saves.
func (s *PortfolioService) revalue(tx *gorm.DB, p *models.DemoPortfolio) error {
	total := p.Balance
	for symbol, pos := range p.Holdings {
		price := pos.AvgPrice
		if quote, err := s.Quotes.Quote(symbol); err == nil && quote.CurrentPrice > 0 {
			price = quote.CurrentPrice
		}
		total += pos.Quantity * price
	}
	p.TotalValue = total
	if err := tx.Save(p).Error; err != nil {
		return models.Internal(err, "failed to save portfolio")
	}
	return nil
}

// PositionView is one holding with live valuation.
type PositionView struct {
	Symbol        string  `json:"symbol"`
	Quantity      float64 `json:"quantity"`
	AvgPrice      float64 `json:"avg_price"`
	CurrentPrice  float64 `json:"current_price"`
	MarketValue   float64 `json:"market_value"`
	GainLoss      float64 `json:"gain_loss"`
	GainLossPct   float64 `json:"gain_loss_pct"`
}

// PortfolioView is the full snapshot response.
type PortfolioView struct {
	Balance       float64        `json:"balance"`
	TotalValue    float64        `json:"total_value"`
	TotalGainLoss float64        `json:"total_gain_loss"`
	ReturnPct     float64        `json:"return_pct"`
	Positions     []PositionView `json:"positions"`
}

// View returns the user's portfolio marked to current quotes.
func (s *PortfolioService) View(externalUserID string) (*PortfolioView, error) {
	var view *PortfolioView
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		p, err := s.ensureTx(forUpdate(tx), externalUserID)
		if err != nil {
			return err
		}
		if err := s.revalue(tx, p); err != nil {
			return err
		}

		positions := make([]PositionView, 0, len(p.Holdings))
		for symbol, pos := range p.Holdings {
			price := pos.AvgPrice
			if quote, err := s.Quotes.Quote(symbol); err == nil && quote.CurrentPrice > 0 {
				price = quote.CurrentPrice
			}
			value := pos.Quantity * price
			costBasis := pos.Quantity * pos.AvgPrice
			pv := PositionView{
				Symbol:       symbol,
				Quantity:     pos.Quantity,
				AvgPrice:     pos.AvgPrice,
				CurrentPrice: price,
				MarketValue:  value,
				GainLoss:     value - costBasis,
			}
			if costBasis > 0 {
				pv.GainLossPct = (value - costBasis) / costBasis * 100
			}
			positions = append(positions, pv)
		}

		view = &PortfolioView{
			Balance:       p.Balance,
			TotalValue:    p.TotalValue,
			TotalGainLoss: p.TotalValue - models.DemoPortfolioStartingBalance,
			ReturnPct:     (p.TotalValue - models.DemoPortfolioStartingBalance) / models.DemoPortfolioStartingBalance * 100,
			Positions:     positions,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}
