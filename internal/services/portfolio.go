package services

import (
	"context"
	"fmt"
	"time"

	"omnioracle/internal/models"
	"omnioracle/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PortfolioService marks open positions to market. A position's live value
// is shares times the current probability of its outcome; positions in
// RESOLVED markets are excluded (settlement payout is not modeled).
type PortfolioService struct {
	repo *repository.Repository
}

func NewPortfolioService(repo *repository.Repository) *PortfolioService {
	return &PortfolioService{repo: repo}
}

// Value computes the mark-to-market value of ownerID's trades. Pure given
// its inputs; markets missing from the map are skipped.
func (s *PortfolioService) Value(trades []models.Trade, markets map[uuid.UUID]*models.Market, ownerID string) decimal.Decimal {
	total := decimal.Zero
	for _, trade := range trades {
		if trade.UserID != ownerID {
			continue
		}
		market, ok := markets[trade.MarketID]
		if !ok || market.Status == models.MarketStatusResolved {
			continue
		}
		prob := decimal.NewFromFloat(market.Price(trade.Outcome))
		total = total.Add(trade.Shares.Mul(prob))
	}
	return total
}

// ValueForUser loads a user's trades and the referenced markets, then
// computes the live portfolio value.
func (s *PortfolioService) ValueForUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	trades, err := s.repo.ListTradesByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load trades: %w", err)
	}
	markets, err := s.marketIndex(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return s.Value(trades, markets, userID), nil
}

// Refresh recomputes and stores a user's portfolio value inside an open
// transaction, so it commits atomically with the mutation that changed it.
func (s *PortfolioService) Refresh(tx *gorm.DB, userID string) error {
	var trades []models.Trade
	if err := tx.Where("user_id = ?", userID).Find(&trades).Error; err != nil {
		return fmt.Errorf("failed to load trades: %w", err)
	}
	var marketRows []models.Market
	if err := tx.Find(&marketRows).Error; err != nil {
		return fmt.Errorf("failed to load markets: %w", err)
	}
	markets := make(map[uuid.UUID]*models.Market, len(marketRows))
	for i := range marketRows {
		markets[marketRows[i].ID] = &marketRows[i]
	}

	value := s.Value(trades, markets, userID)
	return tx.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"portfolio_value": value,
			"updated_at":      time.Now(),
		}).Error
}

// RefreshHolders recomputes portfolio values for every user holding a
// position in the given market.
func (s *PortfolioService) RefreshHolders(tx *gorm.DB, marketID uuid.UUID) error {
	var userIDs []string
	if err := tx.Model(&models.Trade{}).
		Where("market_id = ?", marketID).
		Distinct("user_id").
		Pluck("user_id", &userIDs).Error; err != nil {
		return fmt.Errorf("failed to list holders: %w", err)
	}
	for _, userID := range userIDs {
		if err := s.Refresh(tx, userID); err != nil {
			return err
		}
	}
	return nil
}

func (s *PortfolioService) marketIndex(ctx context.Context) (map[uuid.UUID]*models.Market, error) {
	rows, err := s.repo.ListMarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load markets: %w", err)
	}
	markets := make(map[uuid.UUID]*models.Market, len(rows))
	for i := range rows {
		markets[rows[i].ID] = &rows[i]
	}
	return markets, nil
}
