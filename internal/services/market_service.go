package services

import (
	"context"
	"fmt"
	"time"

	"omnioracle/internal/models"
	"omnioracle/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Draft defaults matching the AI market generator's output shape.
const (
	defaultLiquidity          = 1000.0
	defaultDisputeWindowHours = 24
)

// MarketService is the store facade consumed by the API layer: market
// creation from validated drafts, trade execution, queries and reset.
type MarketService struct {
	repo      *repository.Repository
	portfolio *PortfolioService
	publisher Publisher
}

func NewMarketService(repo *repository.Repository, portfolio *PortfolioService, publisher Publisher) *MarketService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &MarketService{repo: repo, portfolio: portfolio, publisher: publisher}
}

// CreateMarket validates a market draft and creates the market ACTIVE with
// pool balances seeded from the initial probability.
func (s *MarketService) CreateMarket(ctx context.Context, creatorID string, req *models.CreateMarketRequest) (*models.Market, error) {
	endDate, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end_date must be RFC 3339: %v", ErrValidation, err)
	}
	if !endDate.After(time.Now()) {
		return nil, fmt.Errorf("%w: end_date must be in the future", ErrValidation)
	}
	if req.InitialProbability < minProbability || req.InitialProbability > maxProbability {
		return nil, fmt.Errorf("%w: initial_probability must be within [%.2f, %.2f]",
			ErrValidation, minProbability, maxProbability)
	}
	if req.ResolutionCriteria == "" {
		return nil, fmt.Errorf("%w: resolution_criteria is required", ErrValidation)
	}

	sourceType := models.OracleSourceType(req.OracleType)
	if req.OracleType == "" {
		sourceType = models.OracleTypeAPI
	}
	if !sourceType.Valid() {
		return nil, fmt.Errorf("%w: unknown oracle type %q", ErrValidation, req.OracleType)
	}
	var sourceURL *string
	if req.OracleURL != "" {
		if sourceType != models.OracleTypeAPI {
			return nil, fmt.Errorf("%w: oracle_url is only valid for API sources", ErrValidation)
		}
		sourceURL = &req.OracleURL
	}

	liquidity := req.Liquidity
	if liquidity == 0 {
		liquidity = defaultLiquidity
	}
	if liquidity < 0 {
		return nil, fmt.Errorf("%w: liquidity must be positive", ErrValidation)
	}
	disputeHours := req.DisputeWindowHours
	if disputeHours == 0 {
		disputeHours = defaultDisputeWindowHours
	}

	yesProb := req.InitialProbability
	liq := decimal.NewFromFloat(liquidity)
	marketID := uuid.New()

	market := &models.Market{
		ID:                 marketID,
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		EndDate:            endDate,
		Status:             models.MarketStatusActive,
		YesProbability:     yesProb,
		NoProbability:      1 - yesProb,
		Volume:             decimal.Zero,
		Liquidity:          liq,
		YesPool:            liq.Mul(decimal.NewFromFloat(yesProb)),
		NoPool:             liq.Mul(decimal.NewFromFloat(1 - yesProb)),
		ResolutionCriteria: req.ResolutionCriteria,
		DisputeWindowHours: disputeHours,
		CreatorID:          creatorID,
		OracleSource: &models.OracleSource{
			ID:         uuid.New(),
			MarketID:   marketID,
			Name:       req.OracleName,
			SourceType: sourceType,
			URL:        sourceURL,
			Status:     models.OracleStatusPending,
		},
	}

	if err := s.repo.CreateMarket(ctx, market); err != nil {
		return nil, fmt.Errorf("failed to create market: %w", err)
	}

	notifyUser(ctx, s.repo, s.publisher, creatorID, "Market Created",
		fmt.Sprintf("%q is now active", market.Title), models.NotifySuccess)
	s.publisher.PublishMarket(market)
	return market, nil
}

// ExecuteTrade validates and executes a buy: balance check, pricing, market
// mutation, trade append, balance debit and portfolio refresh commit as one
// transaction or not at all.
func (s *MarketService) ExecuteTrade(ctx context.Context, marketID uuid.UUID, userID string, outcome models.Outcome, amount float64) (*models.TradeResponse, error) {
	tradeAmount := decimal.NewFromFloat(amount)

	var market *models.Market
	var user *models.User
	var trade *models.Trade

	err := s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		market, err = getMarketTx(tx, marketID)
		if err != nil {
			return err
		}
		if market.Status != models.MarketStatusActive {
			return fmt.Errorf("%w: market %s is %s, trading requires %s",
				ErrValidation, marketID, market.Status, models.MarketStatusActive)
		}

		var row models.User
		if err := tx.Where("id = ?", userID).First(&row).Error; err != nil {
			return wrapNotFound(err, "user %s", userID)
		}
		user = &row
		if tradeAmount.GreaterThan(user.Balance) {
			return fmt.Errorf("%w: insufficient balance %s for trade of %s",
				ErrValidation, user.Balance, tradeAmount)
		}

		quote, err := QuoteTrade(market, outcome, tradeAmount)
		if err != nil {
			return err
		}
		if err := ApplyQuote(market, outcome, tradeAmount, quote); err != nil {
			return err
		}
		market.UpdatedAt = time.Now()
		if err := tx.Save(market).Error; err != nil {
			return fmt.Errorf("failed to update market: %w", err)
		}

		trade = &models.Trade{
			ID:        uuid.New(),
			MarketID:  marketID,
			UserID:    userID,
			Outcome:   outcome,
			Amount:    tradeAmount,
			Shares:    quote.Shares,
			Price:     quote.Price,
			TradeType: models.TradeTypeBuy,
		}
		if err := tx.Create(trade).Error; err != nil {
			return fmt.Errorf("failed to record trade: %w", err)
		}

		user.Balance = user.Balance.Sub(tradeAmount)
		user.UpdatedAt = time.Now()
		if err := tx.Save(user).Error; err != nil {
			return fmt.Errorf("failed to debit balance: %w", err)
		}
		if err := s.portfolio.Refresh(tx, userID); err != nil {
			return err
		}
		return tx.Where("id = ?", userID).First(user).Error
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"market_id": marketID,
		"user_id":   userID,
		"outcome":   outcome,
		"amount":    tradeAmount,
	}).Info("trade executed")

	notifyUser(ctx, s.repo, s.publisher, userID, "Trade Executed",
		fmt.Sprintf("Bought $%s of %s", tradeAmount, outcome), models.NotifySuccess)
	s.publisher.PublishMarket(market)

	return &models.TradeResponse{
		TradeID:        trade.ID.String(),
		MarketID:       marketID.String(),
		Outcome:        outcome,
		Amount:         trade.Amount,
		Shares:         trade.Shares,
		Price:          trade.Price,
		Probabilities:  market.Probabilities(),
		Balance:        user.Balance,
		PortfolioValue: user.PortfolioValue,
	}, nil
}

// GetMarket retrieves one market with oracle source and audit trail.
func (s *MarketService) GetMarket(ctx context.Context, marketID uuid.UUID) (*models.Market, error) {
	market, err := s.repo.GetMarketByID(ctx, marketID)
	if err != nil {
		return nil, wrapNotFound(err, "market %s", marketID)
	}
	return market, nil
}

// ListMarkets retrieves all markets.
func (s *MarketService) ListMarkets(ctx context.Context) ([]models.Market, error) {
	return s.repo.ListMarkets(ctx)
}

// ListTrades retrieves all trades.
func (s *MarketService) ListTrades(ctx context.Context) ([]models.Trade, error) {
	return s.repo.ListTrades(ctx)
}

// Reset clears all persisted state and reseeds the demo fixtures.
// Administrative, not part of the trading protocol.
func (s *MarketService) Reset(ctx context.Context) error {
	if err := s.repo.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset store: %w", err)
	}
	return s.Seed(ctx)
}
