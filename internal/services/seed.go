package services

import (
	"context"
	"fmt"
	"time"

	"omnioracle/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DemoUserID is the singleton session profile a fresh instance starts with.
const DemoUserID = "u1"

// Seed inserts the demo user and the two demo markets so a fresh instance
// is immediately usable. Idempotent: existing rows are left alone.
func (s *MarketService) Seed(ctx context.Context) error {
	var count int64
	if err := s.repo.DB().WithContext(ctx).Model(&models.User{}).Where("id = ?", DemoUserID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check seed state: %w", err)
	}
	if count > 0 {
		return nil
	}

	return s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := models.User{
			ID:             DemoUserID,
			Username:       "CryptoOracle",
			Balance:        decimal.NewFromFloat(2500),
			Reputation:     100,
			PortfolioValue: decimal.Zero,
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}

		coingeckoURL := "https://api.coingecko.com"
		btcID := uuid.New()
		btc := models.Market{
			ID:                 btcID,
			Title:              "Will Bitcoin price exceed $100,000 by end of 2025?",
			Description:        "Resolves YES if BTC/USD > 100k on Coingecko.",
			Category:           "Crypto",
			EndDate:            time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC),
			Status:             models.MarketStatusActive,
			YesProbability:     0.65,
			NoProbability:      0.35,
			Volume:             decimal.NewFromInt(12500),
			Liquidity:          decimal.NewFromInt(5000),
			YesPool:            decimal.NewFromInt(3250),
			NoPool:             decimal.NewFromInt(1750),
			ResolutionCriteria: "Closing price UTC",
			DisputeWindowHours: 24,
			CreatorID:          "system",
			OracleSource: &models.OracleSource{
				ID:         uuid.New(),
				MarketID:   btcID,
				Name:       "CoinGecko API",
				SourceType: models.OracleTypeAPI,
				URL:        &coingeckoURL,
				Status:     models.OracleStatusPending,
			},
		}
		if err := tx.Create(&btc).Error; err != nil {
			return fmt.Errorf("failed to seed market: %w", err)
		}

		starshipValue := models.OutcomeYes
		starshipID := uuid.New()
		starship := models.Market{
			ID:                 starshipID,
			Title:              "Will SpaceX Starship reach orbit in Q2 2024?",
			Description:        "Resolves YES if Starship completes one full orbit.",
			Category:           "Tech",
			EndDate:            time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC),
			Status:             models.MarketStatusDisputeWindow,
			YesProbability:     0.85,
			NoProbability:      0.15,
			Volume:             decimal.NewFromInt(50000),
			Liquidity:          decimal.NewFromInt(10000),
			YesPool:            decimal.NewFromInt(8500),
			NoPool:             decimal.NewFromInt(1500),
			ResolutionCriteria: "Official press release",
			DisputeWindowHours: 24,
			ResolutionAttempt:  1,
			CreatorID:          "system",
			OracleSource: &models.OracleSource{
				ID:            uuid.New(),
				MarketID:      starshipID,
				Name:          "SpaceX Official",
				SourceType:    models.OracleTypeAPI,
				Status:        models.OracleStatusVerified,
				ReportedValue: &starshipValue,
			},
		}
		if err := tx.Create(&starship).Error; err != nil {
			return fmt.Errorf("failed to seed market: %w", err)
		}

		now := time.Now()
		history := []models.ResolutionStep{
			{
				ID:        uuid.New(),
				MarketID:  starshipID,
				Step:      models.StepLock,
				Details:   "Market closed for trading",
				Timestamp: now.Add(-100 * time.Second),
			},
			{
				ID:        uuid.New(),
				MarketID:  starshipID,
				Step:      models.StepOracleFetch,
				Details:   "Consulting primary oracle source",
				Timestamp: now.Add(-50 * time.Second),
			},
			{
				ID:        uuid.New(),
				MarketID:  starshipID,
				Step:      models.StepDispute,
				Details:   "Oracle returned VERIFIED; awaiting manual resolution",
				Timestamp: now.Add(-45 * time.Second),
			},
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to seed resolution history: %w", err)
		}
		return nil
	})
}
