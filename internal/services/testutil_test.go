package services

import (
	"context"
	"testing"
	"time"

	"omnioracle/internal/models"
	"omnioracle/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	tables := []interface{}{
		&models.User{},
		&models.Market{},
		&models.OracleSource{},
		&models.ResolutionStep{},
		&models.Trade{},
		&models.Notification{},
	}
	for _, table := range tables {
		if err := db.AutoMigrate(table); err != nil {
			t.Fatalf("failed to migrate database: %v", err)
		}
	}
	return db
}

func newTestRepo(t *testing.T) *repository.Repository {
	t.Helper()
	return repository.NewRepository(setupTestDB(t))
}

// seedMarket inserts a market with the demo seed parameters:
// probabilities [0.65, 0.35], liquidity 5000.
func seedMarket(t *testing.T, repo *repository.Repository, status models.MarketStatus) *models.Market {
	t.Helper()
	marketID := uuid.New()
	market := &models.Market{
		ID:                 marketID,
		Title:              "Will Bitcoin price exceed $100,000 by end of 2025?",
		Category:           "Crypto",
		EndDate:            time.Now().Add(24 * time.Hour),
		Status:             status,
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
			MarketID:   marketID,
			Name:       "CoinGecko API",
			SourceType: models.OracleTypeAPI,
			Status:     models.OracleStatusPending,
		},
	}
	if err := repo.CreateMarket(context.Background(), market); err != nil {
		t.Fatalf("failed to seed market: %v", err)
	}
	return market
}

func seedUser(t *testing.T, repo *repository.Repository, id string, balance float64) *models.User {
	t.Helper()
	user := &models.User{
		ID:       id,
		Username: "trader-" + id,
		Balance:  decimal.NewFromFloat(balance),
	}
	if err := repo.DB().Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

// seedTrade records an open position for userID in the given market.
func seedTrade(t *testing.T, repo *repository.Repository, marketID uuid.UUID, userID string) *models.Trade {
	t.Helper()
	trade := &models.Trade{
		ID:        uuid.New(),
		MarketID:  marketID,
		UserID:    userID,
		Outcome:   models.OutcomeYes,
		Amount:    decimal.NewFromInt(100),
		Shares:    decimal.NewFromFloat(100.0 / 0.65),
		Price:     decimal.NewFromFloat(0.65),
		TradeType: models.TradeTypeBuy,
	}
	if err := repo.CreateTrade(context.Background(), trade); err != nil {
		t.Fatalf("failed to seed trade: %v", err)
	}
	return trade
}

// stubOracle returns a canned result without latency.
type stubOracle struct {
	status models.OracleStatus
	value  *models.Outcome
	err    error
}

func (o stubOracle) Fetch(_ context.Context, source models.OracleSource) (models.OracleSource, error) {
	if o.err != nil {
		return source, o.err
	}
	now := time.Now()
	source.Status = o.status
	source.ReportedValue = o.value
	source.FetchedAt = &now
	return source, nil
}

// blockedOracle never answers; used to hold markets in FETCHING_ORACLES.
type blockedOracle struct{}

func (blockedOracle) Fetch(ctx context.Context, source models.OracleSource) (models.OracleSource, error) {
	<-ctx.Done()
	return source, ctx.Err()
}

func outcomePtr(o models.Outcome) *models.Outcome {
	return &o
}

func historyLen(t *testing.T, repo *repository.Repository, marketID uuid.UUID) int {
	t.Helper()
	var count int64
	if err := repo.DB().Model(&models.ResolutionStep{}).Where("market_id = ?", marketID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count history: %v", err)
	}
	return int(count)
}
