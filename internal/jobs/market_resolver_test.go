package jobs

import (
	"context"
	"testing"
	"time"

	"omnioracle/internal/database"
	"omnioracle/internal/models"
	"omnioracle/internal/repository"
	"omnioracle/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type verifiedOracle struct{}

func (verifiedOracle) Fetch(_ context.Context, source models.OracleSource) (models.OracleSource, error) {
	value := models.OutcomeYes
	now := time.Now()
	source.Status = models.OracleStatusVerified
	source.ReportedValue = &value
	source.FetchedAt = &now
	return source, nil
}

func setupResolver(t *testing.T) (*MarketResolver, *repository.Repository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	repo := repository.NewRepository(db)
	portfolio := services.NewPortfolioService(repo)
	lifecycle := services.NewLifecycleService(repo, verifiedOracle{}, portfolio, nil, time.Second)
	return NewMarketResolver(repo, lifecycle, time.Second), repo
}

func createMarket(t *testing.T, repo *repository.Repository, status models.MarketStatus, endDate time.Time) *models.Market {
	t.Helper()
	marketID := uuid.New()
	market := &models.Market{
		ID:                 marketID,
		Title:              "Test market",
		Category:           "Test",
		EndDate:            endDate,
		Status:             status,
		YesProbability:     0.5,
		NoProbability:      0.5,
		Liquidity:          decimal.NewFromInt(1000),
		YesPool:            decimal.NewFromInt(500),
		NoPool:             decimal.NewFromInt(500),
		ResolutionCriteria: "test criteria",
		DisputeWindowHours: 24,
		CreatorID:          "system",
		OracleSource: &models.OracleSource{
			ID:         uuid.New(),
			MarketID:   marketID,
			Name:       "Test Oracle",
			SourceType: models.OracleTypeAPI,
			Status:     models.OracleStatusPending,
		},
	}
	if err := repo.CreateMarket(context.Background(), market); err != nil {
		t.Fatalf("failed to create market: %v", err)
	}
	return market
}

func TestTickLocksExpiredMarkets(t *testing.T) {
	resolver, repo := setupResolver(t)
	ctx := context.Background()

	expired := createMarket(t, repo, models.MarketStatusActive, time.Now().Add(-time.Hour))
	live := createMarket(t, repo, models.MarketStatusActive, time.Now().Add(time.Hour))

	resolver.Tick(ctx)

	got, err := repo.GetMarketByID(ctx, expired.ID)
	if err != nil {
		t.Fatalf("failed to reload market: %v", err)
	}
	// The same tick also pushes LOCKED markets into resolution, so the
	// expired market is at least locked by now.
	if got.Status == models.MarketStatusActive {
		t.Fatalf("expired market still ACTIVE after tick")
	}

	untouched, err := repo.GetMarketByID(ctx, live.ID)
	if err != nil {
		t.Fatalf("failed to reload market: %v", err)
	}
	if untouched.Status != models.MarketStatusActive {
		t.Errorf("unexpired market transitioned to %s", untouched.Status)
	}
}

func TestTickDrivesLockedMarketsToResolution(t *testing.T) {
	resolver, repo := setupResolver(t)
	ctx := context.Background()

	market := createMarket(t, repo, models.MarketStatusLocked, time.Now().Add(-time.Hour))

	resolver.Tick(ctx)

	// The oracle consultation runs asynchronously; wait for it to land.
	deadline := time.Now().Add(2 * time.Second)
	for {
		got, err := repo.GetMarketByID(ctx, market.ID)
		if err != nil {
			t.Fatalf("failed to reload market: %v", err)
		}
		if got.Status == models.MarketStatusResolved {
			if got.ResolutionValue == nil || *got.ResolutionValue != models.OutcomeYes {
				t.Fatalf("unexpected resolution value: %v", got.ResolutionValue)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("market stuck in %s", got.Status)
		}
		time.Sleep(20 * time.Millisecond)
	}
}
