package services

import (
	"context"
	"math"
	"testing"

	"omnioracle/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestPortfolioValue(t *testing.T) {
	repo := newTestRepo(t)
	portfolio := NewPortfolioService(repo)

	activeID, resolvedID := uuid.New(), uuid.New()
	markets := map[uuid.UUID]*models.Market{
		activeID: {
			ID:             activeID,
			Status:         models.MarketStatusActive,
			YesProbability: 0.67,
			NoProbability:  0.33,
		},
		resolvedID: {
			ID:             resolvedID,
			Status:         models.MarketStatusResolved,
			YesProbability: 0.99,
			NoProbability:  0.01,
		},
	}
	trades := []models.Trade{
		{MarketID: activeID, UserID: "u1", Outcome: models.OutcomeYes, Shares: decimal.NewFromInt(100)},
		{MarketID: activeID, UserID: "u1", Outcome: models.OutcomeNo, Shares: decimal.NewFromInt(50)},
		// Resolved markets drop out of live valuation.
		{MarketID: resolvedID, UserID: "u1", Outcome: models.OutcomeYes, Shares: decimal.NewFromInt(1000)},
		// Other users' trades are ignored.
		{MarketID: activeID, UserID: "u2", Outcome: models.OutcomeYes, Shares: decimal.NewFromInt(400)},
	}

	got := portfolio.Value(trades, markets, "u1").InexactFloat64()
	want := 100*0.67 + 50*0.33
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected portfolio value %f, got %f", want, got)
	}
}

func TestPortfolioValueIsPure(t *testing.T) {
	portfolio := NewPortfolioService(newTestRepo(t))

	marketID := uuid.New()
	markets := map[uuid.UUID]*models.Market{
		marketID: {ID: marketID, Status: models.MarketStatusActive, YesProbability: 0.5, NoProbability: 0.5},
	}
	trades := []models.Trade{
		{MarketID: marketID, UserID: "u1", Outcome: models.OutcomeYes, Shares: decimal.NewFromInt(10)},
	}

	first := portfolio.Value(trades, markets, "u1")
	second := portfolio.Value(trades, markets, "u1")
	if !first.Equal(second) {
		t.Error("repeated valuation of identical inputs differed")
	}
	if markets[marketID].YesProbability != 0.5 {
		t.Error("valuation mutated its inputs")
	}
}

func TestPortfolioTracksResolution(t *testing.T) {
	repo := newTestRepo(t)
	portfolio := NewPortfolioService(repo)
	markets := NewMarketService(repo, portfolio, nil)
	lifecycle := NewLifecycleService(repo, stubOracle{
		status: models.OracleStatusVerified,
		value:  outcomePtr(models.OutcomeYes),
	}, portfolio, nil, 0)

	market := seedMarket(t, repo, models.MarketStatusActive)
	seedUser(t, repo, "u1", 2500)
	ctx := context.Background()

	resp, err := markets.ExecuteTrade(ctx, market.ID, "u1", models.OutcomeYes, 500)
	if err != nil {
		t.Fatalf("trade failed: %v", err)
	}
	if resp.PortfolioValue.IsZero() {
		t.Fatal("expected a live portfolio value after the trade")
	}

	if _, err := lifecycle.UpdateStatus(ctx, market.ID, models.MarketStatusLocked); err != nil {
		t.Fatalf("lock failed: %v", err)
	}
	if _, err := lifecycle.UpdateStatus(ctx, market.ID, models.MarketStatusFetchingOracles); err != nil {
		t.Fatalf("fetch transition failed: %v", err)
	}
	if err := lifecycle.RunResolution(ctx, market.ID, 1); err != nil {
		t.Fatalf("resolution failed: %v", err)
	}

	// The only open position was in the now-resolved market.
	user, err := repo.GetUserByID(ctx, "u1")
	if err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if !user.PortfolioValue.IsZero() {
		t.Errorf("expected zero portfolio after resolution, got %s", user.PortfolioValue)
	}
}
