package jobs

import (
	"context"
	"time"

	"omnioracle/internal/models"
	"omnioracle/internal/repository"
	"omnioracle/internal/services"

	"github.com/sirupsen/logrus"
)

// MarketResolver periodically locks markets whose end date has passed and
// drives locked markets into oracle resolution. It only issues the same
// transitions an operator could trigger by hand; the state machine stays
// the single authority on legality.
type MarketResolver struct {
	repo      *repository.Repository
	lifecycle *services.LifecycleService
	interval  time.Duration
	stopChan  chan struct{}
}

// NewMarketResolver creates a new market resolver job
func NewMarketResolver(repo *repository.Repository, lifecycle *services.LifecycleService, interval time.Duration) *MarketResolver {
	return &MarketResolver{
		repo:      repo,
		lifecycle: lifecycle,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the resolution loop
func (mr *MarketResolver) Start() {
	logrus.WithField("interval", mr.interval).Info("[MarketResolver] starting resolution job")

	ticker := time.NewTicker(mr.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mr.Tick(context.Background())
		case <-mr.stopChan:
			logrus.Info("[MarketResolver] stopping resolution job")
			return
		}
	}
}

// Stop stops the resolution loop
func (mr *MarketResolver) Stop() {
	close(mr.stopChan)
}

// Tick runs one pass: expired ACTIVE markets are locked, and LOCKED
// markets are sent into FETCHING_ORACLES.
func (mr *MarketResolver) Tick(ctx context.Context) {
	expired, err := mr.repo.ListExpiredActiveMarkets(ctx, time.Now())
	if err != nil {
		logrus.WithError(err).Error("[MarketResolver] failed to list expired markets")
		return
	}
	for _, market := range expired {
		if _, err := mr.lifecycle.UpdateStatus(ctx, market.ID, models.MarketStatusLocked); err != nil {
			logrus.WithError(err).WithField("market_id", market.ID).Error("[MarketResolver] failed to lock market")
		}
	}

	locked, err := mr.repo.ListMarketsByStatus(ctx, models.MarketStatusLocked)
	if err != nil {
		logrus.WithError(err).Error("[MarketResolver] failed to list locked markets")
		return
	}
	for _, market := range locked {
		if _, err := mr.lifecycle.UpdateStatus(ctx, market.ID, models.MarketStatusFetchingOracles); err != nil {
			logrus.WithError(err).WithField("market_id", market.ID).Error("[MarketResolver] failed to start resolution")
			continue
		}
		logrus.WithField("market_id", market.ID).Info("[MarketResolver] resolution started")
	}
}
