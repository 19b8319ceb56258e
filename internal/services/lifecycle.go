package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"omnioracle/internal/models"
	"omnioracle/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// allowedTransitions is the market status state machine. CANCELLED is the
// administrative escape hatch from every non-terminal state; RESOLVED and
// CANCELLED accept nothing further.
var allowedTransitions = map[models.MarketStatus][]models.MarketStatus{
	models.MarketStatusActive:          {models.MarketStatusLocked, models.MarketStatusCancelled},
	models.MarketStatusLocked:          {models.MarketStatusFetchingOracles, models.MarketStatusCancelled},
	models.MarketStatusFetchingOracles: {models.MarketStatusDisputeWindow, models.MarketStatusResolved, models.MarketStatusCancelled},
	models.MarketStatusDisputeWindow:   {models.MarketStatusResolved, models.MarketStatusCancelled},
}

func transitionAllowed(from, to models.MarketStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// LifecycleService owns market status transitions, the resolution audit
// trail, and the oracle consultation that drives resolution.
type LifecycleService struct {
	repo         *repository.Repository
	oracle       OracleFetcher
	portfolio    *PortfolioService
	publisher    Publisher
	fetchTimeout time.Duration

	// flights coalesces concurrent resolution attempts so at most one
	// oracle fetch is in flight per market.
	flights singleflight.Group
}

func NewLifecycleService(repo *repository.Repository, oracle OracleFetcher, portfolio *PortfolioService, publisher Publisher, fetchTimeout time.Duration) *LifecycleService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}
	return &LifecycleService{
		repo:         repo,
		oracle:       oracle,
		portfolio:    portfolio,
		publisher:    publisher,
		fetchTimeout: fetchTimeout,
	}
}

// UpdateStatus applies an administrative status transition. Illegal
// transitions and transitions out of terminal states are rejected without
// mutation. Entering FETCHING_ORACLES bumps the resolution attempt counter
// and starts an oracle consultation in the background.
func (s *LifecycleService) UpdateStatus(ctx context.Context, marketID uuid.UUID, status models.MarketStatus) (*models.Market, error) {
	var market *models.Market
	var attempt int

	err := s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		market, err = getMarketTx(tx, marketID)
		if err != nil {
			return err
		}
		if market.Status.IsTerminal() {
			return fmt.Errorf("%w: market %s is %s and accepts no transitions", ErrValidation, marketID, market.Status)
		}
		if !transitionAllowed(market.Status, status) {
			return fmt.Errorf("%w: illegal transition %s -> %s", ErrValidation, market.Status, status)
		}

		step := models.StepStatusChange
		details := fmt.Sprintf("Status changed to %s", status)
		switch status {
		case models.MarketStatusLocked:
			step = models.StepLock
			details = "Market closed for trading"
		case models.MarketStatusCancelled:
			step = models.StepCancelled
			details = "Market cancelled"
		case models.MarketStatusFetchingOracles:
			market.ResolutionAttempt++
			attempt = market.ResolutionAttempt
			step = models.StepOracleFetch
			details = "Consulting primary oracle source"
		}

		market.Status = status
		market.UpdatedAt = time.Now()
		if err := tx.Save(market).Error; err != nil {
			return fmt.Errorf("failed to update market status: %w", err)
		}
		return appendHistory(tx, marketID, step, details)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.PublishMarket(market)

	if status == models.MarketStatusFetchingOracles {
		go func() {
			if err := s.RunResolution(context.Background(), marketID, attempt); err != nil {
				logrus.WithError(err).WithField("market_id", marketID).Error("resolution attempt failed")
			}
		}()
	}
	return market, nil
}

// RunResolution consults the market's primary oracle source and completes
// the attempt. Concurrent calls for the same market are coalesced; the
// attempt number makes stale completions no-ops.
func (s *LifecycleService) RunResolution(ctx context.Context, marketID uuid.UUID, attempt int) error {
	_, err, _ := s.flights.Do(marketID.String(), func() (interface{}, error) {
		market, err := s.repo.GetMarketByID(ctx, marketID)
		if err != nil {
			return nil, wrapNotFound(err, "market %s", marketID)
		}
		if market.OracleSource == nil {
			return nil, fmt.Errorf("%w: market %s has no oracle source", ErrInvariant, marketID)
		}

		fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()

		result, err := s.oracle.Fetch(fetchCtx, *market.OracleSource)
		if err != nil {
			// A hung or failed collaborator is handled like a
			// conflict: the market goes to manual adjudication.
			logrus.WithError(err).WithField("market_id", marketID).Warn("oracle fetch failed")
			result = *market.OracleSource
			result.Status = models.OracleStatusRejected
			result.ReportedValue = nil
		}
		return nil, s.CompleteResolution(ctx, marketID, attempt, result)
	})
	return err
}

// CompleteResolution applies an oracle callback. The callback is discarded
// when the market has already left FETCHING_ORACLES or a newer attempt has
// superseded it. A clean verified read resolves the market; anything else
// opens the dispute window.
func (s *LifecycleService) CompleteResolution(ctx context.Context, marketID uuid.UUID, attempt int, result models.OracleSource) error {
	var market *models.Market

	err := s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		market, err = getMarketTx(tx, marketID)
		if err != nil {
			return err
		}
		if market.Status != models.MarketStatusFetchingOracles || market.ResolutionAttempt != attempt {
			logrus.WithFields(logrus.Fields{
				"market_id": marketID,
				"attempt":   attempt,
				"current":   market.ResolutionAttempt,
				"status":    market.Status,
			}).Debug("discarding stale oracle callback")
			market = nil
			return nil
		}

		result.UpdatedAt = time.Now()
		if err := tx.Save(&result).Error; err != nil {
			return fmt.Errorf("failed to record oracle result: %w", err)
		}
		market.OracleSource = &result

		verified := result.Status == models.OracleStatusVerified && result.ReportedValue != nil
		if verified && !DetectAnomalies([]models.OracleSource{result}) {
			return s.resolveLocked(tx, market, *result.ReportedValue,
				fmt.Sprintf("Oracle %s verified outcome %s", result.Name, *result.ReportedValue))
		}

		market.Status = models.MarketStatusDisputeWindow
		market.UpdatedAt = time.Now()
		if err := tx.Save(market).Error; err != nil {
			return fmt.Errorf("failed to open dispute window: %w", err)
		}
		return appendHistory(tx, marketID, models.StepDispute,
			fmt.Sprintf("Oracle returned %s; awaiting manual resolution", result.Status))
	})
	if err != nil {
		return err
	}
	if market != nil {
		s.publisher.PublishMarket(market)
		if market.Status == models.MarketStatusResolved {
			s.notifyResolved(ctx, market)
		}
	}
	return nil
}

// Resolve applies a manual resolution out of the dispute window.
func (s *LifecycleService) Resolve(ctx context.Context, marketID uuid.UUID, outcome models.Outcome) (*models.Market, error) {
	if !outcome.Valid() {
		return nil, fmt.Errorf("%w: unknown outcome %q", ErrValidation, outcome)
	}

	var market *models.Market
	err := s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		market, err = getMarketTx(tx, marketID)
		if err != nil {
			return err
		}
		if market.Status != models.MarketStatusDisputeWindow {
			return fmt.Errorf("%w: market %s is %s, manual resolution requires %s",
				ErrValidation, marketID, market.Status, models.MarketStatusDisputeWindow)
		}
		return s.resolveLocked(tx, market, outcome, fmt.Sprintf("Manually resolved to %s", outcome))
	})
	if err != nil {
		return nil, err
	}

	s.publisher.PublishMarket(market)
	s.notifyResolved(ctx, market)
	return market, nil
}

// notifyResolved emits a resolution notification to every position holder
// after the resolving transaction commits.
func (s *LifecycleService) notifyResolved(ctx context.Context, market *models.Market) {
	holders, err := s.repo.ListMarketHolders(ctx, market.ID)
	if err != nil {
		logrus.WithError(err).WithField("market_id", market.ID).Warn("failed to list holders for notification")
		return
	}
	outcome := models.Outcome("")
	if market.ResolutionValue != nil {
		outcome = *market.ResolutionValue
	}
	for _, userID := range holders {
		notifyUser(ctx, s.repo, s.publisher, userID, "Market Resolved",
			fmt.Sprintf("%q resolved %s", market.Title, outcome), models.NotifyInfo)
	}
}

// resolveLocked finalizes a market inside an open transaction: terminal
// status, resolution value, audit entry, and portfolio refresh for every
// holder (resolved positions drop out of live valuation).
func (s *LifecycleService) resolveLocked(tx *gorm.DB, market *models.Market, outcome models.Outcome, details string) error {
	now := time.Now()
	market.Status = models.MarketStatusResolved
	market.ResolutionValue = &outcome
	market.ResolvedAt = &now
	market.UpdatedAt = now
	if err := tx.Save(market).Error; err != nil {
		return fmt.Errorf("failed to resolve market: %w", err)
	}
	if err := appendHistory(tx, market.ID, models.StepResolved, details); err != nil {
		return err
	}
	return s.portfolio.RefreshHolders(tx, market.ID)
}

// getMarketTx reads the full market record inside an open transaction.
func getMarketTx(tx *gorm.DB, marketID uuid.UUID) (*models.Market, error) {
	var market models.Market
	if err := tx.Preload("OracleSource").Where("id = ?", marketID).First(&market).Error; err != nil {
		return nil, wrapNotFound(err, "market %s", marketID)
	}
	return &market, nil
}

// appendHistory inserts one immutable audit-trail entry.
func appendHistory(tx *gorm.DB, marketID uuid.UUID, step, details string) error {
	entry := models.ResolutionStep{
		ID:        uuid.New(),
		MarketID:  marketID,
		Step:      step,
		Details:   details,
		Timestamp: time.Now(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to append resolution history: %w", err)
	}
	return nil
}

func wrapNotFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}
