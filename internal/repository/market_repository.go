package repository

import (
	"context"
	"time"

	"omnioracle/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository wraps all database access for markets, trades, users and the
// resolution audit trail. Every mutation replaces the full record; no
// field-level patching is exposed to callers.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB exposes the underlying handle for transaction composition.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// CreateMarket creates a market together with its oracle source.
func (r *Repository) CreateMarket(ctx context.Context, market *models.Market) error {
	return r.db.WithContext(ctx).Create(market).Error
}

// GetMarketByID retrieves a market with its oracle source and audit trail.
func (r *Repository) GetMarketByID(ctx context.Context, marketID uuid.UUID) (*models.Market, error) {
	var market models.Market
	err := r.db.WithContext(ctx).
		Preload("OracleSource").
		Preload("ResolutionHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp ASC")
		}).
		Where("id = ?", marketID).
		First(&market).Error
	if err != nil {
		return nil, err
	}
	return &market, nil
}

// ListMarkets retrieves all markets, newest first.
func (r *Repository) ListMarkets(ctx context.Context) ([]models.Market, error) {
	var markets []models.Market
	err := r.db.WithContext(ctx).
		Preload("OracleSource").
		Preload("ResolutionHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp ASC")
		}).
		Order("created_at DESC").
		Find(&markets).Error
	if err != nil {
		return nil, err
	}
	return markets, nil
}

// ListMarketsByStatus retrieves markets in a given status.
func (r *Repository) ListMarketsByStatus(ctx context.Context, status models.MarketStatus) ([]models.Market, error) {
	var markets []models.Market
	err := r.db.WithContext(ctx).
		Preload("OracleSource").
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&markets).Error
	if err != nil {
		return nil, err
	}
	return markets, nil
}

// ListExpiredActiveMarkets retrieves ACTIVE markets whose end date has
// passed as of now.
func (r *Repository) ListExpiredActiveMarkets(ctx context.Context, now time.Time) ([]models.Market, error) {
	var markets []models.Market
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_date <= ?", models.MarketStatusActive, now).
		Find(&markets).Error
	if err != nil {
		return nil, err
	}
	return markets, nil
}

// CreateTrade appends an immutable trade record.
func (r *Repository) CreateTrade(ctx context.Context, trade *models.Trade) error {
	return r.db.WithContext(ctx).Create(trade).Error
}

// ListTrades retrieves all trades, newest first.
func (r *Repository) ListTrades(ctx context.Context) ([]models.Trade, error) {
	var trades []models.Trade
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&trades).Error
	if err != nil {
		return nil, err
	}
	return trades, nil
}

// ListTradesByUser retrieves a user's trades, newest first.
func (r *Repository) ListTradesByUser(ctx context.Context, userID string) ([]models.Trade, error) {
	var trades []models.Trade
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&trades).Error
	if err != nil {
		return nil, err
	}
	return trades, nil
}

// ListMarketHolders retrieves the distinct user ids holding a position in
// the given market.
func (r *Repository) ListMarketHolders(ctx context.Context, marketID uuid.UUID) ([]string, error) {
	var userIDs []string
	err := r.db.WithContext(ctx).
		Model(&models.Trade{}).
		Where("market_id = ?", marketID).
		Distinct("user_id").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}

// GetUserByID retrieves a user profile.
func (r *Repository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SaveUser writes the full user record.
func (r *Repository) SaveUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// CreateNotification appends a notification record.
func (r *Repository) CreateNotification(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// ListNotifications retrieves a user's notifications, newest first.
func (r *Repository) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkNotificationRead flags a single notification as read.
func (r *Repository) MarkNotificationRead(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Update("read", true).Error
}

// Reset clears all persisted state. Administrative only.
func (r *Repository) Reset(ctx context.Context) error {
	tables := []interface{}{
		&models.Notification{},
		&models.Trade{},
		&models.ResolutionStep{},
		&models.OracleSource{},
		&models.Market{},
		&models.User{},
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			if err := tx.Where("1 = 1").Delete(table).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
