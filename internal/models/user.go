package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a trader profile. Balance is spendable notional and is
// only mutated by trade execution and reset; PortfolioValue is derived by
// the portfolio valuator and never written by trade logic directly.
type User struct {
	ID             string          `gorm:"size:255;primaryKey" json:"id"`
	Username       string          `gorm:"size:255;not null" json:"username"`
	WalletAddress  *string         `gorm:"size:255;uniqueIndex" json:"wallet_address,omitempty"`
	IsConnected    bool            `gorm:"not null;default:false" json:"is_connected"`
	Balance        decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"balance"`
	Reputation     int             `gorm:"not null;default:0" json:"reputation"`
	PortfolioValue decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"portfolio_value"`
	CreatedAt      time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Notification is a single-shot user-facing event record (trade executed,
// market resolved, validation failure). Pushed over the websocket hub and
// kept for the notification center.
type Notification struct {
	ID        string           `gorm:"size:255;primaryKey" json:"id"`
	UserID    string           `gorm:"size:255;not null;index" json:"user_id"`
	Title     string           `gorm:"size:255;not null" json:"title"`
	Message   string           `gorm:"type:text" json:"message"`
	Type      NotificationType `gorm:"size:20;not null" json:"type"`
	Read      bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

type NotificationType string

const (
	NotifyInfo    NotificationType = "INFO"
	NotifySuccess NotificationType = "SUCCESS"
	NotifyWarning NotificationType = "WARNING"
	NotifyError   NotificationType = "ERROR"
)
