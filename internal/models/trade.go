package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trade type constants. SELL is reserved; only BUY is supported.
type TradeType string

const (
	TradeTypeBuy  TradeType = "BUY"
	TradeTypeSell TradeType = "SELL"
)

// Trade is a single executed buy against a market's AMM pool. Immutable
// once created; a user's open position in a market is the aggregate of
// their trades against it.
type Trade struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	MarketID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"market_id"`
	UserID    string          `gorm:"size:255;not null;index" json:"user_id"`
	Outcome   Outcome         `gorm:"size:10;not null" json:"outcome"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	Shares    decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"shares"`
	Price     decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"price"`
	TradeType TradeType       `gorm:"size:10;not null;default:BUY" json:"trade_type"`
	CreatedAt time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Trade) TableName() string {
	return "trades"
}
