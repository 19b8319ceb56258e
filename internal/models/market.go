package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Market status constants
type MarketStatus string

const (
	MarketStatusActive          MarketStatus = "ACTIVE"
	MarketStatusLocked          MarketStatus = "LOCKED"
	MarketStatusFetchingOracles MarketStatus = "FETCHING_ORACLES"
	MarketStatusDisputeWindow   MarketStatus = "DISPUTE_WINDOW"
	MarketStatusResolved        MarketStatus = "RESOLVED"
	MarketStatusCancelled       MarketStatus = "CANCELLED"
)

// IsTerminal reports whether no further transitions or trades are accepted.
func (s MarketStatus) IsTerminal() bool {
	return s == MarketStatusResolved || s == MarketStatusCancelled
}

// Binary outcome constants
type Outcome string

const (
	OutcomeYes Outcome = "YES"
	OutcomeNo  Outcome = "NO"
)

// Valid reports whether the outcome is one of the two supported sides.
func (o Outcome) Valid() bool {
	return o == OutcomeYes || o == OutcomeNo
}

// Market represents a binary prediction market priced by the AMM engine.
//
// YesProbability and NoProbability always sum to 1 and each stays within
// [0.01, 0.99]; the pricing engine is the only writer of these fields.
type Market struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Title              string          `gorm:"size:500;not null" json:"title"`
	Description        string          `gorm:"type:text" json:"description"`
	Category           string          `gorm:"size:50;not null;index" json:"category"`
	EndDate            time.Time       `gorm:"not null" json:"end_date"`
	Status             MarketStatus    `gorm:"size:50;not null;default:ACTIVE;index" json:"status"`
	YesProbability     float64         `gorm:"not null" json:"yes_probability"`
	NoProbability      float64         `gorm:"not null" json:"no_probability"`
	Volume             decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"volume"`
	Liquidity          decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"liquidity"`
	YesPool            decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"yes_pool"`
	NoPool             decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"no_pool"`
	ResolutionCriteria string          `gorm:"type:text;not null" json:"resolution_criteria"`
	DisputeWindowHours int             `gorm:"not null;default:24" json:"dispute_window_hours"`
	ResolutionValue    *Outcome        `gorm:"size:10" json:"resolution_value,omitempty"`
	// ResolutionAttempt is bumped each time the market enters
	// FETCHING_ORACLES; oracle callbacks carrying an older attempt number
	// are discarded.
	ResolutionAttempt int              `gorm:"not null;default:0" json:"-"`
	CreatorID         string           `gorm:"size:255;not null" json:"creator_id"`
	OracleSource      *OracleSource    `gorm:"foreignKey:MarketID" json:"oracle_source,omitempty"`
	ResolutionHistory []ResolutionStep `gorm:"foreignKey:MarketID" json:"resolution_history,omitempty"`
	CreatedAt         time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	ResolvedAt        *time.Time       `json:"resolved_at,omitempty"`
}

func (Market) TableName() string {
	return "markets"
}

// Probabilities returns the [YES, NO] probability pair.
func (m *Market) Probabilities() [2]float64 {
	return [2]float64{m.YesProbability, m.NoProbability}
}

// Price returns the current execution price for one side.
func (m *Market) Price(outcome Outcome) float64 {
	if outcome == OutcomeYes {
		return m.YesProbability
	}
	return m.NoProbability
}

// ResolutionStep is one immutable entry of a market's audit trail. Rows are
// append-only: the lifecycle service inserts exactly one per transition and
// nothing ever updates or deletes them.
type ResolutionStep struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MarketID  uuid.UUID `gorm:"type:uuid;not null;index" json:"market_id"`
	Step      string    `gorm:"size:50;not null" json:"step"`
	Details   string    `gorm:"type:text" json:"details"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}

func (ResolutionStep) TableName() string {
	return "resolution_steps"
}

// Lifecycle step names recorded in the audit trail.
const (
	StepStatusChange = "STATUS_CHANGE"
	StepLock         = "LOCK"
	StepOracleFetch  = "ORACLE_FETCH"
	StepDispute      = "DISPUTE"
	StepResolved     = "RESOLVED"
	StepCancelled    = "CANCELLED"
)
