package models

import (
	"time"

	"github.com/google/uuid"
)

// Oracle verification status constants
type OracleStatus string

const (
	OracleStatusPending  OracleStatus = "PENDING"
	OracleStatusVerified OracleStatus = "VERIFIED"
	OracleStatusConflict OracleStatus = "CONFLICT"
	OracleStatusRejected OracleStatus = "REJECTED"
)

// Oracle source type constants
type OracleSourceType string

const (
	OracleTypeAPI            OracleSourceType = "API"
	OracleTypeHumanValidator OracleSourceType = "HUMAN_VALIDATOR"
	OracleTypeAIAnalysis     OracleSourceType = "AI_ANALYSIS"
)

// Valid reports whether the source type is one of the supported kinds.
func (t OracleSourceType) Valid() bool {
	switch t {
	case OracleTypeAPI, OracleTypeHumanValidator, OracleTypeAIAnalysis:
		return true
	}
	return false
}

// OracleSource describes where a market's real-world outcome is read from.
// URL is only meaningful for API sources; human validators and AI analysis
// carry no endpoint. Created PENDING at market creation and written exactly
// once per resolution attempt.
type OracleSource struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	MarketID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex" json:"market_id"`
	Name          string           `gorm:"size:255;not null" json:"name"`
	SourceType    OracleSourceType `gorm:"size:50;not null" json:"source_type"`
	URL           *string          `gorm:"size:500" json:"url,omitempty"`
	Status        OracleStatus     `gorm:"size:50;not null;default:PENDING" json:"status"`
	ReportedValue *Outcome         `gorm:"size:10" json:"reported_value,omitempty"`
	FetchedAt     *time.Time       `json:"fetched_at,omitempty"`
	CreatedAt     time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (OracleSource) TableName() string {
	return "oracle_sources"
}
