package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---- Request/Response DTOs ----

// CreateMarketRequest is the structured market draft fed into createMarket.
// Drafts usually come from the AI prompt-to-market generator, which is an
// external collaborator; the backend only validates the result.
type CreateMarketRequest struct {
	Title              string  `json:"title" binding:"required"`
	Description        string  `json:"description"`
	Category           string  `json:"category" binding:"required"`
	EndDate            string  `json:"end_date" binding:"required"` // RFC 3339
	InitialProbability float64 `json:"initial_probability" binding:"required"`
	Liquidity          float64 `json:"liquidity"`
	ResolutionCriteria string  `json:"resolution_criteria" binding:"required"`
	DisputeWindowHours int     `json:"dispute_window_hours"`
	OracleName         string  `json:"oracle_name" binding:"required"`
	OracleType         string  `json:"oracle_type"`
	OracleURL          string  `json:"oracle_url"`
}

// TradeRequest is the request body for executing a buy.
type TradeRequest struct {
	Outcome Outcome `json:"outcome" binding:"required"`
	Amount  float64 `json:"amount" binding:"required"`
}

// TradeResponse echoes the executed trade back to the initiating caller.
type TradeResponse struct {
	TradeID        string          `json:"trade_id"`
	MarketID       string          `json:"market_id"`
	Outcome        Outcome         `json:"outcome"`
	Amount         decimal.Decimal `json:"amount"`
	Shares         decimal.Decimal `json:"shares"`
	Price          decimal.Decimal `json:"price"`
	Probabilities  [2]float64      `json:"probabilities"`
	Balance        decimal.Decimal `json:"balance"`
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
}

// UpdateStatusRequest is the request body for an administrative transition.
type UpdateStatusRequest struct {
	Status MarketStatus `json:"status" binding:"required"`
}

// ResolveRequest is the request body for manual resolution out of the
// dispute window.
type ResolveRequest struct {
	Outcome Outcome `json:"outcome" binding:"required"`
}

// WalletConnectRequest is the request body for the wallet-connect stub.
// No signature verification happens here.
type WalletConnectRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
}

// MarketResponse is the API representation of a market.
type MarketResponse struct {
	ID                 string           `json:"id"`
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	Category           string           `json:"category"`
	EndDate            time.Time        `json:"end_date"`
	Status             MarketStatus     `json:"status"`
	Outcomes           [2]Outcome       `json:"outcomes"`
	Probabilities      [2]float64       `json:"probabilities"`
	Volume             decimal.Decimal  `json:"volume"`
	Liquidity          decimal.Decimal  `json:"liquidity"`
	PoolBalance        map[Outcome]decimal.Decimal `json:"pool_balance"`
	OracleSource       *OracleSource    `json:"oracle_source,omitempty"`
	ResolutionCriteria string           `json:"resolution_criteria"`
	DisputeWindowHours int              `json:"dispute_window_hours"`
	ResolutionValue    *Outcome         `json:"resolution_value,omitempty"`
	ResolutionHistory  []ResolutionStep `json:"resolution_history"`
	CreatedAt          time.Time        `json:"created_at"`
}

// NewMarketResponse builds the API representation of a market.
func NewMarketResponse(m *Market) *MarketResponse {
	history := m.ResolutionHistory
	if history == nil {
		history = []ResolutionStep{}
	}
	return &MarketResponse{
		ID:            m.ID.String(),
		Title:         m.Title,
		Description:   m.Description,
		Category:      m.Category,
		EndDate:       m.EndDate,
		Status:        m.Status,
		Outcomes:      [2]Outcome{OutcomeYes, OutcomeNo},
		Probabilities: m.Probabilities(),
		Volume:        m.Volume,
		Liquidity:     m.Liquidity,
		PoolBalance: map[Outcome]decimal.Decimal{
			OutcomeYes: m.YesPool,
			OutcomeNo:  m.NoPool,
		},
		OracleSource:       m.OracleSource,
		ResolutionCriteria: m.ResolutionCriteria,
		DisputeWindowHours: m.DisputeWindowHours,
		ResolutionValue:    m.ResolutionValue,
		ResolutionHistory:  history,
		CreatedAt:          m.CreatedAt,
	}
}
