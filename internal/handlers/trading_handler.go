package handlers

import (
	"net/http"

	"omnioracle/internal/auth"
	"omnioracle/internal/models"
	"omnioracle/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TradingHandler struct {
	markets *services.MarketService
}

func NewTradingHandler(markets *services.MarketService) *TradingHandler {
	return &TradingHandler{markets: markets}
}

// Trade executes a buy against a market
// POST /api/markets/:id/trades
func (h *TradingHandler) Trade(c *gin.Context) {
	marketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid market id"})
		return
	}

	var req models.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return
	}

	result, err := h.markets.ExecuteTrade(c.Request.Context(), marketID, userID, req.Outcome, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetTrades lists all trades
// GET /api/trades
func (h *TradingHandler) GetTrades(c *gin.Context) {
	trades, err := h.markets.ListTrades(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"trades": trades,
		"total":  len(trades),
	})
}
