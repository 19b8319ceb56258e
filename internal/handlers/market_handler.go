package handlers

import (
	"net/http"

	"omnioracle/internal/auth"
	"omnioracle/internal/models"
	"omnioracle/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MarketHandler struct {
	markets   *services.MarketService
	lifecycle *services.LifecycleService
}

func NewMarketHandler(markets *services.MarketService, lifecycle *services.LifecycleService) *MarketHandler {
	return &MarketHandler{markets: markets, lifecycle: lifecycle}
}

// GetMarkets lists all markets
// GET /api/markets
func (h *MarketHandler) GetMarkets(c *gin.Context) {
	markets, err := h.markets.ListMarkets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]*models.MarketResponse, len(markets))
	for i := range markets {
		responses[i] = models.NewMarketResponse(&markets[i])
	}
	c.JSON(http.StatusOK, gin.H{
		"markets": responses,
		"total":   len(responses),
	})
}

// GetMarketByID retrieves one market
// GET /api/markets/:id
func (h *MarketHandler) GetMarketByID(c *gin.Context) {
	marketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid market id"})
		return
	}

	market, err := h.markets.GetMarket(c.Request.Context(), marketID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewMarketResponse(market))
}

// CreateMarket validates a market draft and creates it
// POST /api/markets
func (h *MarketHandler) CreateMarket(c *gin.Context) {
	var req models.CreateMarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creatorID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return
	}

	market, err := h.markets.CreateMarket(c.Request.Context(), creatorID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewMarketResponse(market))
}

// UpdateStatus applies an administrative lifecycle transition
// POST /api/markets/:id/status
func (h *MarketHandler) UpdateStatus(c *gin.Context) {
	marketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid market id"})
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	market, err := h.lifecycle.UpdateStatus(c.Request.Context(), marketID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewMarketResponse(market))
}

// ResolveMarket applies a manual resolution out of the dispute window
// POST /api/markets/:id/resolve
func (h *MarketHandler) ResolveMarket(c *gin.Context) {
	marketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid market id"})
		return
	}

	var req models.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	market, err := h.lifecycle.Resolve(c.Request.Context(), marketID, req.Outcome)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewMarketResponse(market))
}
