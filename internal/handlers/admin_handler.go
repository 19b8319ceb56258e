package handlers

import (
	"net/http"

	"omnioracle/internal/services"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	markets *services.MarketService
}

func NewAdminHandler(markets *services.MarketService) *AdminHandler {
	return &AdminHandler{markets: markets}
}

// Reset clears all persisted state and reseeds the demo fixtures
// POST /api/admin/reset
func (h *AdminHandler) Reset(c *gin.Context) {
	if err := h.markets.Reset(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
