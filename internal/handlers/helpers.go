package handlers

import (
	"errors"
	"net/http"

	"omnioracle/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError maps the service error taxonomy onto HTTP status codes.
// Validation failures and unknown ids are client errors; invariant
// violations and everything else are server errors.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvariant):
		logrus.WithError(err).Error("invariant violation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal invariant violation"})
	default:
		logrus.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
