package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lottoplay/housie-backend/housie"
	"github.com/lottoplay/housie-backend/services"
	"github.com/lottoplay/housie-backend/utils/logger"
)

// respondError maps service failures to HTTP statuses. Every known
// failure is a structured 4xx; only the unexpected becomes a 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrRoomNotFound),
		errors.Is(err, services.ErrTicketNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrDuplicateClaim):
		// Losing the claim race is normal play, not a defect.
		logger.Debugf("duplicate claim: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})

	case errors.Is(err, services.ErrInvalidClaim):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})

	case errors.Is(err, services.ErrAlreadyActive),
		errors.Is(err, services.ErrGameNotActive),
		errors.Is(err, services.ErrNoActiveGame),
		errors.Is(err, services.ErrRoomClosed),
		errors.Is(err, services.ErrRoomFull),
		errors.Is(err, services.ErrAlreadyJoined),
		errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, housie.ErrExhausted):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		logger.Errorf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}
