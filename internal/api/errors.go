package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"slot-booking-backend/internal/booking"
)

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// writeClaimError maps claim failures onto the HTTP contract.
func (h *Handler) writeClaimError(c *gin.Context, err error) {
	var ve *booking.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": ve.Error(),
			"field":   ve.Field,
		})
	case errors.Is(err, booking.ErrConflict):
		fail(c, http.StatusConflict, "slot already taken")
	case booking.IsTransient(err):
		c.Header("Retry-After", "5")
		fail(c, http.StatusServiceUnavailable, "booking is temporarily unavailable, please try again")
	default:
		h.log.Error("unexpected claim error", zap.Error(err))
		fail(c, http.StatusInternalServerError, "internal error")
	}
}
