package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetAvailability returns every published date with its open time labels.
func (h *Handler) GetAvailability(c *gin.Context) {
	sched, err := h.store.Availability(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list availability", zap.Error(err))
		fail(c, http.StatusServiceUnavailable, "availability is temporarily unavailable")
		return
	}
	c.JSON(http.StatusOK, sched)
}

// GetDates returns the published dates and their bounds for date pickers.
func (h *Handler) GetDates(c *gin.Context) {
	dates, err := h.store.ListDates(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list dates", zap.Error(err))
		fail(c, http.StatusServiceUnavailable, "dates are temporarily unavailable")
		return
	}

	resp := gin.H{"dates": dates, "min": "", "max": ""}
	if len(dates) > 0 {
		resp["min"] = dates[0]
		resp["max"] = dates[len(dates)-1]
	} else {
		resp["dates"] = []string{}
	}
	c.JSON(http.StatusOK, resp)
}
