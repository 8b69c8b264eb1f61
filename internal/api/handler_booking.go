package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"slot-booking-backend/internal/booking"
)

type bookRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Date  string `json:"date"`
	Time  string `json:"time"`
	Note  string `json:"note"`
}

// PostBooking claims a slot for the requester.
func (h *Handler) PostBooking(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	r, err := h.booking.ClaimSlot(c.Request.Context(), booking.Request{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Date:  req.Date,
		Time:  req.Time,
		Note:  req.Note,
	})
	if err != nil {
		h.writeClaimError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"message":     "booking confirmed",
		"reservation": r,
	})
}
