package api

import (
	"context"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"slot-booking-backend/internal/booking"
	"slot-booking-backend/internal/model"
	"slot-booking-backend/internal/store"
)

// Claimer books a slot. It is implemented by *booking.Service.
type Claimer interface {
	ClaimSlot(ctx context.Context, req booking.Request) (*model.Reservation, error)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	booking Claimer
	webpush *webpush.Options
	log     *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, b Claimer, webpushOptions *webpush.Options, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		store:   s,
		booking: b,
		webpush: webpushOptions,
		log:     log.Named("api"),
	}
}
