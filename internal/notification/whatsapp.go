package notification

import (
	"context"
	"errors"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"slot-booking-backend/config"
	"slot-booking-backend/internal/model"
	"slot-booking-backend/internal/parse"
)

// MessageCreator is the part of the Twilio API used to send WhatsApp messages.
type MessageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// WhatsAppChannel sends the confirmation to the requester's phone through Twilio.
type WhatsAppChannel struct {
	api  MessageCreator
	from string
}

// NewWhatsAppChannel builds a channel backed by the Twilio REST client.
func NewWhatsAppChannel(cfg config.WhatsAppConfig) *WhatsAppChannel {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &WhatsAppChannel{api: client.Api, from: cfg.From}
}

func (c *WhatsAppChannel) Name() string { return "whatsapp" }

func (c *WhatsAppChannel) Send(ctx context.Context, r model.Reservation) error {
	if r.Phone == "" {
		return errors.New("reservation has no phone number")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(parse.WhatsAppAddress(r.Phone))
	params.SetFrom(parse.WhatsAppAddress(c.from))
	params.SetBody(confirmationText(r))

	_, err := c.api.CreateMessage(params)
	return err
}
