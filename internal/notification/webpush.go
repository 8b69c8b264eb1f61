package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"slot-booking-backend/internal/model"
	"slot-booking-backend/internal/store"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(ctx context.Context, payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(ctx context.Context, payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotificationWithContext(ctx, payload, sub, options)
}

// WebPushChannel alerts every subscribed operator device about a new reservation.
type WebPushChannel struct {
	subs    store.Subscriptions
	options *webpush.Options
	sender  NotificationSender
	log     *zap.Logger
}

// NewWebPushChannel creates the operator push channel.
func NewWebPushChannel(subs store.Subscriptions, options *webpush.Options, log *zap.Logger) *WebPushChannel {
	if log == nil {
		log = zap.NewNop()
	}
	return &WebPushChannel{
		subs:    subs,
		options: options,
		sender:  &WebPushSender{},
		log:     log.Named("webpush"),
	}
}

func (c *WebPushChannel) Name() string { return "webpush" }

type pushPayload struct {
	Title         string `json:"title"`
	Body          string `json:"body"`
	ReservationID string `json:"reservation_id"`
}

// Send pushes to every subscription. Expired subscriptions (410) are deleted.
// It fails only when no device received the notification.
func (c *WebPushChannel) Send(ctx context.Context, r model.Reservation) error {
	subscriptions, err := c.subs.ListSubscriptions(ctx)
	if err != nil {
		return err
	}
	if len(subscriptions) == 0 {
		return nil
	}

	payload, err := json.Marshal(pushPayload{
		Title:         "Novo agendamento",
		Body:          ownerSummary(r),
		ReservationID: r.ID,
	})
	if err != nil {
		return err
	}

	var errs []error
	delivered := 0
	for _, sub := range subscriptions {
		if err := c.sendOne(ctx, sub, payload); err != nil {
			errs = append(errs, err)
			continue
		}
		delivered++
	}
	if delivered == 0 && len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (c *WebPushChannel) sendOne(ctx context.Context, sub model.PushSubscription, payload []byte) error {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := c.sender.Send(ctx, payload, wpSub, c.options)
	if err != nil {
		return fmt.Errorf("push to %s: %w", sub.Endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone:
		c.log.Info("subscription expired; deleting", zap.String("endpoint", sub.Endpoint))
		if err := c.subs.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			c.log.Warn("failed to delete expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
		return fmt.Errorf("push to %s: subscription expired", sub.Endpoint)
	case resp.StatusCode >= 400:
		return fmt.Errorf("push to %s: status %d", sub.Endpoint, resp.StatusCode)
	}
	return nil
}
