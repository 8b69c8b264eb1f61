package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"slot-booking-backend/internal/metrics"
	"slot-booking-backend/internal/model"
)

// Channel delivers a confirmation for a committed reservation.
type Channel interface {
	Name() string
	Send(ctx context.Context, r model.Reservation) error
}

// Status of a single delivery attempt.
type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// Outcome records what happened on one channel.
type Outcome struct {
	Channel string
	Status  Status
	Err     error
}

// Dispatcher fans a reservation out to every configured channel.
type Dispatcher struct {
	channels []Channel
	timeout  time.Duration
	log      *zap.Logger
	metrics  *metrics.BookingMetrics
}

// NewDispatcher creates a dispatcher. A zero timeout leaves channels bounded only by ctx.
func NewDispatcher(channels []Channel, timeout time.Duration, log *zap.Logger, m *metrics.BookingMetrics) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		channels: channels,
		timeout:  timeout,
		log:      log.Named("notification"),
		metrics:  m,
	}
}

// Channels returns the names of the configured channels.
func (d *Dispatcher) Channels() []string {
	names := make([]string, len(d.channels))
	for i, ch := range d.channels {
		names[i] = ch.Name()
	}
	return names
}

// Dispatch attempts every channel concurrently and waits for all of them.
// Outcomes are returned in channel order. A failing channel never affects the others.
func (d *Dispatcher) Dispatch(ctx context.Context, r model.Reservation) []Outcome {
	outcomes := make([]Outcome, len(d.channels))

	var wg sync.WaitGroup
	for i, ch := range d.channels {
		wg.Add(1)
		go func(i int, ch Channel) {
			defer wg.Done()
			outcomes[i] = d.deliver(ctx, ch, r)
		}(i, ch)
	}
	wg.Wait()

	for _, o := range outcomes {
		fields := []zap.Field{
			zap.String("reservation_id", r.ID),
			zap.String("channel", o.Channel),
		}
		if o.Err != nil {
			d.log.Warn("notification failed", append(fields, zap.Error(o.Err))...)
			d.metrics.ObserveDelivery(o.Channel, metrics.OutcomeFailed)
			continue
		}
		d.log.Info("notification sent", fields...)
		d.metrics.ObserveDelivery(o.Channel, metrics.OutcomeSent)
	}
	return outcomes
}

func (d *Dispatcher) deliver(ctx context.Context, ch Channel, r model.Reservation) Outcome {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fmt.Errorf("panic: %v", p)
			}
		}()
		done <- ch.Send(ctx, r)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = fmt.Errorf("gave up waiting: %w", ctx.Err())
	}

	if err != nil {
		return Outcome{Channel: ch.Name(), Status: StatusFailed, Err: err}
	}
	return Outcome{Channel: ch.Name(), Status: StatusSent}
}
