package notification

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slot-booking-backend/internal/model"
)

type stubChannel struct {
	name  string
	err   error
	delay time.Duration
	panic bool
	calls atomic.Int32
}

func (s *stubChannel) Name() string { return s.name }

func (s *stubChannel) Send(ctx context.Context, _ model.Reservation) error {
	s.calls.Add(1)
	if s.panic {
		panic("channel exploded")
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.err
}

func testReservation() model.Reservation {
	return model.Reservation{
		ID:    "res-1",
		Name:  "Ana",
		Email: "ana@example.com",
		Phone: "5511987654321",
		Date:  "2025-06-10",
		Time:  "09:00",
	}
}

func TestDispatcher_AttemptsEveryChannel(t *testing.T) {
	ok := &stubChannel{name: "whatsapp"}
	failing := &stubChannel{name: "email:customer", err: errors.New("smtp down")}
	panicking := &stubChannel{name: "email:owner", panic: true}

	d := NewDispatcher([]Channel{ok, failing, panicking}, time.Second, nil, nil)
	outcomes := d.Dispatch(context.Background(), testReservation())

	require.Len(t, outcomes, 3)
	assert.Equal(t, Outcome{Channel: "whatsapp", Status: StatusSent}, outcomes[0])

	assert.Equal(t, "email:customer", outcomes[1].Channel)
	assert.Equal(t, StatusFailed, outcomes[1].Status)
	assert.EqualError(t, outcomes[1].Err, "smtp down")

	assert.Equal(t, "email:owner", outcomes[2].Channel)
	assert.Equal(t, StatusFailed, outcomes[2].Status)
	assert.Contains(t, outcomes[2].Err.Error(), "panic")

	for _, ch := range []*stubChannel{ok, failing, panicking} {
		assert.Equal(t, int32(1), ch.calls.Load(), ch.name)
	}
}

func TestDispatcher_TimeoutBoundsSlowChannel(t *testing.T) {
	slow := &stubChannel{name: "slow", delay: time.Minute}
	fast := &stubChannel{name: "fast"}

	d := NewDispatcher([]Channel{slow, fast}, 50*time.Millisecond, nil, nil)

	start := time.Now()
	outcomes := d.Dispatch(context.Background(), testReservation())
	assert.Less(t, time.Since(start), 5*time.Second)

	assert.Equal(t, StatusFailed, outcomes[0].Status)
	assert.ErrorIs(t, outcomes[0].Err, context.DeadlineExceeded)
	assert.Equal(t, StatusSent, outcomes[1].Status)
}

func TestDispatcher_Channels(t *testing.T) {
	d := NewDispatcher([]Channel{&stubChannel{name: "a"}, &stubChannel{name: "b"}}, 0, nil, nil)
	assert.Equal(t, []string{"a", "b"}, d.Channels())
}

func TestDisplayDate(t *testing.T) {
	assert.Equal(t, "10/06/2025", displayDate("2025-06-10"))
	assert.Equal(t, "amanhã", displayDate("amanhã"))
	assert.Equal(t, "Olá Ana! Seu agendamento foi confirmado em 10/06/2025 às 09:00.", confirmationText(testReservation()))
}
