package notification

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"slot-booking-backend/internal/metrics"
	"slot-booking-backend/internal/model"
)

// WorkerPool manages a pool of workers for sending confirmations off the request path.
type WorkerPool struct {
	size       int
	jobs       chan model.Reservation
	dispatcher *Dispatcher
	log        *zap.Logger
	metrics    *metrics.BookingMetrics
	onResult   func(model.Reservation, []Outcome)
	wg         sync.WaitGroup
}

// NewWorkerPool creates a new worker pool with a bounded queue.
func NewWorkerPool(size, queueSize int, d *Dispatcher, log *zap.Logger, m *metrics.BookingMetrics) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	if queueSize <= 0 {
		queueSize = size
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &WorkerPool{
		size:       size,
		jobs:       make(chan model.Reservation, queueSize),
		dispatcher: d,
		log:        log.Named("workers"),
		metrics:    m,
	}
}

// OnResult registers a callback invoked after each reservation is dispatched.
// It must be set before Start.
func (wp *WorkerPool) OnResult(f func(model.Reservation, []Outcome)) {
	wp.onResult = f
}

// Start launches the worker goroutines. They stop when ctx is cancelled.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// Wait blocks until every worker has returned.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	wp.log.Debug("worker started", zap.Int("worker", id))
	for {
		select {
		case r := <-wp.jobs:
			wp.metrics.SetQueueDepth(len(wp.jobs))
			wp.log.Debug("worker processing reservation", zap.Int("worker", id), zap.String("reservation_id", r.ID))
			outcomes := wp.dispatcher.Dispatch(ctx, r)
			if wp.onResult != nil {
				wp.onResult(r, outcomes)
			}
		case <-ctx.Done():
			if n := len(wp.jobs); n > 0 && id == 0 {
				wp.log.Warn("shutting down with undelivered notifications", zap.Int("pending", n))
			}
			wp.log.Debug("worker shutting down", zap.Int("worker", id))
			return
		}
	}
}

// Enqueue hands a reservation to the pool without blocking.
// It returns false and drops the job when the queue is full.
func (wp *WorkerPool) Enqueue(r model.Reservation) bool {
	select {
	case wp.jobs <- r:
		wp.metrics.SetQueueDepth(len(wp.jobs))
		return true
	default:
		wp.log.Warn("notification queue full; dropping", zap.String("reservation_id", r.ID))
		for _, name := range wp.dispatcher.Channels() {
			wp.metrics.ObserveDelivery(name, metrics.OutcomeDropped)
		}
		return false
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan model.Reservation {
	return wp.jobs
}
