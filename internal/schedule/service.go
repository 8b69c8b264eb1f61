package schedule

import (
	"context"
	"time"

	"go.uber.org/zap"

	"slot-booking-backend/internal/store"
)

// Source supplies the published schedule.
type Source interface {
	Load(ctx context.Context) (store.Schedule, error)
}

// Result summarizes one sync.
type Result struct {
	Dates    int
	Slots    int
	Affected int64
}

// Service keeps the inventory in line with the published schedule.
type Service struct {
	source    Source
	inventory store.Inventory
	interval  time.Duration
	onStart   bool
	onSync    func()
	log       *zap.Logger
}

// NewService creates a sync service. interval <= 0 disables periodic syncs.
func NewService(source Source, inventory store.Inventory, interval time.Duration, syncOnStart bool, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		source:    source,
		inventory: inventory,
		interval:  interval,
		onStart:   syncOnStart,
		log:       log.Named("schedule"),
	}
}

// OnSync registers a callback run after every successful sync.
func (s *Service) OnSync(f func()) {
	s.onSync = f
}

// SyncOnce seeds new slots and recomputes every availability flag from the ledger.
// Already reserved slots stay unavailable whatever the schedule says.
func (s *Service) SyncOnce(ctx context.Context) (Result, error) {
	sched, err := s.source.Load(ctx)
	if err != nil {
		s.log.Error("failed to load schedule", zap.Error(err))
		return Result{}, err
	}

	affected, err := s.inventory.SeedSlots(ctx, sched)
	if err != nil {
		s.log.Error("failed to seed slots", zap.Error(err))
		return Result{}, err
	}
	if err := s.inventory.RebuildFlags(ctx); err != nil {
		s.log.Error("failed to rebuild availability flags", zap.Error(err))
		return Result{}, err
	}

	res := Result{Dates: len(sched), Slots: sched.Len(), Affected: affected}
	s.log.Info("schedule synced",
		zap.Int("dates", res.Dates),
		zap.Int("slots", res.Slots),
		zap.Int64("rows_affected", res.Affected))

	if s.onSync != nil {
		s.onSync()
	}
	return res, nil
}

// Run syncs on start if configured, then every interval until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	if s.onStart {
		s.SyncOnce(ctx)
	}
	if s.interval <= 0 {
		s.log.Info("periodic schedule sync disabled")
		return
	}

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("schedule sync shutting down")
			return
		case <-timer.C:
			s.SyncOnce(ctx)
			timer.Reset(s.interval)
		}
	}
}
