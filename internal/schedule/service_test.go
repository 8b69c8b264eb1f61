package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"slot-booking-backend/internal/db"
	"slot-booking-backend/internal/model"
	"slot-booking-backend/internal/store"
)

type staticSource struct {
	sched store.Schedule
	err   error
}

func (s staticSource) Load(context.Context) (store.Schedule, error) {
	return s.sched, s.err
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gormDB))
	return store.NewGormStore(gormDB)
}

func TestService_SyncOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	synced := 0
	svc := NewService(staticSource{sched: store.Schedule{"2025-06-10": {"09:00", "10:00"}}}, s, 0, false, nil)
	svc.OnSync(func() { synced++ })

	res, err := svc.SyncOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Dates)
	assert.Equal(t, 2, res.Slots)
	assert.Equal(t, 1, synced)

	// A reservation made while the flag update was lost.
	require.NoError(t, s.Insert(ctx, &model.Reservation{
		ID: uuid.NewString(), Name: "Ana", Email: "ana@example.com", Phone: "5511987654321",
		Date: "2025-06-10", Time: "09:00", CreatedAt: time.Now(),
	}))

	// Re-syncing the same schedule must not bring the reserved slot back.
	_, err = svc.SyncOnce(ctx)
	require.NoError(t, err)

	slot, err := s.Lookup(ctx, "2025-06-10", "09:00")
	require.NoError(t, err)
	assert.False(t, slot.Available)

	avail, err := s.Availability(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00"}, avail["2025-06-10"])
	assert.Equal(t, 2, synced)
}

func TestService_SyncOnceSourceError(t *testing.T) {
	s := newTestStore(t)
	svc := NewService(staticSource{err: errors.New("unreachable")}, s, 0, false, nil)
	svc.OnSync(func() { t.Fatal("OnSync must not run after a failed sync") })

	_, err := svc.SyncOnce(context.Background())
	assert.Error(t, err)
}

func TestService_RunStopsOnCancel(t *testing.T) {
	s := newTestStore(t)
	synced := make(chan struct{}, 10)
	svc := NewService(staticSource{sched: store.Schedule{"2025-06-10": {"09:00"}}}, s, 10*time.Millisecond, true, nil)
	svc.OnSync(func() { synced <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-synced:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for sync")
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
