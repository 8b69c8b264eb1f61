package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"slot-booking-backend/internal/model"
)

// Inventory is the advisory listing of published slots.
type Inventory interface {
	IsAvailable(ctx context.Context, date, time string) (bool, error)
	Lookup(ctx context.Context, date, time string) (*model.Slot, error)
	Remove(ctx context.Context, date, time string) error
	ListDates(ctx context.Context) ([]string, error)
	Availability(ctx context.Context) (Schedule, error)
	SeedSlots(ctx context.Context, schedule Schedule) (int64, error)
	RebuildFlags(ctx context.Context) error
}

// Ledger is the append-only record of confirmed reservations.
type Ledger interface {
	Insert(ctx context.Context, r *model.Reservation) error
	FindBySlot(ctx context.Context, date, time string) (*model.Reservation, error)
	Count(ctx context.Context) (int64, error)
}

// Subscriptions manages operator push endpoints.
type Subscriptions interface {
	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
}

// Store defines the interface for all database operations.
type Store interface {
	Inventory
	Ledger
	Subscriptions
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// reservedSlotFilter excludes slots that already have a ledger entry.
const reservedSlotFilter = "NOT EXISTS (SELECT 1 FROM reservations r WHERE r.slot_date = available_slots.slot_date AND r.slot_time = available_slots.slot_time)"

// --- Ledger ---

// Insert writes a reservation in a single INSERT. The unique index on (slot_date, slot_time)
// is the only arbiter between concurrent claims.
func (s *gormStore) Insert(ctx context.Context, r *model.Reservation) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateSlot
		}
		return fmt.Errorf("failed to insert reservation for %s %s: %w", r.Date, r.Time, err)
	}
	return nil
}

func (s *gormStore) FindBySlot(ctx context.Context, date, time string) (*model.Reservation, error) {
	var r model.Reservation
	err := s.db.WithContext(ctx).
		Where("slot_date = ? AND slot_time = ?", date, time).
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find reservation for %s %s: %w", date, time, err)
	}
	return &r, nil
}

func (s *gormStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Reservation{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return n, nil
}

// isDuplicateKey recognizes unique violations from every supported driver,
// with or without gorm's error translation enabled.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// --- Inventory ---

func (s *gormStore) Lookup(ctx context.Context, date, time string) (*model.Slot, error) {
	var slot model.Slot
	err := s.db.WithContext(ctx).
		Where("slot_date = ? AND slot_time = ?", date, time).
		First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up slot %s %s: %w", date, time, err)
	}
	return &slot, nil
}

func (s *gormStore) IsAvailable(ctx context.Context, date, time string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&model.Slot{}).
		Where("slot_date = ? AND slot_time = ? AND available = ?", date, time, true).
		Where(reservedSlotFilter).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check availability of %s %s: %w", date, time, err)
	}
	return n > 0, nil
}

// Remove clears the advisory flag. Calling it for an already cleared or unknown slot is a no-op.
func (s *gormStore) Remove(ctx context.Context, date, time string) error {
	err := s.db.WithContext(ctx).
		Model(&model.Slot{}).
		Where("slot_date = ? AND slot_time = ?", date, time).
		Update("available", false).Error
	if err != nil {
		return fmt.Errorf("failed to mark slot %s %s unavailable: %w", date, time, err)
	}
	return nil
}

func (s *gormStore) ListDates(ctx context.Context) ([]string, error) {
	var dates []string
	err := s.db.WithContext(ctx).
		Model(&model.Slot{}).
		Distinct("slot_date").
		Order("slot_date").
		Pluck("slot_date", &dates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list dates: %w", err)
	}
	return dates, nil
}

// Availability returns every published date with the labels that are neither
// flagged unavailable nor present in the ledger. Fully booked dates map to an empty list.
func (s *gormStore) Availability(ctx context.Context) (Schedule, error) {
	dates, err := s.ListDates(ctx)
	if err != nil {
		return nil, err
	}

	var slots []model.Slot
	err = s.db.WithContext(ctx).
		Where("available = ?", true).
		Where(reservedSlotFilter).
		Order("slot_date").Order("display_order").Order("slot_time").
		Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list available slots: %w", err)
	}

	out := make(Schedule, len(dates))
	for _, d := range dates {
		out[d] = []string{}
	}
	for _, slot := range slots {
		out[slot.Date] = append(out[slot.Date], slot.Time)
	}
	return out, nil
}

// SeedSlots inserts the published schedule. Existing slots keep their availability;
// only their display order follows the new schedule.
func (s *gormStore) SeedSlots(ctx context.Context, schedule Schedule) (int64, error) {
	var slots []model.Slot
	for _, date := range schedule.Dates() {
		for i, t := range schedule[date] {
			slots = append(slots, model.Slot{Date: date, Time: t, Position: i, Available: true})
		}
	}
	if len(slots) == 0 {
		return 0, nil
	}

	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_date"}, {Name: "slot_time"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_order"}),
	}).CreateInBatches(&slots, 200)
	if res.Error != nil {
		return 0, fmt.Errorf("batch upsert slots failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// RebuildFlags recomputes every advisory flag from the ledger.
func (s *gormStore) RebuildFlags(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Exec("UPDATE available_slots SET available = " + reservedSlotFilter).Error
	if err != nil {
		return fmt.Errorf("failed to rebuild availability flags: %w", err)
	}
	return nil
}

// --- Subscriptions ---

func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
	}).Create(sub).Error
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).First(&sub, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *gormStore) ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	return subs, nil
}
