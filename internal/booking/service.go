package booking

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"slot-booking-backend/internal/metrics"
	"slot-booking-backend/internal/model"
	"slot-booking-backend/internal/parse"
	"slot-booking-backend/internal/store"
)

// Request is a candidate claim submitted by a requester.
type Request struct {
	Name  string
	Email string
	Phone string
	Date  string
	Time  string
	Note  string
}

// Notifier receives committed reservations. Enqueue must not block;
// it returns false when the reservation could not be queued.
type Notifier interface {
	Enqueue(r model.Reservation) bool
}

// Hook runs synchronously after a reservation is committed.
type Hook func(r model.Reservation)

// Service performs slot claims against the inventory and the ledger.
type Service struct {
	inventory   store.Inventory
	ledger      store.Ledger
	notifier    Notifier
	hooks       []Hook
	log         *zap.Logger
	metrics     *metrics.BookingMetrics
	now         func() time.Time
	newID       func() string
	countryCode string
	maxNote     int
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets the post-commit notification queue.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithHook appends a post-commit hook, e.g. a cache flush.
func WithHook(h Hook) Option {
	return func(s *Service) { s.hooks = append(s.hooks, h) }
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l.Named("booking") }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.BookingMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides the reservation ID source.
func WithIDGenerator(f func() string) Option {
	return func(s *Service) { s.newID = f }
}

// WithCountryCode sets the prefix added to phone numbers given without one.
func WithCountryCode(cc string) Option {
	return func(s *Service) { s.countryCode = cc }
}

// WithMaxNoteLength caps the optional note, in characters.
func WithMaxNoteLength(n int) Option {
	return func(s *Service) { s.maxNote = n }
}

// NewService creates a claim service.
func NewService(inv store.Inventory, ledger store.Ledger, opts ...Option) *Service {
	s := &Service{
		inventory: inv,
		ledger:    ledger,
		log:       zap.NewNop(),
		now:       time.Now,
		newID:     uuid.NewString,
		maxNote:   1000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ClaimSlot reserves req's (date, time) for the requester.
//
// The ledger insert is the only step that decides the outcome: its unique index
// serializes concurrent claims, so exactly one caller per slot ever succeeds.
// Inventory updates, hooks and notifications happen after the commit and cannot
// change the result.
func (s *Service) ClaimSlot(ctx context.Context, req Request) (*model.Reservation, error) {
	start := time.Now()
	r, err := s.claim(ctx, req)
	s.metrics.ObserveClaim(outcomeOf(err), time.Since(start).Seconds())
	return r, err
}

func (s *Service) claim(ctx context.Context, req Request) (*model.Reservation, error) {
	r, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	if err := s.precheck(ctx, r.Date, r.Time); err != nil {
		return nil, err
	}

	// The write must not be abandoned halfway because the caller went away.
	writeCtx := context.WithoutCancel(ctx)
	if err := s.ledger.Insert(writeCtx, r); err != nil {
		if errors.Is(err, store.ErrDuplicateSlot) {
			s.log.Info("slot already claimed", zap.String("date", r.Date), zap.String("time", r.Time))
			return nil, ErrConflict
		}
		s.log.Error("ledger insert failed", zap.String("date", r.Date), zap.String("time", r.Time), zap.Error(err))
		return nil, &TransientStorageError{Op: "insert reservation", Err: err}
	}

	s.log.Info("slot claimed",
		zap.String("reservation_id", r.ID),
		zap.String("date", r.Date),
		zap.String("time", r.Time))

	s.afterCommit(writeCtx, *r)
	return r, nil
}

// prepare validates the request fields and builds the reservation without touching storage.
func (s *Service) prepare(req Request) (*model.Reservation, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	note := strings.TrimSpace(req.Note)

	switch {
	case name == "":
		return nil, invalid("name", "is required")
	case email == "":
		return nil, invalid("email", "is required")
	case strings.TrimSpace(req.Phone) == "":
		return nil, invalid("phone", "is required")
	case strings.TrimSpace(req.Date) == "":
		return nil, invalid("date", "is required")
	case strings.TrimSpace(req.Time) == "":
		return nil, invalid("time", "is required")
	}

	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, invalid("email", "%q is not a valid address", email)
	}
	phone, err := parse.NormalizePhone(req.Phone, s.countryCode)
	if err != nil {
		return nil, invalid("phone", "%v", err)
	}
	date, err := parse.ParseDate(req.Date)
	if err != nil {
		return nil, invalid("date", "%v", err)
	}
	label, err := parse.NormalizeTime(req.Time)
	if err != nil {
		return nil, invalid("time", "%v", err)
	}
	if s.maxNote > 0 && utf8.RuneCountInString(note) > s.maxNote {
		return nil, invalid("note", "must be at most %d characters", s.maxNote)
	}

	r := &model.Reservation{
		ID:        s.newID(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		Date:      date,
		Time:      label,
		CreatedAt: s.now().UTC(),
	}
	if note != "" {
		r.Note = &note
	}
	return r, nil
}

// precheck bounds the date by the published range and rejects unknown or already
// cleared slots early. It is advisory: correctness comes from the ledger insert.
func (s *Service) precheck(ctx context.Context, date, label string) error {
	dates, err := s.inventory.ListDates(ctx)
	if err != nil {
		return &TransientStorageError{Op: "list dates", Err: err}
	}
	if len(dates) == 0 {
		return invalid("date", "no dates are open for booking")
	}
	if first, last := dates[0], dates[len(dates)-1]; date < first || date > last {
		return invalid("date", "%s is outside the bookable range %s to %s", date, first, last)
	}

	slot, err := s.inventory.Lookup(ctx, date, label)
	if errors.Is(err, store.ErrSlotNotFound) {
		return invalid("time", "%s is not offered on %s", label, date)
	}
	if err != nil {
		return &TransientStorageError{Op: "look up slot", Err: err}
	}
	if !slot.Available {
		return ErrConflict
	}
	return nil
}

func (s *Service) afterCommit(ctx context.Context, r model.Reservation) {
	if err := s.inventory.Remove(ctx, r.Date, r.Time); err != nil {
		// The ledger already hides the slot from listings; RebuildFlags repairs the flag.
		s.log.Warn("failed to clear availability flag", zap.String("reservation_id", r.ID), zap.Error(err))
	}

	for _, h := range s.hooks {
		s.runHook(h, r)
	}

	if s.notifier != nil && !s.notifier.Enqueue(r) {
		s.log.Warn("notification not queued", zap.String("reservation_id", r.ID))
	}
}

func (s *Service) runHook(h Hook, r model.Reservation) {
	defer func() {
		if p := recover(); p != nil {
			s.log.Error("post-commit hook panicked", zap.String("reservation_id", r.ID), zap.String("panic", fmt.Sprint(p)))
		}
	}()
	h(r)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrConflict):
		return metrics.OutcomeConflict
	case IsValidation(err):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeTransient
	}
}
