package store

import (
	"errors"
	"sort"
)

var (
	// ErrDuplicateSlot is returned by Ledger.Insert when (date, time) already has a reservation.
	ErrDuplicateSlot = errors.New("slot already reserved")
	// ErrSlotNotFound is returned when a (date, time) pair was never published.
	ErrSlotNotFound = errors.New("slot not published")
	// ErrNotFound is returned by lookups that match no row.
	ErrNotFound = errors.New("record not found")
)

// Schedule maps a YYYY-MM-DD date to its ordered time labels.
// It is the shape of the published schedule file and of the availability listing.
type Schedule map[string][]string

// Dates returns the schedule's dates in ascending order.
func (s Schedule) Dates() []string {
	dates := make([]string, 0, len(s))
	for d := range s {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Len returns the total number of time labels across all dates.
func (s Schedule) Len() int {
	n := 0
	for _, times := range s {
		n += len(times)
	}
	return n
}
