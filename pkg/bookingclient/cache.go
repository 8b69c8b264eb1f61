package bookingclient

import (
	"context"
	"errors"
	"sync"

	"slot-booking-backend/internal/parse"
)

// Backend is the part of Client the cache depends on.
type Backend interface {
	FetchAvailability(ctx context.Context) (Snapshot, error)
	Book(ctx context.Context, br BookRequest) (*Reservation, error)
}

// Cache is the requester's eventually consistent view of open slots.
// Local removals are persisted as per-date overrides that win over a possibly
// stale server listing until the next Reconcile.
type Cache struct {
	backend   Backend
	overrides OverrideStore

	mu   sync.RWMutex
	snap Snapshot
}

// NewCache creates an empty cache. A nil overrides keeps removals in memory only.
func NewCache(backend Backend, overrides OverrideStore) *Cache {
	return &Cache{backend: backend, overrides: overrides, snap: Snapshot{}}
}

// Snapshot returns a copy of the current view.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.Clone()
}

// Load fetches the server listing and merges persisted overrides over it.
func (c *Cache) Load(ctx context.Context) error {
	fresh, err := c.backend.FetchAvailability(ctx)
	if err != nil {
		return err
	}

	merged := fresh
	if c.overrides != nil {
		local, err := c.overrides.Load()
		if err != nil {
			return err
		}
		merged = fresh.Merge(local)
	}

	c.mu.Lock()
	c.snap = merged
	c.mu.Unlock()
	return nil
}

// Reconcile replaces the view with the server listing and drops every override.
func (c *Cache) Reconcile(ctx context.Context) error {
	fresh, err := c.backend.FetchAvailability(ctx)
	if err != nil {
		return err
	}
	if c.overrides != nil {
		if err := c.overrides.Clear(); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.snap = fresh.Clone()
	c.mu.Unlock()
	return nil
}

// Book claims a slot through the backend. On success, and on ErrSlotTaken, the slot
// is pruned locally without refetching since it is known to be taken either way.
func (c *Cache) Book(ctx context.Context, br BookRequest) (*Reservation, error) {
	r, err := c.backend.Book(ctx, br)
	switch {
	case err == nil:
		if perr := c.prune(r.Date, r.Time); perr != nil {
			return r, perr
		}
		return r, nil
	case errors.Is(err, ErrSlotTaken):
		// The backend compares canonical keys, so the request's raw labels are normalized
		// the same way before pruning. Unparseable ones cannot match a listed slot.
		date, derr := parse.ParseDate(br.Date)
		label, terr := parse.NormalizeTime(br.Time)
		if derr != nil || terr != nil {
			return nil, err
		}
		if perr := c.prune(date, label); perr != nil {
			return nil, errors.Join(err, perr)
		}
		return nil, err
	default:
		return nil, err
	}
}

func (c *Cache) prune(date, time string) error {
	c.mu.Lock()
	c.snap.Remove(date, time)
	times, published := c.snap[date]
	pruned := append([]string{}, times...)
	c.mu.Unlock()

	if c.overrides == nil || !published {
		return nil
	}
	local, err := c.overrides.Load()
	if err != nil {
		return err
	}
	local[date] = pruned
	return c.overrides.Save(local)
}
