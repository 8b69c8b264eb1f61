package bookingclient

import "sort"

// Snapshot maps a YYYY-MM-DD date to the time labels believed to be open.
// It is a derived view; the server's ledger decides conflicts.
type Snapshot map[string][]string

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for d, times := range s {
		out[d] = append([]string(nil), times...)
	}
	return out
}

// Dates returns the dates in ascending order.
func (s Snapshot) Dates() []string {
	dates := make([]string, 0, len(s))
	for d := range s {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// DateRange returns the first and last date, or ok=false when empty.
func (s Snapshot) DateRange() (first, last string, ok bool) {
	dates := s.Dates()
	if len(dates) == 0 {
		return "", "", false
	}
	return dates[0], dates[len(dates)-1], true
}

// Times returns the open labels for date. Unknown dates have none.
func (s Snapshot) Times(date string) []string {
	return s[date]
}

// Has reports whether (date, time) is believed open.
func (s Snapshot) Has(date, time string) bool {
	for _, t := range s[date] {
		if t == time {
			return true
		}
	}
	return false
}

// Remove drops (date, time) and reports whether it was present. The date key stays,
// possibly with an empty list, so a fully booked day is still shown as published.
func (s Snapshot) Remove(date, time string) bool {
	times, ok := s[date]
	if !ok {
		return false
	}
	for i, t := range times {
		if t == time {
			s[date] = append(times[:i:i], times[i+1:]...)
			return true
		}
	}
	return false
}

// Merge returns a copy of s with every date in overrides replacing s's entry.
func (s Snapshot) Merge(overrides Snapshot) Snapshot {
	out := s.Clone()
	for d, times := range overrides {
		out[d] = append([]string(nil), times...)
	}
	return out
}
