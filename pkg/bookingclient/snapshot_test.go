package bookingclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshot(t *testing.T) {
	s := Snapshot{
		"2025-06-12": {"14:00"},
		"2025-06-10": {"09:00", "10:00"},
	}

	first, last, ok := s.DateRange()
	assert.True(t, ok)
	assert.Equal(t, "2025-06-10", first)
	assert.Equal(t, "2025-06-12", last)

	orig := s.Clone()
	assert.True(t, s.Remove("2025-06-10", "09:00"))
	assert.False(t, s.Remove("2025-06-10", "09:00"))
	assert.False(t, s.Remove("2025-07-01", "09:00"))
	assert.Equal(t, []string{"10:00"}, s.Times("2025-06-10"))
	assert.Equal(t, []string{"09:00", "10:00"}, orig.Times("2025-06-10"), "clone must not share backing arrays")

	assert.True(t, s.Remove("2025-06-12", "14:00"))
	times, published := s["2025-06-12"]
	assert.True(t, published)
	assert.Empty(t, times)

	_, _, ok = Snapshot{}.DateRange()
	assert.False(t, ok)
}

func TestSnapshot_MergeOverridesWin(t *testing.T) {
	server := Snapshot{"2025-06-10": {"09:00", "10:00"}, "2025-06-11": {"08:00"}}
	local := Snapshot{"2025-06-10": {"10:00"}}

	merged := server.Merge(local)
	assert.Equal(t, Snapshot{"2025-06-10": {"10:00"}, "2025-06-11": {"08:00"}}, merged)
	assert.True(t, server.Has("2025-06-10", "09:00"), "merge must not modify the receiver")
	assert.False(t, merged.Has("2025-06-10", "09:00"))
}
