package schedule

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slot-booking-backend/config"
	"slot-booking-backend/internal/store"
)

const sampleSchedule = `{
  "2025-06-10": ["09:00", "9:30", "10:00", "09:00"],
  "2025-06-11": ["14:00"]
}`

func TestLoader_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "horarios.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleSchedule), 0o600))

	l := NewLoader(config.ScheduleConfig{Source: path}, nil)
	sched, err := l.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, store.Schedule{
		"2025-06-10": {"09:00", "09:30", "10:00"},
		"2025-06-11": {"14:00"},
	}, sched)
}

func TestLoader_HTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		w.Write([]byte(sampleSchedule))
	}))
	defer server.Close()

	l := NewLoader(config.ScheduleConfig{
		Source:  server.URL + "/horarios.json",
		Headers: map[string]string{"Authorization": "Bearer s3cret"},
	}, nil)
	sched, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, sched.Len())
}

func TestLoader_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	tests := []struct {
		name   string
		source string
	}{
		{"no source", ""},
		{"missing file", filepath.Join(t.TempDir(), "nope.json")},
		{"http error", server.URL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(config.ScheduleConfig{Source: tt.source}, nil).Load(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestDecode_RejectsMalformedEntries(t *testing.T) {
	_, err := Decode([]byte(`{"10/06/2025": ["09:00"]}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"2025-06-10": ["a label far too long"]}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`["2025-06-10"]`))
	assert.Error(t, err)
}

func TestDecode_MergesKeysForTheSameDate(t *testing.T) {
	sched, err := Decode([]byte(`{" 2025-06-10": ["09:00"], "2025-06-10": ["9:00", "10:00"]}`))
	require.NoError(t, err)

	require.Len(t, sched, 1)
	assert.ElementsMatch(t, []string{"09:00", "10:00"}, sched["2025-06-10"])
}
