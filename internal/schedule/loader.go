package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"slot-booking-backend/config"
	"slot-booking-backend/internal/parse"
	"slot-booking-backend/internal/store"
)

// Loader reads the published schedule document: a JSON object mapping
// YYYY-MM-DD dates to ordered time labels.
type Loader struct {
	source  string
	headers map[string]string
	client  *http.Client
}

// NewLoader creates a loader for cfg.Source, which is either a file path or an http(s) URL.
func NewLoader(cfg config.ScheduleConfig, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Warn("invalid schedule proxy URL; not using a proxy", zap.String("proxy", cfg.HTTPProxy), zap.Error(err))
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	return &Loader{
		source:  cfg.Source,
		headers: cfg.Headers,
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
	}
}

// Source returns where the schedule is read from.
func (l *Loader) Source() string {
	return l.source
}

// Load fetches and normalizes the schedule.
func (l *Loader) Load(ctx context.Context) (store.Schedule, error) {
	if l.source == "" {
		return nil, fmt.Errorf("no schedule source configured")
	}

	var (
		body []byte
		err  error
	)
	if strings.HasPrefix(l.source, "http://") || strings.HasPrefix(l.source, "https://") {
		body, err = l.fetch(ctx)
	} else {
		body, err = os.ReadFile(l.source)
	}
	if err != nil {
		return nil, err
	}

	return Decode(body)
}

func (l *Loader) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range l.headers {
		req.Header.Set(key, value)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// Decode parses a schedule document. Dates and labels are normalized the same
// way claims are, and duplicate labels within a date are dropped.
// Any malformed entry rejects the whole document.
func Decode(body []byte) (store.Schedule, error) {
	var raw map[string][]string
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schedule: %w", err)
	}

	out := make(store.Schedule, len(raw))
	// Keyed by normalized date: " 2025-06-10" and "2025-06-10" share one set.
	seen := make(map[string]map[string]bool, len(raw))
	for rawDate, labels := range raw {
		date, err := parse.ParseDate(rawDate)
		if err != nil {
			return nil, err
		}

		if seen[date] == nil {
			seen[date] = make(map[string]bool, len(labels))
		}
		times := out[date]
		for _, rawLabel := range labels {
			label, err := parse.NormalizeTime(rawLabel)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", date, err)
			}
			if seen[date][label] {
				continue
			}
			seen[date][label] = true
			times = append(times, label)
		}
		out[date] = times
	}
	return out, nil
}
