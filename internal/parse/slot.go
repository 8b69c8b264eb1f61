package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of slot dates.
const DateLayout = "2006-01-02"

// MaxTimeLabelLength matches the width of the time columns.
const MaxTimeLabelLength = 10

var (
	dateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clockRe = regexp.MustCompile(`(?i)^(\d{1,2})\s*(?::|h)\s*(\d{2})?$`)
)

// ParseDate validates a YYYY-MM-DD calendar date and returns it unchanged.
func ParseDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if !dateRe.MatchString(s) {
		return "", fmt.Errorf("date %q is not in YYYY-MM-DD format", raw)
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("date %q is not a valid calendar date", raw)
	}
	return s, nil
}

// NormalizeTime canonicalizes clock labels ("9:00", "9h", "09h30") to "HH:MM".
// Labels that are not clock readings are kept as published, only trimmed.
func NormalizeTime(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("time label is empty")
	}

	if m := clockRe.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour > 23 || minute > 59 {
			return "", fmt.Errorf("time %q is out of range", raw)
		}
		return fmt.Sprintf("%02d:%02d", hour, minute), nil
	}

	if len(s) > MaxTimeLabelLength {
		return "", fmt.Errorf("time label %q is longer than %d characters", raw, MaxTimeLabelLength)
	}
	return s, nil
}
