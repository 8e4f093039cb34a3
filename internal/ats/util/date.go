package util

import (
	"strconv"
	"strings"
	"time"
)

// ParseDate accepts the date shapes the platforms actually emit: RFC3339,
// bare YYYY-MM-DD, US-style text dates, and epoch seconds/millis as strings.
// Returns nil when nothing parses; callers must not default to "now".
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006/01/02",
		"Jan 2, 2006",
		"January 2, 2006",
		"01/02/2006",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		// Heuristic: treat >= 1e12 as ms, else seconds.
		var t time.Time
		if n >= 1_000_000_000_000 {
			t = time.UnixMilli(n)
		} else {
			t = time.Unix(n, 0)
		}
		t = t.UTC()
		return &t
	}
	return nil
}
