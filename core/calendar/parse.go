package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseCivil parses a civil date string and returns midnight UTC of the
// date as written. ISO-8601 dates and timestamps are the expected input;
// the parser also accepts the common written forms congregations tend to
// type into their calendars ("March 3, 2025"). Time-of-day and offsets are
// discarded after the wall-clock date is taken.
func ParseCivil(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOnly(t), nil
}
