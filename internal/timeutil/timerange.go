// Package timeutil provides the clock-time and weekday arithmetic used by
// the scheduling core. Times of day are minutes from midnight so that
// overlap checks and duration math stay integer-exact.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a time of day expressed as minutes from midnight.
type Clock int

const minutesPerDay = 24 * 60

// ParseClock parses "HH:mm" in 24-hour notation. A trailing ":ss" component
// is tolerated and truncated, matching what upstream payloads may send.
func ParseClock(raw string) (Clock, error) {
	raw = strings.TrimSpace(raw)
	parts := strings.Split(raw, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid clock time %q", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", raw)
	}
	if len(parts) == 3 {
		if _, err := strconv.Atoi(parts[2]); err != nil {
			return 0, fmt.Errorf("invalid seconds in %q", raw)
		}
	}
	return Clock(hour*60 + minute), nil
}

// String renders the canonical "HH:mm" form.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Valid reports whether the clock value falls within a single day.
func (c Clock) Valid() bool {
	return c >= 0 && c < minutesPerDay
}

// AddMinutes shifts the clock forward without wrapping.
func (c Clock) AddMinutes(m int) Clock {
	return c + Clock(m)
}

// NormalizeClock reparses a possibly seconds-bearing time string into the
// canonical "HH:mm" form.
func NormalizeClock(raw string) (string, error) {
	c, err := ParseClock(raw)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

// TimeRange is a half-open [Start, End) window within one day.
type TimeRange struct {
	Start Clock
	End   Clock
}

// NewTimeRange builds a range from "HH:mm" strings, enforcing End > Start.
func NewTimeRange(start, end string) (TimeRange, error) {
	s, err := ParseClock(start)
	if err != nil {
		return TimeRange{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return TimeRange{}, err
	}
	if e <= s {
		return TimeRange{}, fmt.Errorf("end time %s must be after start time %s", e, s)
	}
	return TimeRange{Start: s, End: e}, nil
}

// Overlaps reports whether two half-open ranges intersect. Symmetric.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start < other.End && other.Start < r.End
}

// Contains reports whether the clock value falls inside the range.
func (r TimeRange) Contains(c Clock) bool {
	return c >= r.Start && c < r.End
}

// Duration returns the range length.
func (r TimeRange) Duration() time.Duration {
	return time.Duration(r.End-r.Start) * time.Minute
}

// Minutes returns the range length in minutes.
func (r TimeRange) Minutes() int {
	return int(r.End - r.Start)
}

func (r TimeRange) String() string {
	return r.Start.String() + "-" + r.End.String()
}
