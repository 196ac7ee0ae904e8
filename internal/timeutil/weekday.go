package timeutil

import (
	"fmt"
	"strings"
	"time"
)

var dayNameIndex = map[string]time.Weekday{
	"MONDAY":    time.Monday,
	"TUESDAY":   time.Tuesday,
	"WEDNESDAY": time.Wednesday,
	"THURSDAY":  time.Thursday,
	"FRIDAY":    time.Friday,
	"SATURDAY":  time.Saturday,
	"SUNDAY":    time.Sunday,
}

var dayIndexName = map[time.Weekday]string{
	time.Monday:    "MONDAY",
	time.Tuesday:   "TUESDAY",
	time.Wednesday: "WEDNESDAY",
	time.Thursday:  "THURSDAY",
	time.Friday:    "FRIDAY",
	time.Saturday:  "SATURDAY",
	time.Sunday:    "SUNDAY",
}

// ParseDay maps an upper-case day name (MONDAY..SUNDAY) to time.Weekday.
func ParseDay(name string) (time.Weekday, error) {
	day, ok := dayNameIndex[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("invalid day of week %q", name)
	}
	return day, nil
}

// FormatDay renders a weekday in the MONDAY..SUNDAY convention.
func FormatDay(day time.Weekday) string {
	return dayIndexName[day]
}

// OrderedDays lists the week starting at Monday, the order used for
// deterministic suggestion output.
func OrderedDays() []time.Weekday {
	return []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}
}

// DateOnly truncates a timestamp to midnight UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether two timestamps fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// NextWeekday returns the next calendar date after the given one, skipping
// Saturdays and Sundays.
func NextWeekday(date time.Time) time.Time {
	next := DateOnly(date).AddDate(0, 0, 1)
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// NextWeekSameDay returns the date exactly one week later.
func NextWeekSameDay(date time.Time) time.Time {
	return DateOnly(date).AddDate(0, 0, 7)
}

// DatesMatchingWeekday enumerates every date in [from, until] (inclusive)
// that falls on the given weekday, in ascending order.
func DatesMatchingWeekday(from, until time.Time, day time.Weekday) []time.Time {
	from = DateOnly(from)
	until = DateOnly(until)
	if until.Before(from) {
		return nil
	}

	cursor := from
	for cursor.Weekday() != day {
		cursor = cursor.AddDate(0, 0, 1)
	}

	var dates []time.Time
	for !cursor.After(until) {
		dates = append(dates, cursor)
		cursor = cursor.AddDate(0, 0, 7)
	}
	return dates
}
