// Package calendar maps wall-clock instants to logical training days.
//
// A logical day starts at a configurable local time rather than midnight, so
// a late-night session logged at 02:00 with a 04:00 day start still belongs
// to the previous date.
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	// Embedded zoneinfo keeps LoadLocation working in minimal containers.
	_ "time/tzdata"
)

// DateLayout is the canonical "YYYY-MM-DD" form of a logical date.
const DateLayout = "2006-01-02"

// DefaultTimezone is used when no timezone is configured.
const DefaultTimezone = "America/New_York"

// ErrInvalidDate is returned for dates that are not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date")

// ErrInvalidWeekday is returned for weekday names or indexes outside 0..6.
var ErrInvalidWeekday = errors.New("invalid weekday")

var weekdayNames = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// LoadLocation resolves an IANA timezone name, defaulting to DefaultTimezone.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", name, err)
	}
	return loc, nil
}

// ParseDayStart converts a day start time into minutes after midnight.
// Accepted forms are "H:MM", "HH:MM", "HMM" and "HHMM". Hours are clamped to
// 0..23 and minutes to 0..59; anything else yields 0.
func ParseDayStart(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	var hours, minutes int
	if h, m, ok := strings.Cut(value, ":"); ok {
		var err error
		if hours, err = strconv.Atoi(strings.TrimSpace(h)); err != nil {
			return 0
		}
		if minutes, err = strconv.Atoi(strings.TrimSpace(m)); err != nil {
			return 0
		}
	} else {
		if len(value) < 3 || len(value) > 4 || !allDigits(value) {
			return 0
		}
		value = strings.Repeat("0", 4-len(value)) + value
		hours, _ = strconv.Atoi(value[:2])
		minutes, _ = strconv.Atoi(value[2:])
	}

	return clamp(hours, 0, 23)*60 + clamp(minutes, 0, 59)
}

// LogicalDate returns the logical date of now in loc. Instants earlier than
// dayStartMinutes after local midnight belong to the previous calendar date.
func LogicalDate(now time.Time, loc *time.Location, dayStartMinutes int) string {
	local := now.In(loc)
	y, m, d := local.Date()
	if local.Hour()*60+local.Minute() < dayStartMinutes {
		d--
	}
	// Noon avoids DST gaps when normalizing the day rollback.
	return time.Date(y, m, d, 12, 0, 0, 0, loc).Format(DateLayout)
}

// ParseDate validates a logical date.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t, nil
}

// Weekday returns 0=Sunday..6=Saturday for a logical date.
func Weekday(date string) (int, error) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	return int(t.Weekday()), nil
}

// ParseWeekday accepts a weekday name ("Monday", case-insensitive) or an
// index "0".."6".
func ParseWeekday(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range weekdayNames {
		if s == name {
			return i, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 6 {
		return n, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
}

// WeekdayName returns the lowercase name for a weekday index.
func WeekdayName(day int) string {
	if day < 0 || day > 6 {
		return ""
	}
	return weekdayNames[day]
}

// AddDays shifts a logical date by n calendar days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(DateLayout), nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
