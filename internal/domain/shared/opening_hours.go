package shared

import (
	"fmt"
	"strings"
	"time"
)

// OpenInterval is one day's opening window as minutes since midnight
type OpenInterval struct {
	OpenMinute  int
	CloseMinute int
}

// WeeklyHours maps a weekday to its opening interval.
// A missing weekday means the store's hours are unknown for that day and
// no waiting is simulated.
type WeeklyHours map[time.Weekday]OpenInterval

// ParseClockMinute parses "HH:MM" into minutes since midnight
func ParseClockMinute(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, NewValidationError("time", fmt.Sprintf("invalid clock value %q", s))
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ParseOpenInterval parses "HH:MM-HH:MM" into an interval
func ParseOpenInterval(s string) (OpenInterval, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return OpenInterval{}, NewValidationError("opening_hours", fmt.Sprintf("expected HH:MM-HH:MM, got %q", s))
	}
	open, err := ParseClockMinute(parts[0])
	if err != nil {
		return OpenInterval{}, err
	}
	closeAt, err := ParseClockMinute(parts[1])
	if err != nil {
		return OpenInterval{}, err
	}
	return OpenInterval{OpenMinute: open, CloseMinute: closeAt}, nil
}

// ParseWeeklyHours parses a weekday-name → "HH:MM-HH:MM" mapping.
// Keys are lowercase English weekday names ("monday" .. "sunday").
func ParseWeeklyHours(raw map[string]string) (WeeklyHours, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	hours := make(WeeklyHours, len(raw))
	for name, span := range raw {
		wd, ok := weekdayByName[strings.ToLower(name)]
		if !ok {
			return nil, NewValidationError("opening_hours", fmt.Sprintf("unknown weekday %q", name))
		}
		interval, err := ParseOpenInterval(span)
		if err != nil {
			return nil, err
		}
		hours[wd] = interval
	}
	return hours, nil
}

// FormatClockMinute renders minutes since midnight as "HH:MM"
func FormatClockMinute(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// Format renders the inverse of ParseWeeklyHours
func (h WeeklyHours) Format() map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for wd, interval := range h {
		out[strings.ToLower(wd.String())] = fmt.Sprintf("%s-%s",
			FormatClockMinute(interval.OpenMinute), FormatClockMinute(interval.CloseMinute))
	}
	return out
}

var weekdayByName = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// OpensAt returns the opening minute for a weekday, or false when unknown
func (h WeeklyHours) OpensAt(day time.Weekday) (int, bool) {
	if h == nil {
		return 0, false
	}
	interval, ok := h[day]
	if !ok {
		return 0, false
	}
	return interval.OpenMinute, true
}
