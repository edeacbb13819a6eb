package transfer

import (
	"fmt"
	"time"
)

// Schedule holds the station's opening and closing times as minutes past
// midnight, station local time.
type Schedule struct {
	openingMinutes int
	closingMinutes int
}

func ParseSchedule(opening, closing string) (Schedule, error) {
	o, err := parseClock(opening)
	if err != nil {
		return Schedule{}, fmt.Errorf("opening_time: %w", err)
	}
	c, err := parseClock(closing)
	if err != nil {
		return Schedule{}, fmt.Errorf("closing_time: %w", err)
	}
	return Schedule{openingMinutes: o, closingMinutes: c}, nil
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("want HH:MM, got %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// OpeningDue reports whether the opening-time transfer should fire: the
// station has opened today and no run has happened since it did. lastRun
// is the zero time before the first run of the process.
func (s Schedule) OpeningDue(now, lastRun time.Time) bool {
	opening := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		Add(time.Duration(s.openingMinutes) * time.Minute)
	if now.Before(opening) {
		return false
	}
	return lastRun.Before(opening)
}

// WithinOperatingHours gates the safety-net sweep.
func (s Schedule) WithinOperatingHours(now time.Time) bool {
	minutes := now.Hour()*60 + now.Minute()
	if s.closingMinutes >= s.openingMinutes {
		return minutes >= s.openingMinutes && minutes < s.closingMinutes
	}
	// Overnight stations close after midnight.
	return minutes >= s.openingMinutes || minutes < s.closingMinutes
}
