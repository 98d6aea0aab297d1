package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share any instant. Adjacent intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// MinuteOfDay is a clock time expressed as minutes since local midnight.
type MinuteOfDay int

// ParseClock parses a "HH:MM" clock string into a MinuteOfDay.
func ParseClock(s string) (MinuteOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return MinuteOfDay(hour*60 + minute), nil
}

// MustClock is ParseClock for statically known inputs.
func MustClock(s string) MinuteOfDay {
	m, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m MinuteOfDay) Hour() int   { return int(m) / 60 }
func (m MinuteOfDay) Minute() int { return int(m) % 60 }

func (m MinuteOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", m.Hour(), m.Minute())
}

// On anchors the clock time to the calendar day of t in t's location.
func (m MinuteOfDay) On(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), m.Hour(), m.Minute(), 0, 0, t.Location())
}

// DateOnly truncates t to midnight of its calendar day, keeping the location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDate reports whether a and b fall on the same calendar day
// (compared in a's location).
func SameDate(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
