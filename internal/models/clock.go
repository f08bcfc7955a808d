package models

import (
	"strconv"
	"strings"
)

// Business hours and duration limits, in minutes since midnight
const (
	OpeningMinute      = 8 * 60
	ClosingMinute      = 18 * 60
	MinBookingDuration = 30
	MaxBookingDuration = 4 * 60
)

// ParseClock converts an "HH:MM" time of day into minutes since midnight.
// Only the shape is checked here; "25:99" yields 1599 and range checks are
// left to the caller.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || !isDigits(hh) || !isDigits(mm) || len(hh) > 2 || len(mm) > 2 {
		return 0, NewRejection(ReasonInvalidTimeFormat, "Time must be in HH:MM format")
	}

	// both parts are at most two ASCII digits, so Atoi cannot fail
	hours, _ := strconv.Atoi(hh)
	minutes, _ := strconv.Atoi(mm)

	return hours*60 + minutes, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return !(aEnd <= bStart || aStart >= bEnd)
}
