package service

import (
	"github.com/navikt/roombook/internal/models"
)

// Window is a booking's time range in minutes since midnight, half-open [Start, End)
type Window struct {
	Start int
	End   int
}

// Duration returns the length of the window in minutes
func (w Window) Duration() int {
	return w.End - w.Start
}

// Overlaps reports whether two windows share at least one minute
func (w Window) Overlaps(other Window) bool {
	return models.Overlaps(w.Start, w.End, other.Start, other.End)
}

// ParseWindow parses a pair of "HH:MM" strings without checking any business rule
func ParseWindow(startTime, endTime string) (Window, error) {
	start, err := models.ParseClock(startTime)
	if err != nil {
		return Window{}, err
	}
	end, err := models.ParseClock(endTime)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: start, End: end}, nil
}

// CheckWindow applies the time rules that need no stored state:
// ordering, business hours and duration, in that order
func CheckWindow(startTime, endTime string) (Window, error) {
	w, err := ParseWindow(startTime, endTime)
	if err != nil {
		return Window{}, err
	}

	if w.Start >= w.End {
		return Window{}, models.NewRejection(models.ReasonTimeOrderInvalid,
			"Start time must be before end time")
	}

	// start is only checked against opening and end only against closing;
	// with start < end that covers the whole window
	if w.Start < models.OpeningMinute || w.End > models.ClosingMinute {
		return Window{}, models.NewRejection(models.ReasonOutsideBusinessHours,
			"Booking must be within business hours (8:00 - 18:00)")
	}

	if d := w.Duration(); d < models.MinBookingDuration || d > models.MaxBookingDuration {
		return Window{}, models.NewRejection(models.ReasonDurationOutOfRange,
			"Booking duration must be between 30 minutes and 4 hours")
	}

	return w, nil
}

// CountOverlaps counts the bookings on the candidate's room and date, other
// than excludeID, whose window overlaps w. Bookings with unparsable times are
// not counted.
func CountOverlaps(w Window, roomID, date string, existing []*models.Booking, excludeID string) int {
	count := 0
	for _, b := range existing {
		if b.RoomID != roomID || b.Date != date {
			continue
		}
		if excludeID != "" && b.ID == excludeID {
			continue
		}

		other, err := ParseWindow(b.StartTime, b.EndTime)
		if err != nil {
			continue
		}
		if w.Overlaps(other) {
			count++
		}
	}
	return count
}

// Decide runs every booking rule against the candidate and returns the first
// rejection, or nil if the booking may be stored. room is nil when the
// referenced room does not exist. excludeID is the booking's own ID on update.
func Decide(candidate models.BookingInput, room *models.Room, existing []*models.Booking, excludeID string) error {
	w, err := CheckWindow(candidate.StartTime, candidate.EndTime)
	if err != nil {
		return err
	}

	if room == nil {
		return models.NewRejection(models.ReasonRoomNotFound, "Room not found")
	}

	// capacity counts bookings already present, so this one may be the
	// capacity-th concurrent booking but never the one after it
	if CountOverlaps(w, candidate.RoomID, candidate.Date, existing, excludeID) >= room.Capacity {
		return models.NewRejection(models.ReasonCapacityExceeded,
			"Room capacity full for this time slot")
	}

	return nil
}
