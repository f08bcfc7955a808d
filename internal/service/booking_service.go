// Package service holds the business logic for rooms and bookings
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/navikt/roombook/internal/models"
	"github.com/navikt/roombook/internal/repository"
	"github.com/navikt/roombook/internal/utils"
)

// BookingUpdateCallback is called after a booking has been stored or removed
type BookingUpdateCallback func(models.BookingEvent)

// BookingService validates and stores bookings
type BookingService struct {
	repo            repository.Repository
	updateCallbacks []BookingUpdateCallback
	now             func() time.Time
}

// NewBookingService creates a new BookingService with the given repository
func NewBookingService(repo repository.Repository) *BookingService {
	return &BookingService{
		repo:            repo,
		updateCallbacks: make([]BookingUpdateCallback, 0),
		now:             time.Now,
	}
}

// RegisterUpdateCallback registers a callback function to be called when booking data changes
func (s *BookingService) RegisterUpdateCallback(callback BookingUpdateCallback) {
	s.updateCallbacks = append(s.updateCallbacks, callback)
}

func (s *BookingService) notifyUpdate(change models.ChangeType, booking *models.Booking) {
	event := models.BookingEvent{Type: change, Booking: booking, At: s.now().UTC()}
	for _, callback := range s.updateCallbacks {
		callback(event)
	}
}

// CreateBooking validates the input against the booking rules and stores it
func (s *BookingService) CreateBooking(ctx context.Context, in models.BookingInput) (*models.Booking, error) {
	if _, err := CheckWindow(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}

	unlock, err := s.lockSlot(ctx, in)
	if err != nil {
		return nil, err
	}
	defer unlock()

	booking := &models.Booking{ID: uuid.NewString()}
	if err := s.decideAndSave(ctx, booking, in, ""); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "booking created",
		"booking_id", booking.ID,
		utils.Attr("room_id", booking.RoomID),
		utils.Attr("date", booking.Date))
	s.notifyUpdate(models.ChangeCreated, booking)
	return booking, nil
}

// UpdateBooking re-validates a booking against its new values, ignoring its
// own current entry when counting overlaps
func (s *BookingService) UpdateBooking(ctx context.Context, id string, in models.BookingInput) (*models.Booking, error) {
	if _, err := CheckWindow(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}

	unlock, err := s.lockSlot(ctx, in)
	if err != nil {
		return nil, err
	}
	defer unlock()

	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.decideAndSave(ctx, booking, in, id); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "booking updated",
		utils.Attr("booking_id", booking.ID),
		utils.Attr("room_id", booking.RoomID),
		utils.Attr("date", booking.Date))
	s.notifyUpdate(models.ChangeUpdated, booking)
	return booking, nil
}

// GetBooking returns a booking by ID
func (s *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// ListBookings returns the bookings matching the filter with their rooms
// resolved. Bookings whose room no longer exists carry a nil room.
func (s *BookingService) ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.BookingWithRoom, error) {
	bookings, err := s.repo.ListBookings(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	rooms := make(map[string]*models.Room)
	result := make([]models.BookingWithRoom, 0, len(bookings))
	for _, b := range bookings {
		room, seen := rooms[b.RoomID]
		if !seen {
			room, err = s.repo.GetRoom(ctx, b.RoomID)
			if err != nil {
				if !errors.Is(err, models.ErrNotFound) {
					return nil, fmt.Errorf("failed to get room for booking: %w", err)
				}
				room = nil
			}
			rooms[b.RoomID] = room
		}
		result = append(result, b.WithRoom(room))
	}

	return result, nil
}

// DeleteBooking removes a booking. Deleting a booking that does not exist is not an error.
func (s *BookingService) DeleteBooking(ctx context.Context, id string) error {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get booking: %w", err)
	}

	if err := s.repo.DeleteBooking(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	slog.InfoContext(ctx, "booking deleted", utils.Attr("booking_id", id))
	s.notifyUpdate(models.ChangeDeleted, booking)
	return nil
}

func (s *BookingService) lockSlot(ctx context.Context, in models.BookingInput) (func(), error) {
	unlock, err := s.repo.LockSlot(ctx, in.RoomID, in.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to lock slot: %w", err)
	}
	return unlock, nil
}

// decideAndSave must run while holding the slot lock for in.RoomID/in.Date
func (s *BookingService) decideAndSave(ctx context.Context, booking *models.Booking, in models.BookingInput, excludeID string) error {
	room, err := s.repo.GetRoom(ctx, in.RoomID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("failed to get room: %w", err)
		}
		room = nil
	}

	existing, err := s.repo.ListBookings(ctx, models.BookingFilter{RoomID: in.RoomID, Date: in.Date})
	if err != nil {
		return fmt.Errorf("failed to list bookings for slot: %w", err)
	}

	if err := Decide(in, room, existing, excludeID); err != nil {
		if rej, ok := models.AsRejection(err); ok {
			slog.InfoContext(ctx, "booking rejected",
				"reason", string(rej.Reason),
				utils.Attr("room_id", in.RoomID),
				utils.Attr("date", in.Date))
		}
		return err
	}

	in.Apply(booking)
	if err := s.repo.SaveBooking(ctx, booking); err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}
