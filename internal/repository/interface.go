// Package repository defines interfaces for data storage
package repository

import (
	"context"

	"github.com/navikt/roombook/internal/models"
)

// Repository defines the interface for storing and retrieving rooms and bookings.
// Implementations report missing entities with models.ErrNotFound.
type Repository interface {
	// Room operations
	SaveRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	ListRooms(ctx context.Context) ([]*models.Room, error)
	DeleteRoom(ctx context.Context, id string) error

	// Booking operations
	SaveBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error)
	DeleteBooking(ctx context.Context, id string) error

	// LockSlot serializes writers for one room on one date. The returned
	// function releases the lock and must be called exactly once.
	LockSlot(ctx context.Context, roomID, date string) (func(), error)

	Ping(ctx context.Context) error
	Close() error
}
