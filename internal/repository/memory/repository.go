// Package memory provides an in-memory implementation of the repository interface
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/navikt/roombook/internal/models"
)

// Repository implements the repository interface with in-memory storage
type Repository struct {
	rooms    map[string]models.Room
	bookings map[string]models.Booking
	mu       sync.RWMutex

	slots *slotLocks
}

// NewRepository creates a new in-memory repository
func NewRepository() *Repository {
	return &Repository{
		rooms:    make(map[string]models.Room),
		bookings: make(map[string]models.Booking),
		slots:    newSlotLocks(),
	}
}

// SaveRoom creates or replaces a room
func (r *Repository) SaveRoom(ctx context.Context, room *models.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rooms[room.ID] = *room
	return nil
}

// GetRoom retrieves a room by ID
func (r *Repository) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &room, nil
}

// ListRooms returns all rooms ordered by name
func (r *Repository) ListRooms(ctx context.Context) ([]*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]*models.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		room := room
		rooms = append(rooms, &room)
	}

	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Name != rooms[j].Name {
			return rooms[i].Name < rooms[j].Name
		}
		return rooms[i].ID < rooms[j].ID
	})
	return rooms, nil
}

// DeleteRoom removes a room by ID. Bookings referencing it are left alone.
func (r *Repository) DeleteRoom(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.rooms, id)
	return nil
}

// SaveBooking creates or replaces a booking
func (r *Repository) SaveBooking(ctx context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bookings[booking.ID] = *booking
	return nil
}

// GetBooking retrieves a booking by ID
func (r *Repository) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	booking, ok := r.bookings[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &booking, nil
}

// ListBookings returns the bookings matching the filter ordered by date and start time
func (r *Repository) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bookings := make([]*models.Booking, 0)
	for _, booking := range r.bookings {
		booking := booking
		if filter.Matches(&booking) {
			bookings = append(bookings, &booking)
		}
	}

	sortBookings(bookings)
	return bookings, nil
}

// DeleteBooking removes a booking by ID
func (r *Repository) DeleteBooking(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.bookings, id)
	return nil
}

// LockSlot blocks until no other caller holds the room/date slot or ctx is done
func (r *Repository) LockSlot(ctx context.Context, roomID, date string) (func(), error) {
	return r.slots.acquire(ctx, models.SlotKey(roomID, date))
}

// Ping always succeeds for the in-memory store
func (r *Repository) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store
func (r *Repository) Close() error {
	return nil
}

func sortBookings(bookings []*models.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		a, b := bookings[i], bookings[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})
}
