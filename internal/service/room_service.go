package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/navikt/roombook/internal/models"
	"github.com/navikt/roombook/internal/repository"
	"github.com/navikt/roombook/internal/utils"
)

// RoomUpdateCallback is called after a room has been stored or removed
type RoomUpdateCallback func(models.RoomEvent)

// RoomService manages the room directory
type RoomService struct {
	repo            repository.Repository
	updateCallbacks []RoomUpdateCallback
	now             func() time.Time
}

// NewRoomService creates a new RoomService with the given repository
func NewRoomService(repo repository.Repository) *RoomService {
	return &RoomService{
		repo:            repo,
		updateCallbacks: make([]RoomUpdateCallback, 0),
		now:             time.Now,
	}
}

// RegisterUpdateCallback registers a callback function to be called when room data changes
func (s *RoomService) RegisterUpdateCallback(callback RoomUpdateCallback) {
	s.updateCallbacks = append(s.updateCallbacks, callback)
}

func (s *RoomService) notifyUpdate(change models.ChangeType, room *models.Room) {
	event := models.RoomEvent{Type: change, Room: room, At: s.now().UTC()}
	for _, callback := range s.updateCallbacks {
		callback(event)
	}
}

// CreateRoom stores a new room
func (s *RoomService) CreateRoom(ctx context.Context, in models.RoomInput) (*models.Room, error) {
	if err := validateRoom(in); err != nil {
		return nil, err
	}

	room := &models.Room{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Capacity: in.Capacity,
	}
	if err := s.repo.SaveRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to save room: %w", err)
	}

	slog.InfoContext(ctx, "room created", "room_id", room.ID, "capacity", room.Capacity)
	s.notifyUpdate(models.ChangeCreated, room)
	return room, nil
}

// GetRoom returns a room by ID
func (s *RoomService) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	room, err := s.repo.GetRoom(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return room, nil
}

// ListRooms returns every room
func (s *RoomService) ListRooms(ctx context.Context) ([]*models.Room, error) {
	rooms, err := s.repo.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// UpdateRoom replaces the name and capacity of an existing room. Existing
// bookings are not re-checked against a lowered capacity.
func (s *RoomService) UpdateRoom(ctx context.Context, id string, in models.RoomInput) (*models.Room, error) {
	if err := validateRoom(in); err != nil {
		return nil, err
	}

	room, err := s.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}

	room.Name = in.Name
	room.Capacity = in.Capacity
	if err := s.repo.SaveRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to save room: %w", err)
	}

	slog.InfoContext(ctx, "room updated", utils.Attr("room_id", id), "capacity", room.Capacity)
	s.notifyUpdate(models.ChangeUpdated, room)
	return room, nil
}

// DeleteRoom removes a room. Bookings that reference it are kept and will
// list with a nil room. Deleting a missing room is not an error.
func (s *RoomService) DeleteRoom(ctx context.Context, id string) error {
	err := s.repo.DeleteRoom(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete room: %w", err)
	}

	slog.InfoContext(ctx, "room deleted", utils.Attr("room_id", id))
	s.notifyUpdate(models.ChangeDeleted, &models.Room{ID: id})
	return nil
}

func validateRoom(in models.RoomInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return models.NewInputError("Room name is required")
	}
	if in.Capacity <= 0 {
		return models.NewInputError("Room capacity must be a positive integer")
	}
	return nil
}
