package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/navikt/roombook/internal/models"
	"github.com/navikt/roombook/internal/repository/memory"
	"github.com/navikt/roombook/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository lets tests inject storage failures
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) SaveRoom(ctx context.Context, room *models.Room) error {
	return m.Called(ctx, room).Error(0)
}

func (m *MockRepository) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	args := m.Called(ctx, id)
	room, _ := args.Get(0).(*models.Room)
	return room, args.Error(1)
}

func (m *MockRepository) ListRooms(ctx context.Context) ([]*models.Room, error) {
	args := m.Called(ctx)
	rooms, _ := args.Get(0).([]*models.Room)
	return rooms, args.Error(1)
}

func (m *MockRepository) DeleteRoom(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) SaveBooking(ctx context.Context, booking *models.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *MockRepository) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	booking, _ := args.Get(0).(*models.Booking)
	return booking, args.Error(1)
}

func (m *MockRepository) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	args := m.Called(ctx, filter)
	bookings, _ := args.Get(0).([]*models.Booking)
	return bookings, args.Error(1)
}

func (m *MockRepository) DeleteBooking(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) LockSlot(ctx context.Context, roomID, date string) (func(), error) {
	args := m.Called(ctx, roomID, date)
	return func() {}, args.Error(0)
}

func (m *MockRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRepository) Close() error {
	return nil
}

func TestRoomService_CRUD(t *testing.T) {
	ctx := context.Background()
	svc := service.NewRoomService(memory.NewRepository())

	room, err := svc.CreateRoom(ctx, models.RoomInput{Name: "Oslo", Capacity: 4})
	require.NoError(t, err)
	assert.NotEmpty(t, room.ID)

	got, err := svc.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, room, got)

	updated, err := svc.UpdateRoom(ctx, room.ID, models.RoomInput{Name: "Oslo Large", Capacity: 8})
	require.NoError(t, err)
	assert.Equal(t, room.ID, updated.ID)
	assert.Equal(t, 8, updated.Capacity)

	rooms, err := svc.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Oslo Large", rooms[0].Name)

	require.NoError(t, svc.DeleteRoom(ctx, room.ID))
	_, err = svc.GetRoom(ctx, room.ID)
	assert.ErrorIs(t, err, models.ErrRoomNotFound)
	assert.NoError(t, svc.DeleteRoom(ctx, room.ID), "deleting twice is fine")
}

func TestRoomService_Validation(t *testing.T) {
	ctx := context.Background()
	svc := service.NewRoomService(memory.NewRepository())

	for name, in := range map[string]models.RoomInput{
		"empty name":        {Name: "  ", Capacity: 2},
		"zero capacity":     {Name: "Oslo", Capacity: 0},
		"negative capacity": {Name: "Oslo", Capacity: -1},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateRoom(ctx, in)
			var inputErr *models.InputError
			assert.ErrorAs(t, err, &inputErr)
		})
	}

	_, err := svc.UpdateRoom(ctx, "missing", models.RoomInput{Name: "Oslo", Capacity: 1})
	assert.ErrorIs(t, err, models.ErrRoomNotFound)
}

func TestRoomService_Callbacks(t *testing.T) {
	ctx := context.Background()
	svc := service.NewRoomService(memory.NewRepository())

	var events []models.RoomEvent
	svc.RegisterUpdateCallback(func(e models.RoomEvent) { events = append(events, e) })

	room, err := svc.CreateRoom(ctx, models.RoomInput{Name: "Oslo", Capacity: 1})
	require.NoError(t, err)
	_, err = svc.UpdateRoom(ctx, room.ID, models.RoomInput{Name: "Oslo", Capacity: 2})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteRoom(ctx, room.ID))
	require.NoError(t, svc.DeleteRoom(ctx, room.ID))

	require.Len(t, events, 3)
	assert.Equal(t, models.ChangeCreated, events[0].Type)
	assert.Equal(t, models.ChangeUpdated, events[1].Type)
	assert.Equal(t, models.ChangeDeleted, events[2].Type)
	assert.Equal(t, room.ID, events[2].Room.ID)
	assert.False(t, events[0].At.IsZero())
}

func TestServices_StoreErrors(t *testing.T) {
	ctx := context.Background()
	storeErr := errors.New("connection reset")

	t.Run("ListRooms", func(t *testing.T) {
		repo := &MockRepository{}
		repo.On("ListRooms", mock.Anything).Return(nil, storeErr)

		_, err := service.NewRoomService(repo).ListRooms(ctx)
		assert.ErrorIs(t, err, storeErr)
	})

	t.Run("DeleteRoom", func(t *testing.T) {
		repo := &MockRepository{}
		repo.On("DeleteRoom", mock.Anything, "r1").Return(storeErr)

		err := service.NewRoomService(repo).DeleteRoom(ctx, "r1")
		assert.ErrorIs(t, err, storeErr)
	})

	t.Run("CreateBookingRoomLookup", func(t *testing.T) {
		repo := &MockRepository{}
		repo.On("LockSlot", mock.Anything, "r1", "2025-05-08").Return(nil)
		repo.On("GetRoom", mock.Anything, "r1").Return(nil, storeErr)

		_, err := service.NewBookingService(repo).CreateBooking(ctx, input("r1", "09:00", "10:00"))
		assert.ErrorIs(t, err, storeErr)
		_, isRejection := models.AsRejection(err)
		assert.False(t, isRejection)
	})

	t.Run("CreateBookingSave", func(t *testing.T) {
		repo := &MockRepository{}
		repo.On("LockSlot", mock.Anything, "r1", "2025-05-08").Return(nil)
		repo.On("GetRoom", mock.Anything, "r1").Return(&models.Room{ID: "r1", Capacity: 1}, nil)
		repo.On("ListBookings", mock.Anything, models.BookingFilter{RoomID: "r1", Date: "2025-05-08"}).Return([]*models.Booking{}, nil)
		repo.On("SaveBooking", mock.Anything, mock.AnythingOfType("*models.Booking")).Return(storeErr)

		_, err := service.NewBookingService(repo).CreateBooking(ctx, input("r1", "09:00", "10:00"))
		assert.ErrorIs(t, err, storeErr)
		repo.AssertExpectations(t)
	})

	t.Run("InvalidWindowNeverTouchesStore", func(t *testing.T) {
		repo := &MockRepository{}

		_, err := service.NewBookingService(repo).CreateBooking(ctx, input("r1", "07:00", "08:00"))
		assertReason(t, err, models.ReasonOutsideBusinessHours)
		repo.AssertNotCalled(t, "LockSlot", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("GetBooking", func(t *testing.T) {
		repo := &MockRepository{}
		repo.On("GetBooking", mock.Anything, "b1").Return(nil, storeErr)

		_, err := service.NewBookingService(repo).GetBooking(ctx, "b1")
		assert.ErrorIs(t, err, storeErr)
		assert.NotErrorIs(t, err, models.ErrBookingNotFound)
	})
}
