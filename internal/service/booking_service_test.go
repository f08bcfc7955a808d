package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/navikt/roombook/internal/models"
	"github.com/navikt/roombook/internal/repository/memory"
	"github.com/navikt/roombook/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUpdateCallback is a mock for testing callbacks
type MockUpdateCallback struct {
	mock.Mock
}

func (m *MockUpdateCallback) OnBooking(event models.BookingEvent) {
	m.Called(event.Type, event.Booking.ID)
}

func setupBookingService(t *testing.T, capacity int) (*service.BookingService, *service.RoomService, *models.Room) {
	t.Helper()
	repo := memory.NewRepository()
	rooms := service.NewRoomService(repo)
	bookings := service.NewBookingService(repo)

	room, err := rooms.CreateRoom(context.Background(), models.RoomInput{Name: "Oslo", Capacity: capacity})
	require.NoError(t, err)
	return bookings, rooms, room
}

func input(roomID, start, end string) models.BookingInput {
	return models.BookingInput{RoomID: roomID, Date: "2025-05-08", StartTime: start, EndTime: end, Title: "Sync"}
}

func TestBookingService_CreateBooking(t *testing.T) {
	ctx := context.Background()
	svc, _, room := setupBookingService(t, 2)

	t.Run("Accepted", func(t *testing.T) {
		b, err := svc.CreateBooking(ctx, input(room.ID, "09:00", "10:00"))
		require.NoError(t, err)
		assert.NotEmpty(t, b.ID)
		assert.Equal(t, room.ID, b.RoomID)
		assert.Equal(t, "Sync", b.Title)

		stored, err := svc.GetBooking(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b, stored)
	})

	t.Run("CapacityScenario", func(t *testing.T) {
		_, err := svc.CreateBooking(ctx, input(room.ID, "09:30", "10:30"))
		require.NoError(t, err)

		_, err = svc.CreateBooking(ctx, input(room.ID, "09:45", "10:15"))
		assertReason(t, err, models.ReasonCapacityExceeded)

		_, err = svc.CreateBooking(ctx, input(room.ID, "10:30", "11:00"))
		assert.NoError(t, err)
	})

	t.Run("RoomNotFound", func(t *testing.T) {
		_, err := svc.CreateBooking(ctx, input("missing", "09:00", "10:00"))
		assertReason(t, err, models.ReasonRoomNotFound)
		assert.ErrorIs(t, err, models.ErrRoomNotFound)
	})

	t.Run("TimeRulesCheckedBeforeRoom", func(t *testing.T) {
		_, err := svc.CreateBooking(ctx, input("missing", "10:00", "09:00"))
		assertReason(t, err, models.ReasonTimeOrderInvalid)
	})

	t.Run("MalformedTime", func(t *testing.T) {
		_, err := svc.CreateBooking(ctx, input(room.ID, "nine", "10:00"))
		assertReason(t, err, models.ReasonInvalidTimeFormat)
	})
}

func TestBookingService_HalfOpenOverlap(t *testing.T) {
	ctx := context.Background()
	svc, _, room := setupBookingService(t, 1)

	_, err := svc.CreateBooking(ctx, input(room.ID, "09:00", "10:00"))
	require.NoError(t, err)

	_, err = svc.CreateBooking(ctx, input(room.ID, "10:00", "11:00"))
	assert.NoError(t, err, "back to back bookings do not overlap")

	_, err = svc.CreateBooking(ctx, input(room.ID, "09:59", "10:30"))
	assertReason(t, err, models.ReasonCapacityExceeded)
}

func TestBookingService_UpdateBooking(t *testing.T) {
	ctx := context.Background()
	svc, rooms, room := setupBookingService(t, 1)

	b, err := svc.CreateBooking(ctx, input(room.ID, "09:00", "10:00"))
	require.NoError(t, err)

	t.Run("OverlapWithItselfOnly", func(t *testing.T) {
		updated, err := svc.UpdateBooking(ctx, b.ID, input(room.ID, "09:30", "10:30"))
		require.NoError(t, err)
		assert.Equal(t, b.ID, updated.ID)
		assert.Equal(t, "09:30", updated.StartTime)
	})

	t.Run("OverlapWithOther", func(t *testing.T) {
		other, err := svc.CreateBooking(ctx, input(room.ID, "11:00", "12:00"))
		require.NoError(t, err)

		_, err = svc.UpdateBooking(ctx, other.ID, input(room.ID, "10:00", "11:30"))
		assertReason(t, err, models.ReasonCapacityExceeded)

		unchanged, err := svc.GetBooking(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, "11:00", unchanged.StartTime)
	})

	t.Run("MoveToAnotherRoom", func(t *testing.T) {
		second, err := rooms.CreateRoom(ctx, models.RoomInput{Name: "Bergen", Capacity: 1})
		require.NoError(t, err)

		moved, err := svc.UpdateBooking(ctx, b.ID, input(second.ID, "09:30", "10:30"))
		require.NoError(t, err)
		assert.Equal(t, second.ID, moved.RoomID)
	})

	t.Run("InvalidWindow", func(t *testing.T) {
		_, err := svc.UpdateBooking(ctx, b.ID, input(room.ID, "09:00", "09:20"))
		assertReason(t, err, models.ReasonDurationOutOfRange)
	})

	t.Run("MissingBooking", func(t *testing.T) {
		_, err := svc.UpdateBooking(ctx, "missing", input(room.ID, "13:00", "14:00"))
		assert.ErrorIs(t, err, models.ErrBookingNotFound)
	})
}

func TestBookingService_ListBookings(t *testing.T) {
	ctx := context.Background()
	svc, rooms, room := setupBookingService(t, 3)

	b1, err := svc.CreateBooking(ctx, input(room.ID, "09:00", "10:00"))
	require.NoError(t, err)
	other := input(room.ID, "09:00", "10:00")
	other.Date = "2025-05-09"
	_, err = svc.CreateBooking(ctx, other)
	require.NoError(t, err)

	all, err := svc.ListBookings(ctx, models.BookingFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.NotNil(t, all[0].Room)
	assert.Equal(t, "Oslo", all[0].Room.Name)

	byDate, err := svc.ListBookings(ctx, models.BookingFilter{RoomID: room.ID, Date: "2025-05-08"})
	require.NoError(t, err)
	require.Len(t, byDate, 1)
	assert.Equal(t, b1.ID, byDate[0].ID)

	t.Run("RoomDeletionLeavesBookings", func(t *testing.T) {
		require.NoError(t, rooms.DeleteRoom(ctx, room.ID))

		dangling, err := svc.ListBookings(ctx, models.BookingFilter{RoomID: room.ID})
		require.NoError(t, err)
		require.Len(t, dangling, 2)
		assert.Nil(t, dangling[0].Room)

		// and the bookings can still be removed
		require.NoError(t, svc.DeleteBooking(ctx, b1.ID))
		_, err = svc.GetBooking(ctx, b1.ID)
		assert.ErrorIs(t, err, models.ErrBookingNotFound)
	})
}

func TestBookingService_DeleteBooking(t *testing.T) {
	ctx := context.Background()
	svc, _, room := setupBookingService(t, 1)

	b, err := svc.CreateBooking(ctx, input(room.ID, "09:00", "10:00"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBooking(ctx, b.ID))
	assert.NoError(t, svc.DeleteBooking(ctx, b.ID), "deleting twice is fine")

	// the slot is free again
	_, err = svc.CreateBooking(ctx, input(room.ID, "09:00", "10:00"))
	assert.NoError(t, err)
}

func TestBookingService_Callbacks(t *testing.T) {
	ctx := context.Background()
	svc, _, room := setupBookingService(t, 1)

	callback := &MockUpdateCallback{}
	svc.RegisterUpdateCallback(callback.OnBooking)

	callback.On("OnBooking", models.ChangeCreated, mock.Anything).Once()
	b, err := svc.CreateBooking(ctx, input(room.ID, "09:00", "10:00"))
	require.NoError(t, err)

	callback.On("OnBooking", models.ChangeUpdated, b.ID).Once()
	_, err = svc.UpdateBooking(ctx, b.ID, input(room.ID, "09:00", "11:00"))
	require.NoError(t, err)

	callback.On("OnBooking", models.ChangeDeleted, b.ID).Once()
	require.NoError(t, svc.DeleteBooking(ctx, b.ID))

	// rejected and no-op operations do not notify
	_, err = svc.CreateBooking(ctx, input(room.ID, "10:00", "09:00"))
	require.Error(t, err)
	require.NoError(t, svc.DeleteBooking(ctx, b.ID))

	callback.AssertExpectations(t)
	callback.AssertNumberOfCalls(t, "OnBooking", 3)
}

func TestBookingService_ConcurrentCreatesRespectCapacity(t *testing.T) {
	ctx := context.Background()
	svc, _, room := setupBookingService(t, 2)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateBooking(ctx, input(room.ID, "09:00", "10:00"))

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				accepted++
				return
			}
			if rej, ok := models.AsRejection(err); ok && rej.Reason == models.ReasonCapacityExceeded {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, accepted)
	assert.Equal(t, 18, rejected)
}

func TestBookingService_LockFailure(t *testing.T) {
	repo := memory.NewRepository()
	svc := service.NewBookingService(repo)

	ctx, cancel := context.WithCancel(context.Background())
	unlock, err := repo.LockSlot(ctx, "room1", "2025-05-08")
	require.NoError(t, err)
	defer unlock()
	cancel()

	_, err = svc.CreateBooking(ctx, input("room1", "09:00", "10:00"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
