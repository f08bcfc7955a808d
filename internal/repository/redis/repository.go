// Package redis provides a Redis/Valkey implementation of the repository interface
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/navikt/roombook/internal/config"
	"github.com/navikt/roombook/internal/models"
)

// lockRetryInterval is how long LockSlot waits between attempts
const lockRetryInterval = 25 * time.Millisecond

// releaseScript deletes the lock only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Repository implements the repository interface with Redis storage.
// Rooms and bookings are JSON documents; each room/date slot has a set of
// booking IDs so the overlap check reads only that slot.
type Repository struct {
	client    *redis.Client
	keyPrefix string
	lockTTL   time.Duration
}

// NewRepository creates a new Redis repository
func NewRepository(cfg config.RedisConfig, lockTTL time.Duration) (*Repository, error) {
	var client *redis.Client

	// Use URI if provided, otherwise build connection from individual parameters
	if cfg.URI != "" {
		opt, err := redis.ParseURL(cfg.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URI: %w", err)
		}

		// Use DB from config if not specified in the URI
		if opt.DB == 0 {
			opt.DB = cfg.DB
		}

		// Use password from config if not in URI
		if opt.Password == "" && cfg.Password != "" {
			opt.Password = cfg.Password
		}

		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Repository{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		lockTTL:   lockTTL,
	}, nil
}

// Close closes the Redis connection
func (r *Repository) Close() error {
	return r.client.Close()
}

// Ping checks the Redis connection
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Repository) roomKey(id string) string {
	return fmt.Sprintf("%srooms:%s", r.keyPrefix, id)
}

func (r *Repository) bookingKey(id string) string {
	return fmt.Sprintf("%sbookings:%s", r.keyPrefix, id)
}

func (r *Repository) slotKey(roomID, date string) string {
	return fmt.Sprintf("%sslots:%s", r.keyPrefix, models.SlotKey(roomID, date))
}

func (r *Repository) lockKey(roomID, date string) string {
	return fmt.Sprintf("%slocks:%s", r.keyPrefix, models.SlotKey(roomID, date))
}

// SaveRoom creates or replaces a room
func (r *Repository) SaveRoom(ctx context.Context, room *models.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	if err := r.client.Set(ctx, r.roomKey(room.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}
	return nil
}

// GetRoom retrieves a room by ID
func (r *Repository) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	if err := r.getDocument(ctx, r.roomKey(id), &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// ListRooms returns all rooms ordered by name
func (r *Repository) ListRooms(ctx context.Context) ([]*models.Room, error) {
	keys, err := r.client.Keys(ctx, r.roomKey("*")).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	rooms := make([]*models.Room, 0, len(keys))
	err = r.loadDocuments(ctx, keys, func(data []byte) error {
		var room models.Room
		if err := json.Unmarshal(data, &room); err != nil {
			return err
		}
		rooms = append(rooms, &room)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Name != rooms[j].Name {
			return rooms[i].Name < rooms[j].Name
		}
		return rooms[i].ID < rooms[j].ID
	})
	return rooms, nil
}

// DeleteRoom removes a room by ID
func (r *Repository) DeleteRoom(ctx context.Context, id string) error {
	deleted, err := r.client.Del(ctx, r.roomKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	if deleted == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SaveBooking creates or replaces a booking and keeps the slot index in step
func (r *Repository) SaveBooking(ctx context.Context, booking *models.Booking) error {
	data, err := json.Marshal(booking)
	if err != nil {
		return fmt.Errorf("failed to marshal booking: %w", err)
	}

	previous, err := r.GetBooking(ctx, booking.ID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.bookingKey(booking.ID), data, 0)
		if previous != nil && (previous.RoomID != booking.RoomID || previous.Date != booking.Date) {
			pipe.SRem(ctx, r.slotKey(previous.RoomID, previous.Date), booking.ID)
		}
		pipe.SAdd(ctx, r.slotKey(booking.RoomID, booking.Date), booking.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// GetBooking retrieves a booking by ID
func (r *Repository) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.getDocument(ctx, r.bookingKey(id), &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListBookings returns bookings matching the filter ordered by date and start time.
// A filter on both room and date is answered from the slot index.
func (r *Repository) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	var keys []string

	if filter.RoomID != "" && filter.Date != "" {
		ids, err := r.client.SMembers(ctx, r.slotKey(filter.RoomID, filter.Date)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read slot index: %w", err)
		}
		keys = make([]string, 0, len(ids))
		for _, id := range ids {
			keys = append(keys, r.bookingKey(id))
		}
	} else {
		var err error
		keys, err = r.client.Keys(ctx, r.bookingKey("*")).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to list bookings: %w", err)
		}
	}

	bookings := make([]*models.Booking, 0, len(keys))
	err := r.loadDocuments(ctx, keys, func(data []byte) error {
		var booking models.Booking
		if err := json.Unmarshal(data, &booking); err != nil {
			return err
		}
		if filter.Matches(&booking) {
			bookings = append(bookings, &booking)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

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
	return bookings, nil
}

// DeleteBooking removes a booking and its slot index entry
func (r *Repository) DeleteBooking(ctx context.Context, id string) error {
	booking, err := r.GetBooking(ctx, id)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.bookingKey(id))
		pipe.SRem(ctx, r.slotKey(booking.RoomID, booking.Date), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return nil
}

// LockSlot takes a SET NX lock for the room/date slot, retrying until ctx is done.
// The lock expires after the configured TTL if it is never released.
func (r *Repository) LockSlot(ctx context.Context, roomID, date string) (func(), error) {
	key := r.lockKey(roomID, date)
	token := uuid.NewString()

	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		acquired, err := r.client.SetNX(ctx, key, token, r.lockTTL).Result()
		if err == nil && acquired {
			return func() { r.unlock(key, token) }, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err != nil {
			return nil, fmt.Errorf("failed to acquire slot lock: %w", err)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (r *Repository) unlock(key, token string) {
	// the request context may already be cancelled here
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, r.client, []string{key}, token).Err(); err != nil {
		slog.Warn("failed to release slot lock", "key", key, "err", err)
	}
}

func (r *Repository) getDocument(ctx context.Context, key string, out any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.ErrNotFound
		}
		return fmt.Errorf("failed to get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

// loadDocuments fetches keys with a single MGET and hands each value to fn.
// Missing keys are skipped; documents fn cannot decode are logged and skipped.
func (r *Repository) loadDocuments(ctx context.Context, keys []string, fn func([]byte) error) error {
	if len(keys) == 0 {
		return nil
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return fmt.Errorf("failed to get documents: %w", err)
	}

	for i, v := range values {
		if v == nil {
			continue
		}

		strData, ok := v.(string)
		if !ok {
			continue
		}

		if err := fn([]byte(strData)); err != nil {
			slog.Warn("skipping undecodable document", "key", keys[i], "err", err)
		}
	}
	return nil
}
