// Package mongo provides a MongoDB implementation of the repository interface
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/navikt/roombook/internal/config"
	"github.com/navikt/roombook/internal/models"
)

const (
	roomsCollection    = "rooms"
	bookingsCollection = "bookings"
	locksCollection    = "booking_locks"

	lockRetryInterval = 25 * time.Millisecond
)

// slotLock is an advisory lock document; at most one exists per room/date
type slotLock struct {
	ID        string    `bson:"_id"`
	Token     string    `bson:"token"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// Repository implements the repository interface with MongoDB storage
type Repository struct {
	client   *mongo.Client
	rooms    *mongo.Collection
	bookings *mongo.Collection
	locks    *mongo.Collection
	lockTTL  time.Duration
}

// NewRepository connects to MongoDB and prepares the indexes the repository relies on
func NewRepository(cfg config.MongoConfig, lockTTL time.Duration) (*Repository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.Database)
	r := &Repository{
		client:   client,
		rooms:    db.Collection(roomsCollection),
		bookings: db.Collection(bookingsCollection),
		locks:    db.Collection(locksCollection),
		lockTTL:  lockTTL,
	}

	if err := r.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return r, nil
}

func (r *Repository) ensureIndexes(ctx context.Context) error {
	_, err := r.bookings.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "room", Value: 1}, {Key: "date", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create booking index: %w", err)
	}

	// the server reaps expired locks on its own; LockSlot also reclaims them eagerly
	_, err = r.locks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("failed to create lock index: %w", err)
	}
	return nil
}

// Close disconnects from MongoDB
func (r *Repository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

// Ping checks the MongoDB connection
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

// SaveRoom creates or replaces a room
func (r *Repository) SaveRoom(ctx context.Context, room *models.Room) error {
	return r.upsert(ctx, r.rooms, room.ID, room)
}

// GetRoom retrieves a room by ID
func (r *Repository) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	if err := r.findByID(ctx, r.rooms, id, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// ListRooms returns all rooms ordered by name
func (r *Repository) ListRooms(ctx context.Context) ([]*models.Room, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.rooms.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	rooms := make([]*models.Room, 0)
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}
	return rooms, nil
}

// DeleteRoom removes a room by ID
func (r *Repository) DeleteRoom(ctx context.Context, id string) error {
	return r.deleteByID(ctx, r.rooms, id)
}

// SaveBooking creates or replaces a booking
func (r *Repository) SaveBooking(ctx context.Context, booking *models.Booking) error {
	return r.upsert(ctx, r.bookings, booking.ID, booking)
}

// GetBooking retrieves a booking by ID
func (r *Repository) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.findByID(ctx, r.bookings, id, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListBookings returns the bookings matching the filter ordered by date and start time
func (r *Repository) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	query := bson.M{}
	if filter.RoomID != "" {
		query["room"] = filter.RoomID
	}
	if filter.Date != "" {
		query["date"] = filter.Date
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "date", Value: 1},
		{Key: "startTime", Value: 1},
		{Key: "_id", Value: 1},
	})
	cursor, err := r.bookings.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*models.Booking, 0)
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// DeleteBooking removes a booking by ID
func (r *Repository) DeleteBooking(ctx context.Context, id string) error {
	return r.deleteByID(ctx, r.bookings, id)
}

// LockSlot inserts a lock document for the room/date slot. A duplicate key
// means someone else holds it; expired holders are removed before retrying.
func (r *Repository) LockSlot(ctx context.Context, roomID, date string) (func(), error) {
	key := models.SlotKey(roomID, date)
	token := uuid.NewString()

	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		now := time.Now().UTC()
		_, err := r.locks.InsertOne(ctx, slotLock{
			ID:        key,
			Token:     token,
			ExpiresAt: now.Add(r.lockTTL),
			CreatedAt: now,
		})
		if err == nil {
			return func() { r.unlock(key, token) }, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("failed to acquire slot lock: %w", err)
		}

		if _, err := r.locks.DeleteOne(ctx, bson.M{"_id": key, "expires_at": bson.M{"$lt": now}}); err != nil {
			return nil, fmt.Errorf("failed to reclaim stale slot lock: %w", err)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (r *Repository) unlock(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := r.locks.DeleteOne(ctx, bson.M{"_id": key, "token": token}); err != nil {
		slog.Warn("failed to release slot lock", "key", key, "err", err)
	}
}

func (r *Repository) upsert(ctx context.Context, coll *mongo.Collection, id string, doc any) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, opts); err != nil {
		return fmt.Errorf("failed to save %s document: %w", coll.Name(), err)
	}
	return nil
}

func (r *Repository) findByID(ctx context.Context, coll *mongo.Collection, id string, out any) error {
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.ErrNotFound
		}
		return fmt.Errorf("failed to get %s document: %w", coll.Name(), err)
	}
	return nil
}

func (r *Repository) deleteByID(ctx context.Context, coll *mongo.Collection, id string) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete %s document: %w", coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
