package models

// Booking represents a reservation of a room for a time window on a given date.
// Times are kept as the "HH:MM" strings the client sent.
type Booking struct {
	ID          string `json:"_id" bson:"_id"`
	RoomID      string `json:"room" bson:"room"`
	Date        string `json:"date" bson:"date"`
	StartTime   string `json:"startTime" bson:"startTime"`
	EndTime     string `json:"endTime" bson:"endTime"`
	Title       string `json:"title,omitempty" bson:"title,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// BookingInput is the writable part of a booking, used by create and update
type BookingInput struct {
	RoomID      string `json:"room" validate:"required"`
	Date        string `json:"date" validate:"required"`
	StartTime   string `json:"startTime" validate:"required"`
	EndTime     string `json:"endTime" validate:"required"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// BookingWithRoom is a booking with its room reference resolved.
// Room is nil when the referenced room has been deleted.
type BookingWithRoom struct {
	ID          string `json:"_id"`
	Room        *Room  `json:"room"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// BookingFilter narrows a booking listing. Empty fields match everything.
type BookingFilter struct {
	RoomID string
	Date   string
}

// Matches reports whether the booking satisfies the filter
func (f BookingFilter) Matches(b *Booking) bool {
	if f.RoomID != "" && b.RoomID != f.RoomID {
		return false
	}
	if f.Date != "" && b.Date != f.Date {
		return false
	}
	return true
}

// Apply copies the input fields onto the booking, leaving the ID untouched
func (in BookingInput) Apply(b *Booking) {
	b.RoomID = in.RoomID
	b.Date = in.Date
	b.StartTime = in.StartTime
	b.EndTime = in.EndTime
	b.Title = in.Title
	b.Description = in.Description
}

// WithRoom resolves the booking's room reference
func (b *Booking) WithRoom(room *Room) BookingWithRoom {
	return BookingWithRoom{
		ID:          b.ID,
		Room:        room,
		Date:        b.Date,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Title:       b.Title,
		Description: b.Description,
	}
}

// SlotKey identifies a room on a date, the unit bookings are serialized on
func SlotKey(roomID, date string) string {
	return roomID + ":" + date
}
