package models

import "time"

// ChangeType describes what happened to an entity
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// BookingEvent is published whenever a booking changes
type BookingEvent struct {
	Type    ChangeType `json:"type"`
	Booking *Booking   `json:"booking"`
	At      time.Time  `json:"at"`
}

// RoomEvent is published whenever a room changes
type RoomEvent struct {
	Type ChangeType `json:"type"`
	Room *Room      `json:"room"`
	At   time.Time  `json:"at"`
}
