package models

// Room represents a bookable meeting room
type Room struct {
	ID       string `json:"_id" bson:"_id"`
	Name     string `json:"name" bson:"name"`
	Capacity int    `json:"capacity" bson:"capacity"` // max simultaneously overlapping bookings
}

// RoomInput is the writable part of a room
type RoomInput struct {
	Name     string `json:"name" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,gt=0"`
}
