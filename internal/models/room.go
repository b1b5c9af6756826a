package models

import "time"

// Room is a physical teaching space. Rooms are not scoped by department;
// a generation run for any department may draw on the full room pool.
type Room struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Capacity  int       `db:"capacity" json:"capacity"`
	IsLab     bool      `db:"is_lab" json:"is_lab"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RoomFilter captures the supported filters for listing rooms.
type RoomFilter struct {
	IsLab     *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
