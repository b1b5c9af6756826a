package models

import "time"

// Teacher represents an instructor record. PreferredStartSlot/EndSlot
// define a half-open preference window [start, end) over the grid's
// per-day slot indices; MaxClassesPerDay bounds daily load.
type Teacher struct {
	ID                 string    `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	DepartmentID       string    `db:"department_id" json:"department_id"`
	PreferredStartSlot int       `db:"preferred_start_slot" json:"preferred_start_slot"`
	PreferredEndSlot   int       `db:"preferred_end_slot" json:"preferred_end_slot"`
	MaxClassesPerDay   int       `db:"max_classes_per_day" json:"max_classes_per_day"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	DepartmentID string
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
