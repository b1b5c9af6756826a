package models

import "time"

// Department scopes all timetabling input (teachers, batches, subjects,
// pinned slots) to one organizational unit. Rooms are global (see Room).
type Department struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
