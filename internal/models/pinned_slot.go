package models

import "time"

// PinnedSlot forces a subject occurrence at an exact (day, slot). Multiple
// pins per subject are allowed, including several on the same day for
// multi-slot blocks (e.g. a 2-hour elective). Unique on (subject, day, slot).
type PinnedSlot struct {
	ID           string    `db:"id" json:"id"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	Day          int       `db:"day" json:"day"`
	SlotIndex    int       `db:"slot_index" json:"slot_index"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
