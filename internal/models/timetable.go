package models

import "time"

// TimetableStatus is the lifecycle phase of a generated Timetable.
type TimetableStatus string

const (
	TimetableStatusDraft     TimetableStatus = "DRAFT"
	TimetableStatusPublished TimetableStatus = "PUBLISHED"
)

// Timetable is one generated weekly schedule variant for a department.
// Deleting a Timetable removes its slots (TimetableSlot.TimetableID is
// a cascading foreign key in the Postgres adapter's schema).
type Timetable struct {
	ID            string          `db:"id" json:"id"`
	DepartmentID  string          `db:"department_id" json:"department_id"`
	Status        TimetableStatus `db:"status" json:"status"`
	VariantNumber int             `db:"variant_number" json:"variant_number"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// TimetableSlot is one concrete class occurrence within a Timetable.
type TimetableSlot struct {
	ID          string    `db:"id" json:"id"`
	TimetableID string    `db:"timetable_id" json:"timetable_id"`
	Day         int       `db:"day" json:"day"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	RoomID      string    `db:"room_id" json:"room_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	BatchID     string    `db:"batch_id" json:"batch_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
