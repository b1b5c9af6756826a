package models

import "time"

// Subject ties a weekly lecture count to a teacher and a batch. A subject
// is schedulable only when both BatchID and TeacherID are set. If its
// batch is a sub-batch the subject is a lab subject; otherwise a theory
// subject.
type Subject struct {
	ID             string    `db:"id" json:"id"`
	Code           string    `db:"code" json:"code"`
	Name           string    `db:"name" json:"name"`
	WeeklyLectures int       `db:"weekly_lectures" json:"weekly_lectures"`
	DepartmentID   string    `db:"department_id" json:"department_id"`
	BatchID        *string   `db:"batch_id" json:"batch_id,omitempty"`
	TeacherID      *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Schedulable reports whether the subject has both a batch and a teacher
// assigned, and is therefore eligible for scheduling.
func (s Subject) Schedulable() bool {
	return s.BatchID != nil && *s.BatchID != "" && s.TeacherID != nil && *s.TeacherID != ""
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	DepartmentID string
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
