package models

import "time"

// StudentBatch is a cohort of students. A main batch has no parent and
// represents the full cohort for theory lectures. A sub-batch has
// ParentBatchID set and represents a lab group; sub-batch sizes
// typically partition the parent (commonly in halves). The parent/child
// graph is exactly two levels deep by contract.
type StudentBatch struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Size             int       `db:"size" json:"size"`
	DepartmentID     string    `db:"department_id" json:"department_id"`
	ParentBatchID    *string   `db:"parent_batch_id" json:"parent_batch_id,omitempty"`
	MaxClassesPerDay int       `db:"max_classes_per_day" json:"max_classes_per_day"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// IsSubBatch reports whether this batch is a lab sub-batch of a main batch.
func (b StudentBatch) IsSubBatch() bool {
	return b.ParentBatchID != nil && *b.ParentBatchID != ""
}

// StudentBatchFilter captures filtering options for listing batches.
type StudentBatchFilter struct {
	DepartmentID string
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
