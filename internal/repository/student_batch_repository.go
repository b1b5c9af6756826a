package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

// StudentBatchRepository handles persistence for student batches.
type StudentBatchRepository struct {
	db *sqlx.DB
}

// NewStudentBatchRepository creates a new repository instance.
func NewStudentBatchRepository(db *sqlx.DB) *StudentBatchRepository {
	return &StudentBatchRepository{db: db}
}

const studentBatchColumns = "id, name, size, department_id, parent_batch_id, max_classes_per_day, created_at, updated_at"

// ListByDepartment returns every batch (main and sub-batches) scoped to a
// department.
func (r *StudentBatchRepository) ListByDepartment(ctx context.Context, departmentID string) ([]models.StudentBatch, error) {
	query := fmt.Sprintf("SELECT %s FROM student_batches WHERE department_id = $1 ORDER BY name ASC", studentBatchColumns)
	var batches []models.StudentBatch
	if err := r.db.SelectContext(ctx, &batches, query, departmentID); err != nil {
		return nil, fmt.Errorf("list student batches by department: %w", err)
	}
	return batches, nil
}

// List returns batches matching filters with pagination metadata.
func (r *StudentBatchRepository) List(ctx context.Context, filter models.StudentBatchFilter) ([]models.StudentBatch, int, error) {
	base := "FROM student_batches WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.DepartmentID != "" {
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", len(args)+1))
		args = append(args, filter.DepartmentID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", studentBatchColumns, base, size, offset)
	var batches []models.StudentBatch
	if err := r.db.SelectContext(ctx, &batches, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list student batches: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count student batches: %w", err)
	}
	return batches, total, nil
}

// FindByID fetches a batch by ID.
func (r *StudentBatchRepository) FindByID(ctx context.Context, id string) (*models.StudentBatch, error) {
	query := fmt.Sprintf("SELECT %s FROM student_batches WHERE id = $1", studentBatchColumns)
	var batch models.StudentBatch
	if err := r.db.GetContext(ctx, &batch, query, id); err != nil {
		return nil, err
	}
	return &batch, nil
}

// Create persists a new batch.
func (r *StudentBatchRepository) Create(ctx context.Context, batch *models.StudentBatch) error {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = now
	}
	batch.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO student_batches (%s) VALUES (:id, :name, :size, :department_id, :parent_batch_id, :max_classes_per_day, :created_at, :updated_at)`, studentBatchColumns)
	if _, err := r.db.NamedExecContext(ctx, query, batch); err != nil {
		return fmt.Errorf("create student batch: %w", err)
	}
	return nil
}

// Update modifies a batch.
func (r *StudentBatchRepository) Update(ctx context.Context, batch *models.StudentBatch) error {
	batch.UpdatedAt = time.Now().UTC()
	const query = `UPDATE student_batches SET name = :name, size = :size, parent_batch_id = :parent_batch_id,
		max_classes_per_day = :max_classes_per_day, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, batch); err != nil {
		return fmt.Errorf("update student batch: %w", err)
	}
	return nil
}

// Delete removes a batch record.
func (r *StudentBatchRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM student_batches WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete student batch: %w", err)
	}
	return nil
}
