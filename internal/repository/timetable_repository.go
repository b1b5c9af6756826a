package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

// TimetableRepository persists generated timetables. Transaction-bearing
// methods accept an optional sqlx.ExtContext so the orchestrator can run
// the delete-old-drafts-then-insert-new sequence atomically.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a new timetable, defaulting its status to DRAFT.
func (r *TimetableRepository) Create(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error {
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	if timetable.Status == "" {
		timetable.Status = models.TimetableStatusDraft
	}
	if timetable.CreatedAt.IsZero() {
		timetable.CreatedAt = time.Now().UTC()
	}

	target := r.exec(exec)
	const query = `INSERT INTO timetables (id, department_id, status, variant_number, created_at)
VALUES (:id, :department_id, :status, :variant_number, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, query, timetable); err != nil {
		return fmt.Errorf("create timetable: %w", err)
	}
	return nil
}

// DeleteDraftsByDepartment removes every DRAFT timetable for a department,
// run before each generation attempt so stale variants never accumulate.
func (r *TimetableRepository) DeleteDraftsByDepartment(ctx context.Context, exec sqlx.ExtContext, departmentID string) error {
	target := r.exec(exec)
	const query = `DELETE FROM timetables WHERE department_id = $1 AND status = $2`
	if _, err := target.ExecContext(ctx, query, departmentID, models.TimetableStatusDraft); err != nil {
		return fmt.Errorf("delete draft timetables: %w", err)
	}
	return nil
}

// FindByID loads a timetable by its identifier.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	const query = `SELECT id, department_id, status, variant_number, created_at FROM timetables WHERE id = $1`
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, id); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// ListByDepartment returns timetables for a department, optionally
// filtered by status.
func (r *TimetableRepository) ListByDepartment(ctx context.Context, departmentID string, status models.TimetableStatus) ([]models.Timetable, error) {
	query := `SELECT id, department_id, status, variant_number, created_at FROM timetables WHERE department_id = $1`
	args := []interface{}{departmentID}
	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
	}
	query += " ORDER BY variant_number ASC"

	var timetables []models.Timetable
	if err := r.db.SelectContext(ctx, &timetables, query, args...); err != nil {
		return nil, fmt.Errorf("list timetables by department: %w", err)
	}
	return timetables, nil
}

// Publish marks a timetable PUBLISHED and demotes any other PUBLISHED
// timetable in the same department back to DRAFT, within a transaction
// supplied by the caller so the swap is atomic.
func (r *TimetableRepository) Publish(ctx context.Context, exec sqlx.ExtContext, departmentID, timetableID string) error {
	target := r.exec(exec)

	const demote = `UPDATE timetables SET status = $1 WHERE department_id = $2 AND status = $3 AND id <> $4`
	if _, err := target.ExecContext(ctx, demote, models.TimetableStatusDraft, departmentID, models.TimetableStatusPublished, timetableID); err != nil {
		return fmt.Errorf("demote published timetable: %w", err)
	}

	const promote = `UPDATE timetables SET status = $1 WHERE id = $2`
	result, err := target.ExecContext(ctx, promote, models.TimetableStatusPublished, timetableID)
	if err != nil {
		return fmt.Errorf("publish timetable: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("publish timetable rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteOtherDrafts removes every DRAFT timetable for a department except
// keepID. Approve calls this after Publish so that a department ends up
// with exactly the newly-published timetable and nothing else.
func (r *TimetableRepository) DeleteOtherDrafts(ctx context.Context, exec sqlx.ExtContext, departmentID, keepID string) error {
	target := r.exec(exec)
	const query = `DELETE FROM timetables WHERE department_id = $1 AND status = $2 AND id <> $3`
	if _, err := target.ExecContext(ctx, query, departmentID, models.TimetableStatusDraft, keepID); err != nil {
		return fmt.Errorf("delete other draft timetables: %w", err)
	}
	return nil
}
