package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

// PinnedSlotRepository handles persistence for pinned slots.
type PinnedSlotRepository struct {
	db *sqlx.DB
}

// NewPinnedSlotRepository creates a new repository instance.
func NewPinnedSlotRepository(db *sqlx.DB) *PinnedSlotRepository {
	return &PinnedSlotRepository{db: db}
}

const pinnedSlotColumns = "id, subject_id, department_id, day, slot_index, created_at"

// ListByDepartment returns every pinned slot scoped to a department.
func (r *PinnedSlotRepository) ListByDepartment(ctx context.Context, departmentID string) ([]models.PinnedSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM pinned_slots WHERE department_id = $1 ORDER BY day ASC, slot_index ASC", pinnedSlotColumns)
	var pins []models.PinnedSlot
	if err := r.db.SelectContext(ctx, &pins, query, departmentID); err != nil {
		return nil, fmt.Errorf("list pinned slots by department: %w", err)
	}
	return pins, nil
}

// Create persists a new pinned slot.
func (r *PinnedSlotRepository) Create(ctx context.Context, pin *models.PinnedSlot) error {
	if pin.ID == "" {
		pin.ID = uuid.NewString()
	}
	if pin.CreatedAt.IsZero() {
		pin.CreatedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(`INSERT INTO pinned_slots (%s) VALUES (:id, :subject_id, :department_id, :day, :slot_index, :created_at)`, pinnedSlotColumns)
	if _, err := r.db.NamedExecContext(ctx, query, pin); err != nil {
		return fmt.Errorf("create pinned slot: %w", err)
	}
	return nil
}

// Delete removes a pinned slot record.
func (r *PinnedSlotRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pinned_slots WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete pinned slot: %w", err)
	}
	return nil
}
