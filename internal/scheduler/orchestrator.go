package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-adp-api/internal/models"
	schedulererrors "github.com/noah-isme/sma-adp-api/pkg/errors"
	"github.com/noah-isme/sma-adp-api/pkg/config"
)

// Repo is the data repository the orchestrator consumes, duck-
// typed against the data model: list-by-department for Teacher, Subject,
// StudentBatch and PinnedSlot; list-all for Room; create/delete Timetable;
// bulk-create TimetableSlot; get/update Timetable. Both the Postgres
// repositories and repository.MemoryStore satisfy it.
type Repo interface {
	FindDepartmentByID(ctx context.Context, id string) (*models.Department, error)
	ListAllRooms(ctx context.Context) ([]models.Room, error)
	ListTeachersByDepartment(ctx context.Context, departmentID string) ([]models.Teacher, error)
	ListBatchesByDepartment(ctx context.Context, departmentID string) ([]models.StudentBatch, error)
	ListSubjectsByDepartment(ctx context.Context, departmentID string) ([]models.Subject, error)
	ListPinsByDepartment(ctx context.Context, departmentID string) ([]models.PinnedSlot, error)

	CreateTimetable(ctx context.Context, exec sqlx.ExtContext, t *models.Timetable) error
	DeleteDraftsByDepartment(ctx context.Context, exec sqlx.ExtContext, departmentID string) error
	FindTimetableByID(ctx context.Context, id string) (*models.Timetable, error)
	ListTimetablesByDepartment(ctx context.Context, departmentID string, status models.TimetableStatus) ([]models.Timetable, error)
	PublishTimetable(ctx context.Context, exec sqlx.ExtContext, departmentID, timetableID string) error
	DeleteOtherDrafts(ctx context.Context, exec sqlx.ExtContext, departmentID, keepID string) error

	CreateTimetableSlots(ctx context.Context, exec sqlx.ExtContext, slots []models.TimetableSlot) error
	ListSlotsByTimetable(ctx context.Context, timetableID string) ([]models.TimetableSlot, error)

	WithinTx(ctx context.Context, fn func(exec sqlx.ExtContext) error) error
}

// GenerationResult mirrors the external interface's GenerationResult: a
// status of "success", "infeasible" or "error", diagnostic messages, and
// the ids of whatever DRAFT timetables were created.
type GenerationResult struct {
	Status       string
	Messages     []string
	TimetableIDs []string
}

const (
	StatusSuccess    = "success"
	StatusInfeasible = "infeasible"
	StatusError      = "error"
)

// Orchestrator runs generate/approve against a Repo, instrumented with
// Metrics and serialized per department by a GenerationLock.
type Orchestrator struct {
	repo    Repo
	lock    GenerationLock
	metrics *Metrics
	variants []config.VariantConfig
	timeLimit time.Duration
}

// NewOrchestrator wires a Repo, a GenerationLock and the fixed variant
// table together. metrics may be nil, in which case observations are
// no-ops.
func NewOrchestrator(repo Repo, lock GenerationLock, metrics *Metrics, variants []config.VariantConfig, timeLimit time.Duration) *Orchestrator {
	return &Orchestrator{repo: repo, lock: lock, metrics: metrics, variants: variants, timeLimit: timeLimit}
}

// Generate runs one full generation pass for a department: load inputs,
// diagnose, attempt every configured variant in order, then delete the
// department's stale DRAFTs and persist every variant that solved, in one
// transaction. When no variant solves, the stale DRAFTs are still deleted.
//
// numVariants is clamped to [1, len(variants)]; 0 or negative requests the
// full table.
func (o *Orchestrator) Generate(ctx context.Context, departmentID string, numVariants int) (GenerationResult, error) {
	release, err := o.lock.Acquire(ctx, departmentID)
	if err != nil {
		return GenerationResult{}, err
	}
	defer release()

	if _, err := o.repo.FindDepartmentByID(ctx, departmentID); err != nil {
		return GenerationResult{}, fmt.Errorf("find department: %w", err)
	}

	teachers, err := o.repo.ListTeachersByDepartment(ctx, departmentID)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("list teachers: %w", err)
	}
	subjects, err := o.repo.ListSubjectsByDepartment(ctx, departmentID)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("list subjects: %w", err)
	}
	batches, err := o.repo.ListBatchesByDepartment(ctx, departmentID)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("list batches: %w", err)
	}
	rooms, err := o.repo.ListAllRooms(ctx)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("list rooms: %w", err)
	}
	pins, err := o.repo.ListPinsByDepartment(ctx, departmentID)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("list pins: %w", err)
	}

	if len(teachers) == 0 || len(subjects) == 0 || len(batches) == 0 {
		o.observeRun("error")
		return GenerationResult{Status: StatusError, Messages: []string{schedulererrors.ErrInputMissing.Message}}, nil
	}

	warnings := Diagnose(batches, subjects, teachers, rooms)

	variantTable := o.variants
	if numVariants > 0 && numVariants < len(variantTable) {
		variantTable = variantTable[:numVariants]
	}

	input := Input{Teachers: teachers, Subjects: subjects, Batches: batches, Rooms: rooms, Pins: pins}

	type solved struct {
		timetable models.Timetable
		slots     []models.TimetableSlot
	}
	var results []solved

	for i, vc := range variantTable {
		start := time.Now()
		assignments, ok := SolveVariant(input, vc.Seed, vc.Weight, o.timeLimit)
		outcome := "feasible"
		if !ok {
			outcome = "infeasible"
		}
		o.observeVariant(outcome, time.Since(start))
		if !ok {
			continue
		}

		timetable := models.Timetable{DepartmentID: departmentID, Status: models.TimetableStatusDraft, VariantNumber: i + 1}
		results = append(results, solved{timetable: timetable, slots: Decode("", assignments)})
	}

	if len(results) == 0 {
		if err := o.repo.WithinTx(ctx, func(exec sqlx.ExtContext) error {
			return o.repo.DeleteDraftsByDepartment(ctx, exec, departmentID)
		}); err != nil {
			o.observeRun(StatusError)
			return GenerationResult{}, fmt.Errorf("delete stale drafts: %w", err)
		}
		o.observeRun(StatusInfeasible)
		return GenerationResult{Status: StatusInfeasible, Messages: append(warnings, schedulererrors.ErrInfeasible.Message)}, nil
	}

	var ids []string
	err = o.repo.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		if err := o.repo.DeleteDraftsByDepartment(ctx, exec, departmentID); err != nil {
			return err
		}
		for _, r := range results {
			tt := r.timetable
			if err := o.repo.CreateTimetable(ctx, exec, &tt); err != nil {
				return err
			}
			for i := range r.slots {
				r.slots[i].TimetableID = tt.ID
			}
			if err := o.repo.CreateTimetableSlots(ctx, exec, r.slots); err != nil {
				return err
			}
			ids = append(ids, tt.ID)
		}
		return nil
	})
	if err != nil {
		o.observeRun(StatusError)
		return GenerationResult{}, fmt.Errorf("persist generation results: %w", err)
	}

	o.observeRun(StatusSuccess)
	messages := warnings
	if len(messages) == 0 {
		messages = []string{fmt.Sprintf("generated %d variant(s)", len(ids))}
	}
	return GenerationResult{Status: StatusSuccess, Messages: messages, TimetableIDs: ids}, nil
}

// Approve publishes the named DRAFT timetable and deletes every other
// timetable in its department, leaving exactly one PUBLISHED timetable and
// zero DRAFTs.
func (o *Orchestrator) Approve(ctx context.Context, timetableID string) error {
	timetable, err := o.repo.FindTimetableByID(ctx, timetableID)
	if err != nil {
		return fmt.Errorf("find timetable: %w", err)
	}

	return o.repo.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		if err := o.repo.PublishTimetable(ctx, exec, timetable.DepartmentID, timetableID); err != nil {
			return err
		}
		return o.repo.DeleteOtherDrafts(ctx, exec, timetable.DepartmentID, timetableID)
	})
}

func (o *Orchestrator) observeVariant(outcome string, d time.Duration) {
	if o.metrics != nil {
		o.metrics.ObserveVariant(outcome, d)
	}
}

func (o *Orchestrator) observeRun(status string) {
	if o.metrics != nil {
		o.metrics.ObserveRun(status)
	}
}
