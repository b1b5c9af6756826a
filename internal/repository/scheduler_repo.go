package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

// SchedulerRepo composes the individual Postgres repositories into the
// single port internal/scheduler.Repo expects, renaming each method to the
// scheduler's domain-neutral vocabulary (e.g. TimetableRepository.Publish
// becomes PublishTimetable). repository.MemoryStore implements the same
// port directly, without this composition step, since its methods are
// already named this way.
type SchedulerRepo struct {
	Departments *DepartmentRepository
	Rooms       *RoomRepository
	Teachers    *TeacherRepository
	Batches     *StudentBatchRepository
	Subjects    *SubjectRepository
	Pins        *PinnedSlotRepository
	Timetables  *TimetableRepository
	Slots       *TimetableSlotRepository
	Tx          *PostgresTxRunner
}

// NewSchedulerRepo wires a SchedulerRepo from a single database handle.
func NewSchedulerRepo(db *sqlx.DB) *SchedulerRepo {
	return &SchedulerRepo{
		Departments: NewDepartmentRepository(db),
		Rooms:       NewRoomRepository(db),
		Teachers:    NewTeacherRepository(db),
		Batches:     NewStudentBatchRepository(db),
		Subjects:    NewSubjectRepository(db),
		Pins:        NewPinnedSlotRepository(db),
		Timetables:  NewTimetableRepository(db),
		Slots:       NewTimetableSlotRepository(db),
		Tx:          NewPostgresTxRunner(db),
	}
}

func (s *SchedulerRepo) FindDepartmentByID(ctx context.Context, id string) (*models.Department, error) {
	return s.Departments.FindByID(ctx, id)
}

func (s *SchedulerRepo) ListAllRooms(ctx context.Context) ([]models.Room, error) {
	return s.Rooms.ListAll(ctx)
}

func (s *SchedulerRepo) ListTeachersByDepartment(ctx context.Context, departmentID string) ([]models.Teacher, error) {
	return s.Teachers.ListByDepartment(ctx, departmentID)
}

func (s *SchedulerRepo) ListBatchesByDepartment(ctx context.Context, departmentID string) ([]models.StudentBatch, error) {
	return s.Batches.ListByDepartment(ctx, departmentID)
}

func (s *SchedulerRepo) ListSubjectsByDepartment(ctx context.Context, departmentID string) ([]models.Subject, error) {
	return s.Subjects.ListByDepartment(ctx, departmentID)
}

func (s *SchedulerRepo) ListPinsByDepartment(ctx context.Context, departmentID string) ([]models.PinnedSlot, error) {
	return s.Pins.ListByDepartment(ctx, departmentID)
}

func (s *SchedulerRepo) CreateTimetable(ctx context.Context, exec sqlx.ExtContext, t *models.Timetable) error {
	return s.Timetables.Create(ctx, exec, t)
}

func (s *SchedulerRepo) DeleteDraftsByDepartment(ctx context.Context, exec sqlx.ExtContext, departmentID string) error {
	return s.Timetables.DeleteDraftsByDepartment(ctx, exec, departmentID)
}

func (s *SchedulerRepo) FindTimetableByID(ctx context.Context, id string) (*models.Timetable, error) {
	return s.Timetables.FindByID(ctx, id)
}

func (s *SchedulerRepo) ListTimetablesByDepartment(ctx context.Context, departmentID string, status models.TimetableStatus) ([]models.Timetable, error) {
	return s.Timetables.ListByDepartment(ctx, departmentID, status)
}

func (s *SchedulerRepo) PublishTimetable(ctx context.Context, exec sqlx.ExtContext, departmentID, timetableID string) error {
	return s.Timetables.Publish(ctx, exec, departmentID, timetableID)
}

func (s *SchedulerRepo) DeleteOtherDrafts(ctx context.Context, exec sqlx.ExtContext, departmentID, keepID string) error {
	return s.Timetables.DeleteOtherDrafts(ctx, exec, departmentID, keepID)
}

func (s *SchedulerRepo) CreateTimetableSlots(ctx context.Context, exec sqlx.ExtContext, slots []models.TimetableSlot) error {
	return s.Slots.CreateBatch(ctx, exec, slots)
}

func (s *SchedulerRepo) ListSlotsByTimetable(ctx context.Context, timetableID string) ([]models.TimetableSlot, error) {
	return s.Slots.ListByTimetable(ctx, timetableID)
}

func (s *SchedulerRepo) WithinTx(ctx context.Context, fn func(exec sqlx.ExtContext) error) error {
	return s.Tx.WithinTx(ctx, fn)
}
