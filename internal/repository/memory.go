package repository

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

// MemoryStore is an in-memory fake backing every repository port the
// scheduler core consumes. It exists so the scheduler's tests never need a
// live Postgres instance; the Postgres-backed repositories in this package,
// composed by SchedulerRepo, are the production implementation of the same
// ports.
type MemoryStore struct {
	mu sync.RWMutex

	departments map[string]models.Department
	rooms       map[string]models.Room
	teachers    map[string]models.Teacher
	batches     map[string]models.StudentBatch
	subjects    map[string]models.Subject
	pins        map[string]models.PinnedSlot
	timetables  map[string]models.Timetable
	slots       map[string][]models.TimetableSlot
}

// NewMemoryStore builds an empty fake store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		departments: make(map[string]models.Department),
		rooms:       make(map[string]models.Room),
		teachers:    make(map[string]models.Teacher),
		batches:     make(map[string]models.StudentBatch),
		subjects:    make(map[string]models.Subject),
		pins:        make(map[string]models.PinnedSlot),
		timetables:  make(map[string]models.Timetable),
		slots:       make(map[string][]models.TimetableSlot),
	}
}

// WithinTx runs fn directly: the fake has a single process-wide mutex
// instead of real transaction isolation, so there is nothing to begin or
// commit. It exists so MemoryStore satisfies the same TxRunner port the
// Postgres-backed repository does.
func (s *MemoryStore) WithinTx(_ context.Context, fn func(exec sqlx.ExtContext) error) error {
	return fn(nil)
}

// Seed helpers let tests populate fixtures without going through Create,
// and assign a uuid if the caller left ID blank.

func (s *MemoryStore) SeedDepartment(d models.Department) models.Department {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	s.departments[d.ID] = d
	return d
}

func (s *MemoryStore) SeedRoom(r models.Room) models.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	s.rooms[r.ID] = r
	return r
}

func (s *MemoryStore) SeedTeacher(t models.Teacher) models.Teacher {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.teachers[t.ID] = t
	return t
}

func (s *MemoryStore) SeedBatch(b models.StudentBatch) models.StudentBatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	s.batches[b.ID] = b
	return b
}

func (s *MemoryStore) SeedSubject(sub models.Subject) models.Subject {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	s.subjects[sub.ID] = sub
	return sub
}

func (s *MemoryStore) SeedPin(p models.PinnedSlot) models.PinnedSlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.pins[p.ID] = p
	return p
}

// --- Department ---

func (s *MemoryStore) FindDepartmentByID(_ context.Context, id string) (*models.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.departments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &d, nil
}

// --- Room ---

func (s *MemoryStore) ListAllRooms(_ context.Context) ([]models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- Teacher ---

func (s *MemoryStore) ListTeachersByDepartment(_ context.Context, departmentID string) ([]models.Teacher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Teacher
	for _, t := range s.teachers {
		if t.DepartmentID == departmentID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- StudentBatch ---

func (s *MemoryStore) ListBatchesByDepartment(_ context.Context, departmentID string) ([]models.StudentBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.StudentBatch
	for _, b := range s.batches {
		if b.DepartmentID == departmentID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- Subject ---

func (s *MemoryStore) ListSubjectsByDepartment(_ context.Context, departmentID string) ([]models.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Subject
	for _, sub := range s.subjects {
		if sub.DepartmentID == departmentID {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// --- PinnedSlot ---

func (s *MemoryStore) ListPinsByDepartment(_ context.Context, departmentID string) ([]models.PinnedSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.PinnedSlot
	for _, p := range s.pins {
		if p.DepartmentID == departmentID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].SlotIndex < out[j].SlotIndex
	})
	return out, nil
}

// --- Timetable ---

// CreateTimetable inserts a timetable, ignoring the exec parameter (the
// fake has no transaction boundary of its own).
func (s *MemoryStore) CreateTimetable(_ context.Context, _ sqlx.ExtContext, t *models.Timetable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = models.TimetableStatusDraft
	}
	s.timetables[t.ID] = *t
	return nil
}

func (s *MemoryStore) DeleteDraftsByDepartment(_ context.Context, _ sqlx.ExtContext, departmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timetables {
		if t.DepartmentID == departmentID && t.Status == models.TimetableStatusDraft {
			delete(s.timetables, id)
			delete(s.slots, id)
		}
	}
	return nil
}

func (s *MemoryStore) FindTimetableByID(_ context.Context, id string) (*models.Timetable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.timetables[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &t, nil
}

func (s *MemoryStore) ListTimetablesByDepartment(_ context.Context, departmentID string, status models.TimetableStatus) ([]models.Timetable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Timetable
	for _, t := range s.timetables {
		if t.DepartmentID != departmentID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VariantNumber < out[j].VariantNumber })
	return out, nil
}

func (s *MemoryStore) PublishTimetable(_ context.Context, _ sqlx.ExtContext, departmentID, timetableID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok := s.timetables[timetableID]
	if !ok {
		return sql.ErrNoRows
	}
	for id, t := range s.timetables {
		if t.DepartmentID == departmentID && t.Status == models.TimetableStatusPublished && id != timetableID {
			t.Status = models.TimetableStatusDraft
			s.timetables[id] = t
		}
	}
	target.Status = models.TimetableStatusPublished
	s.timetables[timetableID] = target
	return nil
}

// DeleteOtherDrafts removes every DRAFT timetable in departmentID except
// keepID, used by approve to clear the stray variants left behind once one
// of them is promoted.
func (s *MemoryStore) DeleteOtherDrafts(_ context.Context, _ sqlx.ExtContext, departmentID, keepID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timetables {
		if t.DepartmentID == departmentID && t.Status == models.TimetableStatusDraft && id != keepID {
			delete(s.timetables, id)
			delete(s.slots, id)
		}
	}
	return nil
}

// --- TimetableSlot ---

func (s *MemoryStore) CreateTimetableSlots(_ context.Context, _ sqlx.ExtContext, slots []models.TimetableSlot) error {
	if len(slots) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range slots {
		if slots[i].ID == "" {
			slots[i].ID = uuid.NewString()
		}
	}
	timetableID := slots[0].TimetableID
	s.slots[timetableID] = append(s.slots[timetableID], slots...)
	return nil
}

func (s *MemoryStore) ListSlotsByTimetable(_ context.Context, timetableID string) ([]models.TimetableSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]models.TimetableSlot(nil), s.slots[timetableID]...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}
