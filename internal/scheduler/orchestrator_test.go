package scheduler_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-api/internal/models"
	"github.com/noah-isme/sma-adp-api/internal/repository"
	"github.com/noah-isme/sma-adp-api/internal/scheduler"
	"github.com/noah-isme/sma-adp-api/pkg/config"
)

func variantTable() []config.VariantConfig {
	return []config.VariantConfig{
		{Seed: 42, Weight: 1},
		{Seed: 137, Weight: 2},
		{Seed: 7919, Weight: 3},
	}
}

func strp(s string) *string { return &s }

func seedSimpleDepartment(t *testing.T, store *repository.MemoryStore) (deptID string) {
	t.Helper()
	dept := store.SeedDepartment(models.Department{Name: "CS"})
	teacher := store.SeedTeacher(models.Teacher{
		Name: "Ada", DepartmentID: dept.ID, PreferredStartSlot: 0, PreferredEndSlot: scheduler.SlotsPerDay, MaxClassesPerDay: 8,
	})
	batch := store.SeedBatch(models.StudentBatch{Name: "CS-A", Size: 60, DepartmentID: dept.ID, MaxClassesPerDay: 8})
	store.SeedRoom(models.Room{Name: "101", Capacity: 100, IsLab: false})
	store.SeedSubject(models.Subject{
		Code: "CS101", Name: "Intro", WeeklyLectures: 3, DepartmentID: dept.ID,
		BatchID: strp(batch.ID), TeacherID: strp(teacher.ID),
	})
	return dept.ID
}

func TestOrchestratorGenerateSucceeds(t *testing.T) {
	store := repository.NewMemoryStore()
	deptID := seedSimpleDepartment(t, store)

	orch := scheduler.NewOrchestrator(store, scheduler.NewMutexGenerationLock(), nil, variantTable(), time.Second)
	result, err := orch.Generate(context.Background(), deptID, 0)
	require.NoError(t, err)
	assert.Equal(t, scheduler.StatusSuccess, result.Status)
	assert.NotEmpty(t, result.TimetableIDs)

	timetables, err := store.ListTimetablesByDepartment(context.Background(), deptID, models.TimetableStatusDraft)
	require.NoError(t, err)
	assert.Len(t, timetables, len(result.TimetableIDs))
}

func TestOrchestratorGenerateReplacesStaleDrafts(t *testing.T) {
	store := repository.NewMemoryStore()
	deptID := seedSimpleDepartment(t, store)

	stale1 := models.Timetable{DepartmentID: deptID, Status: models.TimetableStatusDraft, VariantNumber: 1}
	stale2 := models.Timetable{DepartmentID: deptID, Status: models.TimetableStatusDraft, VariantNumber: 2}
	require.NoError(t, store.CreateTimetable(context.Background(), nil, &stale1))
	require.NoError(t, store.CreateTimetable(context.Background(), nil, &stale2))

	orch := scheduler.NewOrchestrator(store, scheduler.NewMutexGenerationLock(), nil, variantTable(), time.Second)
	result, err := orch.Generate(context.Background(), deptID, 0)
	require.NoError(t, err)
	require.Equal(t, scheduler.StatusSuccess, result.Status)

	for _, id := range []string{stale1.ID, stale2.ID} {
		_, err := store.FindTimetableByID(context.Background(), id)
		assert.Error(t, err)
	}

	timetables, err := store.ListTimetablesByDepartment(context.Background(), deptID, "")
	require.NoError(t, err)
	for _, tt := range timetables {
		assert.Contains(t, result.TimetableIDs, tt.ID)
	}
}

func TestOrchestratorGenerateReturnsErrorOnMissingInputs(t *testing.T) {
	store := repository.NewMemoryStore()
	dept := store.SeedDepartment(models.Department{Name: "Empty"})

	orch := scheduler.NewOrchestrator(store, scheduler.NewMutexGenerationLock(), nil, variantTable(), time.Second)
	result, err := orch.Generate(context.Background(), dept.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, scheduler.StatusError, result.Status)
}

func TestOrchestratorApprovePostCondition(t *testing.T) {
	store := repository.NewMemoryStore()
	deptID := seedSimpleDepartment(t, store)

	orch := scheduler.NewOrchestrator(store, scheduler.NewMutexGenerationLock(), nil, variantTable(), time.Second)
	result, err := orch.Generate(context.Background(), deptID, 0)
	require.NoError(t, err)
	require.NotEmpty(t, result.TimetableIDs)

	approved := result.TimetableIDs[0]
	require.NoError(t, orch.Approve(context.Background(), approved))

	all, err := store.ListTimetablesByDepartment(context.Background(), deptID, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, approved, all[0].ID)
	assert.Equal(t, models.TimetableStatusPublished, all[0].Status)
}

func TestOrchestratorGenerateDiversifiesVariants(t *testing.T) {
	store := repository.NewMemoryStore()
	deptID := seedSimpleDepartment(t, store)

	orch := scheduler.NewOrchestrator(store, scheduler.NewMutexGenerationLock(), nil, variantTable(), time.Second)
	result, err := orch.Generate(context.Background(), deptID, 0)
	require.NoError(t, err)
	require.True(t, len(result.TimetableIDs) >= 2)

	seenSlotSets := map[string]bool{}
	for _, id := range result.TimetableIDs {
		slots, err := store.ListSlotsByTimetable(context.Background(), id)
		require.NoError(t, err)
		key := ""
		for _, s := range slots {
			key += fmt.Sprintf("%s@%d/%s;", s.SubjectID, s.Day, s.StartTime)
		}
		seenSlotSets[key] = true
	}
	assert.GreaterOrEqual(t, len(seenSlotSets), 2)
}
