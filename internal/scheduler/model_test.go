package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

func strPtr(s string) *string { return &s }

func TestSolveVariantTrivialFeasible(t *testing.T) {
	input := Input{
		Teachers: []models.Teacher{
			{ID: "t1", Name: "Ada", PreferredStartSlot: 0, PreferredEndSlot: SlotsPerDay, MaxClassesPerDay: 8},
		},
		Batches: []models.StudentBatch{
			{ID: "b1", Name: "CS-A", Size: 60, MaxClassesPerDay: 8},
		},
		Rooms: []models.Room{
			{ID: "r1", Name: "101", Capacity: 100, IsLab: false},
		},
		Subjects: []models.Subject{
			{ID: "s1", Code: "CS101", WeeklyLectures: 1, BatchID: strPtr("b1"), TeacherID: strPtr("t1")},
		},
	}

	assignments, ok := SolveVariant(input, 42, 1, time.Second)
	require.True(t, ok)
	require.Len(t, assignments, 1)
	assert.Equal(t, "t1", assignments[0].TeacherID)
	assert.Equal(t, "s1", assignments[0].SubjectID)
}

func TestSolveVariantInfeasibleByWindow(t *testing.T) {
	input := Input{
		Teachers: []models.Teacher{
			{ID: "t1", Name: "Ada", PreferredStartSlot: 0, PreferredEndSlot: 1, MaxClassesPerDay: 8},
		},
		Batches: []models.StudentBatch{
			{ID: "b1", Name: "CS-A", Size: 60, MaxClassesPerDay: 8},
		},
		Rooms: []models.Room{
			{ID: "r1", Name: "101", Capacity: 100, IsLab: false},
		},
		Subjects: []models.Subject{
			// Only 1 slot/day x 5 days = 5 candidate cells, but 6 lectures needed.
			{ID: "s1", Code: "CS101", WeeklyLectures: 6, BatchID: strPtr("b1"), TeacherID: strPtr("t1")},
		},
	}

	_, ok := SolveVariant(input, 42, 1, 500*time.Millisecond)
	assert.False(t, ok)
}

func TestSolveVariantHonorsPinnedBlock(t *testing.T) {
	input := Input{
		Teachers: []models.Teacher{
			{ID: "t1", Name: "Ada", PreferredStartSlot: 0, PreferredEndSlot: SlotsPerDay, MaxClassesPerDay: 8},
		},
		Batches: []models.StudentBatch{
			{ID: "b1", Name: "CS-A", Size: 60, MaxClassesPerDay: 8},
		},
		Rooms: []models.Room{
			{ID: "r1", Name: "101", Capacity: 100, IsLab: false},
		},
		Subjects: []models.Subject{
			{ID: "s1", Code: "ELECTIVE", WeeklyLectures: 2, BatchID: strPtr("b1"), TeacherID: strPtr("t1")},
		},
		Pins: []models.PinnedSlot{
			{SubjectID: "s1", Day: 2, SlotIndex: 3},
			{SubjectID: "s1", Day: 2, SlotIndex: 4},
		},
	}

	assignments, ok := SolveVariant(input, 42, 1, time.Second)
	require.True(t, ok)
	require.Len(t, assignments, 2)

	seen := map[[2]int]bool{}
	for _, a := range assignments {
		seen[[2]int{a.Day, a.Slot}] = true
	}
	assert.True(t, seen[[2]int{2, 3}])
	assert.True(t, seen[[2]int{2, 4}])
}

func TestSolveVariantSynchronizesLabs(t *testing.T) {
	input := Input{
		Teachers: []models.Teacher{
			{ID: "t1", Name: "Ada", PreferredStartSlot: 0, PreferredEndSlot: SlotsPerDay, MaxClassesPerDay: 8},
			{ID: "t2", Name: "Grace", PreferredStartSlot: 0, PreferredEndSlot: SlotsPerDay, MaxClassesPerDay: 8},
		},
		Batches: []models.StudentBatch{
			{ID: "main", Name: "CS-A", Size: 60, MaxClassesPerDay: 8},
			{ID: "sub1", Name: "CS-A1", Size: 30, ParentBatchID: strPtr("main"), MaxClassesPerDay: 8},
			{ID: "sub2", Name: "CS-A2", Size: 30, ParentBatchID: strPtr("main"), MaxClassesPerDay: 8},
		},
		Rooms: []models.Room{
			{ID: "lab1", Name: "Lab1", Capacity: 30, IsLab: true},
			{ID: "lab2", Name: "Lab2", Capacity: 30, IsLab: true},
		},
		Subjects: []models.Subject{
			{ID: "lab-s1", Code: "CS101L", WeeklyLectures: 1, BatchID: strPtr("sub1"), TeacherID: strPtr("t1")},
			{ID: "lab-s2", Code: "CS101L", WeeklyLectures: 1, BatchID: strPtr("sub2"), TeacherID: strPtr("t2")},
		},
	}

	assignments, ok := SolveVariant(input, 42, 1, time.Second)
	require.True(t, ok)
	require.Len(t, assignments, 2)
	assert.Equal(t, assignments[0].Day, assignments[1].Day)
	assert.Equal(t, assignments[0].Slot, assignments[1].Slot)
}

func TestSolveVariantInfeasibleWhenSyncedLabsShareTeacher(t *testing.T) {
	input := Input{
		Teachers: []models.Teacher{
			{ID: "t1", Name: "Ada", PreferredStartSlot: 0, PreferredEndSlot: SlotsPerDay, MaxClassesPerDay: 8},
		},
		Batches: []models.StudentBatch{
			{ID: "main", Name: "CS-A", Size: 60, MaxClassesPerDay: 8},
			{ID: "sub1", Name: "CS-A1", Size: 30, ParentBatchID: strPtr("main"), MaxClassesPerDay: 8},
			{ID: "sub2", Name: "CS-A2", Size: 30, ParentBatchID: strPtr("main"), MaxClassesPerDay: 8},
		},
		Rooms: []models.Room{
			{ID: "lab1", Name: "Lab1", Capacity: 30, IsLab: true},
			{ID: "lab2", Name: "Lab2", Capacity: 30, IsLab: true},
		},
		Subjects: []models.Subject{
			// Both sub-batches' synced lab is taught by the same teacher,
			// so they can never land on the same (day, slot).
			{ID: "lab-s1", Code: "CS101L", WeeklyLectures: 1, BatchID: strPtr("sub1"), TeacherID: strPtr("t1")},
			{ID: "lab-s2", Code: "CS101L", WeeklyLectures: 1, BatchID: strPtr("sub2"), TeacherID: strPtr("t1")},
		},
	}

	_, ok := SolveVariant(input, 42, 1, time.Second)
	assert.False(t, ok)
}

func TestDecodeFillsGridTimes(t *testing.T) {
	assignments := []Assignment{
		{TeacherID: "t1", SubjectID: "s1", BatchID: "b1", RoomID: "r1", Day: 0, Slot: 1},
	}
	slots := Decode("tt-1", assignments)
	require.Len(t, slots, 1)
	assert.Equal(t, "tt-1", slots[0].TimetableID)
	assert.Equal(t, 0, slots[0].Day)
	assert.Equal(t, "08:30", slots[0].StartTime)
	assert.Equal(t, "09:30", slots[0].EndTime)
}
