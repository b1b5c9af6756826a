package scheduler

import (
	"fmt"
	"sort"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

// Diagnose inspects inputs before solving and returns human-readable
// warnings for structural infeasibilities that are cheap to detect. It
// never blocks generation — a SAT result takes precedence over a warning,
// since these checks can be false positives when the solver finds a
// creative assignment. Diagnose is a pure function of its inputs.
func Diagnose(batches []models.StudentBatch, subjects []models.Subject, teachers []models.Teacher, rooms []models.Room) []string {
	var warnings []string

	var mainBatches, subBatches []models.StudentBatch
	for _, b := range batches {
		if b.IsSubBatch() {
			subBatches = append(subBatches, b)
		} else {
			mainBatches = append(mainBatches, b)
		}
	}

	var labRooms, theoryRooms int
	for _, r := range rooms {
		if r.IsLab {
			labRooms++
		} else {
			theoryRooms++
		}
	}

	availablePerBatch := SlotsPerDay * Days

	// 1. Batch theory capacity.
	for _, b := range mainBatches {
		total := 0
		for _, s := range subjects {
			if s.BatchID != nil && *s.BatchID == b.ID {
				total += s.WeeklyLectures
			}
		}
		if total > availablePerBatch {
			warnings = append(warnings, fmt.Sprintf(
				"Batch '%s' needs %d theory slots/week but only %d slots exist (%d slots x %d days).",
				b.Name, total, availablePerBatch, SlotsPerDay, Days))
		}
	}

	// 2. Room concurrency.
	if len(mainBatches) > theoryRooms {
		warnings = append(warnings, fmt.Sprintf(
			"%d batches need simultaneous theory classes but only %d theory rooms available. Add more rooms or stagger schedules.",
			len(mainBatches), theoryRooms))
	}

	// 3 & 4. Teacher window capacity and daily cap.
	for _, t := range teachers {
		availSlots := (t.PreferredEndSlot - t.PreferredStartSlot) * Days
		totalLectures := 0
		for _, s := range subjects {
			if s.TeacherID != nil && *s.TeacherID == t.ID {
				totalLectures += s.WeeklyLectures
			}
		}
		if totalLectures > availSlots {
			warnings = append(warnings, fmt.Sprintf(
				"Teacher '%s' has %d lectures/week but only %d available slots (preference: slot %d-%d).",
				t.Name, totalLectures, availSlots, t.PreferredStartSlot, t.PreferredEndSlot))
		}
		maxDaily := t.MaxClassesPerDay * Days
		if totalLectures > maxDaily {
			warnings = append(warnings, fmt.Sprintf(
				"Teacher '%s' has %d lectures/week but max %d/day x %d days = %d.",
				t.Name, totalLectures, t.MaxClassesPerDay, Days, maxDaily))
		}
	}

	// 5. Lab room count.
	labSubjectsByParent := make(map[string]map[string]bool)
	for _, s := range subjects {
		if s.BatchID == nil {
			continue
		}
		batch := findBatch(batches, *s.BatchID)
		if batch == nil || !batch.IsSubBatch() {
			continue
		}
		parentID := *batch.ParentBatchID
		if labSubjectsByParent[parentID] == nil {
			labSubjectsByParent[parentID] = make(map[string]bool)
		}
		labSubjectsByParent[parentID][batch.ID] = true
	}
	parentIDs := make([]string, 0, len(labSubjectsByParent))
	for parentID := range labSubjectsByParent {
		parentIDs = append(parentIDs, parentID)
	}
	sort.Strings(parentIDs)
	for _, parentID := range parentIDs {
		subIDs := labSubjectsByParent[parentID]
		if len(subIDs) < 2 || labRooms >= len(subIDs) {
			continue
		}
		name := parentID
		if parent := findBatch(batches, parentID); parent != nil {
			name = parent.Name
		}
		warnings = append(warnings, fmt.Sprintf(
			"Batch '%s' has %d lab sub-batches but only %d lab rooms.", name, len(subIDs), labRooms))
	}

	return warnings
}

func findBatch(batches []models.StudentBatch, id string) *models.StudentBatch {
	for i := range batches {
		if batches[i].ID == id {
			return &batches[i]
		}
	}
	return nil
}
