package scheduler

import (
	"math/rand"
	"sort"
	"time"

	"github.com/noah-isme/sma-adp-api/internal/models"
	"github.com/noah-isme/sma-adp-api/internal/scheduler/csp"
)

// Input bundles every department-scoped record the model builder needs for
// one generation attempt. Rooms are global, per models.Room's contract.
type Input struct {
	Teachers []models.Teacher
	Subjects []models.Subject
	Batches  []models.StudentBatch
	Rooms    []models.Room
	Pins     []models.PinnedSlot
}

// Candidate is one (room, day, slot) cell a subject occurrence may land on,
// after the candidate filter has pruned everything the teacher's window,
// the batch size, or the room type rules out.
type Candidate struct {
	RoomID string
	Day    int
	Slot   int
}

// Assignment is one decided class occurrence, ready to become a
// models.TimetableSlot once decoded.
type Assignment struct {
	TeacherID string
	SubjectID string
	BatchID   string
	RoomID    string
	Day       int
	Slot      int
}

// subjectPlan is everything the builder precomputes once per schedulable
// subject: its fixed teacher/batch, daily caps, and admissible candidates.
type subjectPlan struct {
	subject    models.Subject
	teacherID  string
	teacherCap int
	batchID    string
	isMain     bool
	familyID   string // self if main batch, else the parent batch id
	childIDs   []string
	parentID   string
	familyCap  int
	candidates []Candidate
	remaining  int
}

type batchGraph struct {
	childrenOf map[string][]string // main batch id -> sub-batch ids
	parentOf   map[string]string   // sub-batch id -> main batch id
}

func buildBatchGraph(batches []models.StudentBatch) batchGraph {
	g := batchGraph{childrenOf: map[string][]string{}, parentOf: map[string]string{}}
	for _, b := range batches {
		if b.IsSubBatch() {
			g.parentOf[b.ID] = *b.ParentBatchID
			g.childrenOf[*b.ParentBatchID] = append(g.childrenOf[*b.ParentBatchID], b.ID)
		}
	}
	return g
}

// buildSubjectPlans applies the candidate filter from the model builder
// and precomputes the daily-cap bookkeeping every constraint needs.
func buildSubjectPlans(input Input, graph batchGraph) map[string]*subjectPlan {
	teacherByID := make(map[string]models.Teacher, len(input.Teachers))
	for _, t := range input.Teachers {
		teacherByID[t.ID] = t
	}
	batchByID := make(map[string]models.StudentBatch, len(input.Batches))
	for _, b := range input.Batches {
		batchByID[b.ID] = b
	}

	plans := make(map[string]*subjectPlan)
	for _, s := range input.Subjects {
		if !s.Schedulable() {
			continue
		}
		teacher, ok := teacherByID[*s.TeacherID]
		if !ok {
			continue
		}
		batch, ok := batchByID[*s.BatchID]
		if !ok {
			continue
		}

		plan := &subjectPlan{
			subject:    s,
			teacherID:  teacher.ID,
			teacherCap: teacher.MaxClassesPerDay,
			batchID:    batch.ID,
			isMain:     !batch.IsSubBatch(),
			remaining:  s.WeeklyLectures,
		}
		if plan.isMain {
			plan.familyID = batch.ID
			plan.childIDs = graph.childrenOf[batch.ID]
			plan.familyCap = batch.MaxClassesPerDay
		} else {
			plan.parentID = graph.parentOf[batch.ID]
			plan.familyID = plan.parentID
			if parent, ok := batchByID[plan.parentID]; ok {
				plan.familyCap = parent.MaxClassesPerDay
			} else {
				plan.familyCap = batch.MaxClassesPerDay
			}
		}

		for _, r := range input.Rooms {
			if batch.Size > r.Capacity {
				continue
			}
			if r.IsLab != batch.IsSubBatch() {
				continue
			}
			for day := 0; day < Days; day++ {
				for slot := teacher.PreferredStartSlot; slot < teacher.PreferredEndSlot; slot++ {
					if slot < 0 || slot >= SlotsPerDay {
						continue
					}
					plan.candidates = append(plan.candidates, Candidate{RoomID: r.ID, Day: day, Slot: slot})
				}
			}
		}
		plans[s.ID] = plan
	}
	return plans
}

// usageState tracks everything the hard constraints need, maintained
// incrementally by the csp engine's Commit/Retract callbacks.
type usageState struct {
	teacherSlot map[teacherSlotKey]bool
	roomSlot    map[roomSlotKey]bool
	batchSlot   map[batchSlotKey]bool
	teacherDay  map[teacherDayKey]int
	familyDay   map[familyDayKey]int
	subjectDay  map[subjectDayKey]int
}

type teacherSlotKey struct {
	teacherID string
	day, slot int
}
type roomSlotKey struct {
	roomID    string
	day, slot int
}
type batchSlotKey struct {
	batchID   string
	day, slot int
}
type teacherDayKey struct {
	teacherID string
	day       int
}
type familyDayKey struct {
	familyID string
	day      int
}
type subjectDayKey struct {
	subjectID string
	day       int
}

func newUsageState() *usageState {
	return &usageState{
		teacherSlot: map[teacherSlotKey]bool{},
		roomSlot:    map[roomSlotKey]bool{},
		batchSlot:   map[batchSlotKey]bool{},
		teacherDay:  map[teacherDayKey]int{},
		familyDay:   map[familyDayKey]int{},
		subjectDay:  map[subjectDayKey]int{},
	}
}

// feasible checks C2-C4, the parent/child exclusion, C5, C7 and C8 for
// placing plan's subject at candidate c.
func (u *usageState) feasible(plan *subjectPlan, subjectCap int, c Candidate) bool {
	if u.teacherSlot[teacherSlotKey{plan.teacherID, c.Day, c.Slot}] {
		return false
	}
	if u.roomSlot[roomSlotKey{c.RoomID, c.Day, c.Slot}] {
		return false
	}
	if u.batchSlot[batchSlotKey{plan.batchID, c.Day, c.Slot}] {
		return false
	}
	if plan.isMain {
		for _, childID := range plan.childIDs {
			if u.batchSlot[batchSlotKey{childID, c.Day, c.Slot}] {
				return false
			}
		}
	} else if u.batchSlot[batchSlotKey{plan.familyID, c.Day, c.Slot}] {
		return false
	}
	if u.teacherDay[teacherDayKey{plan.teacherID, c.Day}] >= plan.teacherCap {
		return false
	}
	if u.familyDay[familyDayKey{plan.familyID, c.Day}] >= plan.familyCap {
		return false
	}
	if u.subjectDay[subjectDayKey{plan.subject.ID, c.Day}] >= subjectCap {
		return false
	}
	return true
}

func (u *usageState) commit(plan *subjectPlan, c Candidate) {
	u.teacherSlot[teacherSlotKey{plan.teacherID, c.Day, c.Slot}] = true
	u.roomSlot[roomSlotKey{c.RoomID, c.Day, c.Slot}] = true
	u.batchSlot[batchSlotKey{plan.batchID, c.Day, c.Slot}] = true
	u.teacherDay[teacherDayKey{plan.teacherID, c.Day}]++
	u.familyDay[familyDayKey{plan.familyID, c.Day}]++
	u.subjectDay[subjectDayKey{plan.subject.ID, c.Day}]++
}

func (u *usageState) retract(plan *subjectPlan, c Candidate) {
	delete(u.teacherSlot, teacherSlotKey{plan.teacherID, c.Day, c.Slot})
	delete(u.roomSlot, roomSlotKey{c.RoomID, c.Day, c.Slot})
	delete(u.batchSlot, batchSlotKey{plan.batchID, c.Day, c.Slot})
	u.teacherDay[teacherDayKey{plan.teacherID, c.Day}]--
	u.familyDay[familyDayKey{plan.familyID, c.Day}]--
	u.subjectDay[subjectDayKey{plan.subject.ID, c.Day}]--
}

// pinCounts tallies, per (subject, day), how many PinnedSlots exist — the
// max(1, pin_count) relaxation of C5.
func pinCounts(pins []models.PinnedSlot) map[subjectDayKey]int {
	counts := map[subjectDayKey]int{}
	for _, p := range pins {
		counts[subjectDayKey{p.SubjectID, p.Day}]++
	}
	return counts
}

func subjectCapFor(counts map[subjectDayKey]int, subjectID string, day int) int {
	if n := counts[subjectDayKey{subjectID, day}]; n > 1 {
		return n
	}
	return 1
}

// preassignPins forces C9: every pinned (subject, day, slot) must get
// exactly one occurrence. Returns false if a pin cannot be placed at all,
// which makes the whole variant infeasible exactly as an unsatisfiable
// CP-SAT equality constraint would.
func preassignPins(plans map[string]*subjectPlan, pins []models.PinnedSlot, counts map[subjectDayKey]int, u *usageState) ([]Assignment, bool) {
	var assignments []Assignment
	for _, p := range pins {
		plan, ok := plans[p.SubjectID]
		if !ok {
			continue
		}
		placed := false
		for _, c := range plan.candidates {
			if c.Day != p.Day || c.Slot != p.SlotIndex {
				continue
			}
			cap := subjectCapFor(counts, plan.subject.ID, c.Day)
			if !u.feasible(plan, cap, c) {
				continue
			}
			u.commit(plan, c)
			assignments = append(assignments, Assignment{
				TeacherID: plan.teacherID, SubjectID: plan.subject.ID,
				BatchID: plan.batchID, RoomID: c.RoomID, Day: c.Day, Slot: c.Slot,
			})
			plan.remaining--
			placed = true
			break
		}
		if !placed {
			return nil, false
		}
	}
	return assignments, true
}

// labSyncGroup is one main batch's set of sub-batches that must be
// synchronized: either every sub-batch has a lab session at a (day, slot)
// or none do.
type labSyncGroup struct {
	mainID       string
	primary      map[string]string // sub-batch id -> its primary lab subject id
	subBatchIDs  []string
	commonTarget int
}

func buildLabSyncGroups(plans map[string]*subjectPlan, graph batchGraph) []labSyncGroup {
	bySubBatch := map[string][]*subjectPlan{} // sub-batch id -> its lab subject plans, in subject.Code order
	for _, plan := range plans {
		if !plan.isMain {
			bySubBatch[plan.batchID] = append(bySubBatch[plan.batchID], plan)
		}
	}
	for _, list := range bySubBatch {
		sort.Slice(list, func(i, j int) bool { return list[i].subject.Code < list[j].subject.Code })
	}

	byParent := map[string][]string{} // main id -> sub-batch ids that have a lab subject
	for subID := range bySubBatch {
		parentID, ok := graph.parentOf[subID]
		if !ok {
			continue
		}
		byParent[parentID] = append(byParent[parentID], subID)
	}

	var groups []labSyncGroup
	for mainID, subIDs := range byParent {
		if len(subIDs) < 2 {
			continue
		}
		sort.Strings(subIDs)
		primary := map[string]string{}
		commonTarget := -1
		for _, subID := range subIDs {
			lead := bySubBatch[subID][0]
			primary[subID] = lead.subject.ID
			if commonTarget == -1 || lead.remaining < commonTarget {
				commonTarget = lead.remaining
			}
		}
		groups = append(groups, labSyncGroup{mainID: mainID, primary: primary, subBatchIDs: subIDs, commonTarget: commonTarget})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].mainID < groups[j].mainID })
	return groups
}

// preassignLabSync commits the synchronized portion of each lab group: the
// first commonTarget weekly occurrences of every participating sub-batch's
// primary lab subject, all landing on the same (day, slot). Any occurrences
// beyond commonTarget are left for the generic free-variable search and are
// not guaranteed to stay synchronized — the same looseness the reference
// accepts for C5's pinned-block relaxation.
//
// It returns false if some group can never reach its commonTarget — e.g.
// two synchronized sub-batches whose primary lab subjects share the same
// teacher can never land on the same (day, slot), since one teacher can't
// run two parallel labs. That makes the whole variant infeasible rather
// than leaving the unsynchronized remainder to the free-variable search.
func preassignLabSync(plans map[string]*subjectPlan, groups []labSyncGroup, counts map[subjectDayKey]int, u *usageState, rng *rand.Rand) ([]Assignment, bool) {
	var assignments []Assignment

	type cell struct{ day, slot int }
	cells := make([]cell, 0, Days*SlotsPerDay)
	for d := 0; d < Days; d++ {
		for s := 0; s < SlotsPerDay; s++ {
			cells = append(cells, cell{d, s})
		}
	}
	rng.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })

	for _, group := range groups {
		if group.commonTarget <= 0 {
			continue
		}
		placed := 0
		for _, cl := range cells {
			if placed >= group.commonTarget {
				break
			}
			// Find one feasible candidate per sub-batch at this cell; all
			// or nothing. localRoomUsed/localTeacherUsed exclude rooms and
			// teachers already picked for another sub-batch in this same
			// cell, since none of them are committed to u until every
			// sub-batch in the group succeeds — two sub-batches sharing a
			// teacher for their synced lab is a genuine conflict (one
			// teacher can't run two parallel labs), not a placement to
			// resolve by picking a different room.
			chosen := make(map[string]Candidate, len(group.subBatchIDs))
			localRoomUsed := make(map[string]bool, len(group.subBatchIDs))
			localTeacherUsed := make(map[string]bool, len(group.subBatchIDs))
			ok := true
			for _, subID := range group.subBatchIDs {
				plan := plans[group.primary[subID]]
				var found *Candidate
				for _, c := range plan.candidates {
					if c.Day != cl.day || c.Slot != cl.slot {
						continue
					}
					if localRoomUsed[c.RoomID] || localTeacherUsed[plan.teacherID] {
						continue
					}
					cap := subjectCapFor(counts, plan.subject.ID, c.Day)
					if u.feasible(plan, cap, c) {
						cc := c
						found = &cc
						break
					}
				}
				if found == nil {
					ok = false
					break
				}
				localRoomUsed[found.RoomID] = true
				localTeacherUsed[plan.teacherID] = true
				chosen[subID] = *found
			}
			if !ok {
				continue
			}
			for subID, c := range chosen {
				plan := plans[group.primary[subID]]
				u.commit(plan, c)
				assignments = append(assignments, Assignment{
					TeacherID: plan.teacherID, SubjectID: plan.subject.ID,
					BatchID: plan.batchID, RoomID: c.RoomID, Day: c.Day, Slot: c.Slot,
				})
				plan.remaining--
			}
			placed++
		}
		if placed < group.commonTarget {
			return nil, false
		}
	}
	return assignments, true
}

// buildFreeProblem turns every plan's remaining occurrences into csp
// variables. Subjects with fewer candidates are ordered first
// (most-constrained-variable first); a seeded shuffle breaks ties and
// supplies cross-variant diversity. Each variable's domain is sorted by
// slot ascending (the O1 earlier-slot preference) before shuffling.
//
// Cost reproduces the reference objective: O1 sums slot index times the
// variant weight over every occurrence (pinned, lab-synced and free); O2
// adds twice the slot index for every (family, day, slot) cell that has
// any class in it, penalizing gaps by rewarding contiguous blocks.
func buildFreeProblem(plans map[string]*subjectPlan, preAssignments []Assignment, counts map[subjectDayKey]int, u *usageState, weight int, rng *rand.Rand) (csp.Problem, map[csp.Var]string, map[csp.Var]Assignment) {
	var ordered []*subjectPlan
	for _, plan := range plans {
		if plan.remaining > 0 {
			ordered = append(ordered, plan)
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		if len(ordered[i].candidates) != len(ordered[j].candidates) {
			return len(ordered[i].candidates) < len(ordered[j].candidates)
		}
		return ordered[i].subject.ID < ordered[j].subject.ID
	})
	rng.Shuffle(len(ordered), func(i, j int) {
		if len(ordered[i].candidates) == len(ordered[j].candidates) {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		}
	})

	varSubject := map[csp.Var]string{}
	domains := map[csp.Var][]int{}
	var vars []csp.Var
	nextVar := csp.Var(0)

	freeAssignment := make(map[csp.Var]Assignment)

	for _, plan := range ordered {
		domain := make([]int, len(plan.candidates))
		for i := range domain {
			domain[i] = i
		}
		sort.SliceStable(domain, func(i, j int) bool {
			return plan.candidates[domain[i]].Slot < plan.candidates[domain[j]].Slot
		})
		jitter := 1
		if weight > 1 {
			jitter = weight
		}
		rng.Shuffle(len(domain), func(i, j int) {
			if rng.Intn(jitter+1) == 0 {
				domain[i], domain[j] = domain[j], domain[i]
			}
		})

		for occ := 0; occ < plan.remaining; occ++ {
			v := nextVar
			nextVar++
			varSubject[v] = plan.subject.ID
			domains[v] = domain
			vars = append(vars, v)
		}
	}

	planBySubject := make(map[string]*subjectPlan, len(plans))
	for id, p := range plans {
		planBySubject[id] = p
	}

	familyOf := func(plan *subjectPlan) string { return plan.familyID }

	cost := func() int {
		o1 := 0
		present := map[familyDayKey]map[int]bool{}
		mark := func(plan *subjectPlan, day, slot int) {
			o1 += slot * weight
			fam := familyOf(plan)
			key := familyDayKey{fam, day}
			if present[key] == nil {
				present[key] = map[int]bool{}
			}
			present[key][slot] = true
		}
		for _, a := range preAssignments {
			// preAssignments carry no *subjectPlan pointer; resolve via id.
			plan := planBySubject[a.SubjectID]
			mark(plan, a.Day, a.Slot)
		}
		for _, a := range freeAssignment {
			mark(planBySubject[a.SubjectID], a.Day, a.Slot)
		}
		o2 := 0
		for _, slots := range present {
			for slot := range slots {
				o2 += slot * 2
			}
		}
		return o1 + o2
	}

	problem := csp.Problem{
		Vars:    vars,
		Domains: domains,
		Feasible: func(v csp.Var, idx int) bool {
			plan := planBySubject[varSubject[v]]
			c := plan.candidates[idx]
			cap := subjectCapFor(counts, plan.subject.ID, c.Day)
			return u.feasible(plan, cap, c)
		},
		Commit: func(v csp.Var, idx int) {
			plan := planBySubject[varSubject[v]]
			c := plan.candidates[idx]
			u.commit(plan, c)
			freeAssignment[v] = Assignment{
				TeacherID: plan.teacherID, SubjectID: plan.subject.ID,
				BatchID: plan.batchID, RoomID: c.RoomID, Day: c.Day, Slot: c.Slot,
			}
		},
		Retract: func(v csp.Var, idx int) {
			plan := planBySubject[varSubject[v]]
			c := plan.candidates[idx]
			u.retract(plan, c)
			delete(freeAssignment, v)
		},
		Cost: cost,
	}

	return problem, varSubject, freeAssignment
}

// SolveVariant runs one full attempt at building and solving the model for
// a department: candidate filtering, pin and lab-sync preassignment, then
// the free-variable search, in the order the reference's model builder
// applies them. A false return means this variant is infeasible, not that
// the department itself can never be scheduled — the caller tries the next
// variant in the table.
func SolveVariant(input Input, seed int64, weight int, timeLimit time.Duration) ([]Assignment, bool) {
	graph := buildBatchGraph(input.Batches)
	plans := buildSubjectPlans(input, graph)
	u := newUsageState()
	counts := pinCounts(input.Pins)

	pinAssignments, ok := preassignPins(plans, input.Pins, counts, u)
	if !ok {
		return nil, false
	}

	rng := rand.New(rand.NewSource(seed))
	groups := buildLabSyncGroups(plans, graph)
	labAssignments, ok := preassignLabSync(plans, groups, counts, u, rng)
	if !ok {
		return nil, false
	}

	preAssignments := make([]Assignment, 0, len(pinAssignments)+len(labAssignments))
	preAssignments = append(preAssignments, pinAssignments...)
	preAssignments = append(preAssignments, labAssignments...)

	problem, _, freeAssignment := buildFreeProblem(plans, preAssignments, counts, u, weight, rng)
	if len(problem.Vars) == 0 {
		return preAssignments, true
	}

	result, ok := csp.Solve(problem, seed, timeLimit)
	if !ok {
		return nil, false
	}

	final := make([]Assignment, 0, len(preAssignments)+len(result))
	final = append(final, preAssignments...)
	for v := range result {
		if a, ok := freeAssignment[v]; ok {
			final = append(final, a)
		}
	}
	return final, true
}

// Decode turns a solved variant's assignments into persistable timetable
// slots, filling in the clock times from the fixed grid.
func Decode(timetableID string, assignments []Assignment) []models.TimetableSlot {
	slots := make([]models.TimetableSlot, 0, len(assignments))
	for _, a := range assignments {
		slots = append(slots, models.TimetableSlot{
			TimetableID: timetableID,
			Day:         a.Day,
			StartTime:   SlotStart(a.Slot),
			EndTime:     SlotEnd(a.Slot),
			RoomID:      a.RoomID,
			TeacherID:   a.TeacherID,
			SubjectID:   a.SubjectID,
			BatchID:     a.BatchID,
		})
	}
	return slots
}
