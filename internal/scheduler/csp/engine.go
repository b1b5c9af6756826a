// Package csp is a small hand-written finite-domain constraint solver:
// seeded backtracking search with a trail of caller-maintained state, plus
// a bounded local-search pass for soft-objective polishing. It has no
// knowledge of timetables; internal/scheduler builds a Problem out of the
// domain model and decodes the Result back into slot assignments.
package csp

import (
	"math/rand"
	"time"
)

// Var identifies one decision variable. The solver never interprets a
// Var's value beyond indexing into Domains; meaning lives with the caller.
type Var int

// Problem describes one finite-domain search. Vars gives the variable
// processing order (the caller should order by most-constrained-first and
// shuffle ties by seed for variant diversity); Domains gives each Var's
// candidate value indices in preference order.
//
// Feasible, Commit and Retract let the caller maintain its own
// constraint-tracking state (usage maps, counters) incrementally rather
// than recomputing it from a full assignment on every node, which is what
// makes backtracking over a few thousand variables practical here.
type Problem struct {
	Vars    []Var
	Domains map[Var][]int

	// Feasible reports whether assigning value to v is consistent with
	// everything already Committed on the current search path.
	Feasible func(v Var, value int) bool
	// Commit records the assignment in caller-owned state.
	Commit func(v Var, value int)
	// Retract undoes the effect of the matching Commit call.
	Retract func(v Var, value int)
	// Cost scores the fully committed assignment; lower is better. Only
	// called once every Var is bound. May be nil if no polishing pass is
	// wanted.
	Cost func() int
}

// Result maps every Var to its chosen domain index.
type Result map[Var]int

// Solve runs backtracking search bounded by timeLimit, then (if Cost is
// set) a bounded local-search pass that tries to lower Cost by reassigning
// one variable at a time. Returns (nil, false) if the deadline passes
// before a satisfying assignment is found.
func Solve(p Problem, seed int64, timeLimit time.Duration) (Result, bool) {
	deadline := time.Now().Add(timeLimit)
	rng := rand.New(rand.NewSource(seed))
	result := make(Result, len(p.Vars))

	nodes := 0
	timedOut := false
	var backtrack func(i int) bool
	backtrack = func(i int) bool {
		if timedOut {
			return false
		}
		nodes++
		if nodes%2048 == 0 && time.Now().After(deadline) {
			timedOut = true
			return false
		}
		if i == len(p.Vars) {
			return true
		}
		v := p.Vars[i]
		for _, value := range p.Domains[v] {
			if !p.Feasible(v, value) {
				continue
			}
			p.Commit(v, value)
			result[v] = value
			if backtrack(i + 1) {
				return true
			}
			p.Retract(v, value)
			delete(result, v)
		}
		return false
	}

	if !backtrack(0) {
		return nil, false
	}

	if p.Cost != nil {
		polish(p, result, rng, deadline)
	}

	return result, true
}

// polish runs a bounded number of random single-variable reassignments,
// keeping any that stay feasible and do not raise Cost (equal-cost moves
// are kept too). It is a heuristic
// stand-in for true objective minimization, which a from-scratch
// backtracking search cannot afford for every node.
func polish(p Problem, result Result, rng *rand.Rand, deadline time.Time) {
	if len(p.Vars) == 0 {
		return
	}
	currentCost := p.Cost()
	maxIterations := 200 * len(p.Vars)
	if maxIterations > 20000 {
		maxIterations = 20000
	}

	for iter := 0; iter < maxIterations; iter++ {
		if iter%256 == 0 && time.Now().After(deadline) {
			return
		}
		v := p.Vars[rng.Intn(len(p.Vars))]
		domain := p.Domains[v]
		if len(domain) < 2 {
			continue
		}
		oldValue := result[v]
		newValue := domain[rng.Intn(len(domain))]
		if newValue == oldValue {
			continue
		}

		p.Retract(v, oldValue)
		if !p.Feasible(v, newValue) {
			p.Commit(v, oldValue)
			continue
		}
		p.Commit(v, newValue)
		newCost := p.Cost()
		if newCost <= currentCost {
			result[v] = newValue
			currentCost = newCost
			continue
		}
		p.Retract(v, newValue)
		p.Commit(v, oldValue)
	}
}
