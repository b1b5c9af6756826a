package csp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSolveGraphColoring exercises the generic engine against a small
// fixed problem independent of the timetabling domain: color 4 nodes of a
// cycle graph with 2 colors such that no edge's endpoints match (solvable),
// and with 1 color (unsolvable).
func TestSolveGraphColoringFeasible(t *testing.T) {
	edges := [][2]Var{{0, 1}, {1, 2}, {2, 3}, {3, 0}}
	colors := map[Var]int{}

	problem := Problem{
		Vars:    []Var{0, 1, 2, 3},
		Domains: map[Var][]int{0: {0, 1}, 1: {0, 1}, 2: {0, 1}, 3: {0, 1}},
		Feasible: func(v Var, value int) bool {
			for _, e := range edges {
				var other Var
				switch v {
				case e[0]:
					other = e[1]
				case e[1]:
					other = e[0]
				default:
					continue
				}
				if c, ok := colors[other]; ok && c == value {
					return false
				}
			}
			return true
		},
		Commit:  func(v Var, value int) { colors[v] = value },
		Retract: func(v Var, value int) { delete(colors, v) },
	}

	result, ok := Solve(problem, 1, time.Second)
	require.True(t, ok)
	assert.Len(t, result, 4)
	for _, e := range edges {
		assert.NotEqual(t, result[e[0]], result[e[1]])
	}
}

func TestSolveGraphColoringInfeasible(t *testing.T) {
	edges := [][2]Var{{0, 1}, {1, 2}, {2, 0}}
	colors := map[Var]int{}

	problem := Problem{
		Vars:    []Var{0, 1, 2},
		Domains: map[Var][]int{0: {0}, 1: {0}, 2: {0}},
		Feasible: func(v Var, value int) bool {
			for _, e := range edges {
				var other Var
				switch v {
				case e[0]:
					other = e[1]
				case e[1]:
					other = e[0]
				default:
					continue
				}
				if c, ok := colors[other]; ok && c == value {
					return false
				}
			}
			return true
		},
		Commit:  func(v Var, value int) { colors[v] = value },
		Retract: func(v Var, value int) { delete(colors, v) },
	}

	_, ok := Solve(problem, 1, 200*time.Millisecond)
	assert.False(t, ok)
}

func TestSolvePolishReducesCost(t *testing.T) {
	// Two independent variables; cost is the sum of chosen values. The
	// feasible region is unconstrained, so polishing should walk the
	// assignment down toward the minimum in each domain.
	values := map[Var]int{}
	problem := Problem{
		Vars:     []Var{0, 1},
		Domains:  map[Var][]int{0: {5, 3, 1}, 1: {6, 4, 2}},
		Feasible: func(Var, int) bool { return true },
		Commit:   func(v Var, value int) { values[v] = value },
		Retract:  func(v Var, value int) { delete(values, v) },
		Cost: func() int {
			return values[0] + values[1]
		},
	}

	result, ok := Solve(problem, 7, time.Second)
	require.True(t, ok)
	assert.Equal(t, 1, result[0])
	assert.Equal(t, 2, result[1])
}
