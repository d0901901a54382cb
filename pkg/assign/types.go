// Package assign implements the Assignment Engine: deterministic scoring
// of every (unit, role) pair and construction of a per-unit ordered
// RoleQueue, via greedy or balanced-ratio selection of the primary role
// (spec.md §4.C).
package assign

import (
	"github.com/Bhargs24/rqsm-engine/pkg/catalog"
)

// Mode selects between the two selection strategies spec.md §4.C defines.
type Mode string

const (
	// ModeGreedy orders each unit's queue by descending total score; the
	// primary is simply the top scorer.
	ModeGreedy Mode = "greedy"
	// ModeBalanced steers the primary-role distribution toward the fixed
	// target ratios while still ordering the rest of the queue by score.
	ModeBalanced Mode = "balanced"
)

// targetRatio is the balanced mode's desired share of primary assignments
// per role; the five entries sum to 1.0.
var targetRatio = map[catalog.Name]float64{
	catalog.Explainer:            0.30,
	catalog.Challenger:           0.20,
	catalog.ExampleGenerator:     0.20,
	catalog.Summarizer:           0.15,
	catalog.MisconceptionSpotter: 0.15,
}

// UnitAssignment is one unit's full Assignment Engine output: its ordered
// RoleQueue (all five roles, each once), the score table that produced it,
// the primary (queue[0]), and a confidence derived from the top/second gap.
type UnitAssignment struct {
	UnitID     string
	Queue      []catalog.Name
	Scores     map[catalog.Name]ScoreBreakdown
	Primary    catalog.Name
	Confidence float64
}

// Assignment is the full, ordered result of assigning every unit in a
// document a role queue.
type Assignment struct {
	Mode  Mode
	Units []UnitAssignment
}

// ByUnitID looks up a unit's assignment by its SemanticUnit.ID.
func (a *Assignment) ByUnitID(id string) (*UnitAssignment, bool) {
	for i := range a.Units {
		if a.Units[i].UnitID == id {
			return &a.Units[i], true
		}
	}
	return nil, false
}

// RoleCounts tallies how many units in an Assignment had each role as
// primary.
func (a *Assignment) RoleCounts() map[catalog.Name]int {
	counts := make(map[catalog.Name]int, len(catalog.AllNames))
	for _, n := range catalog.AllNames {
		counts[n] = 0
	}
	for _, ua := range a.Units {
		counts[ua.Primary]++
	}
	return counts
}
