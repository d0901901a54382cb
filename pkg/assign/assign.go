package assign

import (
	"fmt"
	"math"
	"sort"

	"github.com/Bhargs24/rqsm-engine/pkg/apperror"
	"github.com/Bhargs24/rqsm-engine/pkg/catalog"
	"github.com/Bhargs24/rqsm-engine/pkg/segment"
)

// Assign scores every unit against the full role catalog and builds its
// ordered RoleQueue, per mode (spec.md §4.C). Units are scored
// independently; only the primary-role selection differs between modes.
func Assign(units []segment.SemanticUnit, mode Mode) (*Assignment, error) {
	if mode != ModeGreedy && mode != ModeBalanced {
		return nil, fmt.Errorf("assign: %w: unknown mode %q", apperror.ErrInputInvalid, mode)
	}

	scored := make([]map[catalog.Name]ScoreBreakdown, len(units))
	for i, u := range units {
		scored[i] = scoreUnit(u, len(units))
	}

	var result *Assignment
	switch mode {
	case ModeGreedy:
		result = assignGreedy(units, scored)
	case ModeBalanced:
		result = assignBalanced(units, scored)
	}
	result.Mode = mode
	return result, nil
}

func scoreUnit(u segment.SemanticUnit, totalUnits int) map[catalog.Name]ScoreBreakdown {
	scores := make(map[catalog.Name]ScoreBreakdown, len(catalog.AllNames))
	for _, role := range catalog.All() {
		structural := structuralScore(role, u, totalUnits)
		lexical := lexicalScore(role, u)
		topic := topicScore(role, u)
		scores[role.Name] = ScoreBreakdown{
			Structural: structural,
			Lexical:    lexical,
			Topic:      topic,
			Total:      totalScore(structural, lexical, topic),
		}
	}
	return scores
}

// rankRoles returns all five role names ordered by descending total score.
// Starting from catalog.AllNames (already lexicographic) and sorting with
// SliceStable means equal-total roles keep their lexicographic relative
// order, which is exactly the tie-break spec.md §4.C requires.
func rankRoles(scores map[catalog.Name]ScoreBreakdown) []catalog.Name {
	ranked := make([]catalog.Name, len(catalog.AllNames))
	copy(ranked, catalog.AllNames)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i]].Total > scores[ranked[j]].Total
	})
	return ranked
}

// confidence is the top/second-place score gap normalized to [0,1] by
// dividing by the maximum possible total (10), per spec.md §4.C.
func confidence(scores map[catalog.Name]ScoreBreakdown, ranked []catalog.Name) float64 {
	if len(ranked) < 2 {
		return 0
	}
	gap := (scores[ranked[0]].Total - scores[ranked[1]].Total) / 10.0
	if gap < 0 {
		return 0
	}
	if gap > 1 {
		return 1
	}
	return gap
}

// withPrimaryFirst reorders ranked so primary leads, preserving the
// relative descending-total order of the remaining four roles.
func withPrimaryFirst(ranked []catalog.Name, primary catalog.Name) []catalog.Name {
	queue := make([]catalog.Name, 0, len(ranked))
	queue = append(queue, primary)
	for _, r := range ranked {
		if r != primary {
			queue = append(queue, r)
		}
	}
	return queue
}

func assignGreedy(units []segment.SemanticUnit, scored []map[catalog.Name]ScoreBreakdown) *Assignment {
	out := make([]UnitAssignment, len(units))
	for i, u := range units {
		ranked := rankRoles(scored[i])
		out[i] = UnitAssignment{
			UnitID:     u.ID,
			Queue:      ranked,
			Scores:     scored[i],
			Primary:    ranked[0],
			Confidence: confidence(scored[i], ranked),
		}
	}
	return &Assignment{Units: out}
}

// assignBalanced walks units in document order, maintaining per-role
// primary counts c[role] and a running total n of units already assigned.
// For each unit it evaluates candidates in descending-total order and
// picks the first role whose projected new ratio (c[role]+1)/max(n,1)
// stays within its target; if every candidate would exceed its target, it
// falls back to the globally highest-scoring role (spec.md §4.C).
func assignBalanced(units []segment.SemanticUnit, scored []map[catalog.Name]ScoreBreakdown) *Assignment {
	counts := make(map[catalog.Name]int, len(catalog.AllNames))
	n := 0
	out := make([]UnitAssignment, len(units))

	for i, u := range units {
		ranked := rankRoles(scored[i])

		primary := ranked[0]
		for _, role := range ranked {
			denom := math.Max(float64(n), 1)
			projected := float64(counts[role]+1) / denom
			if projected <= targetRatio[role] {
				primary = role
				break
			}
		}

		queue := withPrimaryFirst(ranked, primary)
		counts[primary]++
		n++

		out[i] = UnitAssignment{
			UnitID:     u.ID,
			Queue:      queue,
			Scores:     scored[i],
			Primary:    primary,
			Confidence: confidence(scored[i], ranked),
		}
	}
	return &Assignment{Units: out}
}
