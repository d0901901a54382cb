package reallocate

import (
	"fmt"
	"math"
	"sort"

	"github.com/Bhargs24/rqsm-engine/pkg/apperror"
	"github.com/Bhargs24/rqsm-engine/pkg/catalog"
)

// alignmentMatrix gives each intent's affinity toward each role, used by
// the reallocation score. The canonical entries named in spec.md §4.E
// (Clarification→Explainer 0.9 / Misconception-Spotter 0.8; Example
// Request→Example-Generator 0.95; Summary Request→Summarizer 0.95;
// Objection→Challenger 0.9) are kept verbatim; the remaining cells are
// this engine's own extrapolation along the same role semantics (see
// DESIGN.md).
var alignmentMatrix = map[Intent]map[catalog.Name]float64{
	Clarification: {
		catalog.Explainer:            0.9,
		catalog.MisconceptionSpotter: 0.8,
		catalog.Summarizer:           0.3,
		catalog.ExampleGenerator:     0.2,
		catalog.Challenger:           0.1,
	},
	Objection: {
		catalog.Challenger:           0.9,
		catalog.MisconceptionSpotter: 0.5,
		catalog.Explainer:            0.2,
		catalog.Summarizer:           0.1,
		catalog.ExampleGenerator:     0.1,
	},
	ExampleRequest: {
		catalog.ExampleGenerator:     0.95,
		catalog.Explainer:            0.3,
		catalog.Challenger:           0.1,
		catalog.Summarizer:           0.1,
		catalog.MisconceptionSpotter: 0.1,
	},
	DepthRequest: {
		catalog.Explainer:            0.7,
		catalog.MisconceptionSpotter: 0.5,
		catalog.ExampleGenerator:     0.4,
		catalog.Challenger:           0.3,
		catalog.Summarizer:           0.1,
	},
	SummaryRequest: {
		catalog.Summarizer:           0.95,
		catalog.Explainer:            0.2,
		catalog.Challenger:           0.1,
		catalog.ExampleGenerator:     0.1,
		catalog.MisconceptionSpotter: 0.1,
	},
	TopicPivot: {
		catalog.Explainer:            0.5,
		catalog.Summarizer:           0.4,
		catalog.ExampleGenerator:     0.3,
		catalog.Challenger:           0.2,
		catalog.MisconceptionSpotter: 0.2,
	},
	Other: {
		catalog.Explainer:            0.2,
		catalog.Challenger:           0.2,
		catalog.Summarizer:           0.2,
		catalog.ExampleGenerator:     0.2,
		catalog.MisconceptionSpotter: 0.2,
	},
}

// boundedDelayTurns is how long a reallocated queue stays frozen before
// another intent-driven reallocation may be attempted.
const boundedDelayTurns = 3

// hysteresisTurns is how long a demoted role stays pinned to the tail of
// the queue.
const hysteresisTurns = 7

// demotionThreshold is the minimum position drop that triggers hysteresis.
const demotionThreshold = 2

// Input bundles everything Reallocate needs to compute a new queue. It
// never mutates the maps it's given — HysteresisUntil is copied before
// any write.
type Input struct {
	CurrentQueue         []catalog.Name
	Intent               Intent
	Confidence           float64
	UsageCount           map[catalog.Name]int
	HysteresisUntil      map[catalog.Name]int
	CurrentTurn          int
	ReallocationLockedAt int // turn of the last successful reallocation, -1 if none
}

// Result is the outcome of a successful reallocation.
type Result struct {
	Queue           []catalog.Name
	HysteresisUntil map[catalog.Name]int
	LockedAt        int
}

// Reallocate computes a new role queue from the current interruption
// intent, usage history, and hysteresis state (spec.md §4.E). It returns
// an error wrapping apperror.ErrStabilityBlock if the bounded-delay window
// from the last reallocation is still active, and leaves the queue
// unchanged if confidence is below the gate.
func Reallocate(in Input) (Result, error) {
	if in.ReallocationLockedAt >= 0 && in.CurrentTurn-in.ReallocationLockedAt < boundedDelayTurns {
		return Result{}, fmt.Errorf("reallocate: %w: locked until turn %d", apperror.ErrStabilityBlock, in.ReallocationLockedAt+boundedDelayTurns)
	}
	if in.Confidence < ReallocationConfidenceGate {
		return Result{
			Queue:           in.CurrentQueue,
			HysteresisUntil: in.HysteresisUntil,
			LockedAt:         in.ReallocationLockedAt,
		}, nil
	}

	align := alignmentMatrix[in.Intent]

	type scored struct {
		role  catalog.Name
		score float64
	}
	ranked := make([]scored, 0, len(catalog.AllNames))
	for _, name := range catalog.AllNames {
		role, ok := catalog.Lookup(name)
		if !ok {
			continue
		}
		score := role.BaseWeight + 5.0*align[name] - 0.2*float64(in.UsageCount[name])
		if until, ok := in.HysteresisUntil[name]; ok && until > in.CurrentTurn {
			score = math.Inf(-1)
		}
		ranked = append(ranked, scored{role: name, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	newQueue := make([]catalog.Name, len(ranked))
	for i, s := range ranked {
		newQueue[i] = s.role
	}

	oldPosition := make(map[catalog.Name]int, len(in.CurrentQueue))
	for i, r := range in.CurrentQueue {
		oldPosition[r] = i
	}

	newHysteresis := make(map[catalog.Name]int, len(in.HysteresisUntil))
	for k, v := range in.HysteresisUntil {
		newHysteresis[k] = v
	}
	for newPos, r := range newQueue {
		oldPos, ok := oldPosition[r]
		if ok && newPos-oldPos >= demotionThreshold {
			newHysteresis[r] = in.CurrentTurn + hysteresisTurns
		}
	}

	return Result{
		Queue:           newQueue,
		HysteresisUntil: newHysteresis,
		LockedAt:         in.CurrentTurn,
	}, nil
}
