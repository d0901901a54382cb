package reallocate

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bhargs24/rqsm-engine/pkg/apperror"
	"github.com/Bhargs24/rqsm-engine/pkg/catalog"
)

func TestClassifyExampleRequest(t *testing.T) {
	intent, confidence := Classify("could you illustrate with a concrete, real-world example — maybe an actual instance from practice?")
	assert.Equal(t, ExampleRequest, intent)
	assert.GreaterOrEqual(t, confidence, ReallocationConfidenceGate)
}

func TestClassifyIsStableUnderCaseAndTrailingWhitespace(t *testing.T) {
	s := "I disagree with this, it doesn't sound right"
	intentA, confA := Classify(s)
	intentB, confB := Classify(strings.ToUpper(s) + "   ")
	assert.Equal(t, intentA, intentB)
	assert.Equal(t, confA, confB)
}

func TestClassifyNoMatchYieldsOther(t *testing.T) {
	intent, confidence := Classify("the weather today is pleasant")
	assert.Equal(t, Other, intent)
	assert.Equal(t, 0.0, confidence)
}

func TestClassifyTiesBreakByPriorityOrder(t *testing.T) {
	// "clarify" (Clarification, 1/6) vs a single Objection pattern match
	// ("wrong", 1/5) is not a tie — Objection's fraction is higher so it
	// wins outright. Objection and Depth Request both have five patterns,
	// so one hit each ("disagree", "elaborate") is an exact 1/5 tie, which
	// Objection wins by coming first in priorityOrder.
	require.Equal(t, []Intent{Clarification, Objection, ExampleRequest, DepthRequest, SummaryRequest, TopicPivot, Other}, priorityOrder)

	intent, confidence := Classify("I disagree; please elaborate")
	assert.Equal(t, Objection, intent)
	assert.Equal(t, 0.2, confidence)
}

func TestReallocateExampleRequestPromotesExampleGenerator(t *testing.T) {
	in := Input{
		CurrentQueue:         []catalog.Name{catalog.Explainer, catalog.Challenger, catalog.Summarizer, catalog.ExampleGenerator, catalog.MisconceptionSpotter},
		Intent:               ExampleRequest,
		Confidence:           0.83,
		UsageCount:           map[catalog.Name]int{},
		HysteresisUntil:      map[catalog.Name]int{},
		CurrentTurn:          5,
		ReallocationLockedAt: -1,
	}
	result, err := Reallocate(in)
	require.NoError(t, err)
	require.Len(t, result.Queue, 5)
	assert.Equal(t, catalog.ExampleGenerator, result.Queue[0])
}

func TestReallocateBelowGateLeavesQueueUnchanged(t *testing.T) {
	queue := []catalog.Name{catalog.Explainer, catalog.Challenger, catalog.Summarizer, catalog.ExampleGenerator, catalog.MisconceptionSpotter}
	in := Input{
		CurrentQueue:         queue,
		Intent:               ExampleRequest,
		Confidence:           0.2,
		UsageCount:           map[catalog.Name]int{},
		HysteresisUntil:      map[catalog.Name]int{},
		CurrentTurn:          5,
		ReallocationLockedAt: -1,
	}
	result, err := Reallocate(in)
	require.NoError(t, err)
	assert.Equal(t, queue, result.Queue)
}

func TestReallocateBoundedDelayBlocksSubsequentAttempts(t *testing.T) {
	in := Input{
		CurrentQueue:         []catalog.Name{catalog.Explainer, catalog.Challenger, catalog.Summarizer, catalog.ExampleGenerator, catalog.MisconceptionSpotter},
		Intent:               ExampleRequest,
		Confidence:           0.9,
		UsageCount:           map[catalog.Name]int{},
		HysteresisUntil:      map[catalog.Name]int{},
		CurrentTurn:          10,
		ReallocationLockedAt: 8,
	}
	_, err := Reallocate(in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrStabilityBlock))
}

func TestReallocateHysteresisPinsDemotedRoleLast(t *testing.T) {
	in := Input{
		CurrentQueue:         []catalog.Name{catalog.Challenger, catalog.MisconceptionSpotter, catalog.Explainer, catalog.Summarizer, catalog.ExampleGenerator},
		Intent:               Objection,
		Confidence:           0.9,
		UsageCount:           map[catalog.Name]int{},
		HysteresisUntil:      map[catalog.Name]int{catalog.Challenger: 20},
		CurrentTurn:          15,
		ReallocationLockedAt: -1,
	}
	result, err := Reallocate(in)
	require.NoError(t, err)
	assert.Equal(t, catalog.Challenger, result.Queue[len(result.Queue)-1])
	assert.Equal(t, catalog.MisconceptionSpotter, result.Queue[0])
}

func TestReallocateDemotionBeyondThresholdSetsHysteresis(t *testing.T) {
	in := Input{
		CurrentQueue:         []catalog.Name{catalog.Explainer, catalog.Challenger, catalog.Summarizer, catalog.ExampleGenerator, catalog.MisconceptionSpotter},
		Intent:               ExampleRequest,
		Confidence:           0.9,
		UsageCount:           map[catalog.Name]int{},
		HysteresisUntil:      map[catalog.Name]int{},
		CurrentTurn:          1,
		ReallocationLockedAt: -1,
	}
	result, err := Reallocate(in)
	require.NoError(t, err)

	newPos := make(map[catalog.Name]int, len(result.Queue))
	for i, r := range result.Queue {
		newPos[r] = i
	}
	if newPos[catalog.Explainer]-0 >= 2 {
		assert.Equal(t, 8, result.HysteresisUntil[catalog.Explainer])
	}
}
