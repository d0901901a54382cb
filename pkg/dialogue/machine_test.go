package dialogue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bhargs24/rqsm-engine/pkg/assign"
	"github.com/Bhargs24/rqsm-engine/pkg/dialogue/generator"
	"github.com/Bhargs24/rqsm-engine/pkg/segment"
)

func twoUnitDocument() []segment.SemanticUnit {
	return []segment.SemanticUnit{
		{
			ID:          "S0_0",
			Title:       "Overview",
			Text:        "Load balancers distribute incoming traffic across many backend servers to keep latency low.",
			SectionKind: segment.SectionIntroduction,
			Position:    0,
			Cohesion:    0.9,
			WordCount:   15,
			Metadata:    map[string]interface{}{},
		},
		{
			ID:          "S1_0",
			Title:       "Tradeoffs",
			Text:        "Round robin cycles requests in a fixed order, ignoring current load on each backend server.",
			SectionKind: segment.SectionBody,
			Position:    1,
			Cohesion:    0.85,
			WordCount:   15,
			Metadata:    map[string]interface{}{},
		},
	}
}

func newTestMachine(t *testing.T, units []segment.SemanticUnit) *Machine {
	t.Helper()
	m := NewMachine("session-1", generator.NewStubGenerator(), time.Second, nil)
	require.NoError(t, m.LoadDocument(len(units)))
	a, err := assign.Assign(units, assign.ModeGreedy)
	require.NoError(t, err)
	require.NoError(t, m.AttachAssignment(units, a))
	return m
}

func TestScenarioHappyPath(t *testing.T) {
	units := twoUnitDocument()
	m := newTestMachine(t, units)

	require.NoError(t, m.StartDialogue())
	assert.Equal(t, StateEngaged, m.State())

	ua, ok := mustAssignment(t, units).ByUnitID("S0_0")
	require.True(t, ok)
	assert.Equal(t, "Summarizer", string(ua.Primary))

	require.NoError(t, m.StartBotResponse())
	require.NoError(t, m.FinishBotResponse("here is the summary"))
	require.NoError(t, m.ProcessUserMessage("ok"))
	require.NoError(t, m.AdvanceUnit())
	assert.Equal(t, StateEngaged, m.State())
	assert.Equal(t, 1, m.Context().CurrentUnitIndex)

	require.NoError(t, m.AdvanceUnit())
	assert.Equal(t, StateCompleted, m.State())
	assert.Equal(t, 1, m.Context().CurrentUnitIndex)
}

func mustAssignment(t *testing.T, units []segment.SemanticUnit) *assign.Assignment {
	t.Helper()
	a, err := assign.Assign(units, assign.ModeGreedy)
	require.NoError(t, err)
	return a
}

func TestScenarioBotResponseDuringInterruptionDoesNotRecount(t *testing.T) {
	units := twoUnitDocument()
	m := newTestMachine(t, units)
	require.NoError(t, m.StartDialogue())

	status, err := m.UserClicksInterrupt()
	require.NoError(t, err)
	assert.Equal(t, "interrupted", status)
	assert.Equal(t, 0, m.Context().InterruptedAtIndex)
	assert.Equal(t, 1, m.Context().InterruptionCount)

	require.NoError(t, m.StartBotResponse())
	require.NoError(t, m.FinishBotResponse("answer"))
	assert.Equal(t, 0, m.Context().InterruptedAtIndex)
	assert.Equal(t, 1, m.Context().InterruptionCount)

	status, err = m.UserClicksInterrupt()
	require.NoError(t, err)
	assert.Equal(t, "already interrupted", status)
	assert.Equal(t, 1, m.Context().InterruptionCount)

	require.NoError(t, m.ResumeConversation(false))
	assert.Equal(t, StateEngaged, m.State())
	assert.Equal(t, 0, m.Context().CurrentUnitIndex)
	assert.Equal(t, -1, m.Context().InterruptedAtIndex)
}

func TestScenarioPersistenceRoundTrip(t *testing.T) {
	units := twoUnitDocument()
	m := newTestMachine(t, units)
	require.NoError(t, m.StartDialogue())
	require.NoError(t, m.StartBotResponse())
	require.NoError(t, m.FinishBotResponse("turn one"))
	require.NoError(t, m.ProcessUserMessage("continue"))
	_, err := m.UserClicksInterrupt()
	require.NoError(t, err)
	require.NoError(t, m.ProcessInterruptionMessage("wait, why?"))
	require.NoError(t, m.ResumeConversation(false))

	blob, err := m.SaveState()
	require.NoError(t, err)

	restored := NewMachine("session-1", generator.NewStubGenerator(), time.Second, nil)
	require.NoError(t, restored.LoadState(blob))

	before := m.GetStateSummary()
	after := restored.GetStateSummary()
	assert.Equal(t, before["turn_number"], after["turn_number"])
	assert.Equal(t, before["interruption_count"], after["interruption_count"])
	assert.Equal(t, before["current_unit_index"], after["current_unit_index"])
	assert.Equal(t, before["history_length"], after["history_length"])
}

func TestLoadStateRejectsUnknownSchemaVersion(t *testing.T) {
	m := NewMachine("session-2", generator.NewStubGenerator(), time.Second, nil)
	err := m.LoadState(map[string]interface{}{"schema_version": 999})
	require.Error(t, err)
	assert.Equal(t, StateIdle, m.State())
}

func TestAdvanceUnitIsMonotone(t *testing.T) {
	units := twoUnitDocument()
	m := newTestMachine(t, units)
	require.NoError(t, m.StartDialogue())

	last := m.Context().CurrentUnitIndex
	for i := 0; i < 3; i++ {
		_ = m.AdvanceUnit()
		current := m.Context().CurrentUnitIndex
		assert.GreaterOrEqual(t, current, last)
		last = current
	}
	assert.Equal(t, StateCompleted, m.State())
}

func TestGenerateBotTurnUsesGeneratorCollaborator(t *testing.T) {
	units := twoUnitDocument()
	m := newTestMachine(t, units)
	require.NoError(t, m.StartDialogue())

	text, err := m.GenerateBotTurn(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, text)
	assert.False(t, m.Context().BotIsGenerating)
	assert.Equal(t, 1, m.Context().TurnNumber)
}

func TestInvalidTransitionIsRejected(t *testing.T) {
	m := NewMachine("session-3", generator.NewStubGenerator(), time.Second, nil)
	err := m.StartDialogue()
	require.Error(t, err)
}
