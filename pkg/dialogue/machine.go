package dialogue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Bhargs24/rqsm-engine/pkg/apperror"
	"github.com/Bhargs24/rqsm-engine/pkg/assign"
	"github.com/Bhargs24/rqsm-engine/pkg/audit"
	"github.com/Bhargs24/rqsm-engine/pkg/catalog"
	"github.com/Bhargs24/rqsm-engine/pkg/dialogue/generator"
	"github.com/Bhargs24/rqsm-engine/pkg/events"
	"github.com/Bhargs24/rqsm-engine/pkg/segment"
)

const historyWindow = 10

// Machine owns exactly one ConversationContext and drives it through the
// six-state, event-driven transition table (spec.md §4.D). No other
// component may mutate the context directly.
type Machine struct {
	ctx *ConversationContext

	units     []segment.SemanticUnit
	unitByID  map[string]segment.SemanticUnit
	queues    map[string][]catalog.Name
	generator generator.Generator
	deadline  time.Duration
	logger    *zap.Logger
	bus       *events.Bus
	audit     *audit.Repository
}

// SetEventBus attaches the in-process domain event bus. Publishing is
// best-effort: a nil bus (the default) makes every publish a no-op, so
// callers that don't care about observability never have to branch on it.
func (m *Machine) SetEventBus(bus *events.Bus) {
	m.bus = bus
}

func (m *Machine) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if m.bus == nil {
		return
	}
	evt := events.BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
	if err := m.bus.Publish(ctx, evt); err != nil {
		m.logger.Warn("dialogue: event publish failed", zap.String("event_type", eventType), zap.Error(err))
	}
}

// NewMachine constructs a fresh, idle Machine for a session.
func NewMachine(sessionID string, gen generator.Generator, deadline time.Duration, logger *zap.Logger) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deadline <= 0 {
		deadline = 30 * time.Second
	}
	m := &Machine{
		ctx:       newContext(sessionID),
		queues:    make(map[string][]catalog.Name),
		generator: gen,
		deadline:  deadline,
		logger:    logger,
	}
	_ = m.fire(EventInitialize)
	return m
}

// fire applies the transition table to the current state for a plain
// event with no side effects beyond the state change itself. ERROR is
// legal from every non-terminal state and always self-loops.
func (m *Machine) fire(event Event) error {
	if event == EventError {
		if isTerminal(m.ctx.CurrentState) {
			return fmt.Errorf("dialogue: %w: ERROR in terminal state", apperror.ErrInvalidTransition)
		}
		m.logger.Warn("dialogue error event", zap.String("state", string(m.ctx.CurrentState)))
		return nil
	}

	next, ok := transitions[transitionKey{from: m.ctx.CurrentState, event: event}]
	if !ok {
		return fmt.Errorf("dialogue: %w: %s in state %s", apperror.ErrInvalidTransition, event, m.ctx.CurrentState)
	}
	m.ctx.CurrentState = next
	return nil
}

// LoadDocument attaches a unit count and moves idle -> ready.
func (m *Machine) LoadDocument(totalUnits int) error {
	if totalUnits <= 0 {
		return fmt.Errorf("dialogue: %w: total_units must be > 0", apperror.ErrPreconditionFailed)
	}
	if err := m.fire(EventDocumentLoaded); err != nil {
		return err
	}
	m.ctx.TotalUnits = totalUnits
	return nil
}

// AttachAssignment stores the segmented units and their role queues. It
// must be called with the same units that produced a, and the two slices
// must agree on total unit count with LoadDocument.
func (m *Machine) AttachAssignment(units []segment.SemanticUnit, a *assign.Assignment) error {
	if err := m.fire(EventRolesAssigned); err != nil {
		return err
	}
	if len(units) != m.ctx.TotalUnits {
		return fmt.Errorf("dialogue: %w: assignment covers %d units, expected %d", apperror.ErrPreconditionFailed, len(units), m.ctx.TotalUnits)
	}

	m.units = units
	m.unitByID = make(map[string]segment.SemanticUnit, len(units))
	for _, u := range units {
		m.unitByID[u.ID] = u
	}

	m.queues = make(map[string][]catalog.Name, len(a.Units))
	for _, ua := range a.Units {
		queue := make([]catalog.Name, len(ua.Queue))
		copy(queue, ua.Queue)
		m.queues[ua.UnitID] = queue
	}
	return nil
}

// StartDialogue moves ready -> engaged, positioning at unit 0.
func (m *Machine) StartDialogue() error {
	if err := m.fire(EventStartDialogue); err != nil {
		return err
	}
	m.ctx.CurrentUnitIndex = 0
	m.loadQueueForCurrentUnit()
	return nil
}

func (m *Machine) loadQueueForCurrentUnit() {
	if m.ctx.CurrentUnitIndex >= len(m.units) {
		m.ctx.CurrentQueue = nil
		return
	}
	id := m.units[m.ctx.CurrentUnitIndex].ID
	queue := m.queues[id]
	m.ctx.CurrentQueue = make([]catalog.Name, len(queue))
	copy(m.ctx.CurrentQueue, queue)
	m.ctx.CurrentQueueCursor = 0
}

// nextRole resolves the role for the next bot turn on the current unit:
// the queue entry at the next unused cursor position, per spec.md §4.D
// step 1 of the turn generation contract.
func (m *Machine) nextRole() (*catalog.Role, error) {
	if len(m.ctx.CurrentQueue) == 0 {
		return nil, fmt.Errorf("dialogue: %w: no role queue attached for current unit", apperror.ErrPreconditionFailed)
	}
	name := m.ctx.CurrentQueue[m.ctx.CurrentQueueCursor%len(m.ctx.CurrentQueue)]
	role, ok := catalog.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("dialogue: %w: role %q", apperror.ErrNotFound, name)
	}
	return role, nil
}

// StartBotResponse sets the generating flags. Legal from engaged or
// interrupted.
func (m *Machine) StartBotResponse() error {
	if err := m.fire(EventBotResponseStart); err != nil {
		return err
	}
	m.ctx.BotIsGenerating = true
	m.ctx.AwaitingUserInput = false
	return nil
}

// FinishBotResponse flips the generating flags back and, if text is
// non-empty, appends a BOT_TURN history event. Idempotent: a call while
// bot_is_generating is already false is a no-op (spec.md §4.D).
func (m *Machine) FinishBotResponse(text string) error {
	if !m.ctx.BotIsGenerating {
		return nil
	}
	if err := m.fire(EventBotResponseEnd); err != nil {
		return err
	}
	m.ctx.BotIsGenerating = false
	m.ctx.AwaitingUserInput = true
	if text != "" {
		role, roleErr := m.nextRole()
		roleName := ""
		if roleErr == nil {
			roleName = string(role.Name)
			m.ctx.CurrentQueueCursor++
			m.ctx.RoleUsageCount[role.Name]++
		}
		m.ctx.TurnNumber++
		m.ctx.appendHistory("BOT_TURN", map[string]interface{}{
			"role": roleName,
			"text": text,
		})
		m.publish(context.Background(), "BOT_TURN", map[string]interface{}{
			"session_id": m.ctx.SessionID,
			"role":       roleName,
			"turn":       m.ctx.TurnNumber,
		})
	}
	return nil
}

// ProcessUserMessage records a user message. Legal from engaged or
// interrupted.
func (m *Machine) ProcessUserMessage(text string) error {
	if text == "" {
		return fmt.Errorf("dialogue: %w: empty user message", apperror.ErrInputInvalid)
	}
	if err := m.fire(EventUserMessage); err != nil {
		return err
	}
	m.ctx.TurnNumber++
	m.ctx.appendHistory("USER_MESSAGE", map[string]interface{}{"text": text})
	return nil
}

// UserClicksInterrupt applies the critical entry rule: fields are touched
// only when this call actually transitions engaged -> interrupted. A
// repeat call while already interrupted is idempotent and returns a
// human-readable status instead of re-incrementing counters.
func (m *Machine) UserClicksInterrupt() (string, error) {
	if m.ctx.CurrentState == StateInterrupted {
		return "already interrupted", nil
	}
	if err := m.fire(EventUserInterrupt); err != nil {
		return "", err
	}
	m.ctx.InterruptedAtIndex = m.ctx.CurrentUnitIndex
	m.ctx.InterruptionCount++
	m.ctx.appendHistory("USER_INTERRUPT", map[string]interface{}{"unit_index": m.ctx.CurrentUnitIndex})
	m.publish(context.Background(), "USER_INTERRUPT", map[string]interface{}{
		"session_id": m.ctx.SessionID,
		"unit_index": m.ctx.CurrentUnitIndex,
		"count":      m.ctx.InterruptionCount,
	})
	return "interrupted", nil
}

// ProcessInterruptionMessage records a clarification turn while
// interrupted. No generator side effect.
func (m *Machine) ProcessInterruptionMessage(text string) error {
	if text == "" {
		return fmt.Errorf("dialogue: %w: empty interruption message", apperror.ErrInputInvalid)
	}
	if err := m.fire(EventUserInterruptMessage); err != nil {
		return err
	}
	m.ctx.TurnNumber++
	m.ctx.appendHistory("USER_INTERRUPT_MESSAGE", map[string]interface{}{"text": text})
	return nil
}

// ResumeConversation exits interrupted back to engaged. fromStart=true
// seeks current_unit_index back to interrupted_at_index (idempotent in
// the absence of forward drift); fromStart=false continues from wherever
// current_unit_index already sits.
func (m *Machine) ResumeConversation(fromStart bool) error {
	if err := m.fire(EventResume); err != nil {
		return err
	}
	if fromStart {
		m.ctx.CurrentUnitIndex = m.ctx.InterruptedAtIndex
	}
	m.ctx.InterruptedAtIndex = -1
	m.loadQueueForCurrentUnit()
	return nil
}

// Pause suspends the dialogue from engaged.
func (m *Machine) Pause() error {
	return m.fire(EventPause)
}

// ResumeFromPause returns to engaged from paused.
func (m *Machine) ResumeFromPause() error {
	return m.fire(EventResumeFromPause)
}

// AdvanceUnit implements the NEXT_UNIT advance semantics: monotone index,
// completion when the index would run past the last unit (spec.md §4.D).
func (m *Machine) AdvanceUnit() error {
	if m.ctx.CurrentState != StateEngaged {
		return fmt.Errorf("dialogue: %w: NEXT_UNIT in state %s", apperror.ErrInvalidTransition, m.ctx.CurrentState)
	}

	newIndex := m.ctx.CurrentUnitIndex + 1
	if newIndex >= m.ctx.TotalUnits {
		m.ctx.CurrentState = StateCompleted
		m.publish(context.Background(), "SESSION_COMPLETED", map[string]interface{}{
			"session_id":         m.ctx.SessionID,
			"total_units":        m.ctx.TotalUnits,
			"interruption_count": m.ctx.InterruptionCount,
			"turn_number":        m.ctx.TurnNumber,
		})
		return nil
	}
	m.ctx.CurrentUnitIndex = newIndex
	m.loadQueueForCurrentUnit()
	return nil
}

// GenerateBotTurn is the full turn generation contract of spec.md §4.D:
// resolve role, build the prompt, call the generator collaborator under
// the configured deadline, and append history on success. On failure the
// context is left clean: no partial history, flags reverted.
func (m *Machine) GenerateBotTurn(ctx context.Context) (string, error) {
	role, err := m.nextRole()
	if err != nil {
		return "", err
	}
	if m.ctx.CurrentUnitIndex >= len(m.units) {
		return "", fmt.Errorf("dialogue: %w: no current unit to generate for", apperror.ErrPreconditionFailed)
	}
	unit := m.units[m.ctx.CurrentUnitIndex]
	prompt := m.buildPrompt(role, unit)

	if err := m.StartBotResponse(); err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, m.deadline)
	defer cancel()

	text, genErr := m.generator.Generate(callCtx, prompt, role.Temperature)
	if genErr != nil {
		m.ctx.BotIsGenerating = false
		m.ctx.AwaitingUserInput = true
		kind := "GENERATOR_ERROR"
		wrapped := apperror.ErrGeneratorFailed
		if callCtx.Err() == context.DeadlineExceeded {
			kind = "GENERATOR_TIMEOUT"
			wrapped = apperror.ErrGeneratorTimeout
		}
		m.ctx.appendHistory("ERROR", map[string]interface{}{"kind": kind, "cause": genErr.Error()})
		return "", fmt.Errorf("dialogue: %w: %v", wrapped, genErr)
	}

	if err := m.FinishBotResponse(text); err != nil {
		return "", err
	}
	return text, nil
}

func (m *Machine) buildPrompt(role *catalog.Role, unit segment.SemanticUnit) string {
	history := m.ctx.InteractionHistory
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	contextBlock := ""
	for _, h := range history {
		roleName, _ := h.Payload["role"].(string)
		text, _ := h.Payload["text"].(string)
		if roleName == "" {
			roleName = h.Kind
		}
		contextBlock += fmt.Sprintf("[%s]: %s\n", roleName, text)
	}

	return role.SystemPrompt + "\n\n" + contextBlock + "\n\nCurrent unit:\n" + unit.Text
}

// State returns the machine's current state.
func (m *Machine) State() State {
	return m.ctx.CurrentState
}

// Context returns a read-only view of the underlying ConversationContext.
func (m *Machine) Context() ConversationContext {
	return *m.ctx
}

// SetQueue overwrites the in-flight queue for the current unit; used by
// the Reallocator's caller after a successful reallocation.
func (m *Machine) SetQueue(unitID string, queue []catalog.Name) {
	stored := make([]catalog.Name, len(queue))
	copy(stored, queue)
	m.queues[unitID] = stored
	if len(m.units) > 0 && m.ctx.CurrentUnitIndex < len(m.units) && m.units[m.ctx.CurrentUnitIndex].ID == unitID {
		m.ctx.CurrentQueue = stored
	}
}

// CurrentUnit returns the unit the machine is currently positioned at.
func (m *Machine) CurrentUnit() (segment.SemanticUnit, bool) {
	if m.ctx.CurrentUnitIndex >= len(m.units) {
		return segment.SemanticUnit{}, false
	}
	return m.units[m.ctx.CurrentUnitIndex], true
}
