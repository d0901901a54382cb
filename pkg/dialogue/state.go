// Package dialogue implements the per-session Conversation State Machine:
// six states, a fixed event alphabet, interruption/resume/pause semantics,
// and persistent serialization (spec.md §4.D).
package dialogue

// State is one of the six closed-set conversation states.
type State string

const (
	StateIdle        State = "idle"
	StateReady       State = "ready"
	StateEngaged     State = "engaged"
	StateInterrupted State = "interrupted"
	StatePaused      State = "paused"
	StateCompleted   State = "completed"
)

// Event is one of the fixed alphabet of events the machine accepts.
type Event string

const (
	EventInitialize           Event = "INITIALIZE"
	EventDocumentLoaded       Event = "DOCUMENT_LOADED"
	EventRolesAssigned        Event = "ROLES_ASSIGNED"
	EventStartDialogue        Event = "START_DIALOGUE"
	EventBotResponseStart     Event = "BOT_RESPONSE_START"
	EventBotResponseEnd       Event = "BOT_RESPONSE_END"
	EventUserMessage          Event = "USER_MESSAGE"
	EventUserInterrupt        Event = "USER_INTERRUPT"
	EventUserInterruptMessage Event = "USER_INTERRUPT_MESSAGE"
	EventResume               Event = "RESUME"
	EventPause                Event = "PAUSE"
	EventResumeFromPause      Event = "RESUME_FROM_PAUSE"
	EventNextUnit             Event = "NEXT_UNIT"
	EventComplete             Event = "COMPLETE"
	EventError                Event = "ERROR"
)

// transitionKey is a (state, event) pair used to look up the transition
// table.
type transitionKey struct {
	from  State
	event Event
}

// transitions is the explicit table from spec.md §4.D. Any (state, event)
// pair absent from this map is rejected with ErrInvalidTransition, except
// ERROR, which is legal from every non-terminal state and always
// self-loops (handled separately in fire).
var transitions = map[transitionKey]State{
	{StateIdle, EventInitialize}:     StateIdle,
	{StateIdle, EventDocumentLoaded}: StateReady,

	{StateReady, EventRolesAssigned}: StateReady,
	{StateReady, EventStartDialogue}: StateEngaged,

	{StateEngaged, EventBotResponseStart}: StateEngaged,
	{StateEngaged, EventBotResponseEnd}:   StateEngaged,
	{StateEngaged, EventUserMessage}:      StateEngaged,
	{StateEngaged, EventUserInterrupt}:    StateInterrupted,
	{StateEngaged, EventPause}:            StatePaused,
	// NEXT_UNIT's destination depends on whether the unit index exhausts
	// the document; handled specially in AdvanceUnit rather than here.

	{StateInterrupted, EventUserInterruptMessage}: StateInterrupted,
	{StateInterrupted, EventBotResponseStart}:      StateInterrupted,
	{StateInterrupted, EventBotResponseEnd}:        StateInterrupted,
	{StateInterrupted, EventUserMessage}:            StateInterrupted,
	{StateInterrupted, EventResume}:                 StateEngaged,

	{StatePaused, EventResumeFromPause}: StateEngaged,
}

func isTerminal(s State) bool {
	return s == StateCompleted
}
