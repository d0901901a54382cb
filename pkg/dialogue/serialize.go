package dialogue

import (
	"encoding/json"
	"fmt"

	"github.com/Bhargs24/rqsm-engine/pkg/apperror"
	"github.com/Bhargs24/rqsm-engine/pkg/catalog"
)

// schemaVersion is bumped whenever the persisted blob's shape changes in
// a way old loaders cannot handle.
const schemaVersion = 1

// blob is the self-describing, JSON-friendly persisted form of a Machine
// (spec.md §6 persisted blob layout).
type blob struct {
	SchemaVersion int                 `json:"schema_version"`
	SessionID     string              `json:"session_id"`
	State         State               `json:"state"`
	Context       blobContext         `json:"context"`
	Queues        map[string][]string `json:"queues"`
}

type blobContext struct {
	CurrentUnitIndex      int                    `json:"current_unit_index"`
	TotalUnits             int                    `json:"total_units"`
	InterruptedAtIndex     int                    `json:"interrupted_at_index"`
	InterruptionCount      int                    `json:"interruption_count"`
	BotIsGenerating        bool                   `json:"bot_is_generating"`
	AwaitingUserInput      bool                   `json:"awaiting_user_input"`
	InteractionHistory     []HistoryEvent         `json:"interaction_history"`
	RoleUsageCount         map[string]int         `json:"role_usage_count"`
	HysteresisUntil        map[string]int         `json:"hysteresis_until"`
	TurnNumber             int                    `json:"turn_number"`
	CurrentQueue           []string               `json:"current_queue"`
	CurrentQueueCursor     int                    `json:"current_queue_cursor"`
	ReallocationLockedAt   int                    `json:"reallocation_locked_at"`
	SessionMetadata        map[string]interface{} `json:"session_metadata"`
}

func namesToStrings(names []catalog.Name) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return out
}

func stringsToNames(strs []string) []catalog.Name {
	out := make([]catalog.Name, len(strs))
	for i, s := range strs {
		out[i] = catalog.Name(s)
	}
	return out
}

func countMapToStrings(in map[catalog.Name]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[string(k)] = v
	}
	return out
}

func countMapFromStrings(in map[string]int) map[catalog.Name]int {
	out := make(map[catalog.Name]int, len(in))
	for k, v := range in {
		out[catalog.Name(k)] = v
	}
	return out
}

// SaveState returns a JSON-friendly snapshot of the machine. Callers pass
// this to the session persistence collaborator's put() verbatim.
func (m *Machine) SaveState() (map[string]interface{}, error) {
	queues := make(map[string][]string, len(m.queues))
	for id, q := range m.queues {
		queues[id] = namesToStrings(q)
	}

	b := blob{
		SchemaVersion: schemaVersion,
		SessionID:     m.ctx.SessionID,
		State:         m.ctx.CurrentState,
		Queues:        queues,
		Context: blobContext{
			CurrentUnitIndex:     m.ctx.CurrentUnitIndex,
			TotalUnits:           m.ctx.TotalUnits,
			InterruptedAtIndex:   m.ctx.InterruptedAtIndex,
			InterruptionCount:    m.ctx.InterruptionCount,
			BotIsGenerating:      m.ctx.BotIsGenerating,
			AwaitingUserInput:    m.ctx.AwaitingUserInput,
			InteractionHistory:   m.ctx.InteractionHistory,
			RoleUsageCount:       countMapToStrings(m.ctx.RoleUsageCount),
			HysteresisUntil:      countMapToStrings(m.ctx.HysteresisUntil),
			TurnNumber:           m.ctx.TurnNumber,
			CurrentQueue:         namesToStrings(m.ctx.CurrentQueue),
			CurrentQueueCursor:   m.ctx.CurrentQueueCursor,
			ReallocationLockedAt: m.ctx.ReallocationLockedAt,
			SessionMetadata:      m.ctx.SessionMetadata,
		},
	}

	raw, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("dialogue: marshal state: %w", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("dialogue: unmarshal state: %w", err)
	}
	return out, nil
}

// LoadState restores a Machine from a blob produced by SaveState. Per
// spec.md §7, an unrecognized schema_version fails with ErrSchemaMismatch
// and leaves the machine in idle. The blob carries role queues, not unit
// text, so the restored machine has no units attached. AttachAssignment
// accepts only the ready state: units can be re-attached to a session saved
// in ready, while a machine restored into engaged, interrupted or paused
// keeps no units and GenerateBotTurn on it fails with ErrPreconditionFailed.
func (m *Machine) LoadState(raw map[string]interface{}) error {
	if m.ctx.CurrentState != StateIdle {
		return fmt.Errorf("dialogue: %w: load_state requires idle", apperror.ErrPreconditionFailed)
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("dialogue: re-encode state: %w", err)
	}
	var b blob
	if err := json.Unmarshal(encoded, &b); err != nil {
		return fmt.Errorf("dialogue: %w: malformed blob", apperror.ErrSchemaMismatch)
	}
	if b.SchemaVersion != schemaVersion {
		return fmt.Errorf("dialogue: %w: got version %d, want %d", apperror.ErrSchemaMismatch, b.SchemaVersion, schemaVersion)
	}

	queues := make(map[string][]catalog.Name, len(b.Queues))
	for id, q := range b.Queues {
		queues[id] = stringsToNames(q)
	}

	m.ctx = &ConversationContext{
		SessionID:            b.SessionID,
		CurrentState:         b.State,
		CurrentUnitIndex:     b.Context.CurrentUnitIndex,
		TotalUnits:           b.Context.TotalUnits,
		InterruptedAtIndex:   b.Context.InterruptedAtIndex,
		InterruptionCount:    b.Context.InterruptionCount,
		BotIsGenerating:      b.Context.BotIsGenerating,
		AwaitingUserInput:    b.Context.AwaitingUserInput,
		InteractionHistory:   b.Context.InteractionHistory,
		RoleUsageCount:       countMapFromStrings(b.Context.RoleUsageCount),
		HysteresisUntil:      countMapFromStrings(b.Context.HysteresisUntil),
		TurnNumber:           b.Context.TurnNumber,
		CurrentQueue:         stringsToNames(b.Context.CurrentQueue),
		CurrentQueueCursor:   b.Context.CurrentQueueCursor,
		ReallocationLockedAt: b.Context.ReallocationLockedAt,
		SessionMetadata:      b.Context.SessionMetadata,
	}
	m.queues = queues
	return nil
}

// GetStateSummary is a read-only projection suitable for rendering to a
// caller without exposing internal mutation hooks.
func (m *Machine) GetStateSummary() map[string]interface{} {
	return map[string]interface{}{
		"session_id":          m.ctx.SessionID,
		"state":                m.ctx.CurrentState,
		"current_unit_index":   m.ctx.CurrentUnitIndex,
		"total_units":          m.ctx.TotalUnits,
		"interrupted_at_index": m.ctx.InterruptedAtIndex,
		"interruption_count":   m.ctx.InterruptionCount,
		"bot_is_generating":    m.ctx.BotIsGenerating,
		"awaiting_user_input":  m.ctx.AwaitingUserInput,
		"turn_number":          m.ctx.TurnNumber,
		"current_queue":        m.ctx.CurrentQueue,
		"history_length":       len(m.ctx.InteractionHistory),
	}
}
