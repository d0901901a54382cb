package dialogue

import (
	"time"

	"github.com/Bhargs24/rqsm-engine/pkg/catalog"
)

// HistoryEvent is one append-only entry in a session's interaction
// history (spec.md §3 ConversationContext).
type HistoryEvent struct {
	Timestamp time.Time              `json:"timestamp"`
	Turn      int                    `json:"turn"`
	Kind      string                 `json:"kind"`
	Payload   map[string]interface{} `json:"payload"`
}

// ConversationContext is the per-session mutable state exclusively owned
// by one Machine. No other component may mutate it directly (spec.md §3
// Ownership).
type ConversationContext struct {
	SessionID           string                 `json:"session_id"`
	CurrentState         State                  `json:"current_state"`
	CurrentUnitIndex     int                    `json:"current_unit_index"`
	TotalUnits           int                    `json:"total_units"`
	InterruptedAtIndex   int                    `json:"interrupted_at_index"`
	InterruptionCount    int                    `json:"interruption_count"`
	BotIsGenerating      bool                   `json:"bot_is_generating"`
	AwaitingUserInput    bool                   `json:"awaiting_user_input"`
	InteractionHistory   []HistoryEvent         `json:"interaction_history"`
	RoleUsageCount       map[catalog.Name]int   `json:"role_usage_count"`
	HysteresisUntil      map[catalog.Name]int   `json:"hysteresis_until"`
	TurnNumber           int                    `json:"turn_number"`
	CurrentQueue         []catalog.Name         `json:"current_queue"`
	CurrentQueueCursor   int                    `json:"current_queue_cursor"`
	ReallocationLockedAt int                    `json:"reallocation_locked_at"`
	SessionMetadata      map[string]interface{} `json:"session_metadata"`
}

// newContext builds a freshly constructed, idle ConversationContext.
func newContext(sessionID string) *ConversationContext {
	return &ConversationContext{
		SessionID:            sessionID,
		CurrentState:         StateIdle,
		CurrentUnitIndex:      0,
		TotalUnits:            0,
		InterruptedAtIndex:    -1,
		InterruptionCount:     0,
		BotIsGenerating:       false,
		AwaitingUserInput:     false,
		InteractionHistory:    nil,
		RoleUsageCount:        make(map[catalog.Name]int),
		HysteresisUntil:       make(map[catalog.Name]int),
		TurnNumber:            0,
		CurrentQueue:          nil,
		CurrentQueueCursor:    0,
		ReallocationLockedAt:  -1,
		SessionMetadata:       make(map[string]interface{}),
	}
}

func (c *ConversationContext) appendHistory(kind string, payload map[string]interface{}) {
	c.InteractionHistory = append(c.InteractionHistory, HistoryEvent{
		Timestamp: time.Now().UTC(),
		Turn:      c.TurnNumber,
		Kind:      kind,
		Payload:   payload,
	})
}
