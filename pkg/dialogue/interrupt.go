package dialogue

import (
	"context"

	"github.com/Bhargs24/rqsm-engine/pkg/audit"
	"github.com/Bhargs24/rqsm-engine/pkg/catalog"
	"github.com/Bhargs24/rqsm-engine/pkg/reallocate"
)

// SetAuditRepository attaches the optional durable audit sink.
func (m *Machine) SetAuditRepository(repo *audit.Repository) {
	m.audit = repo
}

func namesToStringSlice(names []catalog.Name) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return out
}

// HandleInterruptionMessage is the end-to-end reaction to one message sent
// while interrupted: classify its intent (pkg/reallocate), compute a new
// role queue if confidence clears the gate, apply it to the current unit,
// and record the outcome on the audit sink and the event bus. It never
// returns apperror.ErrStabilityBlock as a hard failure for the caller to
// propagate verbatim — the queue is simply left unchanged, same as a
// below-gate classification, since from the conversation's point of view
// both are "no reallocation happened this turn".
func (m *Machine) HandleInterruptionMessage(ctx context.Context, text string) (reallocate.Intent, float64, error) {
	if err := m.ProcessInterruptionMessage(text); err != nil {
		return "", 0, err
	}

	intent, confidence := reallocate.Classify(text)
	before := m.ctx.CurrentQueue

	result, err := reallocate.Reallocate(reallocate.Input{
		CurrentQueue:         before,
		Intent:               intent,
		Confidence:           confidence,
		UsageCount:           m.ctx.RoleUsageCount,
		HysteresisUntil:      m.ctx.HysteresisUntil,
		CurrentTurn:          m.ctx.TurnNumber,
		ReallocationLockedAt: m.ctx.ReallocationLockedAt,
	})
	if err != nil {
		m.publish(ctx, "STABILITY_BLOCK", map[string]interface{}{
			"session_id": m.ctx.SessionID,
			"intent":     string(intent),
		})
		return intent, confidence, nil
	}

	unit, ok := m.CurrentUnit()
	if ok {
		m.SetQueue(unit.ID, result.Queue)
	}
	m.ctx.HysteresisUntil = result.HysteresisUntil
	m.ctx.ReallocationLockedAt = result.LockedAt

	if m.audit != nil {
		_ = m.audit.RecordInterruption(ctx, m.ctx.SessionID, m.ctx.TurnNumber, m.ctx.CurrentUnitIndex,
			text, string(intent), confidence, namesToStringSlice(before), namesToStringSlice(result.Queue))
	}
	m.publish(ctx, "REALLOCATION", map[string]interface{}{
		"session_id": m.ctx.SessionID,
		"intent":     string(intent),
		"confidence": confidence,
	})

	return intent, confidence, nil
}
