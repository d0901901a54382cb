package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Repository is the write-side of the audit sink. A nil *Repository (or a
// nil embedded *gorm.DB) makes every method a no-op, so callers can wire
// audit optionally without branching on whether it's configured.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) enabled() bool {
	return r != nil && r.db != nil
}

// RecordInterruption persists one InterruptionEvent.
func (r *Repository) RecordInterruption(ctx context.Context, sessionID string, turn, unitIndex int, rawText, intent string, confidence float64, queueBefore, queueAfter []string) error {
	if !r.enabled() {
		return nil
	}
	before, err := json.Marshal(queueBefore)
	if err != nil {
		return fmt.Errorf("audit: marshal queue_before: %w", err)
	}
	after, err := json.Marshal(queueAfter)
	if err != nil {
		return fmt.Errorf("audit: marshal queue_after: %w", err)
	}

	record := InterruptionRecord{
		SessionID:            sessionID,
		Turn:                 turn,
		UnitIndexAtInterrupt: unitIndex,
		RawText:              rawText,
		ClassifiedIntent:     intent,
		Confidence:           confidence,
		QueueBefore:          datatypes.JSON(before),
		QueueAfter:           datatypes.JSON(after),
		CreatedAt:            time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(&record).Error
}

// RecordSessionCompletion upserts a session's terminal summary row.
func (r *Repository) RecordSessionCompletion(ctx context.Context, sessionID string, totalUnits, interruptionCount, turnCount int, metadata map[string]interface{}) error {
	if !r.enabled() {
		return nil
	}
	record := SessionRecord{
		SessionID:         sessionID,
		TotalUnits:        totalUnits,
		InterruptionCount: interruptionCount,
		TurnCount:         turnCount,
		Metadata:          datatypes.JSONMap(metadata),
		CompletedAt:       time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Assign(record).
		FirstOrCreate(&SessionRecord{}).Error
}

// RecordUnitEmbedding stores one unit's representative embedding vector.
func (r *Repository) RecordUnitEmbedding(ctx context.Context, sessionID, unitID string, vector []float32, cohesion float64) error {
	if !r.enabled() {
		return nil
	}
	record := UnitEmbeddingRecord{
		SessionID: sessionID,
		UnitID:    unitID,
		Vector:    pgvector.NewVector(vector),
		Cohesion:  cohesion,
		CreatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(&record).Error
}
