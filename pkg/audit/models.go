package audit

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// InterruptionRecord durably logs one InterruptionEvent (spec.md §3) for
// later review of reallocation behavior across sessions.
type InterruptionRecord struct {
	ID                    uint      `gorm:"primaryKey"`
	SessionID             string    `gorm:"index"`
	Turn                  int
	UnitIndexAtInterrupt  int
	RawText               string
	ClassifiedIntent      string
	Confidence            float64
	QueueBefore           datatypes.JSON
	QueueAfter            datatypes.JSON
	CreatedAt             time.Time
}

// SessionRecord is a durable summary row written when a session reaches
// the completed state, for dashboards that don't want to replay history.
type SessionRecord struct {
	ID                uint      `gorm:"primaryKey"`
	SessionID         string    `gorm:"uniqueIndex"`
	TotalUnits        int
	InterruptionCount int
	TurnCount         int
	Metadata          datatypes.JSONMap
	CompletedAt       time.Time
}

// UnitEmbeddingRecord durably stores one semantic unit's representative
// paragraph embedding alongside its cohesion score, giving offline tooling
// a vector index to inspect without re-running the embedding collaborator.
type UnitEmbeddingRecord struct {
	ID        uint      `gorm:"primaryKey"`
	SessionID string    `gorm:"index"`
	UnitID    string    `gorm:"index"`
	Vector    pgvector.Vector `gorm:"type:vector(64)"`
	Cohesion  float64
	CreatedAt time.Time
}
