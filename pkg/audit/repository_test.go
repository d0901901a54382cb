package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// A nil *Repository (the default when no Postgres DSN is configured) must
// make every write a no-op so callers never have to branch on whether
// durable audit is wired in.
func TestNilRepositoryIsNoOp(t *testing.T) {
	var repo *Repository
	ctx := context.Background()

	assert.NoError(t, repo.RecordInterruption(ctx, "sess-1", 1, 0, "why?", "Clarification", 0.8, []string{"Explainer"}, []string{"Explainer"}))
	assert.NoError(t, repo.RecordSessionCompletion(ctx, "sess-1", 3, 1, 6, map[string]interface{}{"ok": true}))
	assert.NoError(t, repo.RecordUnitEmbedding(ctx, "sess-1", "S0_0", []float32{0.1, 0.2}, 0.9))
}

func TestRepositoryWithNilDBIsNoOp(t *testing.T) {
	repo := NewRepository(nil)
	ctx := context.Background()

	assert.NoError(t, repo.RecordInterruption(ctx, "sess-1", 1, 0, "why?", "Clarification", 0.8, nil, nil))
	assert.False(t, (&Repository{}).enabled())
}
