package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllReturnsExactlyFiveRoles(t *testing.T) {
	roles := All()
	assert.Len(t, roles, 5)

	seen := make(map[Name]bool)
	for _, r := range roles {
		seen[r.Name] = true
		assert.NotEmpty(t, r.SystemPrompt)
		assert.GreaterOrEqual(t, r.BaseWeight, 0.0)
		assert.LessOrEqual(t, r.BaseWeight, 10.0)
		assert.GreaterOrEqual(t, r.Temperature, 0.0)
		assert.LessOrEqual(t, r.Temperature, 1.0)
	}
	assert.Len(t, seen, 5)
}

func TestLookupKnownAndUnknown(t *testing.T) {
	r, ok := Lookup(Summarizer)
	assert.True(t, ok)
	assert.Equal(t, Summarizer, r.Name)

	_, ok = Lookup(Name("Moderator"))
	assert.False(t, ok)
}

func TestDeterministicTemperatures(t *testing.T) {
	deterministic := map[Name]bool{
		Explainer:            true,
		Summarizer:           true,
		MisconceptionSpotter: true,
	}
	for _, r := range All() {
		if deterministic[r.Name] {
			assert.Equal(t, 0.0, r.Temperature, "%s should be deterministic", r.Name)
		} else {
			assert.Greater(t, r.Temperature, 0.0, "%s should carry nonzero temperature", r.Name)
		}
	}
}
