// Package generator defines the text-generation collaborator contract the
// Conversation State Machine calls out to for every bot turn (spec.md §6).
package generator

import "context"

// Generator is a pure request/response collaborator: (prompt, temperature)
// in, generated text out, bounded by the caller's context deadline.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}
