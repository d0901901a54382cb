// Package embedder defines the embedding collaborator contract (spec.md
// §6) and two implementations: an Ollama-backed adapter for real use and a
// deterministic stub for tests and offline development.
package embedder

import "context"

// Embedder is the (text) -> vector collaborator the segmenter depends on.
// Determinism is not required by the contract, but segmentation's own
// reproducibility depends on it (spec.md §6).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
