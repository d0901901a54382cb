package embedder

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

const stubDimensions = 64

// StubEmbedder produces a deterministic bag-of-words style vector: each
// lowercased word hashes into one of a fixed number of buckets, and bucket
// counts are L2-normalized. Two paragraphs sharing vocabulary land close
// together in cosine distance, which is enough to drive the similarity
// grouping pass under test without a live embedding backend.
type StubEmbedder struct {
	Dimensions int
}

func NewStubEmbedder() *StubEmbedder {
	return &StubEmbedder{Dimensions: stubDimensions}
}

func (e *StubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	dim := e.Dimensions
	if dim <= 0 {
		dim = stubDimensions
	}
	vec := make([]float64, dim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		vec[int(h.Sum32())%dim]++
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, dim)
	if norm == 0 {
		return out, nil
	}
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}
