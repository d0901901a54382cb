package generator

import (
	"context"
	"fmt"
)

// StubGenerator returns a deterministic, canned response derived from the
// prompt's length and the requested temperature, with no network calls —
// used by tests and by cmd/simulate's offline mode.
type StubGenerator struct{}

func NewStubGenerator() *StubGenerator {
	return &StubGenerator{}
}

func (g *StubGenerator) Generate(_ context.Context, prompt string, temperature float64) (string, error) {
	return fmt.Sprintf("[stub response, temperature=%.2f, prompt_len=%d]", temperature, len(prompt)), nil
}
