package segment

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Bhargs24/rqsm-engine/pkg/apperror"
	"github.com/Bhargs24/rqsm-engine/pkg/segment/embedder"
)

// Config carries the thresholds from spec.md §4.A steps 5-6.
type Config struct {
	SimilarityThreshold float64
	MaxGroupSize        int
	MinGroupSize        int
	MinParagraphChars   int
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.75,
		MaxGroupSize:        5,
		MinGroupSize:        2,
		MinParagraphChars:   20,
	}
}

// Segmenter turns raw document text into an ordered list of SemanticUnit
// values. It holds no per-call mutable state; the same Segmenter is safe
// to reuse (and to share) across documents and sessions.
type Segmenter struct {
	embedder embedder.Embedder
	cfg      Config
	logger   *zap.Logger
}

func New(emb embedder.Embedder, cfg Config, logger *zap.Logger) *Segmenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Segmenter{embedder: emb, cfg: cfg, logger: logger}
}

// Segment is the pure pipeline entry point: heading detection -> section
// split -> paragraph extraction -> embedding -> similarity grouping ->
// small-group merge -> unit materialization (spec.md §4.A).
//
// Empty input, or input with zero paragraphs surviving the length filter,
// yields zero units with no error — spec.md §4.A treats that as a usage
// error for the caller to detect, not a failure of this function.
func (s *Segmenter) Segment(ctx context.Context, text string) ([]SemanticUnit, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	sections := splitSections(text)

	var units []SemanticUnit
	position := 0

	for sectionIdx, sec := range sections {
		paragraphTexts := extractParagraphs(sec.body, s.cfg.MinParagraphChars)
		if len(paragraphTexts) == 0 {
			continue
		}

		paragraphs := make([]paragraph, 0, len(paragraphTexts))
		for _, pt := range paragraphTexts {
			vec, err := s.embedder.Embed(ctx, pt)
			if err != nil {
				return nil, fmt.Errorf("segment: embed paragraph in section %d: %w: %v", sectionIdx, apperror.ErrEmbeddingFailed, err)
			}
			paragraphs = append(paragraphs, paragraph{text: pt, vector: vec})
		}

		groups := groupParagraphs(paragraphs, s.cfg.SimilarityThreshold, s.cfg.MaxGroupSize)
		groups = mergeSmallGroups(groups, s.cfg.MinGroupSize)

		for groupIdx, g := range groups {
			unit := materializeUnit(sectionIdx, groupIdx, position, sec, g)
			units = append(units, unit)
			position++
		}

		s.logger.Debug("segmented section",
			zap.Int("section_index", sectionIdx),
			zap.String("section_kind", string(sec.kind)),
			zap.Int("paragraph_count", len(paragraphTexts)),
			zap.Int("unit_count", len(groups)),
		)
	}

	return units, nil
}

func materializeUnit(sectionIdx, groupIdx, position int, sec section, g group) SemanticUnit {
	texts := make([]string, len(g.paragraphs))
	vectors := make([][]float32, len(g.paragraphs))
	wordCount := 0
	for i, p := range g.paragraphs {
		texts[i] = p.text
		vectors[i] = p.vector
		wordCount += len(strings.Fields(p.text))
	}

	return SemanticUnit{
		ID:          fmt.Sprintf("S%d_%d", sectionIdx, groupIdx),
		Title:       sec.title,
		Text:        strings.Join(texts, "\n\n"),
		SectionKind: sec.kind,
		Position:    position,
		Cohesion:    averagePairwiseCohesion(vectors),
		WordCount:   wordCount,
		Metadata:    map[string]interface{}{},
	}
}
