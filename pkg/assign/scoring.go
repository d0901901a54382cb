package assign

import (
	"strings"

	"github.com/Bhargs24/rqsm-engine/pkg/catalog"
	"github.com/Bhargs24/rqsm-engine/pkg/segment"
)

// ScoreBreakdown holds the three sub-scores plus the weighted total for one
// (unit, role) pair, all in [0,10] except Total (spec.md §4.C).
type ScoreBreakdown struct {
	Structural float64
	Lexical    float64
	Topic      float64
	Total      float64
}

var structuralBonusTable = map[segment.SectionKind]map[catalog.Name]float64{
	segment.SectionIntroduction: {
		catalog.Summarizer:           2.0,
		catalog.Explainer:            2.0,
		catalog.MisconceptionSpotter: 1.0,
	},
	segment.SectionConclusion: {
		catalog.Summarizer: 3.0,
		catalog.Explainer:  0.5,
		catalog.Challenger: 0.5,
	},
	segment.SectionMethodology: {
		catalog.MisconceptionSpotter: 2.5,
		catalog.Explainer:            2.0,
		catalog.ExampleGenerator:     1.5,
	},
	segment.SectionBody: {
		catalog.Challenger:       1.5,
		catalog.ExampleGenerator: 1.0,
	},
}

// wordCountPreference names each role's preferred word-count band; a unit
// landing in-band earns the word-count bias bonus.
var wordCountPreference = map[catalog.Name][2]int{
	catalog.Summarizer:           {0, 99},
	catalog.Explainer:            {100, 300},
	catalog.Challenger:           {50, 250},
	catalog.ExampleGenerator:     {50, 250},
	catalog.MisconceptionSpotter: {50, 250},
}

func clip10(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

// structuralScore implements spec.md §4.C's structural sub-score: base
// weight, section-kind bonus table, a bounded position-in-document
// heuristic, and a word-count-band bias.
func structuralScore(role *catalog.Role, unit segment.SemanticUnit, totalUnits int) float64 {
	score := role.BaseWeight

	if bonuses, ok := structuralBonusTable[unit.SectionKind]; ok {
		score += bonuses[role.Name]
	}

	score += positionBonus(role.Name, unit.Position, totalUnits)

	if band, ok := wordCountPreference[role.Name]; ok {
		if unit.WordCount >= band[0] && unit.WordCount <= band[1] {
			score += 0.2 * role.BaseWeight
		}
	}

	return clip10(score)
}

// positionBonus is the "Explainer biased early, Summarizer late, Challenger
// middle" heuristic, bounded to <= 1.0 per spec.md §4.C.
func positionBonus(role catalog.Name, position, totalUnits int) float64 {
	if totalUnits <= 1 {
		return 0
	}
	normalized := float64(position) / float64(totalUnits-1)

	switch role {
	case catalog.Explainer:
		return 1.0 * (1 - normalized)
	case catalog.Summarizer:
		return 1.0 * normalized
	case catalog.Challenger:
		distanceFromMiddle := normalized - 0.5
		if distanceFromMiddle < 0 {
			distanceFromMiddle = -distanceFromMiddle
		}
		return 1.0 * (1 - 2*distanceFromMiddle)
	default:
		return 0
	}
}

// lexicalScore implements spec.md §4.C's lexical sub-score: keyword
// frequency normalized by unit length, a base-weight contribution, an
// avoid-keyword penalty, and the role's fixed-bonus regex family.
func lexicalScore(role *catalog.Role, unit segment.SemanticUnit) float64 {
	lower := strings.ToLower(unit.Text)

	var occurrences int
	for kw := range role.PriorityKeywords {
		occurrences += strings.Count(lower, kw)
	}

	normalizer := float64(unit.WordCount) / 100.0
	if normalizer < 1 {
		normalizer = 1
	}

	score := (float64(occurrences) / normalizer) * 2.0
	score += 0.5 * role.BaseWeight

	var avoidHits int
	for kw := range role.AvoidKeywords {
		avoidHits += strings.Count(lower, kw)
	}
	score -= 0.5 * float64(avoidHits)

	var regexBonus float64
	for _, rb := range role.RegexBonuses {
		if rb.Pattern.MatchString(lower) {
			regexBonus += rb.Bonus
		}
	}
	if regexBonus > role.RegexBonusCap {
		regexBonus = role.RegexBonusCap
	}
	score += regexBonus

	return clip10(score)
}

// topicScore implements spec.md §4.C's topic sub-score: affinity-tag
// match, a high-complexity boost for the two interpretive roles, and a
// title-keyword-overlap bonus scaled by cohesion.
func topicScore(role *catalog.Role, unit segment.SemanticUnit) float64 {
	score := role.BaseWeight

	if _, ok := role.AffinityTags[string(unit.SectionKind)]; ok {
		score += 1.5
	}

	if complexity, ok := unit.Metadata["complexity"]; ok {
		if s, ok := complexity.(string); ok && s == "high" {
			if role.Name == catalog.Explainer || role.Name == catalog.MisconceptionSpotter {
				score += 1.0
			}
		}
	}

	if unit.Title != "" {
		lowerTitle := strings.ToLower(unit.Title)
		for kw := range role.PriorityKeywords {
			if strings.Contains(lowerTitle, kw) {
				score += 0.3 * unit.Cohesion * 10
				break
			}
		}
	}

	return clip10(score)
}

// totalScore combines the three sub-scores per spec.md §4.C's fixed
// weights: 0.4 structural + 0.3 lexical + 0.3 topic.
func totalScore(structural, lexical, topic float64) float64 {
	return 0.4*structural + 0.3*lexical + 0.3*topic
}
