// Package reallocate implements intent classification and role-queue
// reallocation under interruption, with bounded-delay and hysteresis
// stability mechanisms (spec.md §4.E).
package reallocate

import "regexp"

// Intent is the closed set of interruption intents.
type Intent string

const (
	Clarification   Intent = "Clarification"
	Objection        Intent = "Objection"
	ExampleRequest   Intent = "Example Request"
	DepthRequest     Intent = "Depth Request"
	SummaryRequest   Intent = "Summary Request"
	TopicPivot       Intent = "Topic Pivot"
	Other            Intent = "Other"
)

// priorityOrder breaks ties among equally-confident intents, highest
// priority first (spec.md §4.E).
var priorityOrder = []Intent{
	Clarification, Objection, ExampleRequest, DepthRequest, SummaryRequest, TopicPivot, Other,
}

// ReallocationConfidenceGate is the minimum classification confidence
// required before a reallocation attempt is made.
const ReallocationConfidenceGate = 0.7

func mustCompileAll(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile("(?is)" + p)
	}
	return compiled
}

// intentPatterns holds each real intent's fixed keyword-pattern family,
// compiled once at process start. Other has no patterns by definition: it
// is the absence of any other match, never an independent signal.
var intentPatterns = map[Intent][]*regexp.Regexp{
	Clarification:  mustCompileAll([]string{`explain.*more`, `don'?t understand`, `clarify`, `what.*mean`, `simpler`, `confused`}),
	Objection:      mustCompileAll([]string{`disagree`, `doesn'?t (?:sound|seem) right`, `but.*what if`, `wrong`, `incorrect`}),
	ExampleRequest: mustCompileAll([]string{`example`, `concrete`, `real.*world`, `illustrate`, `instance`, `demonstrate`}),
	DepthRequest:   mustCompileAll([]string{`deeper`, `tell.*more`, `elaborate`, `more.*detail`, `expand on`}),
	SummaryRequest: mustCompileAll([]string{`summarize`, `recap`, `key.*point`, `main.*idea`, `in.*short`}),
	TopicPivot:     mustCompileAll([]string{`let'?s.*talk.*about`, `skip.*to`, `next.*topic`, `change.*subject`, `move on`}),
}

// Classify returns the winning intent and its confidence, per spec.md
// §4.E: confidence is the fraction of an intent's patterns that match;
// the winner is the highest-confidence intent, ties broken by
// priorityOrder. Other always carries confidence 0 — it names the
// absence of signal, not an independently detectable one — so it can
// never clear the reallocation gate on its own.
func Classify(text string) (Intent, float64) {
	confidences := make(map[Intent]float64, len(intentPatterns))
	for intent, patterns := range intentPatterns {
		matches := 0
		for _, p := range patterns {
			if p.MatchString(text) {
				matches++
			}
		}
		confidences[intent] = float64(matches) / float64(len(patterns))
	}

	winner := Other
	best := 0.0
	for _, intent := range priorityOrder {
		c, ok := confidences[intent]
		if !ok {
			continue
		}
		if c > best {
			best = c
			winner = intent
		}
	}
	return winner, best
}
