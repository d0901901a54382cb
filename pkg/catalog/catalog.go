// Package catalog holds the five pedagogical roles as a compile-time
// immutable registry. Nothing in this package ever mutates after init() —
// it is safe to share a single *Role across every session the same way the
// teacher lineage treats its role catalog as read-only data shared across
// requests.
package catalog

import "regexp"

// Name is one of the five closed-set pedagogical roles.
type Name string

const (
	Explainer            Name = "Explainer"
	Challenger           Name = "Challenger"
	Summarizer           Name = "Summarizer"
	ExampleGenerator     Name = "Example-Generator"
	MisconceptionSpotter Name = "Misconception-Spotter"
)

// All five role names, in the catalog's canonical (lexicographic) order.
// Assignment's tie-breaking rule and the role queue invariant both rely on
// this being the exhaustive, closed set.
var AllNames = []Name{
	Challenger,
	ExampleGenerator,
	Explainer,
	MisconceptionSpotter,
	Summarizer,
}

// RegexBonus is a small fixed-point bonus awarded by the assignment engine's
// lexical scoring when a role's signature phrase pattern matches the unit
// text, capped per role (spec.md §4.C).
type RegexBonus struct {
	Pattern *regexp.Regexp
	Bonus   float64
}

// Role is an immutable catalog entry. Every field is populated at package
// init and never mutated.
type Role struct {
	Name             Name
	SystemPrompt     string
	BaseWeight       float64
	PriorityKeywords map[string]struct{}
	AvoidKeywords    map[string]struct{}
	AffinityTags     map[string]struct{}
	Temperature      float64
	RegexBonuses     []RegexBonus
	RegexBonusCap    float64
}

func keywordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func tagSet(tags ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}

var catalog map[Name]*Role

func init() {
	catalog = map[Name]*Role{
		Explainer: {
			Name: Explainer,
			SystemPrompt: "You are the Explainer. Your job is to make the current unit's " +
				"concepts clear and approachable. Define every term you use the first " +
				"time it appears, build from what the learner already knows, and avoid " +
				"jumping ahead to critique or examples that belong to other roles. Close " +
				"by checking, in one sentence, whether the explanation landed.",
			BaseWeight:       7.0,
			PriorityKeywords: keywordSet("define", "definition", "concept", "means", "refers to", "in other words", "fundamentally", "essentially"),
			AvoidKeywords:    keywordSet("disagree", "incorrect", "flawed"),
			AffinityTags:     tagSet("introduction", "methodology"),
			Temperature:      0.0,
			RegexBonusCap:    1.0,
			RegexBonuses: []RegexBonus{
				{Pattern: regexp.MustCompile(`defined as`), Bonus: 0.5},
				{Pattern: regexp.MustCompile(`refers to`), Bonus: 0.5},
			},
		},
		Challenger: {
			Name: Challenger,
			SystemPrompt: "You are the Challenger. Press on the weakest point of the " +
				"current unit's argument. Ask a pointed question, surface an edge case " +
				"the text glosses over, or propose a counterexample. Do not summarize " +
				"and do not soften your challenge with an example unless it sharpens the " +
				"objection.",
			BaseWeight:       6.0,
			PriorityKeywords: keywordSet("however", "assume", "claim", "argument", "critique", "tension", "what if", "counterexample"),
			AvoidKeywords:    keywordSet("for example", "for instance"),
			AffinityTags:     tagSet("body"),
			Temperature:      0.15,
			RegexBonusCap:    1.0,
			RegexBonuses: []RegexBonus{
				{Pattern: regexp.MustCompile(`but what if`), Bonus: 0.5},
				{Pattern: regexp.MustCompile(`doesn'?t (?:sound|seem) right`), Bonus: 0.5},
			},
		},
		Summarizer: {
			Name: Summarizer,
			SystemPrompt: "You are the Summarizer. Compress the current unit to its load-" +
				"bearing claims in as few sentences as the content allows. Prefer a short " +
				"list of key points over prose. Do not introduce new material and do not " +
				"editorialize.",
			BaseWeight:       8.5,
			PriorityKeywords: keywordSet("summary", "overview", "in short", "key point", "to recap", "main idea", "in conclusion"),
			AvoidKeywords:    keywordSet("elaborate", "deeper"),
			AffinityTags:     tagSet("introduction", "conclusion"),
			Temperature:      0.0,
			RegexBonusCap:    1.0,
			RegexBonuses: []RegexBonus{
				{Pattern: regexp.MustCompile(`in summary`), Bonus: 0.5},
				{Pattern: regexp.MustCompile(`key point`), Bonus: 0.5},
			},
		},
		ExampleGenerator: {
			Name: ExampleGenerator,
			SystemPrompt: "You are the Example-Generator. Produce one concrete, specific " +
				"example that illustrates the current unit's idea in a real-world or " +
				"domain-relevant setting. Avoid abstractions; a reader should be able to " +
				"picture the scenario. Keep it to a single worked example unless asked " +
				"for more.",
			BaseWeight:       6.5,
			PriorityKeywords: keywordSet("example", "instance", "for example", "illustrate", "case study", "concrete", "real-world"),
			AvoidKeywords:    keywordSet("abstract", "in general"),
			AffinityTags:     tagSet("body", "methodology"),
			Temperature:      0.2,
			RegexBonusCap:    1.0,
			RegexBonuses: []RegexBonus{
				{Pattern: regexp.MustCompile(`for example`), Bonus: 0.5},
				{Pattern: regexp.MustCompile(`for instance`), Bonus: 0.5},
			},
		},
		MisconceptionSpotter: {
			Name: MisconceptionSpotter,
			SystemPrompt: "You are the Misconception-Spotter. Name one common misunderstanding " +
				"a learner is likely to form about the current unit, state why it is wrong, " +
				"and correct it plainly. Do not invent a misconception the text doesn't " +
				"plausibly invite.",
			BaseWeight:       7.0,
			PriorityKeywords: keywordSet("misconception", "common mistake", "confusing", "incorrectly", "myth", "mistakenly", "conflate"),
			AvoidKeywords:    keywordSet("example", "illustrate"),
			AffinityTags:     tagSet("methodology", "introduction"),
			Temperature:      0.0,
			RegexBonusCap:    1.0,
			RegexBonuses: []RegexBonus{
				{Pattern: regexp.MustCompile(`common misconception`), Bonus: 0.5},
				{Pattern: regexp.MustCompile(`mistakenly (?:believe|think)`), Bonus: 0.5},
			},
		},
	}
}

// Lookup returns the immutable Role for a catalog name, or (nil, false) if
// the name isn't one of the five.
func Lookup(name Name) (*Role, bool) {
	r, ok := catalog[name]
	return r, ok
}

// All enumerates all five roles, always in AllNames order.
func All() []*Role {
	roles := make([]*Role, 0, len(AllNames))
	for _, n := range AllNames {
		roles = append(roles, catalog[n])
	}
	return roles
}
