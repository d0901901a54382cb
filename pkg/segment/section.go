package segment

import "strings"

var introductionKeywords = map[string]bool{"introduction": true, "overview": true, "background": true}
var conclusionKeywords = map[string]bool{"conclusion": true, "summary": true, "final": true}
var methodologyKeywords = map[string]bool{"method": true, "approach": true, "implementation": true}

// classifySectionKindStrict matches a lowercased heading against the three
// keyword families from spec.md §4.A step 2, in priority order; anything
// else is "body".
func classifySectionKindStrict(headingText string) SectionKind {
	lower := strings.ToLower(headingText)
	switch {
	case containsAny(lower, introductionKeywords):
		return SectionIntroduction
	case containsAny(lower, conclusionKeywords):
		return SectionConclusion
	case containsAny(lower, methodologyKeywords):
		return SectionMethodology
	default:
		return SectionBody
	}
}

func containsAny(s string, keywords map[string]bool) bool {
	for kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// splitSections partitions text by the detected headings. Text preceding
// the first heading (if any) becomes an untitled body section so no
// content is dropped.
func splitSections(text string) []section {
	lines := strings.Split(text, "\n")
	headings := detectHeadings(lines)

	if len(headings) == 0 {
		return []section{{kind: SectionBody, title: "", body: text}}
	}

	var sections []section

	if headings[0].SourceLine > 0 {
		preamble := strings.Join(lines[:headings[0].SourceLine], "\n")
		if strings.TrimSpace(preamble) != "" {
			sections = append(sections, section{kind: SectionBody, title: "", body: preamble})
		}
	}

	for i, h := range headings {
		start := h.SourceLine + 1
		// Skip an underline row immediately after the heading line, if present.
		if start < len(lines) && underlineLevel(strings.TrimSpace(lines[start])) > 0 {
			start++
		}
		end := len(lines)
		if i+1 < len(headings) {
			end = headings[i+1].SourceLine
		}
		if start > end {
			start = end
		}
		body := strings.Join(lines[start:end], "\n")
		sections = append(sections, section{
			kind:  classifySectionKindStrict(h.Text),
			title: h.Text,
			body:  body,
		})
	}

	return sections
}
