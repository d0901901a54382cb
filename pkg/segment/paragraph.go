package segment

import "strings"

// extractParagraphs splits section body text on blank lines and drops
// anything shorter than minChars after trimming (spec.md §4.A step 3).
func extractParagraphs(body string, minChars int) []string {
	raw := strings.Split(body, "\n\n")
	var out []string
	for _, block := range raw {
		// A blank-line split can still leave internal single newlines from
		// wrapped text; normalize those into the paragraph's running text
		// without losing sentence boundaries.
		joined := strings.TrimSpace(strings.Join(strings.Split(block, "\n"), " "))
		joined = strings.Join(strings.Fields(joined), " ")
		if len(joined) < minChars {
			continue
		}
		out = append(out, joined)
	}
	return out
}
