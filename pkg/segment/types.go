// Package segment implements the deterministic segmentation pipeline:
// raw document text in, an ordered list of semantically cohesive
// SemanticUnit values out. Given the same embedding backend, Segment is a
// pure function of its input — no unit is ever mutated after it is
// returned.
package segment

// SectionKind is the closed set of section classifications a heading can
// resolve to.
type SectionKind string

const (
	SectionIntroduction SectionKind = "introduction"
	SectionBody         SectionKind = "body"
	SectionMethodology  SectionKind = "methodology"
	SectionConclusion   SectionKind = "conclusion"
)

// Heading is an internal detection result; it never leaves this package.
type Heading struct {
	Text       string
	Level      int
	SourceLine int
}

// SemanticUnit is a cohesive chunk of document content produced by the
// segmenter. Immutable once constructed.
type SemanticUnit struct {
	ID          string
	Title       string
	Text        string
	SectionKind SectionKind
	Position    int
	Cohesion    float64
	WordCount   int
	Metadata    map[string]interface{}
}

// section is an internal intermediate: the span of text between two
// headings, already classified.
type section struct {
	kind  SectionKind
	title string
	body  string
}

// paragraph is an internal intermediate: one paragraph's text plus its
// embedding vector.
type paragraph struct {
	text   string
	vector []float32
}

// group is a run of paragraphs the similarity pass decided belong together.
type group struct {
	paragraphs []paragraph
}
