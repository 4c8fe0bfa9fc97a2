package resume

import "strings"

// Role is what a paragraph is taken to be.
type Role int

const (
	RoleBlank Role = iota
	RoleHeader
	RoleSectionTitle
	RoleBody
)

func (r Role) String() string {
	switch r {
	case RoleHeader:
		return "header"
	case RoleSectionTitle:
		return "section-title"
	case RoleBody:
		return "body"
	default:
		return "blank"
	}
}

// DefaultHeaderLimit is how many leading paragraph positions may hold
// contact information.
const DefaultHeaderLimit = 5

// BoundaryDetector finds the index of the first paragraph that belongs
// to the body. Every non-blank paragraph before it is header.
type BoundaryDetector interface {
	Boundary(paras []Paragraph) int
}

// headingWords is the longest paragraph, in words, that ends the header
// by merely containing a stop keyword.
const headingWords = 3

// PositionalDetector treats the first HeaderLimit positions as header,
// ending early at the first paragraph that reads as a section heading:
// one that starts with a stop keyword, or a short one that contains it.
// Blank paragraphs never end the header.
type PositionalDetector struct {
	HeaderLimit int
	Stop        Labels
}

// NewPositionalDetector returns a detector with the given limit and stop
// keywords. A non-positive limit falls back to DefaultHeaderLimit.
func NewPositionalDetector(limit int, stop ...string) PositionalDetector {
	if limit <= 0 {
		limit = DefaultHeaderLimit
	}
	return PositionalDetector{HeaderLimit: limit, Stop: NewLabels(stop...)}
}

func (d PositionalDetector) Boundary(paras []Paragraph) int {
	limit := d.HeaderLimit
	if limit <= 0 {
		limit = DefaultHeaderLimit
	}
	for i, p := range paras {
		if i >= limit {
			return i
		}
		if p.IsBlank() {
			continue
		}
		if d.isHeading(p.Text) {
			return i
		}
	}
	return len(paras)
}

func (d PositionalDetector) isHeading(text string) bool {
	text = strings.TrimSpace(text)
	if d.Stop.Prefixes(text) {
		return true
	}
	return len(strings.Fields(text)) <= headingWords && d.Stop.FoundIn(text)
}

// Split is one document with its header boundary resolved.
type Split struct {
	Doc      *Document
	Boundary int
}

// Role classifies the paragraph at index i.
func (s Split) Role(i int) Role {
	if i < 0 || i >= s.Doc.Len() || s.Doc.Paragraphs[i].IsBlank() {
		return RoleBlank
	}
	if i < s.Boundary {
		return RoleHeader
	}
	return RoleBody
}

// Header returns the trimmed text of every non-blank paragraph before
// the boundary, in order.
func (s Split) Header() []string {
	var out []string
	for i := 0; i < s.Boundary && i < s.Doc.Len(); i++ {
		if s.Role(i) == RoleHeader {
			out = append(out, strings.TrimSpace(s.Doc.Paragraphs[i].Text))
		}
	}
	return out
}

// Body joins with newlines the trimmed text of every non-blank
// paragraph at or after the boundary.
func (s Split) Body() string {
	var lines []string
	for i := s.Boundary; i < s.Doc.Len(); i++ {
		if s.Role(i) == RoleBody {
			lines = append(lines, strings.TrimSpace(s.Doc.Paragraphs[i].Text))
		}
	}
	return strings.Join(lines, "\n")
}

// Segmenter splits resumes and rebuilds them.
type Segmenter struct {
	Detector BoundaryDetector
	Titles   Labels
}

// Default returns a Segmenter with the stock heuristics: five header
// positions, stop keywords experience/education/skills, and section
// titles experience/education/skills/summary/objective.
func Default() *Segmenter {
	return &Segmenter{
		Detector: NewPositionalDetector(DefaultHeaderLimit, DefaultStopKeywords...),
		Titles:   NewLabels(DefaultSectionTitles...),
	}
}

// Split resolves the header boundary of doc once.
func (s *Segmenter) Split(doc *Document) Split {
	if doc == nil {
		doc = &Document{}
	}
	return Split{Doc: doc, Boundary: s.Detector.Boundary(doc.Paragraphs)}
}

// ExtractHeader returns the header lines of doc.
func (s *Segmenter) ExtractHeader(doc *Document) []string {
	return s.Split(doc).Header()
}

// ExtractContent returns the body text of doc.
func (s *Segmenter) ExtractContent(doc *Document) string {
	return s.Split(doc).Body()
}

// Classify decides whether a rewritten line is a section title or body.
// Only a line that starts with a title word counts; indented lines are body.
func (s *Segmenter) Classify(line string) Role {
	if strings.TrimSpace(line) == "" {
		return RoleBlank
	}
	if s.Titles.Prefixes(line) {
		return RoleSectionTitle
	}
	return RoleBody
}
