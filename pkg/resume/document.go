// Package resume splits an uploaded resume into its contact header and
// body, and rebuilds a new document from the original header and a
// rewritten body.
//
// The split is heuristic. A BoundaryDetector decides where the header
// ends; the boundary is computed once per document and shared by the
// header and body consumers so the two can never overlap.
package resume

import "strings"

// Alignment of a paragraph
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
	AlignJustify
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustify:
		return "both"
	default:
		return "left"
	}
}

// StyleNormal is the default paragraph style name.
const StyleNormal = "Normal"

// Paragraph is a run of text with paragraph-level formatting.
// Size is in points; zero means the style's default.
type Paragraph struct {
	Text  string
	Bold  bool
	Size  float64
	Align Alignment
	Style string
}

// IsBlank reports whether the paragraph has no visible text.
func (p Paragraph) IsBlank() bool {
	return strings.TrimSpace(p.Text) == ""
}

// Document is an ordered sequence of paragraphs.
type Document struct {
	Paragraphs []Paragraph
}

// NewDocument builds a plain document from paragraph texts.
func NewDocument(texts ...string) *Document {
	doc := &Document{Paragraphs: make([]Paragraph, 0, len(texts))}
	for _, t := range texts {
		doc.Paragraphs = append(doc.Paragraphs, Paragraph{Text: t})
	}
	return doc
}

// Len returns the number of paragraphs.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Paragraphs)
}

// Texts returns the paragraph texts in order.
func (d *Document) Texts() []string {
	out := make([]string, 0, d.Len())
	if d == nil {
		return out
	}
	for _, p := range d.Paragraphs {
		out = append(out, p.Text)
	}
	return out
}

// Add appends a paragraph.
func (d *Document) Add(p Paragraph) {
	d.Paragraphs = append(d.Paragraphs, p)
}
