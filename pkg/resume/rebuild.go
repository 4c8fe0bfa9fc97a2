package resume

import "strings"

// Point sizes used by Rebuild.
const (
	HeaderSize       = 12
	SectionTitleSize = 14
)

// Rebuild lays out a new document: each header line centered, bold and
// 12pt, one blank separator, then one paragraph per non-blank line of
// optimized. Lines classified as section titles are bold 14pt; the rest
// use the Normal style.
//
// The result always has len(header) + 1 + (non-blank lines) paragraphs.
func (s *Segmenter) Rebuild(header []string, optimized string) *Document {
	doc := &Document{}

	for _, h := range header {
		doc.Add(Paragraph{
			Text:  h,
			Bold:  true,
			Size:  HeaderSize,
			Align: AlignCenter,
			Style: StyleNormal,
		})
	}

	doc.Add(Paragraph{Style: StyleNormal})

	for _, line := range strings.Split(optimized, "\n") {
		line = strings.TrimRight(line, " \t\r")
		switch s.Classify(line) {
		case RoleBlank:
			continue
		case RoleSectionTitle:
			doc.Add(Paragraph{
				Text:  line,
				Bold:  true,
				Size:  SectionTitleSize,
				Style: StyleNormal,
			})
		default:
			doc.Add(Paragraph{Text: line, Style: StyleNormal})
		}
	}

	return doc
}
