package document

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/allencass/aistudio/pkg/resume"
)

// ReadPDF extracts plain text from a PDF, one paragraph per line. PDFs
// carry no paragraph structure, so blank lines are kept as blank
// paragraphs to give the header boundary the same positions a reader sees.
func ReadPDF(r io.ReaderAt, size int64) (doc *resume.Document, err error) {
	// the pdf package panics on some malformed inputs
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = nil, fmt.Errorf("reading PDF: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}

	doc = &resume.Document{}
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract
			continue
		}
		text = strings.TrimRight(text, "\n")
		if strings.TrimSpace(text) == "" {
			continue
		}
		for _, line := range strings.Split(text, "\n") {
			doc.Add(resume.Paragraph{Text: strings.TrimRight(line, " \r"), Style: resume.StyleNormal})
		}
	}
	return doc, nil
}
