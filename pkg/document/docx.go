package document

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/allencass/aistudio/pkg/resume"
)

const documentPart = "word/document.xml"

// skipped holds elements whose text is not part of the paragraph's own
// runs: text boxes, drawings, legacy VML and tracked deletions.
var skipped = map[string]bool{
	"txbxContent":      true,
	"drawing":          true,
	"pict":             true,
	"AlternateContent": true,
	"del":              true,
}

// ReadDOCX loads the body paragraphs of a .docx file. Paragraphs inside
// tables, headers and footers are not part of the result.
func ReadDOCX(r io.ReaderAt, size int64) (*resume.Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening DOCX: %w", err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return nil, fmt.Errorf("%s not found in DOCX", documentPart)
	}

	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("opening document.xml: %w", err)
	}
	defer rc.Close()

	doc, err := parseDocumentXML(rc)
	if err != nil {
		return nil, fmt.Errorf("parsing DOCX XML: %w", err)
	}
	return doc, nil
}

func parseDocumentXML(r io.Reader) (*resume.Document, error) {
	dec := xml.NewDecoder(r)
	doc := &resume.Document{}

	var (
		stack []string
		para  *resume.Paragraph
		text  strings.Builder
		// depth of the body-level w:p, zero when outside one
		paraDepth int
		skipDepth int
	)

	parent := func() string {
		if len(stack) == 0 {
			return ""
		}
		return stack[len(stack)-1]
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local

			if para == nil && name == "p" && parent() == "body" {
				para = &resume.Paragraph{Style: resume.StyleNormal}
				text.Reset()
				stack = append(stack, name)
				paraDepth = len(stack)
				continue
			}

			stack = append(stack, name)
			if para == nil || skipDepth > 0 {
				continue
			}
			if skipped[name] {
				skipDepth = len(stack)
				continue
			}

			switch name {
			case "t":
				var s string
				if err := dec.DecodeElement(&s, &t); err != nil {
					return nil, err
				}
				stack = stack[:len(stack)-1]
				text.WriteString(s)
			case "tab":
				// w:tab also names tab stops under w:pPr
				if stackHas(stack, "r") {
					text.WriteByte('\t')
				}
			case "br", "cr":
				text.WriteByte('\n')
			case "pStyle":
				if v := attr(t, "val"); v != "" {
					para.Style = v
				}
			case "jc":
				para.Align = alignment(attr(t, "val"))
			}

		case xml.EndElement:
			depth := len(stack)
			if depth == 0 {
				continue
			}
			stack = stack[:depth-1]

			if skipDepth == depth {
				skipDepth = 0
			}
			if para != nil && depth == paraDepth {
				para.Text = text.String()
				doc.Add(*para)
				para = nil
				paraDepth = 0
			}
		}
	}

	return doc, nil
}

// stackHas reports whether name is an open ancestor of the current element.
func stackHas(stack []string, name string) bool {
	for i := len(stack) - 2; i >= 0; i-- {
		if stack[i] == name {
			return true
		}
		if stack[i] == "p" {
			return false
		}
	}
	return false
}

func attr(e xml.StartElement, local string) string {
	for _, a := range e.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func alignment(val string) resume.Alignment {
	switch val {
	case "center":
		return resume.AlignCenter
	case "right", "end":
		return resume.AlignRight
	case "both", "distribute":
		return resume.AlignJustify
	default:
		return resume.AlignLeft
	}
}
