package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/allencass/aistudio/pkg/resume"
)

// MIMEDOCX is the content type of a Word document.
const MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// zipEpoch stamps every entry so the same document always yields the
// same bytes.
var zipEpoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

const nsW = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`</Types>`

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
	`</Relationships>`

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="` + nsW + `">` +
	`<w:docDefaults><w:rPrDefault><w:rPr>` +
	`<w:rFonts w:ascii="Calibri" w:hAnsi="Calibri" w:eastAsia="Calibri" w:cs="Calibri"/>` +
	`<w:sz w:val="22"/><w:szCs w:val="22"/>` +
	`</w:rPr></w:rPrDefault>` +
	`<w:pPrDefault><w:pPr><w:spacing w:after="0" w:line="259" w:lineRule="auto"/></w:pPr></w:pPrDefault>` +
	`</w:docDefaults>` +
	`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/></w:style>` +
	`</w:styles>`

const sectPrXML = `<w:sectPr>` +
	`<w:pgSz w:w="12240" w:h="15840"/>` +
	`<w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="720" w:footer="720" w:gutter="0"/>` +
	`</w:sectPr>`

// WriteDOCX serializes doc as a minimal .docx package. Paragraph style,
// alignment, bold and point size are written; everything else uses the
// package defaults (Calibri 11pt).
func WriteDOCX(w io.Writer, doc *resume.Document) error {
	body, err := documentXML(doc)
	if err != nil {
		return err
	}

	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(packageRelsXML)},
		{"word/document.xml", body},
		{"word/_rels/document.xml.rels", []byte(documentRelsXML)},
		{"word/styles.xml", []byte(stylesXML)},
	}

	zw := zip.NewWriter(w)
	for _, p := range parts {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     p.name,
			Method:   zip.Deflate,
			Modified: zipEpoch,
		})
		if err != nil {
			return fmt.Errorf("creating %s: %w", p.name, err)
		}
		if _, err := fw.Write(p.data); err != nil {
			return fmt.Errorf("writing %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing DOCX: %w", err)
	}
	return nil
}

// EncodeDOCX is WriteDOCX into memory.
func EncodeDOCX(doc *resume.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDOCX(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func documentXML(doc *resume.Document) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<w:document xmlns:w="` + nsW + `"><w:body>`)

	if doc != nil {
		for _, p := range doc.Paragraphs {
			if err := writeParagraph(&b, p); err != nil {
				return nil, err
			}
		}
	}

	b.WriteString(sectPrXML)
	b.WriteString(`</w:body></w:document>`)
	return b.Bytes(), nil
}

func writeParagraph(b *bytes.Buffer, p resume.Paragraph) error {
	b.WriteString("<w:p>")

	style := p.Style
	if style == "" {
		style = resume.StyleNormal
	}
	b.WriteString(`<w:pPr><w:pStyle w:val="`)
	if err := xml.EscapeText(b, []byte(style)); err != nil {
		return err
	}
	b.WriteString(`"/>`)
	if p.Align != resume.AlignLeft {
		fmt.Fprintf(b, `<w:jc w:val="%s"/>`, p.Align)
	}
	b.WriteString("</w:pPr>")

	if p.Text != "" {
		b.WriteString("<w:r>")
		if p.Bold || p.Size > 0 {
			b.WriteString("<w:rPr>")
			if p.Bold {
				b.WriteString("<w:b/><w:bCs/>")
			}
			if p.Size > 0 {
				half := strconv.Itoa(int(p.Size*2 + 0.5))
				b.WriteString(`<w:sz w:val="` + half + `"/><w:szCs w:val="` + half + `"/>`)
			}
			b.WriteString("</w:rPr>")
		}
		for i, line := range strings.Split(p.Text, "\n") {
			if i > 0 {
				b.WriteString("<w:br/>")
			}
			if err := writeLine(b, strings.TrimSuffix(line, "\r")); err != nil {
				return err
			}
		}
		b.WriteString("</w:r>")
	}

	b.WriteString("</w:p>")
	return nil
}

// writeLine writes the text of one line, tabs as w:tab.
func writeLine(b *bytes.Buffer, line string) error {
	for i, seg := range strings.Split(line, "\t") {
		if i > 0 {
			b.WriteString("<w:tab/>")
		}
		if seg == "" {
			continue
		}
		b.WriteString(`<w:t xml:space="preserve">`)
		if err := xml.EscapeText(b, []byte(seg)); err != nil {
			return err
		}
		b.WriteString("</w:t>")
	}
	return nil
}
